// Package output handles terminal presentation: styled status lines,
// commit message preview boxes, and markdown rendering for reviews and
// reports. Styling is TTY-gated so redirected output stays plain.
package output
