// Package redact strips likely credentials from diff text before it is sent
// to a completion provider.
package redact
