package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestNonTTYOutputIsPlain(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Header("Review")
	p.Success("done")
	p.Warn("context was truncated")
	p.Error("provider unreachable")
	p.Dim("3 files")

	got := buf.String()
	if strings.Contains(got, "\x1b[") {
		t.Errorf("ANSI escapes in non-TTY output:\n%q", got)
	}
	for _, want := range []string{"Review\n", "done\n", "warning: context was truncated\n", "error: provider unreachable\n", "3 files\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestBoxFallsBackToIndent(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Box("feat: add parser\n\nExplains why.")

	want := "    feat: add parser\n    \n    Explains why.\n"
	if buf.String() != want {
		t.Errorf("Box = %q, want %q", buf.String(), want)
	}
}

func TestMarkdownPassthroughWithoutTTY(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Markdown("# Title\n\n- item\n")

	if got := buf.String(); got != "# Title\n\n- item\n" {
		t.Errorf("Markdown = %q, want raw source", got)
	}
}
