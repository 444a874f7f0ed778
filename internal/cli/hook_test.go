package cli

import (
	"strings"
	"testing"
)

func TestHookScriptIsMarkedSection(t *testing.T) {
	script := hookScript()
	if !strings.HasPrefix(script, hookMarkerStart+"\n") {
		t.Errorf("script missing start marker:\n%s", script)
	}
	if !strings.HasSuffix(script, hookMarkerEnd+"\n") {
		t.Errorf("script missing end marker:\n%s", script)
	}
	if !strings.Contains(script, "gitmate archive --quiet") {
		t.Errorf("script missing archive invocation:\n%s", script)
	}
}

func TestReplaceHookSectionAppendsWhenAbsent(t *testing.T) {
	existing := "#!/bin/sh\necho custom hook\n"
	got := replaceHookSection(existing, hookScript())

	if !strings.HasPrefix(got, existing) {
		t.Error("existing content modified")
	}
	if !strings.Contains(got, hookMarkerStart) {
		t.Error("section not appended")
	}
}

func TestReplaceHookSectionIsIdempotent(t *testing.T) {
	existing := "#!/bin/sh\necho before\n" + hookScript() + "echo after\n"
	got := replaceHookSection(existing, hookScript())

	if got != existing {
		t.Errorf("replacing the same section changed content:\n%s", got)
	}
	if strings.Count(got, hookMarkerStart) != 1 {
		t.Error("duplicate sections after replace")
	}
}

func TestRemoveHookSectionPreservesRest(t *testing.T) {
	existing := "#!/bin/sh\necho before\n" + hookScript() + "echo after\n"
	got := removeHookSection(existing)

	want := "#!/bin/sh\necho before\necho after\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRemoveHookSectionNoSection(t *testing.T) {
	existing := "#!/bin/sh\necho unrelated\n"
	if got := removeHookSection(existing); got != existing {
		t.Errorf("content without a section changed: %q", got)
	}
}
