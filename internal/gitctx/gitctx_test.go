package gitctx

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// initRepo creates a throwaway git repo and chdirs into it.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	run(t, "git", "init", "-q")
	run(t, "git", "config", "user.email", "test@example.com")
	run(t, "git", "config", "user.name", "Test User")
	return dir
}

func run(t *testing.T, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("%s %v: %v\n%s", name, args, err, out)
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIsRepo(t *testing.T) {
	initRepo(t)
	if !IsRepo() {
		t.Error("IsRepo() = false inside a git repo")
	}
}

func TestStaged(t *testing.T) {
	initRepo(t)
	write(t, "main.go", "package main\n")
	run(t, "git", "add", "main.go")

	sc, err := Staged(nil)
	if err != nil {
		t.Fatalf("Staged: %v", err)
	}
	if !strings.Contains(sc.Diff, "main.go") {
		t.Errorf("diff does not mention the staged file:\n%s", sc.Diff)
	}
	if len(sc.Files) != 1 || sc.Files[0] != "main.go" {
		t.Errorf("Files = %v, want [main.go]", sc.Files)
	}
}

func TestStaged_IgnorePatterns(t *testing.T) {
	initRepo(t)
	write(t, "keep.go", "package main\n")
	write(t, "skip.log", "noise\n")
	run(t, "git", "add", "keep.go", "skip.log")

	sc, err := Staged([]string{"*.log"})
	if err != nil {
		t.Fatalf("Staged: %v", err)
	}
	if strings.Contains(sc.Diff, "skip.log") {
		t.Error("ignored file still present in diff")
	}
	if len(sc.Files) != 1 || sc.Files[0] != "keep.go" {
		t.Errorf("Files = %v, want [keep.go]", sc.Files)
	}
}

func TestCommitAndLastMessage(t *testing.T) {
	initRepo(t)
	write(t, "a.txt", "hello\n")
	run(t, "git", "add", "a.txt")

	msg := "feat: add greeting file"
	if err := Commit(msg); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	got, err := LastCommitMessage()
	if err != nil {
		t.Fatalf("LastCommitMessage: %v", err)
	}
	if got != msg {
		t.Errorf("LastCommitMessage = %q, want %q", got, msg)
	}
}

func TestProjectName(t *testing.T) {
	dir := initRepo(t)
	name, err := ProjectName()
	if err != nil {
		t.Fatalf("ProjectName: %v", err)
	}
	if name != filepath.Base(dir) {
		t.Errorf("ProjectName = %q, want %q", name, filepath.Base(dir))
	}
}

func TestStageTracked(t *testing.T) {
	initRepo(t)
	write(t, "a.txt", "one\n")
	run(t, "git", "add", "a.txt")
	run(t, "git", "commit", "-q", "-m", "init")

	write(t, "a.txt", "two\n")
	if err := StageTracked(); err != nil {
		t.Fatalf("StageTracked: %v", err)
	}
	sc, err := Staged(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sc.Diff, "+two") {
		t.Error("tracked modification was not staged")
	}
}

func TestIgnorePatterns_Files(t *testing.T) {
	initRepo(t)
	write(t, ignoreFileName, "# comment\n*.log\n\nvendor/\n")
	userDir := t.TempDir()
	write(t, filepath.Join(userDir, ignoreFileName), "*.tmp\n")

	got := IgnorePatterns(userDir)
	want := []string{"*.log", "vendor/", "*.tmp"}
	if len(got) != len(want) {
		t.Fatalf("IgnorePatterns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pattern %d = %q, want %q", i, got[i], want[i])
		}
	}
}
