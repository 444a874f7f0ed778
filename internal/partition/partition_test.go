package partition

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/gitmate/internal/budget"
)

func fileSection(name string, hunks int, lineLen int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n--- a/%s\n+++ b/%s\n", name, name, name, name)
	for h := 0; h < hunks; h++ {
		fmt.Fprintf(&b, "@@ -%d,3 +%d,4 @@\n", h*10+1, h*10+1)
		fmt.Fprintf(&b, "+%s\n", strings.Repeat("x", lineLen))
	}
	return b.String()
}

func TestSplit_SingleFile(t *testing.T) {
	diff := fileSection("main.go", 1, 10)
	chunks := Split(diff, 0)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Path != "main.go" {
		t.Errorf("Path = %q, want main.go", chunks[0].Path)
	}
	if chunks[0].Tokens != budget.Estimate(diff) {
		t.Errorf("Tokens = %d, want %d", chunks[0].Tokens, budget.Estimate(diff))
	}
}

func TestSplit_Lossless(t *testing.T) {
	diff := fileSection("a.go", 3, 200) + fileSection("b.go", 1, 20) + fileSection("c.go", 5, 300)
	for _, limit := range []int{0, 50, 100, 1000} {
		chunks := Split(diff, limit)
		var rebuilt strings.Builder
		for _, c := range chunks {
			rebuilt.WriteString(c.Text)
		}
		if rebuilt.String() != diff {
			t.Errorf("limit %d: concatenated chunks do not reproduce input", limit)
		}
	}
}

func TestSplit_LosslessNoTrailingNewline(t *testing.T) {
	diff := strings.TrimSuffix(fileSection("a.go", 2, 50), "\n")
	chunks := Split(diff, 20)
	var rebuilt strings.Builder
	for _, c := range chunks {
		rebuilt.WriteString(c.Text)
	}
	if rebuilt.String() != diff {
		t.Error("concatenation changed a diff without trailing newline")
	}
}

func TestSplit_Idempotent(t *testing.T) {
	diff := fileSection("x.go", 4, 150) + fileSection("y.go", 2, 80)
	first := Split(diff, 60)
	for i := 0; i < 3; i++ {
		if got := Split(diff, 60); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestSplit_HunkBoundaries(t *testing.T) {
	// One file with 4 hunks, each roughly 110 bytes (~37 tokens). A limit of
	// 50 forces hunk splitting but must never cut inside a hunk.
	diff := fileSection("big.go", 4, 100)
	chunks := Split(diff, 50)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want oversized file split into several", len(chunks))
	}
	for i, c := range chunks {
		if c.Path != "big.go" {
			t.Errorf("chunk %d Path = %q, want big.go", i, c.Path)
		}
		if c.Ordinal != i {
			t.Errorf("chunk %d Ordinal = %d, want %d", i, c.Ordinal, i)
		}
		if i > 0 && !strings.HasPrefix(c.Text, "@@") {
			t.Errorf("chunk %d does not start at a hunk boundary: %q", i, c.Text[:20])
		}
	}
	if !strings.HasPrefix(chunks[0].Text, "diff --git") {
		t.Error("file header should travel with the first hunk chunk")
	}
}

func TestSplit_HugeHunkKeptWhole(t *testing.T) {
	// A single hunk far above the limit is emitted whole rather than cut.
	diff := fileSection("one.go", 1, 5000)
	chunks := Split(diff, 50)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 (never split inside a hunk)", len(chunks))
	}
}

func TestSplit_FileOrderPreserved(t *testing.T) {
	diff := fileSection("first.go", 1, 10) + fileSection("second.go", 1, 10) + fileSection("third.go", 1, 10)
	chunks := Split(diff, 0)
	want := []string{"first.go", "second.go", "third.go"}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if c.Path != want[i] {
			t.Errorf("chunk %d Path = %q, want %q", i, c.Path, want[i])
		}
	}
}

func TestSplit_EmptyDiff(t *testing.T) {
	if chunks := Split("", 100); chunks != nil {
		t.Errorf("got %d chunks for empty diff, want none", len(chunks))
	}
	if chunks := Split("   \n\n", 100); chunks != nil {
		t.Errorf("got %d chunks for blank diff, want none", len(chunks))
	}
}

func TestSplit_DeletedFilePath(t *testing.T) {
	diff := "diff --git a/gone.go b/gone.go\n--- a/gone.go\n+++ /dev/null\n@@ -1,3 +0,0 @@\n-old\n"
	chunks := Split(diff, 0)
	if len(chunks) != 1 || chunks[0].Path != "gone.go" {
		t.Errorf("deleted file path = %q, want gone.go", chunks[0].Path)
	}
}

func TestTotalTokens(t *testing.T) {
	diff := fileSection("a.go", 1, 10) + fileSection("b.go", 1, 10)
	chunks := Split(diff, 0)
	got := TotalTokens(chunks)
	// Per-chunk ceiling rounds up at most once per chunk.
	if min, max := budget.Estimate(diff), budget.Estimate(diff)+len(chunks); got < min || got > max {
		t.Errorf("TotalTokens = %d, want within [%d, %d]", got, min, max)
	}
}
