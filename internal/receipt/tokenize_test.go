package receipt

import "testing"

func TestSplitLinesKeepsEmptyLines(t *testing.T) {
	lines := SplitLines("A\r\n\r\nB  \nC")
	if len(lines) != 4 {
		t.Fatalf("len=%d", len(lines))
	}
	if lines[1].Text != "" {
		t.Fatalf("expected empty line at index 1, got %q", lines[1].Text)
	}
	if lines[2].Text != "B" {
		t.Fatalf("expected trimmed line, got %q", lines[2].Text)
	}
	if lines[3].Index != 3 {
		t.Fatalf("index=%d", lines[3].Index)
	}
}

func TestSplitLinesEmptyInput(t *testing.T) {
	if lines := SplitLines(""); len(lines) != 0 {
		t.Fatalf("len=%d", len(lines))
	}
}
