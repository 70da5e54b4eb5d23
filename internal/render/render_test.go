package render

import (
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Title\n\nsome **bold** text", DefaultOptions().WithStyle("notty"))
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "bold") {
		t.Errorf("output missing content:\n%s", out)
	}
}

func TestMarkdownWithWidth_Wraps(t *testing.T) {
	long := strings.Repeat("word ", 40)
	out, err := Markdown(long, Options{Width: 30, Style: "notty"})
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if len(line) > 40 {
			t.Errorf("line longer than wrap width: %q", line)
		}
	}
}

func TestMarkdown_PoolReuse(t *testing.T) {
	opts := DefaultOptions().WithStyle("notty")
	for i := 0; i < 3; i++ {
		if _, err := Markdown("hello", opts); err != nil {
			t.Fatalf("render %d failed: %v", i, err)
		}
	}
}
