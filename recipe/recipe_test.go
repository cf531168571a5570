package recipe

import (
	"strings"
	"testing"
)

func TestBenchmarkPath(t *testing.T) {
	got := BenchmarkPath("/data/suite", "div_10xd", ".aig")
	if got != "/data/suite/div_10xd.aig" {
		t.Errorf("path = %q, want /data/suite/div_10xd.aig", got)
	}
}

func TestBenchmarkPathsKeepsOrder(t *testing.T) {
	got := BenchmarkPaths("s", []string{"b", "a", "c"}, ".aig")
	want := []string{"s/b.aig", "s/a.aig", "s/c.aig"}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDefaultScript(t *testing.T) {
	b, err := NewBuilder("")
	if err != nil {
		t.Fatalf("NewBuilder failed: %v", err)
	}

	tests := []struct {
		mode string
		want string
	}{
		{"", "&r x.aig; &ps; time; &fraig ; time; &ps"},
		{"-c", "&r x.aig; &ps; time; &fraig -c; time; &ps"},
		{"-x", "&r x.aig; &ps; time; &fraig -x; time; &ps"},
	}

	for _, tt := range tests {
		got, err := b.Script("x.aig", tt.mode)
		if err != nil {
			t.Fatalf("Script(%q) failed: %v", tt.mode, err)
		}
		if got != tt.want {
			t.Errorf("Script(%q) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestCustomScript(t *testing.T) {
	b, err := NewBuilder("read {{.Path}}; time; drf; time; print_stats")
	if err != nil {
		t.Fatalf("NewBuilder failed: %v", err)
	}

	got, err := b.Script("c.aig", "-c")
	if err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	if got != "read c.aig; time; drf; time; print_stats" {
		t.Errorf("script = %q", got)
	}
}

func TestBadTemplate(t *testing.T) {
	if _, err := NewBuilder("&r {{.Path"); err == nil {
		t.Error("expected error for unterminated action")
	}
}

func TestLibraryScript(t *testing.T) {
	got := LibraryScript([]string{"a.aig", "b.aig"}, "st; rec_add3", "temp.aig")
	want := "rec_start3; a.aig; st; rec_add3; b.aig; st; rec_add3; " +
		"rec_dump3 temp.aig; rec_stop3"

	if got != want {
		t.Errorf("script = %q, want %q", got, want)
	}
}

func TestLibraryScriptEmpty(t *testing.T) {
	got := LibraryScript(nil, DefaultLibraryRecipe, "lib.aig")
	if got != "rec_start3; rec_dump3 lib.aig; rec_stop3" {
		t.Errorf("script = %q", got)
	}
	if strings.Contains(got, "rec_add3") {
		t.Error("empty library script should not contain the recipe")
	}
}
