// Package recipe builds the semicolon-separated command scripts passed to
// ABC with -c. Scripts are plain strings; their syntax is ABC's business.
package recipe

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

// DefaultBenchmarkScript reads an AIG, prints its stats, and fraigs it
// between two time markers.
const DefaultBenchmarkScript = "&r {{.Path}}; &ps; time; &fraig {{.Mode}}; time; &ps"

// DefaultLibraryRecipe is replayed on every circuit added to the
// structural-choice library.
const DefaultLibraryRecipe = "st; rec_add3; b; rec_add3; dc2; rec_add3; " +
	"if -K 8; bidec; st; rec_add3; dc2; rec_add3; if -a -K 6; st; rec_add3"

// DefaultExtension is appended to benchmark names to locate their files.
const DefaultExtension = ".aig"

// BenchmarkPath returns the file path for the named benchmark.
func BenchmarkPath(dir, name, ext string) string {
	return filepath.Join(dir, name+ext)
}

// BenchmarkPaths resolves every name in order.
func BenchmarkPaths(dir string, names []string, ext string) []string {
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, BenchmarkPath(dir, name, ext))
	}

	return paths
}

// Params are the values substituted into a benchmark script template.
type Params struct {
	Path string
	Mode string
}

// Builder renders benchmark scripts from a parsed template.
type Builder struct {
	tmpl *template.Template
}

// NewBuilder parses the benchmark script template. An empty text selects
// DefaultBenchmarkScript.
func NewBuilder(text string) (*Builder, error) {
	if text == "" {
		text = DefaultBenchmarkScript
	}

	tmpl, err := template.New("script").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse script template: %w", err)
	}

	return &Builder{tmpl: tmpl}, nil
}

// Script renders the script for one benchmark file and mode.
func (b *Builder) Script(path, mode string) (string, error) {
	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, Params{Path: path, Mode: mode}); err != nil {
		return "", fmt.Errorf("render script for %s: %w", path, err)
	}

	return sb.String(), nil
}

// LibraryScript starts a recording session, reads each path and applies
// the recipe to it, then dumps the library to libName. An empty path list
// still yields the start, dump and stop directives.
func LibraryScript(paths []string, recipe, libName string) string {
	var sb strings.Builder

	sb.WriteString("rec_start3; ")

	for _, p := range paths {
		sb.WriteString(p)
		sb.WriteString("; ")
		sb.WriteString(recipe)
		sb.WriteString("; ")
	}

	sb.WriteString("rec_dump3 ")
	sb.WriteString(libName)
	sb.WriteString("; rec_stop3")

	return sb.String()
}
