package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TheLegendMe/zh-doc-search/tokenize"
)

func writeXML(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	input := t.TempDir()
	output := filepath.Join(t.TempDir(), "out")

	writeXML(t, input, "feed1.xml", `<docs>
<doc><docid>1</docid><link>http://a</link><title>Golang Search Engine</title><description>A fast search engine written in Go</description></doc>
<doc><docid>2</docid><link>http://b</link><title>Golang Search Engine</title><description>A fast search engine written in Go</description></doc>
<doc><docid>3</docid><link>http://c</link><title>Completely Different Topic</title><description>Nothing at all related to the other pages here</description></doc>
</docs>`)

	result, err := Run(input, output, 3, tokenize.FallbackTokenizer{})
	if err != nil {
		t.Fatal(err)
	}
	if result.PagesParsed != 3 {
		t.Errorf("PagesParsed = %d, want 3", result.PagesParsed)
	}
	if result.DuplicatesFound != 1 {
		t.Errorf("DuplicatesFound = %d, want 1 (doc 2 duplicates doc 1)", result.DuplicatesFound)
	}
	if result.PagesKept != 2 {
		t.Errorf("PagesKept = %d, want 2", result.PagesKept)
	}

	for _, name := range []string{"pages.bin", "offsets.bin", "index.txt"} {
		if _, err := os.Stat(filepath.Join(output, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestRunNoInputFiles(t *testing.T) {
	input := t.TempDir()
	output := filepath.Join(t.TempDir(), "out")
	if _, err := Run(input, output, 3, tokenize.FallbackTokenizer{}); err == nil {
		t.Error("expected an error when no XML files are present")
	}
}
