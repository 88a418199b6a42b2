package search

import (
	"strings"
	"testing"
)

func TestMakeSummaryFindsEarliestTerm(t *testing.T) {
	text := "this is a long document about golang search engines and golang concurrency"
	got := MakeSummary(text, []string{"golang"}, 20)
	if !strings.Contains(got, "golang") {
		t.Errorf("MakeSummary() = %q, expected it to contain the matched term", got)
	}
}

func TestMakeSummaryNoMatchReturnsPrefix(t *testing.T) {
	text := strings.Repeat("a", 200)
	got := MakeSummary(text, []string{"zzz"}, 50)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("MakeSummary() = %q, want ellipsis suffix for truncated text", got)
	}
}

func TestMakeSummaryShortTextReturnedWhole(t *testing.T) {
	text := "short text"
	got := MakeSummary(text, []string{"zzz"}, 50)
	if got != text {
		t.Errorf("MakeSummary() = %q, want %q unchanged", got, text)
	}
}

func TestMakeSummaryRespectsUTF8Boundaries(t *testing.T) {
	text := strings.Repeat("搜索引擎中文内容", 20) + "golang" + strings.Repeat("更多中文内容测试", 20)
	got := MakeSummary(text, []string{"golang"}, 30)
	if !utf8Valid(got) {
		t.Errorf("MakeSummary() produced invalid UTF-8: %q", got)
	}
}

func utf8Valid(s string) bool {
	for _, r := range s {
		if r == '�' {
			return false
		}
	}
	return true
}
