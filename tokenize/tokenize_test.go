package tokenize

import (
	"reflect"
	"testing"
)

func TestFallbackTokenizerASCII(t *testing.T) {
	got := FallbackTokenizer{}.Tokenize("Hello, World! 123")
	want := []string{"hello", "world", "123"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestFallbackTokenizerCJK(t *testing.T) {
	got := FallbackTokenizer{}.Tokenize("搜索引擎")
	want := []string{"搜", "索", "引", "擎"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestFallbackTokenizerMixed(t *testing.T) {
	got := FallbackTokenizer{}.Tokenize("go语言 search")
	want := []string{"go", "语", "言", "search"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}
