package keyword

import "testing"

func TestRecommendPrefixMatchesOnly(t *testing.T) {
	words := []string{"搜索引擎", "搜索算法", "搜索框", "搜狗输入法"}
	freqs := []uint32{10, 30, 20, 5}
	got := Recommend("搜索", words, freqs, 3)
	if len(got) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(got))
	}
	for _, s := range got {
		if s.Distance != 0 {
			t.Errorf("expected distance 0 for prefix match, got %+v", s)
		}
	}
	if got[0].Word != "搜索算法" {
		t.Errorf("expected highest-frequency match first, got %+v", got[0])
	}
}

func TestRecommendFallsBackToEditDistance(t *testing.T) {
	words := []string{"搜索引擎", "检索系统", "搜索框"}
	freqs := []uint32{10, 5, 3}
	got := Recommend("搜索", words, freqs, 5)
	if len(got) == 0 {
		t.Fatal("expected at least one suggestion")
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Distance > got[i].Distance {
			t.Errorf("results not sorted ascending by distance: %+v", got)
		}
	}
}

func TestRecommendEmptyInputs(t *testing.T) {
	if got := Recommend("", []string{"a"}, []uint32{1}, 3); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := Recommend("x", nil, nil, 3); got != nil {
		t.Errorf("expected nil for empty dictionary, got %v", got)
	}
	if got := Recommend("x", []string{"xyz"}, []uint32{1}, 0); got != nil {
		t.Errorf("expected nil for topK=0, got %v", got)
	}
}

func TestEditDistanceBasic(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
	}
	for _, c := range cases {
		if got := editDistance(c.a, c.b); got != c.want {
			t.Errorf("editDistance(%q,%q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
