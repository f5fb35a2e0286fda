package engine

import (
	"strings"
	"testing"
)

func TestBuildSnippetPicksDensestSentence(t *testing.T) {
	content := "This page covers many topics. Caching with redis makes caching repeated caching lookups fast! Unrelated closing remark."
	got := buildSnippet(content, []string{"caching"})
	if !strings.Contains(got, "redis") {
		t.Errorf("snippet %q should come from the sentence with the most hits", got)
	}
}

func TestBuildSnippetFirstSentenceOnTie(t *testing.T) {
	content := "First sentence mentions caching. Second sentence mentions caching too."
	got := buildSnippet(content, []string{"caching"})
	if !strings.HasPrefix(got, "First") {
		t.Errorf("snippet %q should prefer the earlier sentence on ties", got)
	}
}

func TestBuildSnippetTruncation(t *testing.T) {
	content := strings.Repeat("caching ", 40) + "end"
	got := buildSnippet(content, []string{"caching"})
	if len(got) != snippetMaxLen+3 {
		t.Errorf("snippet length = %d, want %d plus ellipsis", len(got), snippetMaxLen+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated snippet %q missing ellipsis", got)
	}
}

func TestBuildSnippetEmptyContent(t *testing.T) {
	if got := buildSnippet("", []string{"anything"}); got != "" {
		t.Errorf("snippet for empty content = %q, want empty", got)
	}
}
