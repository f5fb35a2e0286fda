package index

import (
	"math"
	"testing"

	"github.com/docwell/docsearch/internal/document"
)

func testDoc(id, title, content string, tags ...string) document.SearchDocument {
	return document.SearchDocument{
		ID:         id,
		Title:      title,
		Content:    content,
		URL:        "/docs/" + id,
		Tags:       tags,
		ResultType: document.TypePage,
	}
}

func newTestIndex(t *testing.T, docs ...document.SearchDocument) *Index {
	t.Helper()
	ix := New()
	for _, doc := range docs {
		ix.Add(doc)
	}
	ix.UpdateTFIDF()
	return ix
}

func ids(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func TestSearchTokensExact(t *testing.T) {
	ix := newTestIndex(t,
		testDoc("d1", "Install Guide", "install the golang toolchain"),
		testDoc("d2", "Routing", "configure routing tables"),
	)

	got := ix.SearchTokens([]string{"routing"})
	if _, ok := got["d2"]; !ok || len(got) != 1 {
		t.Errorf("expected only d2, got %v", ids(got))
	}
}

func TestSearchTokensAndSemantics(t *testing.T) {
	ix := newTestIndex(t,
		testDoc("d1", "Install Guide", "install the golang toolchain"),
		testDoc("d2", "Routing", "configure routing tables"),
	)

	if got := ix.SearchTokens([]string{"install", "golang"}); len(got) != 1 {
		t.Errorf("expected d1 for both tokens, got %v", ids(got))
	}
	// Tokens spread across different documents match nothing.
	if got := ix.SearchTokens([]string{"install", "routing"}); len(got) != 0 {
		t.Errorf("expected no matches, got %v", ids(got))
	}
	if got := ix.SearchTokens(nil); len(got) != 0 {
		t.Errorf("expected no matches for empty token list, got %v", ids(got))
	}
}

func TestSearchTokensStemmedForm(t *testing.T) {
	ix := newTestIndex(t,
		testDoc("d1", "Install Guide", "install the golang toolchain"),
	)

	// "installs" stems to "install", which is indexed.
	got := ix.SearchTokens([]string{"installs"})
	if _, ok := got["d1"]; !ok {
		t.Errorf("expected stemmed match for d1, got %v", ids(got))
	}
}

func TestSearchTokensSubstringRecall(t *testing.T) {
	ix := newTestIndex(t,
		testDoc("d2", "Routing", "configure routing tables"),
	)

	// "config" (5+ chars) substring-matches the indexed "configure".
	got := ix.SearchTokens([]string{"config"})
	if _, ok := got["d2"]; !ok {
		t.Errorf("expected substring match for d2, got %v", ids(got))
	}

	// Short tokens never substring-match.
	if got := ix.SearchTokens([]string{"conf"}); len(got) != 0 {
		t.Errorf("expected no match for 4-char prefix, got %v", ids(got))
	}
}

func TestSearchTokensTitleAndTags(t *testing.T) {
	ix := newTestIndex(t,
		testDoc("d1", "Deployment Checklist", "steps before shipping", "kubernetes"),
	)

	if got := ix.SearchTokens([]string{"deployment"}); len(got) != 1 {
		t.Errorf("expected title token to be indexed, got %v", ids(got))
	}
	if got := ix.SearchTokens([]string{"kubernetes"}); len(got) != 1 {
		t.Errorf("expected tag token to be indexed, got %v", ids(got))
	}
}

func TestSearchPhrases(t *testing.T) {
	ix := newTestIndex(t,
		testDoc("d1", "Guide", "install the golang toolchain from source"),
		testDoc("d2", "Routing", "configure routing tables"),
	)

	got := ix.SearchPhrases("golang toolchain")
	if _, ok := got["d1"]; !ok || len(got) != 1 {
		t.Errorf("expected phrase match for d1, got %v", ids(got))
	}

	// Phrases are built from content only, not titles.
	if got := ix.SearchPhrases("routing tables"); len(got) != 1 {
		t.Errorf("expected phrase match for d2, got %v", ids(got))
	}
	if got := ix.SearchPhrases("golang routing"); len(got) != 0 {
		t.Errorf("expected no match for non-contiguous phrase, got %v", ids(got))
	}
}

func TestAddReplacesPriorVersion(t *testing.T) {
	ix := newTestIndex(t,
		testDoc("d1", "Old Title", "obsolete legacy subject"),
	)
	ix.Add(testDoc("d1", "New Title", "fresh replacement material"))
	ix.UpdateTFIDF()

	// Postings of the old version must be gone.
	if got := ix.SearchTokens([]string{"obsolete"}); len(got) != 0 {
		t.Errorf("stale posting survived re-add: %v", ids(got))
	}
	if got := ix.SearchTokens([]string{"replacement"}); len(got) != 1 {
		t.Errorf("new posting missing after re-add: %v", ids(got))
	}
	if s := ix.Stats(); s.TotalDocuments != 1 {
		t.Errorf("expected 1 document after re-add, got %d", s.TotalDocuments)
	}

	doc, ok := ix.Document("d1")
	if !ok || doc.Title != "New Title" {
		t.Errorf("stored document not replaced: %+v", doc)
	}
}

func TestRemove(t *testing.T) {
	ix := newTestIndex(t,
		testDoc("d1", "Guide", "install the golang toolchain"),
	)

	if !ix.Remove("d1") {
		t.Fatal("expected Remove to report the document existed")
	}
	if ix.Remove("d1") {
		t.Error("expected second Remove to report absence")
	}
	if got := ix.SearchTokens([]string{"golang"}); len(got) != 0 {
		t.Errorf("postings survived removal: %v", ids(got))
	}
	if got := ix.SearchPhrases("golang toolchain"); len(got) != 0 {
		t.Errorf("phrase postings survived removal: %v", ids(got))
	}
	if terms := ix.Terms(); len(terms) != 0 {
		t.Errorf("expected empty term list, got %v", terms)
	}
}

func TestTFIDFSum(t *testing.T) {
	ix := newTestIndex(t,
		testDoc("a", "", "golang concurrency patterns"),
		testDoc("b", "", "golang tutorial basics"),
	)

	// "golang" is ubiquitous so only "concurrency" contributes.
	want := (1.0 / 3.0) * math.Log(2.0)
	got := ix.TFIDFSum("a", []string{"golang", "concurrency"})
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("TFIDFSum = %g, want %g", got, want)
	}
	if got := ix.TFIDFSum("missing", []string{"golang"}); got != 0 {
		t.Errorf("expected 0 for unknown document, got %g", got)
	}
}

func TestStats(t *testing.T) {
	a := testDoc("a", "Guide", "install golang")
	a.Category = "guides"
	a.WordCount = 100
	b := testDoc("b", "Reference", "api parameters")
	b.ResultType = document.TypeAPIReference
	b.WordCount = 300

	ix := newTestIndex(t, a, b)
	s := ix.Stats()
	if s.TotalDocuments != 2 {
		t.Errorf("TotalDocuments = %d, want 2", s.TotalDocuments)
	}
	if s.DocumentTypes["page"] != 1 || s.DocumentTypes["api_reference"] != 1 {
		t.Errorf("DocumentTypes = %v", s.DocumentTypes)
	}
	if s.Categories["guides"] != 1 {
		t.Errorf("Categories = %v", s.Categories)
	}
	if s.AvgWordCount != 200 {
		t.Errorf("AvgWordCount = %g, want 200", s.AvgWordCount)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ix := newTestIndex(t,
		testDoc("d1", "Install Guide", "install the golang toolchain"),
		testDoc("d2", "Routing", "configure routing tables"),
	)

	restored := New()
	if err := restored.Restore(ix.Export()); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if got := restored.SearchTokens([]string{"golang"}); len(got) != 1 {
		t.Errorf("restored inverted index broken: %v", ids(got))
	}
	if got := restored.SearchPhrases("routing tables"); len(got) != 1 {
		t.Errorf("restored phrase index broken: %v", ids(got))
	}
	if _, ok := restored.Document("d2"); !ok {
		t.Error("restored document store missing d2")
	}

	// Scores are recomputed during restore, not copied.
	want := ix.TFIDFSum("d1", []string{"golang"})
	if got := restored.TFIDFSum("d1", []string{"golang"}); math.Abs(got-want) > 1e-12 {
		t.Errorf("restored TFIDFSum = %g, want %g", got, want)
	}
}

func TestRestoreRejectsDanglingPostings(t *testing.T) {
	ix := newTestIndex(t,
		testDoc("d1", "Guide", "install golang"),
	)

	snap := ix.Export()
	snap.InvertedIndex["golang"] = append(snap.InvertedIndex["golang"], "ghost")
	if err := ix.Restore(snap); err == nil {
		t.Fatal("expected error for posting referencing unknown document")
	}
	// A failed restore must leave the index untouched.
	if got := ix.SearchTokens([]string{"golang"}); len(got) != 1 {
		t.Errorf("index changed after failed restore: %v", ids(got))
	}
}

func TestRestoreRejectsMismatchedKey(t *testing.T) {
	ix := New()
	snap := &Snapshot{
		Documents: map[string]document.SearchDocument{
			"wrong-key": testDoc("d1", "Guide", "install golang"),
		},
		InvertedIndex: map[string][]string{},
		PhraseIndex:   map[string][]string{},
	}
	if err := ix.Restore(snap); err == nil {
		t.Fatal("expected error for document key mismatch")
	}
}

func TestRestoreRejectsMissingSections(t *testing.T) {
	ix := New()
	if err := ix.Restore(nil); err == nil {
		t.Error("expected error for nil snapshot")
	}
	if err := ix.Restore(&Snapshot{}); err == nil {
		t.Error("expected error for snapshot without sections")
	}
}
