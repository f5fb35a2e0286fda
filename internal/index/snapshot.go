package index

import (
	"fmt"
	"sort"

	"github.com/docwell/docsearch/internal/document"
)

// Snapshot is the serialisable form of the index. TF-IDF scores are
// deliberately absent: they are derived state and are recomputed after a
// restore so they always reflect the corpus actually loaded, never a stale
// file.
type Snapshot struct {
	Documents     map[string]document.SearchDocument `json:"documents"`
	InvertedIndex map[string][]string                `json:"inverted_index"`
	PhraseIndex   map[string][]string                `json:"phrase_index"`
}

// Export copies the persistent index state into a Snapshot. Posting sets
// are emitted as sorted slices so snapshots are byte-stable for the same
// corpus.
func (ix *Index) Export() *Snapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	snap := &Snapshot{
		Documents:     make(map[string]document.SearchDocument, len(ix.documents)),
		InvertedIndex: make(map[string][]string, len(ix.inverted)),
		PhraseIndex:   make(map[string][]string, len(ix.phrases)),
	}
	for id, doc := range ix.documents {
		snap.Documents[id] = doc
	}
	for term, postings := range ix.inverted {
		snap.InvertedIndex[term] = sortedIDs(postings)
	}
	for phrase, postings := range ix.phrases {
		snap.PhraseIndex[phrase] = sortedIDs(postings)
	}
	return snap
}

// Restore validates the snapshot, rebuilds the in-memory structures in a
// staging area, recomputes TF-IDF, and only then swaps them in under the
// write lock. A failed restore leaves the index exactly as it was.
func (ix *Index) Restore(snap *Snapshot) error {
	if snap == nil || snap.Documents == nil || snap.InvertedIndex == nil || snap.PhraseIndex == nil {
		return fmt.Errorf("snapshot is missing required sections")
	}

	staged := New()
	for id, doc := range snap.Documents {
		if doc.ID != id {
			return fmt.Errorf("document key %q does not match id %q", id, doc.ID)
		}
		staged.documents[id] = doc
	}
	restorePostings := func(src map[string][]string, dst map[string]map[string]struct{}, kind string) error {
		for key, ids := range src {
			set := make(map[string]struct{}, len(ids))
			for _, id := range ids {
				if _, ok := staged.documents[id]; !ok {
					return fmt.Errorf("%s %q references unknown document %q", kind, key, id)
				}
				set[id] = struct{}{}
			}
			dst[key] = set
		}
		return nil
	}
	if err := restorePostings(snap.InvertedIndex, staged.inverted, "term"); err != nil {
		return err
	}
	if err := restorePostings(snap.PhraseIndex, staged.phrases, "phrase"); err != nil {
		return err
	}
	staged.UpdateTFIDF()

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.documents = staged.documents
	ix.inverted = staged.inverted
	ix.phrases = staged.phrases
	ix.tfidf = staged.tfidf
	return nil
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
