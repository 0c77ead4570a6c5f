// Package shelf filters, searches, and orders book snapshots for display.
package shelf

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// Query describes one shelf view: a status filter and a free-text search.
// The zero value shows everything.
type Query struct {
	Status string `json:"status"`
	Search string `json:"search"`
}

// fold is the Unicode case-folding transform used for search matching.
// Folding rather than lowercasing keeps matches correct for scripts where
// the two differ.
var fold = cases.Fold()

// Apply filters the snapshot by the query and returns the result in shelf
// order. The input slice is never modified.
func Apply(books []domain.Book, q Query) []domain.Book {
	needle := fold.String(strings.TrimSpace(q.Search))

	out := make([]domain.Book, 0, len(books))
	for i := range books {
		if !statusMatches(&books[i], q.Status) {
			continue
		}
		if needle != "" && !searchMatches(&books[i], needle) {
			continue
		}
		out = append(out, books[i])
	}

	Sort(out)
	return out
}

// Sort orders books in place: most recently finished first, books without
// a finish date after all finished ones, creation time (newest first) as
// the tiebreak. Finish dates are day-keys, so lexicographic comparison is
// chronological.
func Sort(books []domain.Book) {
	sort.SliceStable(books, func(i, j int) bool {
		a, b := &books[i], &books[j]
		if a.FinishedAt != b.FinishedAt {
			if a.FinishedAt == "" {
				return false
			}
			if b.FinishedAt == "" {
				return true
			}
			return a.FinishedAt > b.FinishedAt
		}
		return a.CreatedAtMs > b.CreatedAtMs
	})
}

func statusMatches(b *domain.Book, status string) bool {
	if status == "" || status == StatusAll {
		return true
	}
	return string(b.Status) == status
}

// searchMatches reports whether the folded needle occurs in any searchable
// field. Matching is plain substring containment; there is no ranking.
func searchMatches(b *domain.Book, needle string) bool {
	for _, field := range []string{
		b.Title,
		b.Notes,
		string(b.Status),
		b.FinishedAt,
		b.Link,
	} {
		if field == "" {
			continue
		}
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}
