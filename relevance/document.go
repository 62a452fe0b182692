package relevance

import (
	"strings"

	"github.com/poiesic/candidex/core"
)

// BuildDocument derives the searchable document for a candidate from its
// textual profile fields. Identity fields are deliberately excluded so a
// free-text query matches what candidates say about themselves, not who
// they are.
func BuildDocument(candidate *core.Candidate) string {
	if candidate == nil {
		return ""
	}

	parts := make([]string, 0, 3)
	if candidate.LocationText != "" {
		parts = append(parts, candidate.LocationText)
	}
	if len(candidate.Positions) > 0 {
		parts = append(parts, strings.Join(candidate.Positions, " "))
	}
	if candidate.Bio != "" {
		parts = append(parts, candidate.Bio)
	}

	return strings.Join(parts, "\n")
}

// TokenCounts tokenizes a document and counts occurrences per token. The
// counts are the per-token weights stored in the inverted index; a query's
// rank is the sum of its matched token weights.
func TokenCounts(document string) map[string]uint64 {
	tokens := Tokenize(document)
	if len(tokens) == 0 {
		return nil
	}

	counts := make(map[string]uint64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}

	return counts
}

// Rank computes the relevance rank of a document's token counts against a
// set of query tokens. The second return value reports whether every query
// token was matched; rank is only meaningful for full matches.
func Rank(counts map[string]uint64, queryTokens []string) (float64, bool) {
	if len(queryTokens) == 0 {
		return 0, false
	}

	var total uint64
	for _, token := range queryTokens {
		count, ok := counts[token]
		if !ok {
			return 0, false
		}
		total += count
	}

	return float64(total), true
}
