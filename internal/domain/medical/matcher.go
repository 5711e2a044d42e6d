package medical

import (
	"sort"
	"strings"

	"github.com/acil/er-api/internal/platform/apperr"
)

// DefaultTopK is the fixed result size for both the search endpoint and the
// triage-suggestion path.
const DefaultTopK = 5

// Match pairs a reference record with its query score.
type Match struct {
	Record
	MatchScore int `json:"matchScore"`
}

// Search scores the dataset against the query symptom tokens and returns the
// top k matches, highest score first. The score of a record is the number of
// distinct query tokens that have a substring match, in either direction,
// against any of the record's symptoms. Ties keep dataset order.
//
// An empty query is a client error, not an empty result.
func (d *Dataset) Search(query []string, k int) ([]Match, error) {
	tokens := normalizeQuery(query)
	if len(tokens) == 0 {
		return nil, apperr.Validationf("no symptoms provided")
	}
	if k <= 0 {
		k = DefaultTopK
	}

	var matched []Match
	for _, rec := range d.records {
		score := 0
		for _, q := range tokens {
			if matchesAny(q, rec.Symptoms) {
				score++
			}
		}
		if score > 0 {
			matched = append(matched, Match{Record: rec, MatchScore: score})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].MatchScore > matched[j].MatchScore
	})

	if len(matched) > k {
		matched = matched[:k]
	}
	return matched, nil
}

// matchesAny reports whether the query token substring-matches any record
// symptom in either direction.
func matchesAny(q string, symptoms []string) bool {
	for _, s := range symptoms {
		if strings.Contains(s, q) || strings.Contains(q, s) {
			return true
		}
	}
	return false
}

// normalizeQuery lower-cases, trims, and deduplicates the query tokens so
// each distinct token counts at most once per record.
func normalizeQuery(query []string) []string {
	seen := make(map[string]bool, len(query))
	var tokens []string
	for _, q := range query {
		q = strings.ToLower(strings.TrimSpace(q))
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		tokens = append(tokens, q)
	}
	return tokens
}
