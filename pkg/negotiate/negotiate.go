// Package negotiate picks the best media type for an Accept header.
package negotiate

import (
	"mime"
	"strings"

	"github.com/munnerz/goautoneg"
)

// Negotiator selects the best of the given media types for an Accept header
// line. It returns false, if none of them is acceptable.
type Negotiator interface {
	Best(accept string, priorities []string) (string, bool)
}

type autoneg struct{}

// New returns a Negotiator that rates every candidate with the quality of
// its most specific matching Accept clause. The highest quality wins, then the
// more specific clause, then the earlier priority. Candidates rated q=0 are
// never chosen.
func New() Negotiator {
	return autoneg{}
}

func (autoneg) Best(accept string, priorities []string) (string, bool) {
	if strings.TrimSpace(accept) == "" || len(priorities) == 0 {
		return "", false
	}

	clauses := goautoneg.ParseAccept(accept)

	best, bestQ, bestSpec := "", 0.0, -1
	for _, candidate := range priorities {
		typ, sub := split(candidate)

		q, spec := rate(clauses, typ, sub)
		if spec < 0 || q <= 0 {
			continue
		}

		if q > bestQ || (q == bestQ && spec > bestSpec) {
			best, bestQ, bestSpec = candidate, q, spec
		}
	}

	return best, bestSpec >= 0
}

func split(mediaType string) (string, string) {
	base, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		base = strings.TrimSpace(strings.SplitN(mediaType, ";", 2)[0])
	}
	base = strings.ToLower(base)

	typ, sub, found := strings.Cut(base, "/")
	if !found {
		return typ, "*"
	}
	return typ, sub
}

// rate returns the quality of the most specific clause matching the media
// type and its specificity: 2 for an exact match, 1 for type/* and 0 for */*.
// The specificity is -1 if no clause matches.
func rate(clauses []goautoneg.Accept, typ, sub string) (float64, int) {
	q, spec := 0.0, -1
	for _, clause := range clauses {
		if !matches(clause, typ, sub) {
			continue
		}

		s := specificity(clause)
		if s > spec {
			q, spec = clause.Q, s
		}
	}
	return q, spec
}

func specificity(clause goautoneg.Accept) int {
	switch {
	case clause.Type == "*":
		return 0
	case clause.SubType == "*":
		return 1
	default:
		return 2
	}
}

func matches(clause goautoneg.Accept, typ, sub string) bool {
	ct := strings.ToLower(clause.Type)
	cs := strings.ToLower(clause.SubType)

	if ct == "*" {
		return true
	}
	if ct != typ {
		return false
	}
	return cs == "*" || cs == sub
}
