// Package contextpack ranks lore records against a query and assembles the
// anchors and facts handed to the narration collaborator.
package contextpack

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/orsinium-labs/stopwords"

	apperrors "github.com/louisbranch/questline/internal/platform/errors"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

// Defaults for Builder.
const (
	DefaultMinAnchors = 2
	DefaultMaxRecords = 5
)

// ErrInsufficientAnchors is matched with errors.Is when too few records match.
var ErrInsufficientAnchors = apperrors.New(apperrors.CodeInsufficientAnchors, "insufficient lore anchors")

// Record is one lore entry.
type Record struct {
	ID   string   `json:"id"`
	Text string   `json:"text"`
	Tags []string `json:"tags,omitempty"`
}

// Pack is the context handed to narration.
type Pack struct {
	Query   string   `json:"query"`
	Anchors []string `json:"anchors"`
	Facts   []string `json:"facts"`
	Records []Record `json:"selectedRecords"`
}

// Builder ranks lore by term overlap with the query.
type Builder struct {
	MinAnchors int
	MaxRecords int
	isStopword func(string) bool
}

// NewBuilder returns a builder using English stopwords. Non-positive limits
// fall back to the defaults.
func NewBuilder(minAnchors, maxRecords int) *Builder {
	if minAnchors <= 0 {
		minAnchors = DefaultMinAnchors
	}
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	if maxRecords < minAnchors {
		maxRecords = minAnchors
	}
	return &Builder{MinAnchors: minAnchors, MaxRecords: maxRecords, isStopword: stopwords.MustGet("en").Contains}
}

type ranked struct {
	record Record
	score  int
	index  int
}

// Build selects up to MaxRecords records sharing terms with query, best
// first. It fails with ErrInsufficientAnchors when fewer than MinAnchors
// records match.
func (b *Builder) Build(query string, pool []Record) (Pack, error) {
	terms := b.Terms(query)
	candidates := make([]ranked, 0, len(pool))
	for i, rec := range pool {
		if strings.TrimSpace(rec.ID) == "" {
			continue
		}
		if score := overlap(terms, b.recordTerms(rec)); score > 0 {
			candidates = append(candidates, ranked{record: rec, score: score, index: i})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > b.MaxRecords {
		candidates = candidates[:b.MaxRecords]
	}

	if len(candidates) < b.MinAnchors {
		return Pack{}, apperrors.WithMetadata(
			apperrors.CodeInsufficientAnchors,
			fmt.Sprintf("found %d lore anchors for %q, need at least %d", len(candidates), query, b.MinAnchors),
			map[string]string{"query": query},
		)
	}

	pack := Pack{
		Query:   query,
		Anchors: make([]string, 0, len(candidates)),
		Facts:   make([]string, 0, len(candidates)),
		Records: make([]Record, 0, len(candidates)),
	}
	for _, c := range candidates {
		pack.Anchors = append(pack.Anchors, c.record.ID)
		pack.Facts = append(pack.Facts, strings.TrimSpace(c.record.Text))
		pack.Records = append(pack.Records, c.record)
	}
	return pack, nil
}

// Terms tokenizes text into distinct normalized words, dropping stopwords.
func (b *Builder) Terms(text string) map[string]struct{} {
	words := strings.FieldsFunc(entity.NormalizeText(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-'
	})
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.Trim(w, "-")
		if w == "" || b.isStopword(w) {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func (b *Builder) recordTerms(rec Record) map[string]struct{} {
	return b.Terms(rec.ID + " " + rec.Text + " " + strings.Join(rec.Tags, " "))
}

func overlap(query, record map[string]struct{}) int {
	n := 0
	for term := range query {
		if _, ok := record[term]; ok {
			n++
		}
	}
	return n
}
