// Package merge reconciles invoice documents read from several files into
// one list with a single document per identifier.
//
// When two documents share an id, the one with the strictly later effective
// timestamp (updatedDt if present, else censoredDt) wins; on a tie, or when
// either timestamp cannot be parsed, the document seen first is kept.
// Filters apply to each document before it takes part in the comparison.
package merge

import (
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/regkeeper/internal/models"
)

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"02.01.2006 15:04:05",
	"02.01.2006",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp parses s as a calendar date or date-time. Values without a
// zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Newer reports whether candidate should replace incumbent.
func Newer(candidate, incumbent *models.InvoiceDocument) bool {
	tc, ok := ParseTimestamp(candidate.EffectiveTimestamp())
	if !ok {
		return false
	}
	ti, ok := ParseTimestamp(incumbent.EffectiveTimestamp())
	if !ok {
		return false
	}
	return tc.After(ti)
}

// Matches reports whether doc passes filter. Company is a case-insensitive
// substring match on the owning company.
func Matches(doc *models.InvoiceDocument, filter models.ScanFilter) bool {
	if filter.ID != nil && doc.ID != *filter.ID {
		return false
	}
	if c := strings.TrimSpace(filter.Company); c != "" {
		if !strings.Contains(strings.ToLower(doc.ObjCompany), strings.ToLower(c)) {
			return false
		}
	}
	return true
}

// Merger accumulates documents keyed by id.
type Merger struct {
	filter models.ScanFilter
	byID   map[int64]models.InvoiceDocument
}

func NewMerger(filter models.ScanFilter) *Merger {
	return &Merger{filter: filter, byID: make(map[int64]models.InvoiceDocument)}
}

// Add offers doc to the merger and reports whether it is now the kept
// version for its id.
func (m *Merger) Add(doc models.InvoiceDocument) bool {
	if !Matches(&doc, m.filter) {
		return false
	}
	cur, ok := m.byID[doc.ID]
	if ok && !Newer(&doc, &cur) {
		return false
	}
	m.byID[doc.ID] = doc
	return true
}

// Len returns the number of distinct ids kept so far.
func (m *Merger) Len() int { return len(m.byID) }

// Result returns the kept documents sorted by id ascending.
func (m *Merger) Result() []models.InvoiceDocument {
	out := make([]models.InvoiceDocument, 0, len(m.byID))
	for _, d := range m.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Documents merges the given batches, in order, under filter.
func Documents(filter models.ScanFilter, batches ...[]models.InvoiceDocument) []models.InvoiceDocument {
	m := NewMerger(filter)
	for _, b := range batches {
		for _, d := range b {
			m.Add(d)
		}
	}
	return m.Result()
}

// CountRegisterItems sums the register lists of docs.
func CountRegisterItems(docs []models.InvoiceDocument) int {
	n := 0
	for _, d := range docs {
		n += len(d.MainRegisters)
	}
	return n
}
