// Package analytics derives the dashboard summary from incident and
// category snapshots.
package analytics

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/safecity/incident-dashboard/internal/dashboard/apiclient"
)

// ErrNoData means there is nothing to summarize yet.
var ErrNoData = errors.New("analytics: no data")

const topLocations = 5

// Labels name the groups for missing values.
type Labels struct {
	Uncategorized   string
	UnknownReporter string
	NoLocation      string
}

// DefaultLabels are the Spanish labels.
var DefaultLabels = Labels{
	Uncategorized:   "Sin categoría",
	UnknownReporter: "Desconocido",
	NoLocation:      "Sin ubicación",
}

type DayCount struct {
	Date  string // YYYY-MM-DD, UTC
	Count int
}

type NamedCount struct {
	Name  string
	Value int
}

type Summary struct {
	Total int
	// AvgResolutionHours averages reported_at → resolved_at; 0 when no
	// incident is resolved.
	AvgResolutionHours float64
	PerDay             []DayCount
	ByCategory         []NamedCount
	TopReporter        string
	TopReporterCount   int
	TopLocations       []NamedCount
	Resolved           int
	Open               int
	// AvgAssignMinutes averages reported_at → assigned_at.
	AvgAssignMinutes float64
}

// Compute summarizes incidents with DefaultLabels.
func Compute(incidents []apiclient.Incident, categories []apiclient.Category) (*Summary, error) {
	return DefaultLabels.Compute(incidents, categories)
}

// Compute summarizes incidents. Either input being empty yields ErrNoData.
func (l Labels) Compute(incidents []apiclient.Incident, categories []apiclient.Category) (*Summary, error) {
	if len(incidents) == 0 || len(categories) == 0 {
		return nil, ErrNoData
	}

	s := &Summary{Total: len(incidents)}
	s.AvgResolutionHours = meanSince(incidents, func(i apiclient.Incident) *time.Time { return i.ResolvedAt }, time.Hour)
	s.AvgAssignMinutes = meanSince(incidents, func(i apiclient.Incident) *time.Time { return i.AssignedAt }, time.Minute)

	var days counter
	for _, inc := range incidents {
		if inc.ReportedAt.IsZero() {
			continue
		}
		days.add(inc.ReportedAt.UTC().Format(time.DateOnly))
	}
	for _, e := range days.entries {
		s.PerDay = append(s.PerDay, DayCount{Date: e.Name, Count: e.Value})
	}

	s.ByCategory = make([]NamedCount, len(categories))
	for i, cat := range categories {
		name := cat.Name
		if name == "" {
			name = l.Uncategorized
		}
		n := 0
		for _, inc := range incidents {
			if inc.Category != nil && inc.Category.ID == cat.ID {
				n++
			}
		}
		s.ByCategory[i] = NamedCount{Name: name, Value: n}
	}

	var reporters counter
	for _, inc := range incidents {
		name := l.UnknownReporter
		if inc.Reporter != nil && inc.Reporter.Name != "" {
			name = inc.Reporter.Name
		}
		reporters.add(name)
	}
	if top := reporters.ranked(); len(top) > 0 {
		s.TopReporter, s.TopReporterCount = top[0].Name, top[0].Value
	}

	var places counter
	for _, inc := range incidents {
		key := l.NoLocation
		if inc.Location != (apiclient.GeoPoint{}) {
			key = inc.Location.String()
		}
		places.add(key)
	}
	s.TopLocations = places.ranked()
	if len(s.TopLocations) > topLocations {
		s.TopLocations = s.TopLocations[:topLocations]
	}

	for _, inc := range incidents {
		if inc.Status == apiclient.StatusResolved {
			s.Resolved++
		}
	}
	s.Open = s.Total - s.Resolved
	return s, nil
}

// meanSince averages the time from reported_at to the instant picked by at,
// over incidents that have both, expressed in unit.
func meanSince(incidents []apiclient.Incident, at func(apiclient.Incident) *time.Time, unit time.Duration) float64 {
	var total time.Duration
	n := 0
	for _, inc := range incidents {
		end := at(inc)
		if end == nil || inc.ReportedAt.IsZero() {
			continue
		}
		total += end.Sub(inc.ReportedAt)
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n) / float64(unit)
}

// counter counts keys in first-seen order.
type counter struct {
	index   map[string]int
	entries []NamedCount
}

func (c *counter) add(key string) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	i, ok := c.index[key]
	if !ok {
		i = len(c.entries)
		c.index[key] = i
		c.entries = append(c.entries, NamedCount{Name: key})
	}
	c.entries[i].Value++
}

// ranked orders by descending count; ties keep first-seen order.
func (c *counter) ranked() []NamedCount {
	out := append([]NamedCount(nil), c.entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// Memo caches the last summary and recomputes only when either store
// version changes.
type Memo struct {
	Labels Labels

	mu           sync.Mutex
	valid        bool
	incVersion   uint64
	catVersion   uint64
	summary      *Summary
	err          error
	computations int
}

func NewMemo(labels Labels) *Memo {
	return &Memo{Labels: labels}
}

// Get returns the summary for the given snapshots. incidents and categories
// are only read when a version differs from the cached one.
func (m *Memo) Get(incVersion uint64, incidents []apiclient.Incident, catVersion uint64, categories []apiclient.Category) (*Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.incVersion == incVersion && m.catVersion == catVersion {
		return m.summary, m.err
	}
	m.summary, m.err = m.Labels.Compute(incidents, categories)
	m.incVersion, m.catVersion = incVersion, catVersion
	m.valid = true
	m.computations++
	return m.summary, m.err
}

// Computations reports how many times the summary was recomputed.
func (m *Memo) Computations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.computations
}
