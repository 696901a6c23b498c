// Package analytics aggregates tracked visitor sessions into the numbers
// the admin dashboard charts: visits per day, chat traffic, top pages and
// session durations. A daily cron rollup freezes the previous day's summary
// into the kv store.
package analytics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/dkoroban/folio/internal/bus"
	"github.com/dkoroban/folio/internal/kv"
	"github.com/dkoroban/folio/internal/track"
)

const rollupPrefix = "rollup:"

// DayCount is visits on a single day.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// PageCount is visits to a single path.
type PageCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// ChatCounts splits chat messages by origin.
type ChatCounts struct {
	Visitor int `json:"visitor"`
	Bot     int `json:"bot"`
}

// Summary is an aggregate over a time range.
type Summary struct {
	From              time.Time   `json:"from"`
	To                time.Time   `json:"to"`
	Sessions          int         `json:"sessions"`
	Visits            int         `json:"visits"`
	Chat              ChatCounts  `json:"chat"`
	VisitsPerDay      []DayCount  `json:"visits_per_day"`
	TopPages          []PageCount `json:"top_pages"`
	AvgSessionSeconds float64     `json:"avg_session_seconds"`
}

// Service computes summaries on demand and schedules the daily rollup.
type Service struct {
	tracker   *track.Tracker
	store     kv.Store
	scheduler *robfigcron.Cron
	now       func() time.Time
	mu        sync.Mutex
	started   bool
}

func NewService(tracker *track.Tracker, store kv.Store) *Service {
	return &Service{
		tracker:   tracker,
		store:     store,
		scheduler: robfigcron.New(),
		now:       time.Now,
	}
}

// Summarize aggregates all sessions with activity in [from, to).
func (s *Service) Summarize(from, to time.Time) (*Summary, error) {
	sessions, err := s.tracker.Sessions(from)
	if err != nil {
		return nil, fmt.Errorf("analytics: failed to load sessions: %w", err)
	}

	sum := &Summary{From: from, To: to}
	perDay := map[string]int{}
	perPage := map[string]int{}
	var totalDuration time.Duration

	inRange := func(at time.Time) bool {
		if at.Before(from) {
			return false
		}
		return to.IsZero() || at.Before(to)
	}

	for _, sess := range sessions {
		counted := false
		for _, rec := range sess.Records {
			if !inRange(rec.At) {
				continue
			}
			counted = true
			switch rec.Kind {
			case bus.KindPageVisit:
				sum.Visits++
				perDay[rec.At.UTC().Format("2006-01-02")]++
				perPage[rec.Path]++
			case bus.KindChatMessage:
				if rec.FromVisitor {
					sum.Chat.Visitor++
				} else {
					sum.Chat.Bot++
				}
			}
		}
		if counted {
			sum.Sessions++
			totalDuration += sess.LastSeen.Sub(sess.StartedAt)
		}
	}

	if sum.Sessions > 0 {
		sum.AvgSessionSeconds = totalDuration.Seconds() / float64(sum.Sessions)
	}
	sum.VisitsPerDay = sortedDayCounts(perDay)
	sum.TopPages = sortedPageCounts(perPage)
	return sum, nil
}

func sortedDayCounts(m map[string]int) []DayCount {
	out := make([]DayCount, 0, len(m))
	for d, n := range m {
		out = append(out, DayCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func sortedPageCounts(m map[string]int) []PageCount {
	out := make([]PageCount, 0, len(m))
	for p, n := range m {
		out = append(out, PageCount{Path: p, Count: n})
	}
	// most visited first, path as tiebreaker for stable output
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Rollup freezes the summary for the calendar day containing t.
func (s *Service) Rollup(t time.Time) error {
	day := t.UTC().Truncate(24 * time.Hour)
	sum, err := s.Summarize(day, day.Add(24*time.Hour))
	if err != nil {
		return err
	}
	data, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("analytics: failed to encode rollup: %w", err)
	}
	return s.store.Set(rollupPrefix+day.Format("2006-01-02"), data)
}

// StoredRollup returns the frozen summary for a day, if any.
func (s *Service) StoredRollup(day string) (*Summary, error) {
	data, err := s.store.Get(rollupPrefix + day)
	if err != nil {
		return nil, err
	}
	var sum Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return nil, fmt.Errorf("analytics: failed to decode rollup %s: %w", day, err)
	}
	return &sum, nil
}

// Start schedules the nightly rollup of the previous day. Idempotent.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	// a few minutes past midnight so late events land in the right day
	_, err := s.scheduler.AddFunc("5 0 * * *", func() {
		yesterday := s.now().Add(-24 * time.Hour)
		if err := s.Rollup(yesterday); err != nil {
			slog.Error("analytics: rollup failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("analytics: failed to schedule rollup: %w", err)
	}

	s.scheduler.Start()
	s.started = true
	return nil
}

// Stop halts the scheduler.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.scheduler.Stop()
	s.started = false
}
