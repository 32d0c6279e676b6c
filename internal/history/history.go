package history

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/MikeSquared-Agency/checkin/internal/slot"
	"github.com/MikeSquared-Agency/checkin/internal/vapi"
)

// CallLister lists recent calls from the voice-call platform.
type CallLister interface {
	ListCalls(ctx context.Context, limit int) ([]vapi.Call, error)
}

// Record is a prior call reduced to the fields the pipeline needs.
type Record struct {
	CallID     string
	CreatedAt  time.Time
	Slot       slot.Slot
	Transcript string
}

// Result is the outcome of a history fetch. Degraded is set when the platform
// could not be queried; Records is then empty and Err holds the cause.
type Result struct {
	Records  []Record
	Degraded bool
	Err      error
}

// DaySlotMap holds at most one transcript per slot for the current day.
type DaySlotMap map[slot.Slot]string

// Transcript returns the transcript recorded for s, if any.
func (m DaySlotMap) Transcript(s slot.Slot) (string, bool) {
	t, ok := m[s]
	return t, ok && t != ""
}

type Fetcher struct {
	lister CallLister
	loc    *time.Location
	limit  int
	logger *slog.Logger
}

func NewFetcher(lister CallLister, loc *time.Location, limit int, logger *slog.Logger) *Fetcher {
	if loc == nil {
		loc = time.UTC
	}
	return &Fetcher{lister: lister, loc: loc, limit: limit, logger: logger}
}

// SameDay returns the platform's recent calls that were created on the same
// civil date as now in the fetcher's timezone, in the order the platform
// listed them. Calls without a transcript or a known slot tag are skipped.
func (f *Fetcher) SameDay(ctx context.Context, now time.Time) Result {
	calls, err := f.lister.ListCalls(ctx, f.limit)
	if err != nil {
		f.logger.Warn("call history unavailable, continuing without it", "error", err)
		return Result{Degraded: true, Err: fmt.Errorf("list calls: %w", err)}
	}

	var records []Record
	for _, c := range calls {
		transcript := c.TranscriptText()
		if transcript == "" || c.CreatedAt.IsZero() {
			continue
		}
		s, err := slot.Parse(c.SlotTag())
		if err != nil {
			continue
		}
		if !SameCivilDay(c.CreatedAt, now, f.loc) {
			continue
		}
		records = append(records, Record{
			CallID:     c.ID,
			CreatedAt:  c.CreatedAt,
			Slot:       s,
			Transcript: transcript,
		})
	}

	f.logger.Debug("call history fetched", "listed", len(calls), "same_day", len(records))
	return Result{Records: records}
}

// SameCivilDay compares the calendar date of a and b as observed in loc.
func SameCivilDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Aggregate builds the day's slot map. Records are taken oldest first and the
// first transcript seen for a slot wins; later calls for the same slot, such
// as a retried trigger, are dropped.
//
// Records with equal timestamps keep the reverse of their listed order, which
// matches a newest-first platform listing.
func Aggregate(records []Record) DaySlotMap {
	ordered := make([]Record, len(records))
	for i, r := range records {
		ordered[len(records)-1-i] = r
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	m := make(DaySlotMap, len(slot.All()))
	for _, r := range ordered {
		if _, taken := m[r.Slot]; taken {
			continue
		}
		m[r.Slot] = r.Transcript
	}
	return m
}
