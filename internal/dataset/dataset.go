// Package dataset loads call exports from disk into an immutable set of
// call records and keeps the currently installed one.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"phone-dashboard-go/internal/holiday"
	"phone-dashboard-go/internal/logger"
	"phone-dashboard-go/internal/timenorm"
	"phone-dashboard-go/internal/types"
)

var ErrNoDataset = errors.New("no dataset loaded")

// Dataset is one load of the exports. Nothing in it changes after Load.
type Dataset struct {
	ID       string
	LoadedAt time.Time
	Files    []string
	Records  []types.CallRecord
	Weeks    []types.Week
	MinDate  time.Time
	MaxDate  time.Time
	Holidays holiday.Set
	Location *time.Location
}

type LoadOptions struct {
	Location *time.Location
	// Holidays is queried for every calendar year in the data. Nil means
	// the bundled table.
	Holidays holiday.Source
}

// Load reads paths, merges the main export with its queue files and
// derives the week list and holiday set. It returns an error rather than
// a partial dataset.
func Load(ctx context.Context, paths []string, opts LoadOptions) (*Dataset, error) {
	log := logger.New().WithField("component", "dataset.load")
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	mainPath, queuePaths, err := Classify(paths)
	if err != nil {
		return nil, err
	}

	var sets []QueueSet
	for _, p := range queuePaths {
		rows, err := ReadRows(p)
		if err != nil {
			return nil, fmt.Errorf("read queue file %s: %w", filepath.Base(p), err)
		}
		name := ExtractQueueName(p)
		sets = append(sets, QueueSet{Name: name, Rows: rows})
		log.WithField("file", filepath.Base(p)).WithField("queue", name).WithField("rows", len(rows)).Debug("queue file read")
	}

	mainRows, err := ReadRows(mainPath)
	if err != nil {
		return nil, fmt.Errorf("read main export %s: %w", filepath.Base(mainPath), err)
	}

	records := Merge(mainRows, sets, loc)
	minDate, maxDate, _ := DateExtent(records)

	ds := &Dataset{
		ID:       uuid.New().String(),
		LoadedAt: time.Now(),
		Files:    baseNames(paths),
		Records:  records,
		Weeks:    DetectWeeks(records),
		MinDate:  minDate,
		MaxDate:  maxDate,
		Location: loc,
	}
	ds.Holidays = holiday.Load(ctx, opts.Holidays, ds.Years())

	s := ds.Describe()
	log.WithFields(map[string]interface{}{
		"dataset_id":   ds.ID,
		"total_calls":  s.TotalCalls,
		"queued_calls": s.QueuedCalls,
		"queue_files":  len(sets),
		"weeks":        len(ds.Weeks),
	}).Info("dataset load complete")
	return ds, nil
}

// Years lists the distinct calendar years present, ascending.
func (d *Dataset) Years() []int {
	seen := map[int]bool{}
	var out []int
	for _, r := range d.Records {
		if !r.HasStart() {
			continue
		}
		if y := r.Start.Year(); !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}

// DateExtent returns the earliest and latest parsed start time.
func DateExtent(records []types.CallRecord) (min, max time.Time, ok bool) {
	for _, r := range records {
		if !r.HasStart() {
			continue
		}
		if !ok || r.Start.Before(min) {
			min = r.Start
		}
		if !ok || r.Start.After(max) {
			max = r.Start
		}
		ok = true
	}
	return min, max, ok
}

// DetectWeeks covers the full extent of records with Monday-based weeks.
// It must be given the unfiltered records so week indices stay stable.
func DetectWeeks(records []types.CallRecord) []types.Week {
	min, max, ok := DateExtent(records)
	if !ok {
		return nil
	}
	var weeks []types.Week
	for ws := timenorm.StartOfWeek(min); !ws.After(max); ws = ws.AddDate(0, 0, 7) {
		weeks = append(weeks, types.Week{
			Start: ws,
			End:   timenorm.EndOfDay(ws.AddDate(0, 0, 6)),
			Label: "Week of " + ws.Format("2 Jan"),
		})
	}
	return weeks
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

// Store holds the installed dataset. Readers never see a partial load.
type Store struct {
	mu      sync.RWMutex
	current *Dataset
}

func NewStore() *Store { return &Store{} }

func (s *Store) Current() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoDataset
	}
	return s.current, nil
}

// Swap installs ds and returns the dataset it replaced.
func (s *Store) Swap(ds *Dataset) *Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.current = ds
	return prev
}
