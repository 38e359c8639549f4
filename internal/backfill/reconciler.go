package backfill

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"PriceHistorian/internal/model"
	"PriceHistorian/internal/recorder"
	"PriceHistorian/internal/source"
	"PriceHistorian/internal/store"

	"github.com/google/uuid"
)

// Reconciler fills the gap between the last persisted day and yesterday
// (UTC), one day at a time, then persists the extended series.
type Reconciler struct {
	Store    *store.Store
	Source   source.Source
	Recorder recorder.Recorder
	Baseline time.Time        // fallback last-known day for an empty record
	Now      func() time.Time // injectable clock, defaults to time.Now
}

// NewReconciler creates a Reconciler with the given collaborators.
func NewReconciler(st *store.Store, src source.Source, rec recorder.Recorder, baseline time.Time) *Reconciler {
	return &Reconciler{
		Store:    st,
		Source:   src,
		Recorder: rec,
		Baseline: model.Midnight(baseline),
		Now:      time.Now,
	}
}

// Result reports what one run did.
type Result struct {
	RunID     string
	LastKnown time.Time // baseline at the start of the run
	Target    time.Time // yesterday, UTC
	Added     []model.PricePoint
	Skipped   []time.Time // days with no data, holes left in the series
	Aborted   bool        // transport failure stopped the gap walk
	AbortErr  error
}

// Failed reports whether the run should surface a non-zero status.
func (r *Result) Failed() bool { return r.Aborted }

// Run executes one reconciliation pass. Fatal conditions (store load or
// write failures) return an error; a transport abort mid-gap does not — it
// is reported via Result.Aborted after the snapshot is written, so the
// artifacts stay consistent with whatever was accepted.
func (r *Reconciler) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	started := r.Now()

	series, err := r.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}

	last, ok := series.LastDay()
	if !ok {
		last = r.Baseline
		log.Printf("[WARN] history record is empty, starting from baseline %s", last.Format(model.DateFormat))
	}
	res.LastKnown = last
	res.Target = model.Midnight(r.Now()).AddDate(0, 0, -1)

	log.Printf("[INFO] run %s: last known %s, target %s", res.RunID,
		res.LastKnown.Format(model.DateFormat), res.Target.Format(model.DateFormat))

	r.walkGap(ctx, res)

	if len(res.Added) > 0 {
		series = series.Merge(res.Added)
		log.Printf("[INFO] adding %d new point(s) to the record", len(res.Added))
		if err := r.Store.Rewrite(series); err != nil {
			return nil, fmt.Errorf("rewrite record: %w", err)
		}
	} else {
		log.Println("[INFO] no new data, record left untouched")
	}

	// The snapshot always reflects the latest in-memory state, even after
	// a transport abort left the gap partially filled.
	if err := r.Store.WriteSnapshot(series); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}

	r.recordRun(res, started)
	return res, nil
}

// walkGap fetches each missing day in [LastKnown+1, Target] in ascending
// order, accumulating successes into res.Added. Days the provider has no
// data for are skipped; a transport failure aborts the walk.
func (r *Reconciler) walkGap(ctx context.Context, res *Result) {
	for day := res.LastKnown.AddDate(0, 0, 1); !day.After(res.Target); day = day.AddDate(0, 0, 1) {
		formatted := day.Format(model.DateFormat)
		log.Printf("[INFO] fetching price for %s", formatted)

		point, err := r.Source.FetchOpeningPrice(ctx, day)
		if err == nil {
			res.Added = append(res.Added, point)
			r.recordFetch(&recorder.FetchRecord{
				RunID: res.RunID, Day: formatted, Outcome: "ok", Price: point.PriceText(),
			})
			continue
		}

		var transport *source.TransportError
		if errors.As(err, &transport) {
			log.Printf("[ERROR] stopping fetch loop, transport failure at %s: %v", formatted, err)
			res.Aborted = true
			res.AbortErr = err
			r.recordFetch(&recorder.FetchRecord{
				RunID: res.RunID, Day: formatted, Outcome: "transport", Detail: err.Error(),
			})
			return
		}

		// DataNotFound and MalformedResponse are per-day conditions; the
		// series may legitimately have holes.
		log.Printf("[WARN] could not get data for %s: %v", formatted, err)
		res.Skipped = append(res.Skipped, day)
		r.recordFetch(&recorder.FetchRecord{
			RunID: res.RunID, Day: formatted, Outcome: "skipped", Detail: err.Error(),
		})
	}
}

func (r *Reconciler) recordRun(res *Result, started time.Time) {
	note := ""
	if res.AbortErr != nil {
		note = res.AbortErr.Error()
	}
	if err := r.Recorder.RecordRun(&recorder.RunRecord{
		RunID:      res.RunID,
		StartedAt:  started,
		FinishedAt: r.Now(),
		LastKnown:  res.LastKnown.Format(model.DateFormat),
		Target:     res.Target.Format(model.DateFormat),
		Added:      len(res.Added),
		Skipped:    len(res.Skipped),
		Aborted:    res.Aborted,
		Note:       note,
	}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
}

func (r *Reconciler) recordFetch(rec *recorder.FetchRecord) {
	if err := r.Recorder.RecordFetch(rec); err != nil {
		log.Printf("[ERROR] record fetch: %v", err)
	}
}
