package reaper

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/whisperspace/server/internal/store"
)

// Storage is the slice of persistence the reaper needs.
type Storage interface {
	FindRoomsEmptySince(ctx context.Context, cutoff time.Time) ([]*store.Room, error)
	DeleteMessagesByRoom(ctx context.Context, code string) (int64, error)
	DeleteRoom(ctx context.Context, code string) error
}

// Failure records one room the reaper could not delete.
type Failure struct {
	Code string `json:"code"`
	Err  string `json:"error"`
}

// Report summarizes one reap cycle.
type Report struct {
	Deleted  int       `json:"deleted"`
	Failures []Failure `json:"failures,omitempty"`
}

// Reaper periodically deletes rooms that have been empty longer than the TTL,
// together with their messages. It is self-healing: a missed cycle leaves the
// backlog for the next one, so no state is lost across restarts.
type Reaper struct {
	store    Storage
	interval time.Duration
	ttl      time.Duration
	log      *zerolog.Logger
	cron     *cron.Cron
	now      func() time.Time
}

// New constructs a reaper scanning every interval for rooms empty longer than ttl.
func New(st Storage, interval, ttl time.Duration, logger *zerolog.Logger) *Reaper {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Reaper{
		store:    st,
		interval: interval,
		ttl:      ttl,
		log:      logger,
		now:      time.Now,
	}
}

// Start schedules the periodic scan. Overlapping runs are skipped rather
// than stacked.
func (r *Reaper) Start(ctx context.Context) {
	r.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	r.cron.Schedule(cron.Every(r.interval), cron.FuncJob(func() {
		report := r.RunOnce(ctx)
		if report.Deleted > 0 || len(report.Failures) > 0 {
			r.log.Info().
				Int("deleted", report.Deleted).
				Int("failed", len(report.Failures)).
				Msg("room reap cycle")
		}
	}))
	r.cron.Start()
	r.log.Info().Dur("interval", r.interval).Dur("ttl", r.ttl).Msg("room reaper started")
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (r *Reaper) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// RunOnce scans and deletes qualifying rooms. Batch semantics are best
// effort: one room's failure is recorded and the rest proceed. Messages are
// deleted before the room row so messages never outlive their room.
func (r *Reaper) RunOnce(ctx context.Context) Report {
	var report Report

	cutoff := r.now().UTC().Add(-r.ttl)
	rooms, err := r.store.FindRoomsEmptySince(ctx, cutoff)
	if err != nil {
		r.log.Error().Err(err).Msg("scan empty rooms")
		report.Failures = append(report.Failures, Failure{Code: "", Err: err.Error()})
		return report
	}

	for _, room := range rooms {
		removed, err := r.store.DeleteMessagesByRoom(ctx, room.Code)
		if err != nil {
			r.log.Error().Err(err).Str("room", room.Code).Msg("delete room messages")
			report.Failures = append(report.Failures, Failure{Code: room.Code, Err: err.Error()})
			continue
		}
		if err := r.store.DeleteRoom(ctx, room.Code); err != nil {
			r.log.Error().Err(err).Str("room", room.Code).Msg("delete room")
			report.Failures = append(report.Failures, Failure{Code: room.Code, Err: err.Error()})
			continue
		}
		report.Deleted++
		r.log.Debug().Str("room", room.Code).Int64("messages", removed).Msg("room reaped")
	}
	return report
}
