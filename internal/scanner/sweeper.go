package scanner

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/darrencarlin/reddit-scanner/internal/state"
)

var metricSweptRecords = promauto.NewCounter(prometheus.CounterOpts{
	Name: "reddit_swept_records_total",
	Help: "The total number of records deleted by retention sweeps",
})

// Sweeper deletes records whose storage time has fallen outside the
// retention window.
type Sweeper struct {
	records *state.Records
	maxAge  time.Duration
	now     func() time.Time
}

func NewSweeper(records *state.Records, maxAgeDays int) *Sweeper {
	if maxAgeDays <= 0 {
		maxAgeDays = 30
	}
	return &Sweeper{
		records: records,
		maxAge:  time.Duration(maxAgeDays) * 24 * time.Hour,
		now:     time.Now,
	}
}

// Sweep scans the full record set and deletes everything stored before the
// cutoff. Per-record delete failures are logged and skipped. Returns the
// number of records deleted.
func (s *Sweeper) Sweep(ctx context.Context) int {
	cutoff := s.now().UnixMilli() - s.maxAge.Milliseconds()

	deleted := 0
	for _, rec := range s.records.LoadAll(ctx) {
		if rec.StoredAt >= cutoff {
			continue
		}
		if err := s.records.Remove(ctx, state.Key(rec.ID)); err != nil {
			slog.Error("Failed to delete expired record", "id", rec.ID, "error", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		slog.Info("Swept expired records", "count", deleted)
	}
	metricSweptRecords.Add(float64(deleted))

	return deleted
}
