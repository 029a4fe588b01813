// Package telemetry exports per-frame particle statistics for offline
// analysis: CSV rows through gocsv and aggregate summaries through gonum.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/decker502/bubblefx/pkg/systems"
)

// FrameStats 单帧统计快照，对应 CSV 的一行
type FrameStats struct {
	Frame       int     `csv:"frame"`
	SimTimeMs   float64 `csv:"sim_time_ms"`
	Active      int     `csv:"active"`
	QualityName string  `csv:"quality_level"`

	Created            int     `csv:"created"`
	Destroyed          int     `csv:"destroyed"`
	PoolHits           int     `csv:"pool_hits"`
	PoolMisses         int     `csv:"pool_misses"`
	MaxActiveParticles int     `csv:"max_active"`
	PoolSize           int     `csv:"pool_size"`
	PoolEfficiency     float64 `csv:"pool_efficiency"`
	MemoryUtilization  float64 `csv:"memory_utilization"`
}

// NewFrameStats combines the frame counters with a lifecycle statistics
// snapshot.
func NewFrameStats(frame int, simTimeMs float64, active int, level string, s systems.LifecycleStatistics) FrameStats {
	return FrameStats{
		Frame:              frame,
		SimTimeMs:          simTimeMs,
		Active:             active,
		QualityName:        level,
		Created:            s.Created,
		Destroyed:          s.Destroyed,
		PoolHits:           s.PoolHits,
		PoolMisses:         s.PoolMisses,
		MaxActiveParticles: s.MaxActiveParticles,
		PoolSize:           s.CurrentPoolSize,
		PoolEfficiency:     s.PoolEfficiency,
		MemoryUtilization:  s.MemoryUtilization,
	}
}

// StatsRecorder streams FrameStats rows as CSV and keeps the active counts
// for Summarize.
//
// A nil *StatsRecorder is valid and records nothing, so callers can leave
// export disabled without nil checks.
type StatsRecorder struct {
	out           io.Writer
	closer        io.Closer
	headerWritten bool

	active []float64
}

// NewStatsRecorder writes rows to w.
func NewStatsRecorder(w io.Writer) *StatsRecorder {
	return &StatsRecorder{out: w}
}

// CreateStatsFile creates (or truncates) path and returns a recorder writing
// to it. Close must be called to release the file. An empty path disables
// export and returns a nil recorder.
func CreateStatsFile(path string) (*StatsRecorder, error) {
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating stats directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	return &StatsRecorder{out: f, closer: f}, nil
}

// Record appends one row. The header is written with the first row.
func (r *StatsRecorder) Record(stats FrameStats) error {
	if r == nil {
		return nil
	}

	records := []FrameStats{stats}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.out); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		r.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, r.out); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
	}

	r.active = append(r.active, float64(stats.Active))
	return nil
}

// Rows returns the number of recorded rows.
func (r *StatsRecorder) Rows() int {
	if r == nil {
		return 0
	}
	return len(r.active)
}

// Summary aggregates the recorded active counts.
func (r *StatsRecorder) Summary() Summary {
	if r == nil {
		return Summary{}
	}
	return Summarize(r.active)
}

// Close closes the underlying file, if the recorder owns one.
func (r *StatsRecorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ReadStats parses rows previously written by a StatsRecorder.
func ReadStats(in io.Reader) ([]FrameStats, error) {
	var rows []FrameStats
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return rows, nil
}
