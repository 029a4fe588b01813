package main

import (
	"fmt"

	"github.com/decker502/bubblefx/pkg/graphics"
	"github.com/decker502/bubblefx/pkg/systems"
	"github.com/decker502/bubblefx/pkg/telemetry"
)

const (
	// headlessFrameMs 无窗口模式的固定帧步长（毫秒）
	headlessFrameMs = 1000.0 / 60.0
	// headlessSpawnEvery 每隔多少帧生成下一个效果
	headlessSpawnEvery = 30
)

// headlessResult 无窗口运行的结果
type headlessResult struct {
	Frames   int
	Spawned  int
	MaxDrawn int
	Active   telemetry.Summary
}

func (r headlessResult) String() string {
	return fmt.Sprintf("frames=%d spawned=%d max_drawn=%d active: %s", r.Frames, r.Spawned, r.MaxDrawn, r.Active)
}

// runHeadless steps the particle manager for the given number of frames
// without a window, spawning the entries in turn at the centre of a
// width x height viewport and rendering into a Recorder. Every frame is
// passed to stats (which may be nil).
func runHeadless(pm *systems.ParticleManager, entries []effectEntry, frames int, width, height float64, stats *telemetry.StatsRecorder) (headlessResult, error) {
	var res headlessResult
	if len(entries) == 0 {
		return res, fmt.Errorf("no effects to run")
	}

	rec := graphics.NewRecorder()
	viewport := &graphics.Viewport{Width: width, Height: height}
	active := make([]float64, 0, frames)

	for frame := 0; frame < frames; frame++ {
		if frame%headlessSpawnEvery == 0 {
			e := entries[(frame/headlessSpawnEvery)%len(entries)]
			res.Spawned += e.Spawn(pm, width/2, height/2)
		}

		pm.Update(headlessFrameMs)

		rec.Reset()
		drawn := pm.Render(rec, viewport)
		if rec.Depth() != 0 {
			return res, fmt.Errorf("frame %d: unbalanced save/restore (depth %d)", frame, rec.Depth())
		}
		if drawn > res.MaxDrawn {
			res.MaxDrawn = drawn
		}

		n := pm.ActiveCount()
		active = append(active, float64(n))
		if err := stats.Record(telemetry.NewFrameStats(frame+1, pm.Lifecycle().Now(), n, pm.QualityLevel(), pm.Statistics())); err != nil {
			return res, fmt.Errorf("frame %d: %w", frame, err)
		}
		res.Frames++
	}

	res.Active = telemetry.Summarize(active)
	return res, nil
}
