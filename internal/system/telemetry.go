package system

import (
	"time"

	"github.com/l1jgo/lazytile/internal/core/event"
	coresys "github.com/l1jgo/lazytile/internal/core/system"
	"github.com/l1jgo/lazytile/internal/lazy"
	"github.com/l1jgo/lazytile/internal/scene"
	"go.uber.org/zap"
)

// Counters accumulates lifecycle events between reports.
type Counters struct {
	Materialized int
	Destroyed    int
	Passes       int
}

// TelemetrySystem counts lifecycle events and logs a summary every interval
// ticks. Phase 4 (Output).
type TelemetrySystem struct {
	manager   *lazy.Manager
	scene     *scene.Scene
	window    Counters
	total     Counters
	tickCount int
	interval  int
	log       *zap.Logger
}

func NewTelemetrySystem(bus *event.Bus, m *lazy.Manager, sc *scene.Scene, log *zap.Logger, intervalTicks int) *TelemetrySystem {
	s := &TelemetrySystem{manager: m, scene: sc, interval: intervalTicks, log: log}
	event.Subscribe(bus, func(event.InstanceMaterialized) { s.window.Materialized++ })
	event.Subscribe(bus, func(event.InstanceDestroyed) { s.window.Destroyed++ })
	event.Subscribe(bus, func(event.ViewportApplied) { s.window.Passes++ })
	return s
}

func (s *TelemetrySystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *TelemetrySystem) Update(_ time.Duration) {
	s.tickCount++
	if s.interval <= 0 || s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Report()
}

// Report logs the window counters and folds them into the totals.
func (s *TelemetrySystem) Report() {
	w := s.window
	s.total.Materialized += w.Materialized
	s.total.Destroyed += w.Destroyed
	s.total.Passes += w.Passes
	s.window = Counters{}
	if w == (Counters{}) {
		return
	}
	st := s.manager.Stats()
	s.log.Info("視窗統計",
		zap.Int("生成", w.Materialized),
		zap.Int("銷毀", w.Destroyed),
		zap.Int("視窗更新", w.Passes),
		zap.Int("座標", st.Entries),
		zap.Int("可見座標", st.Active),
		zap.Int("實例", st.Instances),
		zap.Int("精靈", s.scene.Len()),
		zap.Int("可見精靈", s.scene.VisibleCount()),
	)
}

// Totals returns the counters reported so far.
func (s *TelemetrySystem) Totals() Counters { return s.total }
