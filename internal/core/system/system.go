package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain feed session queues
	PhasePreUpdate               // 1: dispatch last tick's events
	PhaseUpdate                  // 2: content mutations
	PhasePostUpdate              // 3: viewport reconciliation
	PhaseOutput                  // 4: telemetry
	PhasePersist                 // 5: journal trim
	PhaseCleanup                 // 6: destroy queued sprites
)

// System is the interface every loop system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
