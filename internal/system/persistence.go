package system

import (
	"context"
	"time"

	coresys "github.com/l1jgo/lazytile/internal/core/system"
	"github.com/l1jgo/lazytile/internal/persist"
	"go.uber.org/zap"
)

// JournalWriter is the slice of persist.JournalRepo the system needs.
type JournalWriter interface {
	Append(ctx context.Context, entries []persist.JournalEntry) error
	Trim(ctx context.Context, keep int) (int64, error)
}

// PersistenceSystem buffers content mutations recorded by the feed handlers
// and appends them to the journal once per tick. Every trimInterval ticks it
// trims the journal down to keep rows. Phase 5 (Persist).
type PersistenceSystem struct {
	journal      JournalWriter
	pending      []persist.JournalEntry
	keep         int
	tickCount    int
	trimInterval int
	log          *zap.Logger
}

func NewPersistenceSystem(journal JournalWriter, keep, trimIntervalTicks int, log *zap.Logger) *PersistenceSystem {
	return &PersistenceSystem{
		journal:      journal,
		pending:      make([]persist.JournalEntry, 0, 64),
		keep:         keep,
		trimInterval: trimIntervalTicks,
		log:          log,
	}
}

// Record queues e for the next flush. Loop goroutine only.
func (s *PersistenceSystem) Record(e persist.JournalEntry) {
	s.pending = append(s.pending, e)
}

// Pending is the number of queued entries.
func (s *PersistenceSystem) Pending() int { return len(s.pending) }

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.Flush()
	s.tickCount++
	if s.trimInterval <= 0 || s.tickCount < s.trimInterval {
		return
	}
	s.tickCount = 0
	s.trim()
}

// Flush writes every queued entry. On failure the entries stay queued and are
// retried next tick. Called for graceful shutdown as well.
func (s *PersistenceSystem) Flush() {
	if len(s.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.journal.Append(ctx, s.pending); err != nil {
		s.log.Error("寫入內容日誌失敗", zap.Int("筆數", len(s.pending)), zap.Error(err))
		return
	}
	s.pending = s.pending[:0]
}

func (s *PersistenceSystem) trim() {
	if s.keep <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	n, err := s.journal.Trim(ctx, s.keep)
	if err != nil {
		s.log.Error("清理內容日誌失敗", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("內容日誌已清理", zap.Int64("筆數", n))
	}
}
