package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/logicsim/internal/logic"
)

// Nop is a Simulator that does nothing but log its calls.
//
// It stands in for a Simulation on networks that have not been simulated
// yet, so user edits have somewhere to go.
type Nop struct {
	logger *slog.Logger
}

// NewNop creates a Nop logging to l, or to slog.Default() if l is nil.
func NewNop(l *slog.Logger) *Nop {
	if l == nil {
		l = slog.Default()
	}
	return &Nop{logger: l}
}

// NotifyChange implements Notifier.
func (n *Nop) NotifyChange(id logic.ConnectorID, state logic.State) {
	n.logger.Debug("Nop.NotifyChange called", "connector", id, "state", state)
}

// Run implements Simulator.
func (n *Nop) Run(ctx context.Context) error {
	n.logger.Debug("Nop.Run called")
	return nil
}
