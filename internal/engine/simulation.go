package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/logicsim/internal/logic"
)

// DefaultMaxWaves is the default maximum number of waves per Run.
const DefaultMaxWaves = 10000

// ResetPolicy controls what history a Simulation forgets when a Run starts.
type ResetPolicy int

const (
	// RetainHistory keeps the predecessor graph, tracked loops and resolved
	// connectors across runs. Connectors resolved once stay frozen.
	RetainHistory ResetPolicy = iota
	// ResetResolved clears tracked and resolved connectors at the start of
	// every Run but keeps the learned predecessor graph.
	ResetResolved
	// ResetAll clears all history at the start of every Run.
	ResetAll
)

var resetPolicyNames = map[ResetPolicy]string{
	RetainHistory: "retain",
	ResetResolved: "reset-resolved",
	ResetAll:      "reset-all",
}

// String returns the flag spelling of the policy.
func (p ResetPolicy) String() string {
	if name, ok := resetPolicyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("ResetPolicy(%d)", int(p))
}

// ParseResetPolicy parses the flag spelling of a policy. Empty means
// RetainHistory.
func ParseResetPolicy(s string) (ResetPolicy, error) {
	if s == "" {
		return RetainHistory, nil
	}
	for p, name := range resetPolicyNames {
		if name == s {
			return p, nil
		}
	}
	return RetainHistory, fmt.Errorf("invalid reset policy %q: must be one of retain, reset-resolved, reset-all", s)
}

// Simulator is implemented by Simulation and Nop.
type Simulator interface {
	Notifier
	Run(ctx context.Context) error
}

// Simulation propagates connector state changes wave by wave.
//
// Thread-safety model:
//   - NotifyChange(), Run(), Step(): one goroutine at a time
//   - Connectors may call the Notifier they are handed while rendering;
//     this is the only supported re-entry
//
// INVARIANTS:
//   - A change reported while wave N is processed lands in wave N+1
//   - Wave numbers strictly increase and are never reused
//   - A resolved connector stays resolved for the rest of the Run that
//     resolved it
type Simulation struct {
	registry Registry
	waves    *Clock // number of the current wave
	seq      *Clock // event stamps
	schedule *waveSchedule
	graph    *PredecessorGraph
	detector *OscillationDetector
	quota    *WaveQuota
	policy   ResetPolicy
	observer []Observer
	logger   *slog.Logger
	running  bool

	// stepFresh makes the next Step start a new quota count. Set after a
	// Run and whenever a Step finds nothing to do.
	stepFresh bool
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithMaxWaves sets the maximum number of waves one Run may process.
//
// Default: 10000 waves (DefaultMaxWaves).
// Use WithMaxWaves(0) to disable the limit.
func WithMaxWaves(maxWaves int) Option {
	return func(s *Simulation) {
		s.quota = NewWaveQuota(maxWaves)
	}
}

// WithResetPolicy sets what history is cleared when a Run starts.
// Default: RetainHistory.
func WithResetPolicy(p ResetPolicy) Option {
	return func(s *Simulation) {
		s.policy = p
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) {
		s.logger = l
	}
}

// WithObserver adds an observer. May be given more than once; observers are
// called in the order they were added.
func WithObserver(o Observer) Option {
	return func(s *Simulation) {
		s.observer = append(s.observer, o)
	}
}

// New creates a Simulation rendering through the given registry.
func New(registry Registry, opts ...Option) *Simulation {
	s := &Simulation{
		registry: registry,
		waves:    NewClock(),
		seq:      NewClock(),
		schedule: newWaveSchedule(),
		graph:    NewPredecessorGraph(),
		detector: NewOscillationDetector(),
		quota:    NewWaveQuota(DefaultMaxWaves),
		policy:   RetainHistory,
		logger:   slog.Default(),

		stepFresh: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NotifyChange schedules a state change reported from outside the
// simulation. The change lands in the next wave and carries no cause.
//
// Element logic reacting to a rendered state must use the Notifier passed
// to Connector.SetState instead, so the change is attributed to its cause.
func (s *Simulation) NotifyChange(id logic.ConnectorID, state logic.State) {
	s.enqueue(StateChange{Connector: id, State: state})
}

func (s *Simulation) enqueue(c StateChange) {
	s.schedule.Add(s.waves.Current()+1, c)
}

// Run processes waves until a wave number has nothing scheduled.
//
// Returns nil once the network is quiescent. Returns ctx.Err() if the
// context is cancelled between waves (pending waves are kept), a
// WaveLimitError if the wave quota is exceeded (pending waves are dropped),
// or ErrReentrantRun if called from inside a connector callback.
func (s *Simulation) Run(ctx context.Context) error {
	if s.running {
		return ErrReentrantRun
	}
	s.running = true
	defer func() {
		s.running = false
		s.stepFresh = true
	}()

	s.applyResetPolicy()
	s.quota.Reset()
	startWave := s.waves.Current()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		processed, err := s.advance()
		if err != nil {
			return err
		}
		if !processed {
			break
		}
	}

	if n := s.quota.Current(); n > 0 {
		s.logger.Debug("run complete",
			"waves", n,
			"first_wave", startWave+1,
			"tracked", len(s.detector.tracked),
			"resolved", len(s.detector.resolved))
	}
	return nil
}

// Step processes the next wave only. Returns true if a wave was processed,
// false if nothing was scheduled for it. The reset policy is not applied.
//
// Consecutive Steps share one wave quota, so a loop driven by Step hits
// the same WaveLimitError a Run would. The count starts over after a Run
// or after a Step that found nothing to do.
func (s *Simulation) Step(ctx context.Context) (bool, error) {
	if s.running {
		return false, ErrReentrantRun
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.running = true
	defer func() { s.running = false }()

	if s.stepFresh {
		s.quota.Reset()
		s.stepFresh = false
	}
	processed, err := s.advance()
	if !processed {
		s.stepFresh = true
	}
	return processed, err
}

// advance moves the wave clock forward by one and processes that wave.
func (s *Simulation) advance() (bool, error) {
	wave := s.waves.Next()
	changes, ok := s.schedule.Take(wave)
	if !ok {
		return false, nil
	}

	if err := s.quota.Check(wave); err != nil {
		dropped := s.schedule.Pending() + len(changes)
		s.schedule.Clear()
		s.logger.Error("wave limit exceeded, dropping pending changes",
			"wave", wave,
			"limit", s.quota.MaxWaves(),
			"dropped", dropped,
			"error", err)
		return false, err
	}

	s.step(wave, changes)
	return true, nil
}

// step applies one wave's changes in the order they were scheduled.
func (s *Simulation) step(wave int64, changes []StateChange) {
	for _, c := range changes {
		ev := Event{
			Wave:      wave,
			Connector: c.Connector,
			Requested: c.State,
			State:     c.State,
			CausedBy:  c.CausedBy,
			Kind:      KindApplied,
		}

		if s.detector.IsResolved(c.Connector) {
			ev.Kind = KindSkipped
			s.logger.Debug("skipping resolved connector", "wave", wave, "connector", c.Connector)
			s.emit(ev)
			continue
		}

		if s.detector.IsTracked(c.Connector) {
			state, verdict := s.detector.Observe(c.Connector, c.State)
			ev.State = state
			switch verdict {
			case VerdictExploring:
				ev.Kind = KindExploring
			case VerdictSettled:
				ev.Kind = KindSettled
			case VerdictOscillating:
				ev.Kind = KindOscillating
			}
			if verdict != VerdictExploring {
				s.logger.Debug("feedback loop resolved",
					"wave", wave,
					"connector", c.Connector,
					"verdict", verdict,
					"state", state)
			}
		}

		s.graph.AddNode(c.Connector)
		if c.CausedBy != "" {
			s.graph.AddEdge(c.Connector, c.CausedBy)
		}

		if !s.detector.IsTracked(c.Connector) && s.graph.IsCyclic(c.Connector) {
			s.detector.Begin(c.Connector, ev.State)
			ev.Kind = KindCycleDetected
			s.logger.Debug("feedback loop detected", "wave", wave, "connector", c.Connector, "state", ev.State)
		}

		if conn, ok := s.registry.Lookup(c.Connector); ok {
			ev.Rendered = true
			conn.SetState(ev.State, causeNotifier{sim: s, cause: c.Connector})
		} else {
			s.logger.Debug("connector not found, skipping render", "wave", wave, "connector", c.Connector)
		}

		s.emit(ev)
	}
}

// emit stamps ev and hands it to the observers.
func (s *Simulation) emit(ev Event) {
	ev.Seq = s.seq.Next()
	for _, o := range s.observer {
		o.Observe(ev)
	}
}

func (s *Simulation) applyResetPolicy() {
	switch s.policy {
	case ResetResolved:
		s.detector.Reset()
	case ResetAll:
		s.detector.Reset()
		s.graph.Reset()
	}
}

// Stats is a snapshot of the simulation's bookkeeping.
type Stats struct {
	Wave       int64 `json:"wave"`       // current wave number
	Pending    int   `json:"pending"`    // changes scheduled for future waves
	LastWaves  int   `json:"last_waves"` // waves processed by the last Run or run of Steps
	Connectors int   `json:"connectors"` // connectors in the predecessor graph
	Tracked    int   `json:"tracked"`    // connectors known to sit on a loop
	Resolved   int   `json:"resolved"`   // connectors frozen by the detector
}

// Stats returns a snapshot of the simulation's bookkeeping.
func (s *Simulation) Stats() Stats {
	return Stats{
		Wave:       s.waves.Current(),
		Pending:    s.schedule.Pending(),
		LastWaves:  s.quota.Current(),
		Connectors: s.graph.Len(),
		Tracked:    len(s.detector.tracked),
		Resolved:   len(s.detector.resolved),
	}
}

// Graph returns the simulation's predecessor graph for inspection.
func (s *Simulation) Graph() *PredecessorGraph {
	return s.graph
}

// Detector returns the simulation's oscillation detector for inspection.
func (s *Simulation) Detector() *OscillationDetector {
	return s.detector
}
