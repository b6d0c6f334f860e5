package launcher

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// State describes where a sequence run ended up.
type State string

const (
	StateIdle                State = "idle"
	StateRunning             State = "running"
	StateCompleted           State = "completed"
	StateCompletedWithErrors State = "completed-with-errors"
	StateAborted             State = "aborted"
)

// Sequencer errors. Both are validation failures raised before any external
// effect, distinct from runtime step failures.
var (
	ErrAlreadyRunning = errors.New("a launch sequence is already running")
	ErrNoStepsEnabled = errors.New("no launch steps are enabled")
)

// progressBase is the percentage reported when the sequence starts; the
// remaining span is divided evenly across the enabled steps.
const (
	progressBase = 20.0
	progressSpan = 80.0
)

// Step is one unit of the fixed launch order: an enablement condition, an
// action, and an optional settle delay applied after success.
type Step struct {
	Name      string
	Enabled   func() bool
	Run       func() LaunchResult
	PostDelay time.Duration
}

// StepResult records one executed step's outcome. Ephemeral: discarded with
// the RunResult once the caller has looked at it.
type StepResult struct {
	StepName  string `json:"stepName"`
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message"`
}

// Progress is one progress-stream event. Done marks the terminal event of a
// run, set on both completion and halt; consumers that only see the stream
// can tell a halted sequence from a stalled one without the run result.
type Progress struct {
	Percent float64 `json:"percent"`
	Status  string  `json:"status"`
	Done    bool    `json:"done,omitempty"`
}

// RunResult aggregates a whole sequence run.
type RunResult struct {
	State      State        `json:"state"`
	Steps      []StepResult `json:"steps"`
	FailedStep string       `json:"failedStep,omitempty"`
}

// Sequencer drives an ordered, toggle-gated list of steps. Enablement is
// evaluated once up front, steps execute strictly one at a time, and the
// first failure halts the remainder. Re-entry while a run is in flight is
// rejected rather than interleaved.
type Sequencer struct {
	steps      []Step
	sleep      func(time.Duration)
	onProgress func(Progress)

	mu      sync.Mutex
	running bool
}

// SequencerOption customizes a Sequencer.
type SequencerOption func(*Sequencer)

// WithSleep replaces the inter-step delay clock (tests).
func WithSleep(sleep func(time.Duration)) SequencerOption {
	return func(s *Sequencer) { s.sleep = sleep }
}

// WithProgress registers the progress-event consumer.
func WithProgress(fn func(Progress)) SequencerOption {
	return func(s *Sequencer) { s.onProgress = fn }
}

// NewSequencer creates a sequencer over a fixed, ordered step list.
func NewSequencer(steps []Step, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		steps: steps,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Running reports whether a run is currently in flight.
func (s *Sequencer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sequencer) emit(percent float64, status string) {
	if s.onProgress != nil {
		s.onProgress(Progress{Percent: percent, Status: status})
	}
}

func (s *Sequencer) emitDone(percent float64, status string) {
	if s.onProgress != nil {
		s.onProgress(Progress{Percent: percent, Status: status, Done: true})
	}
}

// Run executes the sequence. It returns a validation error (and performs no
// external effect) when another run is active or no step is enabled;
// otherwise it always returns a RunResult, mapping panics from step actions
// to StateAborted so a caller is never left without an aggregate outcome.
func (s *Sequencer) Run() (result *RunResult, err error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()

		if r := recover(); r != nil {
			launcherLog.Error("sequence_panic", slog.Any("panic", r))
			result = &RunResult{
				State: StateAborted,
				Steps: []StepResult{{
					StepName:  "sequence",
					Succeeded: false,
					Message:   fmt.Sprintf("internal error: %v", r),
				}},
			}
			err = nil
		}
	}()

	// Enablement is evaluated once, up front: it determines N and therefore
	// the per-step progress increment.
	var enabled []Step
	for _, step := range s.steps {
		if step.Enabled == nil || step.Enabled() {
			enabled = append(enabled, step)
		}
	}
	if len(enabled) == 0 {
		return nil, ErrNoStepsEnabled
	}

	increment := progressSpan / float64(len(enabled))
	percent := progressBase
	s.emit(percent, "Starting launch sequence")

	result = &RunResult{State: StateRunning}
	for _, step := range enabled {
		s.emit(percent, fmt.Sprintf("Launching %s...", step.Name))
		launcherLog.Info("sequence_step_start", slog.String("step", step.Name))

		res := step.Run()
		result.Steps = append(result.Steps, StepResult{
			StepName:  step.Name,
			Succeeded: res.Success,
			Message:   res.Message,
		})

		if !res.Success {
			// Halt the remainder. Earlier launches are not rolled back.
			launcherLog.Warn("sequence_step_failed",
				slog.String("step", step.Name), slog.String("message", res.Message))
			result.State = StateCompletedWithErrors
			result.FailedStep = step.Name
			// Percent stays where it was: the failing step contributed no
			// progress. The terminal flag tells consumers the run is over.
			s.emitDone(percent, fmt.Sprintf("%s failed: %s", step.Name, res.Message))
			return result, nil
		}

		percent += increment
		s.emit(percent, res.Message)

		if step.PostDelay > 0 {
			s.sleep(step.PostDelay)
		}
	}

	result.State = StateCompleted
	s.emitDone(100, "All steps completed")
	return result, nil
}
