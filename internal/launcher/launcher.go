package launcher

import (
	"fmt"
	"sync"
	"time"

	"github.com/advenimus/jwtools/internal/platform"
	"github.com/advenimus/jwtools/internal/settings"
)

// obsSettleDelay gives OBS time to bring up its virtual camera before the
// next tool launches. Blind wait, not a readiness poll.
const obsSettleDelay = 4 * time.Second

// messageStepName names the custom message step in results and progress.
const messageStepName = "Custom message"

// MessageDisplay presents the pre-meeting custom message. The launcher's
// timer is authoritative for advancing the sequence; Show only handles
// presentation and may return before the display time elapses.
type MessageDisplay interface {
	Show(title, message string, duration time.Duration)
}

// Launcher wires the settings store, path resolver and command dispatcher
// into the fixed launch sequence.
type Launcher struct {
	store      *settings.Store
	resolver   *Resolver
	dispatcher *Dispatcher
	display    MessageDisplay
	now        func() time.Time
	sleep      func(time.Duration)
	onProgress func(Progress)

	mu      sync.Mutex
	running bool
}

// Option customizes a Launcher.
type Option func(*Launcher)

// WithDispatcher replaces the command dispatcher (tests).
func WithDispatcher(d *Dispatcher) Option {
	return func(l *Launcher) { l.dispatcher = d }
}

// WithPrompter sets the interactive file-picker collaborator.
func WithPrompter(p Prompter) Option {
	return func(l *Launcher) { l.resolver = NewResolver(l.store, l.resolver.platform, p) }
}

// WithMessageDisplay sets the custom message presenter.
func WithMessageDisplay(d MessageDisplay) Option {
	return func(l *Launcher) { l.display = d }
}

// WithClock replaces wall clock and sleep (tests).
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(l *Launcher) {
		l.now = now
		l.sleep = sleep
	}
}

// WithProgressFunc registers the progress-event consumer.
func WithProgressFunc(fn func(Progress)) Option {
	return func(l *Launcher) { l.onProgress = fn }
}

// New creates a launcher for the host platform.
func New(store *settings.Store, p platform.Platform, opts ...Option) *Launcher {
	l := &Launcher{
		store:      store,
		resolver:   NewResolver(store, p, nil),
		dispatcher: NewDispatcher(p),
		now:        time.Now,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Resolver exposes the path resolver for settings surfaces.
func (l *Launcher) Resolver() *Resolver {
	return l.resolver
}

// Running reports whether a sequence run is in flight.
func (l *Launcher) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// launchStep resolves a tool (prompting once if it is missing) and
// dispatches it. A cancelled prompt fails the step; the sequencer then
// halts the remainder without retrying.
func (l *Launcher) launchStep(tool Tool) LaunchResult {
	path, found := l.resolver.Resolve(tool)
	if !found {
		picked, err := l.resolver.PromptAndStore(tool)
		if err != nil {
			return LaunchResult{Success: false, Message: fmt.Sprintf("Failed to locate %s: %s", tool.DisplayName(), err)}
		}
		if picked == "" {
			return LaunchResult{
				Success: false,
				Message: fmt.Sprintf("%s not found. Please install it or configure the path manually in settings.", tool.DisplayName()),
			}
		}
		path = picked
	}

	if tool == ToolZoom {
		return l.dispatcher.LaunchZoom(path, l.store.UniversalSettings().MeetingID)
	}
	return l.dispatcher.Launch(tool, path)
}

// messageStep blocks for the configured display time; the wait is the step.
func (l *Launcher) messageStep(msg settings.CustomMessageSettings) LaunchResult {
	duration := time.Duration(msg.DisplayTime) * time.Second
	if l.display != nil {
		l.display.Show(msg.Title, msg.Message, duration)
	}
	l.sleep(duration)
	return LaunchResult{Success: true, Message: "Custom message displayed"}
}

// stepsFor builds the fixed, ordered step list for one media config read.
// Run passes the same read it validated so an external edit between the
// toggle check and step construction cannot slip through.
func (l *Launcher) stepsFor(cfg settings.MediaConfig) []Step {
	sched := l.store.UniversalSettings().MeetingSchedule
	msg := cfg.CustomMessage

	return []Step{
		{
			Name:    messageStepName,
			Enabled: func() bool { return ShouldShowCustomMessage(msg, sched, l.now()) },
			Run:     func() LaunchResult { return l.messageStep(msg) },
		},
		{
			Name:      ToolOBS.DisplayName(),
			Enabled:   func() bool { return cfg.ToolToggles.LaunchOBS },
			Run:       func() LaunchResult { return l.launchStep(ToolOBS) },
			PostDelay: obsSettleDelay,
		},
		{
			Name:    ToolMediaManager.DisplayName(),
			Enabled: func() bool { return cfg.ToolToggles.LaunchMediaManager },
			Run:     func() LaunchResult { return l.launchStep(ToolMediaManager) },
		},
		{
			Name:    ToolZoom.DisplayName(),
			Enabled: func() bool { return cfg.ToolToggles.LaunchZoom },
			Run:     func() LaunchResult { return l.launchStep(ToolZoom) },
		},
	}
}

// Run executes the whole launch sequence. The toggle invariant is
// re-checked here even though saves enforce it, in case the documents were
// edited externally. The guard and the checks are one critical section so
// concurrent callers cannot both pass and start interleaved sequences.
func (l *Launcher) Run() (*RunResult, error) {
	cfg := l.store.MediaConfig()

	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	if !cfg.ToolToggles.Any() {
		l.mu.Unlock()
		return nil, settings.ErrNoToolEnabled
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	seq := NewSequencer(l.stepsFor(cfg), WithSleep(l.sleep), WithProgress(l.onProgress))
	return seq.Run()
}
