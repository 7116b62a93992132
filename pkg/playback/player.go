package playback

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/staffline/pkg/observability"
	"github.com/matzehuels/staffline/pkg/theory"
)

// Tone sounds one note. Implementations must not block.
type Tone interface {
	Play(note theory.Note, seconds, volume float64)
}

// ToneFunc adapts a function to [Tone].
type ToneFunc func(note theory.Note, seconds, volume float64)

// Play calls f.
func (f ToneFunc) Play(note theory.Note, seconds, volume float64) { f(note, seconds, volume) }

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop cancels the callback and reports whether it had not fired yet.
	Stop() bool
}

// Scheduler runs a callback after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// State is the transport state of a [Player].
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "stopped"
}

// PlayerOption configures a [Player].
type PlayerOption func(*Player)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) PlayerOption { return func(p *Player) { p.sched = s } }

// WithLogger sets the logger for state transitions (debug level).
func WithLogger(l *log.Logger) PlayerOption { return func(p *Player) { p.logger = l } }

// WithStepHook registers a callback invoked with the index of every step
// as it starts, and with -1 when playback finishes or stops.
func WithStepHook(fn func(int)) PlayerOption { return func(p *Player) { p.onStep = fn } }

// Player steps through a [Performance] with one pending timer at a time.
//
// Pause cancels the pending timer and any arpeggio notes not yet sounded,
// and keeps the position; Play resumes from there. Stop cancels and
// rewinds. Tones already started are not cut off.
type Player struct {
	perf   *Performance
	tone   Tone
	sched  Scheduler
	logger *log.Logger
	onStep func(int)

	mu    sync.Mutex
	state State
	pos   int
	timer Timer
	gen   int
	// delayed holds the timers of arpeggio notes still to sound.
	delayed map[Timer]struct{}
}

// NewPlayer returns a stopped player for perf.
func NewPlayer(perf *Performance, tone Tone, opts ...PlayerOption) *Player {
	p := &Player{perf: perf, tone: tone, sched: clockScheduler{}, delayed: make(map[Timer]struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	return p
}

// State returns the transport state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position returns the index of the next step to play.
func (p *Player) Position() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// Play starts or resumes playback. It is a no-op while playing.
func (p *Player) Play() {
	p.mu.Lock()
	if p.state == Playing {
		p.mu.Unlock()
		return
	}
	p.transition(Playing)
	p.gen++
	gen := p.gen
	p.mu.Unlock()
	p.step(gen)
}

// Pause holds playback at the current position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing {
		return
	}
	p.cancel()
	p.transition(Paused)
}

// Stop ends playback and rewinds to the first step.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.state == Stopped && p.pos == 0 {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.transition(Stopped)
	p.pos = 0
	hook := p.onStep
	p.mu.Unlock()
	if hook != nil {
		hook(-1)
	}
}

// transition must be called with p.mu held.
func (p *Player) transition(to State) {
	p.logger.Debug("player state", "from", p.state, "to", to, "step", p.pos)
	observability.Playback().OnPlayerState(p.state.String(), to.String(), p.pos)
	p.state = to
}

func (p *Player) cancel() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	for t := range p.delayed {
		t.Stop()
	}
	clear(p.delayed)
	p.gen++
}

// step plays the step at the cursor and schedules the next one. Callbacks
// from an earlier generation are ignored.
func (p *Player) step(gen int) {
	p.mu.Lock()
	if p.state != Playing || gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	if p.perf == nil || p.pos >= len(p.perf.Steps) {
		p.transition(Stopped)
		p.pos = 0
		hook := p.onStep
		p.mu.Unlock()
		if hook != nil {
			hook(-1)
		}
		return
	}

	i := p.pos
	st := p.perf.Steps[i]
	events := p.perf.StepEvents(i)
	p.pos++
	p.timer = p.sched.AfterFunc(seconds(st.Seconds), func() { p.step(gen) })
	var now []Event
	for _, e := range events {
		delay := e.Start - st.Start
		if delay <= 0 {
			now = append(now, e)
			continue
		}
		var t Timer
		t = p.sched.AfterFunc(seconds(delay), func() { p.delayedTone(gen, t, e) })
		p.delayed[t] = struct{}{}
	}
	hook := p.onStep
	p.mu.Unlock()

	if hook != nil {
		hook(i)
	}
	for _, e := range now {
		p.tone.Play(e.Note, e.Duration, e.Volume)
	}
}

// delayedTone sounds an arpeggio note unless playback was paused or
// stopped since it was scheduled.
func (p *Player) delayedTone(gen int, t Timer, e Event) {
	p.mu.Lock()
	delete(p.delayed, t)
	live := gen == p.gen
	p.mu.Unlock()
	if live {
		p.tone.Play(e.Note, e.Duration, e.Volume)
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
