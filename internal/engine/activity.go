package engine

import (
	"fmt"
	"time"

	"github.com/Pyro-Cryo/kons-simulator/internal/domain/patron"
	"github.com/Pyro-Cryo/kons-simulator/internal/events"
	"github.com/Pyro-Cryo/kons-simulator/internal/platform/logger"
	"github.com/Pyro-Cryo/kons-simulator/internal/sim"
)

// Chore effort defaults, in energy points and virtual units.
const (
	choreEffort   = 20.0
	choreDuration = 30.0
)

// chore is one job in progress: the drain modifier sits on the
// patron's energy and is advanced by the system each tick.
type chore struct {
	patronID string
	name     string
	drain    *sim.ProgressModifier
}

// ActivitySystem runs chores. A chore strains the patron's energy
// hardest at the start and eases off as the work nears completion;
// progress only moves while the system advances it.
type ActivitySystem struct {
	clock    *sim.Clock
	eventLog *events.EventLog
	logger   *logger.Logger

	patrons map[string]*patron.Patron
	chores  []*chore
	lastNow float64
}

// NewActivitySystem creates a new chore manager.
func NewActivitySystem(clock *sim.Clock, eventLog *events.EventLog, log *logger.Logger) *ActivitySystem {
	return &ActivitySystem{
		clock:    clock,
		eventLog: eventLog,
		logger:   log,
		patrons:  make(map[string]*patron.Patron),
		lastNow:  clock.Now(),
	}
}

// Register adds a patron as a potential worker.
func (as *ActivitySystem) Register(p *patron.Patron) {
	as.patrons[p.ID] = p
}

// StartChore puts the patron to work. The drain is an externally
// driven modifier: virtual time alone does not finish a chore, the
// system has to push it forward.
func (as *ActivitySystem) StartChore(p *patron.Patron, name string) error {
	drain := sim.NewProgress(func(progress float64) float64 {
		return -choreEffort * (1 - progress/choreDuration)
	}, choreDuration, "chore: "+name)

	if err := p.Energy.AddModifier(drain); err != nil {
		return fmt.Errorf("activity: %w", err)
	}
	as.chores = append(as.chores, &chore{patronID: p.ID, name: name, drain: drain})
	as.logger.Event("CHORE_STARTED", p.ID, name)
	return nil
}

// ActiveChores returns the number of unfinished chores.
func (as *ActivitySystem) ActiveChores() int {
	return len(as.chores)
}

// OnTimeTick advances every active chore by the virtual time elapsed
// since the previous tick. Exhausted patrons pause their chores until
// they recover.
func (as *ActivitySystem) OnTimeTick(now float64) {
	delta := now - as.lastNow
	as.lastNow = now
	if delta <= 0 {
		return
	}

	remaining := as.chores[:0]
	for _, c := range as.chores {
		p := as.patrons[c.patronID]
		if p == nil {
			continue
		}
		if p.IsExhausted() {
			remaining = append(remaining, c)
			continue
		}

		if err := c.drain.AdvanceProgress(delta); err != nil {
			as.logger.Error("chore %q: %v", c.name, err)
			continue
		}

		if c.drain.CanBeRemoved() {
			as.finishChore(p, c, now)
			continue
		}
		remaining = append(remaining, c)
	}
	as.chores = remaining
}

// finishChore records completion and rewards the worker with a fading
// sense of accomplishment. The drain modifier is already removable and
// gets pruned on the energy variable's next recompute.
func (as *ActivitySystem) finishChore(p *patron.Patron, c *chore, now float64) {
	reward, err := sim.NewExponentialDecay(as.clock, 10, 15, "finished "+c.name)
	if err == nil {
		err = p.Mood.AddModifier(reward)
	}
	if err != nil {
		as.logger.Error("chore reward for %s: %v", p.ID, err)
	}

	as.eventLog.Append(events.Event{
		ID:          events.NewEventID(),
		Timestamp:   time.Now(),
		VirtualTime: now,
		Type:        events.EventTypeChoreFinished,
		SubjectID:   p.ID,
		Payload:     c.name,
	})
	as.logger.Event("CHORE_FINISHED", p.ID, c.name)
}
