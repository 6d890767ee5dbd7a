package crawler

import (
	"fmt"

	"github.com/samuelfneumann/gocrawler/environment/locomotion/internal/physics"
)

// ContactKind is the kind of a contact event
type ContactKind int

const (
	GroundEnter ContactKind = iota
	GroundExit
	TargetEnter
)

func (c ContactKind) String() string {
	switch c {
	case GroundEnter:
		return "GroundEnter"
	case GroundExit:
		return "GroundExit"
	case TargetEnter:
		return "TargetEnter"
	default:
		return fmt.Sprintf("ContactKind(%d)", int(c))
	}
}

// ContactEvent is a contact reported by a GroundContact sensor. If
// Penalize is set, the event ends the episode with reward Penalty.
type ContactEvent struct {
	Segment
	Kind     ContactKind
	Penalize bool
	Penalty  float64
}

// Terminal returns whether applying the event ends the episode
func (c ContactEvent) Terminal() bool {
	return c.Kind == TargetEnter || (c.Kind == GroundEnter && c.Penalize)
}

// ContactQueue is a FIFO queue of contact events
type ContactQueue struct {
	events []ContactEvent
}

// Push adds an event to the back of the queue
func (q *ContactQueue) Push(e ContactEvent) {
	q.events = append(q.events, e)
}

// Len returns the number of queued events
func (q *ContactQueue) Len() int {
	return len(q.events)
}

// Drain removes and returns all queued events in arrival order
func (q *ContactQueue) Drain() []ContactEvent {
	events := q.events
	q.events = nil
	return events
}

// GroundContact is the contact sensor attached to a single body part.
// It tracks whether its part touches the ground and reports contacts
// to the queue it is subscribed to. A sensor which is not subscribed
// still tracks ground contact.
type GroundContact struct {
	Segment
	TouchingGround bool

	// PenalizeGroundContact determines whether touching the ground
	// ends the episode with reward GroundContactPenalty
	PenalizeGroundContact bool
	GroundContactPenalty  float64

	queue *ContactQueue
}

// NewGroundContact returns a new GroundContact for segment s
func NewGroundContact(s Segment, penalize bool,
	penalty float64) *GroundContact {
	return &GroundContact{
		Segment:               s,
		PenalizeGroundContact: penalize,
		GroundContactPenalty:  penalty,
	}
}

// Subscribe sets the queue that contact events are sent to
func (g *GroundContact) Subscribe(q *ContactQueue) {
	g.queue = q
}

// OnCollisionEnter handles the part beginning to touch surface
func (g *GroundContact) OnCollisionEnter(surface physics.Surface) {
	switch surface {
	case physics.Ground:
		g.TouchingGround = true
		g.emit(ContactEvent{
			Segment:  g.Segment,
			Kind:     GroundEnter,
			Penalize: g.PenalizeGroundContact,
			Penalty:  g.GroundContactPenalty,
		})

	case physics.Target:
		g.emit(ContactEvent{Segment: g.Segment, Kind: TargetEnter})
	}
}

// OnCollisionExit handles the part no longer touching surface
func (g *GroundContact) OnCollisionExit(surface physics.Surface) {
	if surface != physics.Ground {
		return
	}
	g.TouchingGround = false
	g.emit(ContactEvent{Segment: g.Segment, Kind: GroundExit})
}

func (g *GroundContact) emit(e ContactEvent) {
	if g.queue != nil {
		g.queue.Push(e)
	}
}
