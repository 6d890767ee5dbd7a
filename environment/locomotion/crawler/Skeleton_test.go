package crawler

import (
	"testing"

	"github.com/samuelfneumann/gocrawler/environment/locomotion/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSkeletonLayout(t *testing.T) {
	s := NewSkeleton(r3.Vec{Y: StartHeight})

	if s.Joints[Body] != nil {
		t.Errorf("core body has a joint")
	}
	for leg := 0; leg < Legs; leg++ {
		upper, lower := s.Joints[Upper(leg)], s.Joints[Lower(leg)]
		if upper.Connected != s.Bodies[Body] {
			t.Errorf("%v not connected to the core body", Upper(leg))
		}
		if lower.Connected != s.Bodies[Upper(leg)] {
			t.Errorf("%v not connected to %v", Lower(leg), Upper(leg))
		}
	}

	// Every part starts above the ground
	for i, body := range s.Bodies {
		if body.Position.Y < body.Radius {
			t.Errorf("%v starts in the ground: height(%v) radius(%v)",
				Segment(i), body.Position.Y, body.Radius)
		}
	}

	// Positions agree with the kinematics of the simulation
	want := make([]r3.Vec, Segments)
	for i, body := range s.Bodies {
		want[i] = body.Position
	}
	w, err := physics.NewWorld(s.Links(), physics.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < w.Links(); i++ {
		if got := w.Body(i).Position; r3.Norm(got.Sub(want[i])) > 1e-9 {
			t.Errorf("%v position: \n\twant(%v) \n\thave(%v)", Segment(i),
				want[i], got)
		}
	}
}
