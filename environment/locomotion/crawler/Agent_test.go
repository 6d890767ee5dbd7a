package crawler

import (
	"math"
	"testing"

	"github.com/samuelfneumann/gocrawler/environment/locomotion/internal/physics"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// fixedStarter always starts at the same position
type fixedStarter r3.Vec

func (f fixedStarter) Start() *mat.VecDense {
	return mat.NewVecDense(3, []float64{f.X, f.Y, f.Z})
}

type testAgent struct {
	*Agent
	arena    *Arena
	skeleton Skeleton
	sensors  [Segments]*GroundContact
}

func newTestAgent(t *testing.T, goalDirection r3.Vec,
	penalized ...Segment) testAgent {
	arena, err := NewDiscArena(10, 1)
	if err != nil {
		t.Fatal(err)
	}
	arena.Initialize()

	var sensors [Segments]*GroundContact
	for i := range sensors {
		sensors[i] = NewGroundContact(Segment(i), false, 0)
	}
	for _, s := range penalized {
		sensors[s].PenalizeGroundContact = true
		sensors[s].GroundContactPenalty = -1
	}

	skeleton := NewSkeleton(r3.Vec{Y: StartHeight})
	agent, err := NewAgent(arena, goalDirection)
	if err != nil {
		t.Fatal(err)
	}
	if err := agent.Initialize(skeleton.Limbs(sensors)); err != nil {
		t.Fatal(err)
	}

	return testAgent{agent, arena, skeleton, sensors}
}

// flagIndex returns the index of the ground contact flag of s in
// observations
func flagIndex(s Segment) int {
	if s == Body {
		return 10
	}
	return 20 + 14*(int(s)-1)
}

func TestInitializeErrors(t *testing.T) {
	arena, err := NewDiscArena(10, 1)
	if err != nil {
		t.Fatal(err)
	}

	var sensors [Segments]*GroundContact
	for i := range sensors {
		sensors[i] = NewGroundContact(Segment(i), false, 0)
	}

	tests := []struct {
		name   string
		modify func(*[Segments]Limb)
	}{
		{"missing body", func(l *[Segments]Limb) { l[Leg2Lower].Body = nil }},
		{"missing core", func(l *[Segments]Limb) { l[Body].Body = nil }},
		{"missing joint", func(l *[Segments]Limb) { l[Leg1Upper].Joint = nil }},
		{"missing sensor", func(l *[Segments]Limb) { l[Leg3Upper].Sensor = nil }},
		{"wrong sensor", func(l *[Segments]Limb) {
			l[Leg0Upper].Sensor = sensors[Leg0Lower]
		}},
	}

	for _, test := range tests {
		limbs := NewSkeleton(r3.Vec{Y: StartHeight}).Limbs(sensors)
		test.modify(&limbs)

		agent, err := NewAgent(arena, r3.Vec{Z: 1})
		if err != nil {
			t.Fatal(err)
		}
		if err := agent.Initialize(limbs); err == nil {
			t.Errorf("initialize with %v: expected error", test.name)
		}
		if agent.State() != Uninitialized {
			t.Errorf("initialize with %v: \n\twant(%v) \n\thave(%v)",
				test.name, Uninitialized, agent.State())
		}
	}

	if _, err := NewAgent(nil, r3.Vec{}); err == nil {
		t.Errorf("newAgent with nil arena: expected error")
	}
}

func TestInitializeTwice(t *testing.T) {
	a := newTestAgent(t, r3.Vec{Z: 1})
	if err := a.Initialize(a.skeleton.Limbs(a.sensors)); err == nil {
		t.Errorf("second initialize: expected error")
	}
}

func TestObservationLength(t *testing.T) {
	a := newTestAgent(t, r3.Vec{Z: 1})

	obs, err := a.CollectObservations()
	if err != nil {
		t.Fatal(err)
	}
	if len(obs) != 132 {
		t.Errorf("observation length: \n\twant(132) \n\thave(%v)", len(obs))
	}
	if len(obs) != a.ObservationSize() {
		t.Errorf("observationSize: \n\twant(%v) \n\thave(%v)", len(obs),
			a.ObservationSize())
	}

	// Core features
	core := a.Part(Body).Rigidbody
	dir := a.arena.Target().Sub(core.Position)
	want := []float64{dir.X, dir.Y, dir.Z, 0, 0, 1, 0, 1, 0, StartHeight}
	for i, w := range want {
		if math.Abs(obs[i]-w) > 1e-9 {
			t.Errorf("observation[%v]: \n\twant(%v) \n\thave(%v)", i, w, obs[i])
		}
	}

	// The core body sits at the origin of its own frame
	for i := 17; i < 20; i++ {
		if math.Abs(obs[i]) > 1e-12 {
			t.Errorf("core relative position[%v]: \n\twant(0) \n\thave(%v)",
				i-17, obs[i])
		}
	}
}

func TestGroundFlagConsumed(t *testing.T) {
	a := newTestAgent(t, r3.Vec{Z: 1})

	a.sensors[Leg0Lower].OnCollisionEnter(physics.Ground)

	obs, err := a.CollectObservations()
	if err != nil {
		t.Fatal(err)
	}
	if flag := obs[flagIndex(Leg0Lower)]; flag != 1.0 {
		t.Errorf("first read of ground flag: \n\twant(1) \n\thave(%v)", flag)
	}
	for s := 0; s < Segments; s++ {
		if Segment(s) == Leg0Lower {
			continue
		}
		if flag := obs[flagIndex(Segment(s))]; flag != 0.0 {
			t.Errorf("ground flag of %v: \n\twant(0) \n\thave(%v)",
				Segment(s), flag)
		}
	}

	obs, err = a.CollectObservations()
	if err != nil {
		t.Fatal(err)
	}
	if flag := obs[flagIndex(Leg0Lower)]; flag != 0.0 {
		t.Errorf("second read of ground flag: \n\twant(0) \n\thave(%v)", flag)
	}
}

func TestComputeReward(t *testing.T) {
	a := newTestAgent(t, r3.Vec{Z: 1})
	core := a.Part(Body).Rigidbody

	// Target to the side of a stationary crawler facing +Z
	a.arena.target = r3.Vec{X: 10, Y: core.Position.Y}
	if r := a.ComputeReward(); math.Abs(r) > 1e-12 {
		t.Errorf("reward facing away: \n\twant(0) \n\thave(%v)", r)
	}

	// Moving toward a target straight ahead at unit speed
	a.arena.target = r3.Vec{Y: core.Position.Y, Z: 10}
	core.Velocity = r3.Vec{Z: 1}
	if r := a.ComputeReward(); math.Abs(r-0.04) > 1e-12 {
		t.Errorf("reward toward target: \n\twant(0.04) \n\thave(%v)", r)
	}

	// Moving away
	core.Velocity = r3.Vec{Z: -2}
	if r := a.ComputeReward(); math.Abs(r-(-0.05)) > 1e-12 {
		t.Errorf("reward away from target: \n\twant(-0.05) \n\thave(%v)", r)
	}

	// Zero direction to target
	a.arena.target = core.Position
	if r := a.ComputeReward(); r != 0 {
		t.Errorf("reward at target: \n\twant(0) \n\thave(%v)", r)
	}
}

func TestOnTargetReached(t *testing.T) {
	a := newTestAgent(t, r3.Vec{Z: 1})
	placements := a.arena.Placements()

	a.AddReward(a.ComputeReward())
	a.AddReward(0.5)
	a.OnTargetReached()

	if a.Reward() != GoalReward {
		t.Errorf("reward: \n\twant(%v) \n\thave(%v)", GoalReward, a.Reward())
	}
	if n := a.arena.Placements() - placements; n != 1 {
		t.Errorf("target placements: \n\twant(1) \n\thave(%v)", n)
	}
	if !a.IsDone() || a.State() != Terminating {
		t.Errorf("episode not ended: done(%v) state(%v)", a.IsDone(), a.State())
	}
	if a.Outcome() != ReachedTarget {
		t.Errorf("outcome: \n\twant(%v) \n\thave(%v)", ReachedTarget,
			a.Outcome())
	}

	// Later events in the same episode are ignored
	a.OnTargetReached()
	if n := a.arena.Placements() - placements; n != 1 {
		t.Errorf("target placements after second contact: \n\twant(1) "+
			"\n\thave(%v)", n)
	}
}

func TestTerminalEventsExclusive(t *testing.T) {
	// Penalty first
	a := newTestAgent(t, r3.Vec{Z: 1}, Leg2Lower)
	placements := a.arena.Placements()

	a.sensors[Leg2Lower].OnCollisionEnter(physics.Ground)
	a.sensors[Body].OnCollisionEnter(physics.Target)
	a.HandleContacts()

	if a.Reward() != -1 {
		t.Errorf("reward with penalty first: \n\twant(-1) \n\thave(%v)",
			a.Reward())
	}
	if a.Outcome() != Penalized {
		t.Errorf("outcome: \n\twant(%v) \n\thave(%v)", Penalized, a.Outcome())
	}
	if a.arena.Placements() != placements {
		t.Errorf("target moved after penalty")
	}

	// Goal first
	a = newTestAgent(t, r3.Vec{Z: 1}, Leg2Lower)
	a.sensors[Leg1Upper].OnCollisionEnter(physics.Target)
	a.sensors[Leg2Lower].OnCollisionEnter(physics.Ground)
	a.HandleContacts()

	if a.Reward() != GoalReward {
		t.Errorf("reward with goal first: \n\twant(%v) \n\thave(%v)",
			GoalReward, a.Reward())
	}
	if a.Outcome() != ReachedTarget {
		t.Errorf("outcome: \n\twant(%v) \n\thave(%v)", ReachedTarget,
			a.Outcome())
	}
}

func TestUnpenalizedGroundContact(t *testing.T) {
	a := newTestAgent(t, r3.Vec{Z: 1})
	a.sensors[Leg2Lower].OnCollisionEnter(physics.Ground)
	a.sensors[Leg2Lower].OnCollisionExit(physics.Ground)
	a.HandleContacts()

	if a.IsDone() {
		t.Errorf("episode ended by unpenalized ground contact")
	}
	if a.Part(Leg2Lower).TouchingGround() {
		t.Errorf("ground flag set after exit")
	}
}

func TestApplyAction(t *testing.T) {
	a := newTestAgent(t, r3.Vec{Z: 1})

	if err := a.ApplyAction(make([]float64, ActionSize-1)); err == nil {
		t.Errorf("applyAction with short action: expected error")
	}

	action := make([]float64, ActionSize)
	action[0], action[1], action[2] = 1, -1, 1 // Leg0Upper
	action[12], action[13] = -1, -1            // Leg0Lower
	action[18], action[19] = 0, 3              // Leg3Lower, extrapolated
	if err := a.ApplyAction(action); err != nil {
		t.Fatal(err)
	}

	upper := a.Part(Leg0Upper).Joint
	want := physics.Euler(UpperHighXLimit, -UpperYLimit, 0)
	if !sameRotation(upper.TargetRotation, want) {
		t.Errorf("upper leg target: \n\twant(%v) \n\thave(%v)", want,
			upper.TargetRotation)
	}
	if upper.SlerpDrive.PositionSpring != MaxJointSpring {
		t.Errorf("upper leg spring: \n\twant(%v) \n\thave(%v)", MaxJointSpring,
			upper.SlerpDrive.PositionSpring)
	}
	if upper.SlerpDrive.MaximumForce != MaxJointForce {
		t.Errorf("upper leg force: \n\twant(%v) \n\thave(%v)", MaxJointForce,
			upper.SlerpDrive.MaximumForce)
	}

	lower := a.Part(Leg0Lower).Joint
	want = physics.Euler(LowerLowXLimit, 0, 0)
	if !sameRotation(lower.TargetRotation, want) {
		t.Errorf("lower leg target: \n\twant(%v) \n\thave(%v)", want,
			lower.TargetRotation)
	}
	if lower.SlerpDrive.PositionSpring != 0 {
		t.Errorf("lower leg spring: \n\twant(0) \n\thave(%v)",
			lower.SlerpDrive.PositionSpring)
	}

	// Midpoint of the x limits with doubled strength range
	last := a.Part(Leg3Lower).Joint
	want = physics.Euler((LowerLowXLimit+LowerHighXLimit)/2, 0, 0)
	if !sameRotation(last.TargetRotation, want) {
		t.Errorf("last leg target: \n\twant(%v) \n\thave(%v)", want,
			last.TargetRotation)
	}
	if s := last.SlerpDrive.PositionSpring; s != 2*MaxJointSpring {
		t.Errorf("extrapolated spring: \n\twant(%v) \n\thave(%v)",
			2*MaxJointSpring, s)
	}

	// Acting is only allowed while active
	a.Done()
	if err := a.ApplyAction(action); err == nil {
		t.Errorf("applyAction after episode end: expected error")
	}
}

func TestResetEpisode(t *testing.T) {
	a := newTestAgent(t, r3.Vec{Z: 1})

	for s := 0; s < Segments; s++ {
		body := a.Part(Segment(s)).Rigidbody
		body.Position = body.Position.Add(r3.Vec{X: 3, Y: 1, Z: -2})
		body.Rotation = physics.Euler(10, 20, 30)
		body.Velocity = r3.Vec{X: 1, Y: 2, Z: 3}
		body.AngularVelocity = r3.Vec{X: -1}
	}
	a.AddReward(5)
	a.OnTargetReached()

	if err := a.ResetEpisode(); err != nil {
		t.Fatal(err)
	}

	for s := 0; s < Segments; s++ {
		part := a.Part(Segment(s))
		body := part.Rigidbody
		if body.Position != part.StartingPos {
			t.Errorf("%v position: \n\twant(%v) \n\thave(%v)", part.Segment,
				part.StartingPos, body.Position)
		}
		if body.Rotation != part.StartingRot {
			t.Errorf("%v rotation: \n\twant(%v) \n\thave(%v)", part.Segment,
				part.StartingRot, body.Rotation)
		}
		if body.Velocity != (r3.Vec{}) || body.AngularVelocity != (r3.Vec{}) {
			t.Errorf("%v not at rest after reset", part.Segment)
		}
	}

	if a.Reward() != 0 || a.IsDone() || a.State() != Active ||
		a.Outcome() != Running {
		t.Errorf("episode state not cleared: reward(%v) done(%v) state(%v) "+
			"outcome(%v)", a.Reward(), a.IsDone(), a.State(), a.Outcome())
	}
}

func TestGoalDirection(t *testing.T) {
	directions := []r3.Vec{
		{X: 1},
		{X: -1, Z: -1},
		{Z: -1},
	}

	for _, d := range directions {
		a := newTestAgent(t, d)
		core := a.Part(Body).Rigidbody

		want := r3.Unit(d)
		if got := core.Forward(); r3.Norm(got.Sub(want)) > 1e-9 {
			t.Errorf("forward facing %v: \n\twant(%v) \n\thave(%v)", d, want,
				got)
		}

		// Legs keep their placement relative to the core
		for s := 1; s < Segments; s++ {
			local := core.InverseTransformPoint(a.Part(Segment(s)).Rigidbody.Position)
			if r3.Norm(local.Sub(a.basePos[s].Sub(a.basePos[Body]))) > 1e-9 {
				t.Errorf("%v moved relative to core: \n\twant(%v) \n\thave(%v)",
					Segment(s), a.basePos[s].Sub(a.basePos[Body]), local)
			}
		}

		// Changing the goal direction turns the body on the next reset
		a.GoalDirection = r3.Vec{Z: 1}
		if err := a.ResetEpisode(); err != nil {
			t.Fatal(err)
		}
		if got := core.Forward(); r3.Norm(got.Sub(r3.Vec{Z: 1})) > 1e-9 {
			t.Errorf("forward after reset: \n\twant(%v) \n\thave(%v)",
				r3.Vec{Z: 1}, got)
		}
	}
}

// sameRotation returns whether q and p describe the same rotation
func sameRotation(q, p quat.Number) bool {
	q, p = physics.Normalize(q), physics.Normalize(p)
	d := q.Real*p.Real + q.Imag*p.Imag + q.Jmag*p.Jmag + q.Kmag*p.Kmag
	return math.Abs(math.Abs(d)-1) < 1e-9
}
