package physics

import (
	"github.com/ByteArena/box2d"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// Box2D collision filtering categories
	linkCategory   uint16 = 0x0002
	targetCategory uint16 = 0x0001

	// User data of the target body
	targetID int = -1
)

// planarSensors detects contacts between links and the target volume.
// Links and target are projected onto the horizontal x-z plane as
// circles in a Box2D world made only of sensors, so Box2D reports
// overlaps through its contact listener without resolving them.
type planarSensors struct {
	world  box2d.B2World
	radii  []float64
	links  []*box2d.B2Body
	target *box2d.B2Body
	events []Collision
}

func newPlanarSensors(radii []float64, targetRadius float64) *planarSensors {
	p := &planarSensors{
		world: box2d.MakeB2World(box2d.MakeB2Vec2(0.0, 0.0)),
		radii: radii,
		links: make([]*box2d.B2Body, len(radii)),
	}
	p.world.SetContactListener(p)

	// Target is a static circle
	targetDef := box2d.MakeB2BodyDef()
	targetDef.Type = 0 // Static body
	p.target = p.world.CreateBody(&targetDef)
	p.target.SetUserData(targetID)
	p.target.CreateFixtureFromDef(sensorFixture(targetRadius, targetCategory,
		linkCategory))

	for i := range radii {
		p.links[i] = p.createLink(i)
	}

	return p
}

// createLink creates the circle of link i. Links must be dynamic for
// Box2D to create contacts with the static target.
func (p *planarSensors) createLink(i int) *box2d.B2Body {
	linkDef := box2d.MakeB2BodyDef()
	linkDef.Type = 2 // Dynamic body
	linkDef.AllowSleep = false
	linkDef.GravityScale = 0.0

	link := p.world.CreateBody(&linkDef)
	link.SetUserData(i)
	link.CreateFixtureFromDef(sensorFixture(p.radii[i], linkCategory,
		targetCategory))
	return link
}

// reset replaces every link circle, destroying its contacts, so that
// links overlapping the target are reported as entering it on the next
// update
func (p *planarSensors) reset() {
	for i, link := range p.links {
		p.world.DestroyBody(link)
		p.links[i] = p.createLink(i)
	}

	// Destroyed contacts may have reported exits
	p.events = p.events[:0]
}

// sensorFixture returns a circular sensor fixture definition
func sensorFixture(radius float64, category, mask uint16) *box2d.B2FixtureDef {
	shape := box2d.NewB2CircleShape()
	shape.M_radius = radius

	fix := box2d.MakeB2FixtureDef()
	fix.Shape = shape
	fix.IsSensor = true
	fix.Density = 1.0

	filter := box2d.MakeB2Filter()
	filter.CategoryBits = category
	filter.MaskBits = mask
	fix.Filter = filter

	return &fix
}

// setTarget moves the target circle to (x, z)
func (p *planarSensors) setTarget(x, z float64) {
	p.target.SetTransform(box2d.MakeB2Vec2(x, z), 0.0)
}

// update moves each link circle to the x-z projection of its position
// and returns target enter and exit events caused by the move
func (p *planarSensors) update(positions []r3.Vec, dt float64) []Collision {
	p.events = p.events[:0]

	for i, pos := range positions {
		p.links[i].SetTransform(box2d.MakeB2Vec2(pos.X, pos.Z), 0.0)
		p.links[i].SetLinearVelocity(box2d.MakeB2Vec2(0.0, 0.0))
	}

	// Create contacts for proxies moved by SetTransform so that overlaps
	// are reported in this step rather than the next
	p.world.M_contactManager.FindNewContacts()
	p.world.Step(dt, 1, 1)

	events := make([]Collision, len(p.events))
	copy(events, p.events)
	return events
}

// BeginContact records a link entering the target
func (p *planarSensors) BeginContact(contact box2d.B2ContactInterface) {
	if link, ok := p.linkTouchingTarget(contact); ok {
		p.events = append(p.events, Collision{
			Link:    link,
			Surface: Target,
			Phase:   Enter,
		})
	}
}

// EndContact records a link leaving the target
func (p *planarSensors) EndContact(contact box2d.B2ContactInterface) {
	if link, ok := p.linkTouchingTarget(contact); ok {
		p.events = append(p.events, Collision{
			Link:    link,
			Surface: Target,
			Phase:   Exit,
		})
	}
}

func (p *planarSensors) PreSolve(contact box2d.B2ContactInterface,
	oldManifold box2d.B2Manifold) {
}

func (p *planarSensors) PostSolve(contact box2d.B2ContactInterface,
	impulse *box2d.B2ContactImpulse) {
}

// linkTouchingTarget returns the index of the link in a link-target
// contact
func (p *planarSensors) linkTouchingTarget(
	contact box2d.B2ContactInterface) (int, bool) {
	a := contact.GetFixtureA().GetBody()
	b := contact.GetFixtureB().GetBody()

	var other *box2d.B2Body
	switch {
	case a == p.target:
		other = b
	case b == p.target:
		other = a
	default:
		return 0, false
	}

	link, ok := other.GetUserData().(int)
	if !ok || link == targetID {
		return 0, false
	}
	return link, true
}
