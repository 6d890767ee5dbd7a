package crawler

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/samuelfneumann/gocrawler/environment/locomotion/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// ViewportSize is the width and height of rendered frames in pixels
	ViewportSize int = 600

	// ViewportMargin is the distance in world units shown beyond the
	// furthest of the target and the crawler
	ViewportMargin float64 = 3.0
)

var (
	groundShade  color.Color = color.RGBA{R: 214, G: 204, B: 178, A: 255}
	gridColour   color.Color = color.RGBA{R: 190, G: 180, B: 155, A: 255}
	targetColour color.Color = color.RGBA{R: 46, G: 160, B: 67, A: 160}
	bodyColour   color.Color = color.RGBA{R: 128, G: 102, B: 230, A: 255}
	legColour    color.Color = color.RGBA{R: 77, G: 77, B: 128, A: 255}
	groundedLeg  color.Color = color.RGBA{R: 204, G: 77, B: 77, A: 255}
)

// Render draws a top-down view of the arena, with +X to the right and
// +Z up, and saves it as a PNG to filename
func (c *Crawler) Render(filename string) error {
	core := c.skeleton.Bodies[Body].Position
	target := c.arena.Target()

	// Scale so that the target and crawler both fit
	extent := math.Max(math.Hypot(core.X, core.Z),
		math.Hypot(target.X, target.Z)) + ViewportMargin
	scale := float64(ViewportSize) / (2 * extent)
	toPixel := func(v r3.Vec) (float64, float64) {
		half := float64(ViewportSize) / 2
		return half + v.X*scale, half - v.Z*scale
	}

	dc := gg.NewContext(ViewportSize, ViewportSize)
	dc.SetColor(groundShade)
	dc.Clear()

	// Unit grid lines
	dc.SetColor(gridColour)
	dc.SetLineWidth(1.0)
	for i := -math.Ceil(extent); i <= math.Ceil(extent); i++ {
		x, _ := toPixel(r3.Vec{X: i})
		_, y := toPixel(r3.Vec{Z: i})
		dc.DrawLine(x, 0, x, float64(ViewportSize))
		dc.DrawLine(0, y, float64(ViewportSize), y)
	}
	dc.Stroke()

	// Target
	tx, ty := toPixel(target)
	dc.DrawCircle(tx, ty, c.arena.TargetRadius()*scale)
	dc.SetColor(targetColour)
	dc.Fill()

	// Legs, as segments from each joint to the body part centre
	dc.SetLineWidth(4.0)
	for leg := 0; leg < Legs; leg++ {
		for _, s := range []Segment{Upper(leg), Lower(leg)} {
			body, joint := c.skeleton.Bodies[s], c.skeleton.Joints[s]
			x1, y1 := toPixel(joint.Connected.TransformPoint(joint.Anchor))
			x2, y2 := toPixel(body.Position)
			dc.DrawLine(x1, y1, x2, y2)
			dc.SetColor(legColour)
			dc.Stroke()

			dc.DrawCircle(x2, y2, body.Radius*scale)
			if body.Position.Y-body.Radius <= physics.ContactSlop {
				dc.SetColor(groundedLeg)
			} else {
				dc.SetColor(legColour)
			}
			dc.Fill()
		}
	}

	// Core body with a heading marker
	cx, cy := toPixel(core)
	dc.DrawCircle(cx, cy, BodyRadius*scale)
	dc.SetColor(bodyColour)
	dc.Fill()

	heading := c.skeleton.Bodies[Body].TransformPoint(r3.Vec{Z: BodyRadius})
	hx, hy := toPixel(heading)
	dc.SetColor(color.White)
	dc.SetLineWidth(2.0)
	dc.DrawLine(cx, cy, hx, hy)
	dc.Stroke()

	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("render: %v", err)
	}
	return nil
}
