package metrics

import "github.com/kajencik/3DMolecules/internal/dynamo"

// CollisionRate is the mean number of collisions per step.
type CollisionRate struct {
	name       string
	collisions int
	steps      int
}

func NewCollisionRate() *CollisionRate {
	return &CollisionRate{name: "collision_rate"}
}

func (c *CollisionRate) Name() string { return c.name }

func (c *CollisionRate) Observe(ps []dynamo.Particle, d dynamo.Diagnostics, t float64) {
	c.collisions += d.Collisions
	c.steps++
}

func (c *CollisionRate) Value() float64 {
	if c.steps == 0 {
		return 0
	}
	return float64(c.collisions) / float64(c.steps)
}

func (c *CollisionRate) Reset() {
	c.collisions = 0
	c.steps = 0
}
