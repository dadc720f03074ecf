package sim

import "github.com/go-gl/mathgl/mgl64"

// CollectionTracker owns the active page set and the collected count.
type CollectionTracker struct {
	tuning    *Tuning
	remaining []Page
	collected int
	unlocked  bool
}

func newCollectionTracker(t *Tuning, pages []Page) *CollectionTracker {
	remaining := make([]Page, len(pages))
	copy(remaining, pages)
	return &CollectionTracker{tuning: t, remaining: remaining}
}

// Update picks up every page within reach of pos. It returns the IDs picked
// up this tick (in active-set order) and whether the objective unlocked on
// this tick.
func (c *CollectionTracker) Update(pos mgl64.Vec3) (picked []int, unlockedNow bool) {
	kept := c.remaining[:0]
	for _, p := range c.remaining {
		if pos.Sub(p.Position).Len() < c.tuning.PickupRadius {
			picked = append(picked, p.ID)
			c.collected++
			continue
		}
		kept = append(kept, p)
	}
	c.remaining = kept
	if !c.unlocked && c.collected >= c.tuning.PageCount {
		c.unlocked = true
		unlockedNow = true
	}
	return picked, unlockedNow
}

// Collected is the number of pages picked up so far.
func (c *CollectionTracker) Collected() int {
	return c.collected
}

// Unlocked reports whether the burn objective is available.
func (c *CollectionTracker) Unlocked() bool {
	return c.unlocked
}

// Remaining returns a copy of the pages still in the world.
func (c *CollectionTracker) Remaining() []Page {
	out := make([]Page, len(c.remaining))
	copy(out, c.remaining)
	return out
}

// CanBurn reports whether pos is close enough to goal to burn the pages.
func (c *CollectionTracker) CanBurn(pos, goal mgl64.Vec3) bool {
	return c.unlocked && pos.Sub(goal).Len() <= c.tuning.BurnRadius
}
