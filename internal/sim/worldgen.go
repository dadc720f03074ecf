package sim

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	treeCount          = 300
	treeSpread         = 190.0 // trees land in ±treeSpread/2
	treeRadius         = 1.5
	treeClearing       = 10.0 // no trees in the |x|,|z| < treeClearing spawn square
	treeForcePageAfter = 250  // every tree past this index carries a page until all exist
	pageChance         = 0.05
	pageTrunkOffset    = 0.6
	pageHeight         = 1.5

	propSpread       = 180.0 // house and campfire land in ±propSpread/2
	houseRadius      = 12.5
	houseMinSpawnGap = 30.0
	campfireClear    = 5.0
	campfireAttempts = 100
	groundHeight     = -1.2

	// The adversary waits under the ground until its first relocation.
	adversaryParkDepth = -10.0
)

// DefaultPlayerSpawn is where every generated session starts.
var DefaultPlayerSpawn = mgl64.Vec3{0, 1.7, 5}

// GenerateWorld scatters the house, trees, pages and campfire. The house
// obstacle is registered with its final position in the same step that picks
// it, so there is never a placeholder entry.
func GenerateWorld(rng *rand.Rand, t Tuning) World {
	w := World{
		Player:    Pose{Position: DefaultPlayerSpawn},
		Adversary: Pose{Position: mgl64.Vec3{0, adversaryParkDepth, 0}},
	}
	w.Player.Position[1] = t.EyeHeight

	var house mgl64.Vec3
	for {
		x := (rng.Float64() - 0.5) * propSpread
		z := (rng.Float64() - 0.5) * propSpread
		if math.Hypot(x, z) >= houseMinSpawnGap {
			house = mgl64.Vec3{x, groundHeight, z}
			break
		}
	}
	w.Obstacles = append(w.Obstacles, Obstacle{Kind: ObstacleHouse, Position: house, Radius: houseRadius})

	for i := 0; i < treeCount; i++ {
		var x, z float64
		for {
			x = (rng.Float64() - 0.5) * treeSpread
			z = (rng.Float64() - 0.5) * treeSpread
			if math.Abs(x) >= treeClearing || math.Abs(z) >= treeClearing {
				break
			}
		}
		tree := mgl64.Vec3{x, groundHeight, z}
		w.Obstacles = append(w.Obstacles, Obstacle{Kind: ObstacleTree, Position: tree, Radius: treeRadius})

		if len(w.Pages) < t.PageCount && (rng.Float64() < pageChance || i > treeForcePageAfter) {
			a := rng.Float64() * 2 * math.Pi
			w.Pages = append(w.Pages, Page{
				ID:       len(w.Pages),
				Position: mgl64.Vec3{x + math.Sin(a)*pageTrunkOffset, pageHeight, z + math.Cos(a)*pageTrunkOffset},
			})
		}
	}

	w.Goal = placeCampfire(rng, w.Obstacles)
	return w
}

// placeCampfire looks for a spot clear of every obstacle. After
// campfireAttempts misses it settles for the last candidate.
func placeCampfire(rng *rand.Rand, obstacles []Obstacle) mgl64.Vec3 {
	var pos mgl64.Vec3
	for attempt := 0; attempt < campfireAttempts; attempt++ {
		pos = mgl64.Vec3{(rng.Float64() - 0.5) * propSpread, groundHeight, (rng.Float64() - 0.5) * propSpread}
		clear := true
		for _, o := range obstacles {
			if horizontalDist(pos, o.Position) < campfireClear {
				clear = false
				break
			}
		}
		if clear {
			return pos
		}
	}
	return pos
}
