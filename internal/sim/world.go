package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrInvalidRadius is returned when an obstacle radius is zero, negative or not finite.
	ErrInvalidRadius = errors.New("obstacle radius must be positive")
	// ErrPageCount is returned when the world does not carry exactly Tuning.PageCount pages.
	ErrPageCount = errors.New("wrong number of pages")
	// ErrNonFiniteValue is returned for NaN or infinite world coordinates.
	ErrNonFiniteValue = errors.New("non-finite world value")
	// ErrInvalidTuning is returned by Tuning.Validate.
	ErrInvalidTuning = errors.New("invalid tuning")
)

// ObstacleKind is a presentation hint; collision treats every kind alike.
type ObstacleKind int

const (
	ObstacleTree ObstacleKind = iota
	ObstacleHouse
)

func (k ObstacleKind) String() string {
	switch k {
	case ObstacleTree:
		return "tree"
	case ObstacleHouse:
		return "house"
	default:
		return "unknown"
	}
}

// Obstacle is a static circular exclusion zone on the ground plane.
type Obstacle struct {
	Kind     ObstacleKind
	Position mgl64.Vec3
	Radius   float64
}

// Page is a collectible. It exists in the active set until picked up.
type Page struct {
	ID       int
	Position mgl64.Vec3
}

// Pose is the initial placement of the player or the adversary.
type Pose struct {
	Position mgl64.Vec3
	Yaw      float64
	Pitch    float64
}

// World is everything the simulation needs to know about the scene. It is
// supplied once, before the first tick.
type World struct {
	Obstacles []Obstacle
	Pages     []Page
	Goal      mgl64.Vec3 // campfire
	Player    Pose
	Adversary Pose
}

// Validate checks construction-time contracts so that the tick never has to.
func (w World) Validate(t Tuning) error {
	for i, o := range w.Obstacles {
		if !(o.Radius > 0) || math.IsInf(o.Radius, 0) {
			return fmt.Errorf("obstacle %d (%s) radius %v: %w", i, o.Kind, o.Radius, ErrInvalidRadius)
		}
		if !finiteVec(o.Position) {
			return fmt.Errorf("obstacle %d position: %w", i, ErrNonFiniteValue)
		}
	}
	if len(w.Pages) != t.PageCount {
		return fmt.Errorf("have %d pages, want %d: %w", len(w.Pages), t.PageCount, ErrPageCount)
	}
	for _, p := range w.Pages {
		if !finiteVec(p.Position) {
			return fmt.Errorf("page %d position: %w", p.ID, ErrNonFiniteValue)
		}
	}
	if !finiteVec(w.Goal) || !finiteVec(w.Player.Position) || !finiteVec(w.Adversary.Position) {
		return fmt.Errorf("goal or spawn position: %w", ErrNonFiniteValue)
	}
	return nil
}

func finiteVec(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// horizontalDist is the distance between a and b on the x/z plane.
func horizontalDist(a, b mgl64.Vec3) float64 {
	return math.Hypot(a[0]-b[0], a[2]-b[2])
}
