// Package track holds the gates and obstacles moving toward the car.
//
// Positions run along one axis: negative is ahead of the car, 0 is at the car
// and positive has been passed. Every entity moves by the same distance per
// step.
package track

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Reasons an obstacle spawn is refused.
var (
	ErrObstacleCooldown = errors.New("obstacle spawned too recently")
	ErrAfterGateSpawn   = errors.New("gate set spawned too recently")
	ErrGateImminent     = errors.New("gate set due too soon")
	ErrTrafficFull      = errors.New("too many active obstacles")
	ErrNoClearLane      = errors.New("no lane clear at spawn point")
)

// Params are the track geometry and spawn spacing.
type Params struct {
	GateSpawnZ     float64
	ObstacleSpawnZ float64
	// Entities beyond PassedZ are pruned.
	PassedZ float64
	// An entity with |Z| below CollisionZ is at the car.
	CollisionZ float64
	// Obstacles beyond ActiveWindowZ count toward the traffic limit.
	ActiveWindowZ float64
	// Minimum distance from the spawn point for a lane to count as clear.
	LaneClearance float64

	ObstacleCooldown time.Duration
	GateExclusion    time.Duration
	ObstacleColors   int
}

func DefaultParams() Params {
	return Params{
		GateSpawnZ:       -60,
		ObstacleSpawnZ:   -80,
		PassedZ:          2,
		CollisionZ:       1.2,
		ActiveWindowZ:    -100,
		LaneClearance:    20,
		ObstacleCooldown: 2 * time.Second,
		GateExclusion:    2 * time.Second,
		ObstacleColors:   5,
	}
}

type Gate struct {
	ID    string  `json:"id"`
	Lane  int     `json:"lane"`
	Z     float64 `json:"z"`
	Value int     `json:"value"`
}

type Obstacle struct {
	ID         string  `json:"id"`
	Lane       int     `json:"lane"`
	Z          float64 `json:"z"`
	ColorIndex int     `json:"color_index"`
}

// Manager is owned by a single session goroutine.
type Manager struct {
	params Params
	lanes  int
	rng    *rand.Rand
	newID  func() string

	gates     []Gate
	obstacles []Obstacle

	lastGateSpawn     time.Time
	lastObstacleSpawn time.Time
	nextColor         int
}

func NewManager(lanes int, params Params, rng *rand.Rand) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Manager{params: params, lanes: lanes, rng: rng, newID: uuid.NewString}
}

func (m *Manager) Params() Params { return m.params }
func (m *Manager) Lanes() int     { return m.lanes }

func (m *Manager) Gates() []Gate {
	return append([]Gate(nil), m.gates...)
}

func (m *Manager) Obstacles() []Obstacle {
	return append([]Obstacle(nil), m.obstacles...)
}

func (m *Manager) HasGates() bool { return len(m.gates) > 0 }

func (m *Manager) LastGateSpawn() time.Time { return m.lastGateSpawn }

// Reset drops every entity and forgets spawn history.
func (m *Manager) Reset() {
	m.gates = nil
	m.obstacles = nil
	m.lastGateSpawn = time.Time{}
	m.lastObstacleSpawn = time.Time{}
	m.nextColor = 0
}

// Advance moves every entity dist units toward and past the car.
func (m *Manager) Advance(dist float64) {
	for i := range m.gates {
		m.gates[i].Z += dist
	}
	for i := range m.obstacles {
		m.obstacles[i].Z += dist
	}
}

// GatesPassed reports whether a gate set is up and all of it is behind the car.
func (m *Manager) GatesPassed() bool {
	if len(m.gates) == 0 {
		return false
	}
	for _, g := range m.gates {
		if g.Z <= m.params.PassedZ {
			return false
		}
	}
	return true
}

// Prune removes entities beyond the passed threshold and returns how many went.
func (m *Manager) Prune() (gates, obstacles int) {
	keptGates := m.gates[:0]
	for _, g := range m.gates {
		if g.Z <= m.params.PassedZ {
			keptGates = append(keptGates, g)
		}
	}
	gates = len(m.gates) - len(keptGates)
	m.gates = keptGates

	keptObstacles := m.obstacles[:0]
	for _, o := range m.obstacles {
		if o.Z <= m.params.PassedZ {
			keptObstacles = append(keptObstacles, o)
		}
	}
	obstacles = len(m.obstacles) - len(keptObstacles)
	m.obstacles = keptObstacles
	return gates, obstacles
}

// SpawnGates places one gate per option, option i in lane i. It does nothing
// and returns false while a gate set is still active.
func (m *Manager) SpawnGates(options []int, now time.Time) bool {
	if len(m.gates) > 0 {
		return false
	}
	gates := make([]Gate, len(options))
	for lane, v := range options {
		gates[lane] = Gate{ID: m.newID(), Lane: lane, Z: m.params.GateSpawnZ, Value: v}
	}
	m.gates = gates
	m.lastGateSpawn = now
	return true
}

func (m *Manager) ClearGates() {
	m.gates = nil
}

// GateAtCar returns the gate in lane that is level with the car.
func (m *Manager) GateAtCar(lane int) (Gate, bool) {
	for _, g := range m.gates {
		if g.Lane == lane && m.atCar(g.Z) {
			return g, true
		}
	}
	return Gate{}, false
}

// GateInLane returns the gate of the active set in lane, wherever it is.
func (m *Manager) GateInLane(lane int) (Gate, bool) {
	for _, g := range m.gates {
		if g.Lane == lane {
			return g, true
		}
	}
	return Gate{}, false
}

// ObstaclesAtCar lists the obstacles in lane that are level with the car.
func (m *Manager) ObstaclesAtCar(lane int) []Obstacle {
	var hits []Obstacle
	for _, o := range m.obstacles {
		if o.Lane == lane && m.atCar(o.Z) {
			hits = append(hits, o)
		}
	}
	return hits
}

func (m *Manager) RemoveObstacle(id string) {
	for i, o := range m.obstacles {
		if o.ID == id {
			m.obstacles = append(m.obstacles[:i], m.obstacles[i+1:]...)
			return
		}
	}
}

// AddObstacle places an obstacle directly, bypassing the spawn rules.
func (m *Manager) AddObstacle(lane int, z float64) Obstacle {
	o := Obstacle{ID: m.newID(), Lane: lane, Z: z, ColorIndex: m.nextColor}
	m.obstacles = append(m.obstacles, o)
	return o
}

// MaxObstacles is the traffic limit for the lane count.
func (m *Manager) MaxObstacles() int {
	return max(1, m.lanes/2)
}

// TrySpawnObstacle adds one obstacle in a random clear lane when every spacing
// rule allows it. gateDue is when the gate timer fires next.
func (m *Manager) TrySpawnObstacle(now, gateDue time.Time, gateInterval time.Duration) (Obstacle, error) {
	p := m.params

	if !m.lastObstacleSpawn.IsZero() && now.Sub(m.lastObstacleSpawn) < p.ObstacleCooldown {
		return Obstacle{}, ErrObstacleCooldown
	}
	if !m.lastGateSpawn.IsZero() && now.Sub(m.lastGateSpawn) < p.GateExclusion {
		return Obstacle{}, ErrAfterGateSpawn
	}
	if gateInterval < p.GateExclusion && len(m.gates) == 0 && gateDue.Sub(now) < p.GateExclusion {
		return Obstacle{}, ErrGateImminent
	}

	active := 0
	for _, o := range m.obstacles {
		if o.Z > p.ActiveWindowZ {
			active++
		}
	}
	if active >= m.MaxObstacles() {
		return Obstacle{}, ErrTrafficFull
	}

	eligible := m.clearLanes()
	if len(eligible) == 0 {
		return Obstacle{}, ErrNoClearLane
	}

	o := Obstacle{
		ID:         m.newID(),
		Lane:       eligible[m.rng.IntN(len(eligible))],
		Z:          p.ObstacleSpawnZ,
		ColorIndex: m.nextColor,
	}
	if p.ObstacleColors > 0 {
		m.nextColor = (m.nextColor + 1) % p.ObstacleColors
	}
	m.obstacles = append(m.obstacles, o)
	m.lastObstacleSpawn = now
	return o, nil
}

func (m *Manager) clearLanes() []int {
	blocked := make([]bool, m.lanes)
	for _, o := range m.obstacles {
		d := o.Z - m.params.ObstacleSpawnZ
		if o.Lane >= 0 && o.Lane < m.lanes && d > -m.params.LaneClearance && d < m.params.LaneClearance {
			blocked[o.Lane] = true
		}
	}
	var lanes []int
	for lane, b := range blocked {
		if !b {
			lanes = append(lanes, lane)
		}
	}
	return lanes
}

func (m *Manager) atCar(z float64) bool {
	return z > -m.params.CollisionZ && z < m.params.CollisionZ
}
