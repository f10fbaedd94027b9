package track_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tvandenbrink/tafel-racer/internal/track"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newManager(lanes int) *track.Manager {
	return track.NewManager(lanes, track.DefaultParams(), rand.New(rand.NewPCG(1, 2)))
}

func TestSpawnGates_OnePerLaneAtSpawnPoint(t *testing.T) {
	m := newManager(4)

	require.True(t, m.SpawnGates([]int{12, 16, 20, 24}, t0))

	gates := m.Gates()
	require.Len(t, gates, 4)
	ids := map[string]bool{}
	for lane, g := range gates {
		assert.Equal(t, lane, g.Lane)
		assert.Equal(t, -60.0, g.Z)
		assert.NotEmpty(t, g.ID)
		ids[g.ID] = true
	}
	assert.Len(t, ids, 4)
	assert.Equal(t, t0, m.LastGateSpawn())

	// A second set waits until the first is gone.
	assert.False(t, m.SpawnGates([]int{1, 2, 3, 4}, t0.Add(time.Second)))
	assert.Equal(t, 12, m.Gates()[0].Value)
	assert.Equal(t, t0, m.LastGateSpawn())
}

func TestAdvance_CollisionWindow(t *testing.T) {
	m := newManager(2)
	m.SpawnGates([]int{3, 6}, t0)

	m.Advance(58)
	_, ok := m.GateAtCar(0)
	assert.False(t, ok, "gate at -2 is still ahead")

	m.Advance(1)
	g, ok := m.GateAtCar(1)
	require.True(t, ok, "gate at -1 is level with the car")
	assert.Equal(t, 6, g.Value)

	m.Advance(2.5)
	_, ok = m.GateAtCar(1)
	assert.False(t, ok, "gate at 1.5 is behind the car")
	assert.False(t, m.GatesPassed())
}

func TestGatesPassedAndPrune(t *testing.T) {
	m := newManager(3)
	m.SpawnGates([]int{1, 2, 3}, t0)
	m.AddObstacle(1, -100)

	m.Advance(61.9)
	assert.False(t, m.GatesPassed())
	gates, obstacles := m.Prune()
	assert.Zero(t, gates)
	assert.Zero(t, obstacles)

	m.Advance(0.2)
	assert.True(t, m.GatesPassed())
	gates, obstacles = m.Prune()
	assert.Equal(t, 3, gates)
	assert.Zero(t, obstacles)
	assert.False(t, m.HasGates())
	assert.False(t, m.GatesPassed())
	assert.Len(t, m.Obstacles(), 1)

	m.Advance(40)
	_, obstacles = m.Prune()
	assert.Equal(t, 1, obstacles)
	assert.Empty(t, m.Obstacles())
}

func TestObstaclesAtCarAndRemove(t *testing.T) {
	m := newManager(4)
	a := m.AddObstacle(2, -0.5)
	m.AddObstacle(1, 0)
	m.AddObstacle(2, -5)

	hits := m.ObstaclesAtCar(2)
	require.Len(t, hits, 1)
	assert.Equal(t, a.ID, hits[0].ID)

	m.RemoveObstacle(a.ID)
	assert.Empty(t, m.ObstaclesAtCar(2))
	assert.Len(t, m.Obstacles(), 2)

	m.RemoveObstacle("missing")
	assert.Len(t, m.Obstacles(), 2)
}

func TestGateInLane(t *testing.T) {
	m := newManager(3)
	_, ok := m.GateInLane(0)
	assert.False(t, ok)

	m.SpawnGates([]int{4, 8, 12}, t0)
	g, ok := m.GateInLane(2)
	require.True(t, ok)
	assert.Equal(t, 12, g.Value)

	m.ClearGates()
	_, ok = m.GateInLane(2)
	assert.False(t, ok)
}

func TestMaxObstacles(t *testing.T) {
	assert.Equal(t, 1, newManager(2).MaxObstacles())
	assert.Equal(t, 1, newManager(3).MaxObstacles())
	assert.Equal(t, 3, newManager(6).MaxObstacles())
	assert.Equal(t, 5, newManager(10).MaxObstacles())
}

func TestTrySpawnObstacle_FreshTrack(t *testing.T) {
	m := newManager(4)

	o, err := m.TrySpawnObstacle(t0, t0.Add(5*time.Second), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, -80.0, o.Z)
	assert.GreaterOrEqual(t, o.Lane, 0)
	assert.Less(t, o.Lane, 4)
	assert.Equal(t, 0, o.ColorIndex)
	assert.Len(t, m.Obstacles(), 1)
}

func TestTrySpawnObstacle_Cooldown(t *testing.T) {
	m := newManager(10)
	_, err := m.TrySpawnObstacle(t0, t0.Add(time.Minute), 5*time.Second)
	require.NoError(t, err)

	_, err = m.TrySpawnObstacle(t0.Add(1999*time.Millisecond), t0.Add(time.Minute), 5*time.Second)
	assert.ErrorIs(t, err, track.ErrObstacleCooldown)

	m.Advance(30)
	_, err = m.TrySpawnObstacle(t0.Add(2*time.Second), t0.Add(time.Minute), 5*time.Second)
	assert.NoError(t, err)
}

func TestTrySpawnObstacle_NeverWithinTwoSecondsOfGateSpawn(t *testing.T) {
	m := newManager(6)
	require.True(t, m.SpawnGates([]int{1, 2, 3, 4, 5, 6}, t0))

	for ms := 0; ms < 2000; ms += 50 {
		now := t0.Add(time.Duration(ms) * time.Millisecond)
		_, err := m.TrySpawnObstacle(now, now.Add(time.Minute), 5*time.Second)
		assert.ErrorIs(t, err, track.ErrAfterGateSpawn, "at %dms", ms)
	}
	assert.Empty(t, m.Obstacles())

	_, err := m.TrySpawnObstacle(t0.Add(2*time.Second), t0.Add(time.Minute), 5*time.Second)
	assert.NoError(t, err)
}

func TestTrySpawnObstacle_GateImminent(t *testing.T) {
	m := newManager(6)
	now := t0.Add(10 * time.Second)

	_, err := m.TrySpawnObstacle(now, now.Add(500*time.Millisecond), time.Second)
	assert.ErrorIs(t, err, track.ErrGateImminent)

	// Long interval: the gate timer is not a concern.
	_, err = m.TrySpawnObstacle(now, now.Add(500*time.Millisecond), 3*time.Second)
	assert.NoError(t, err)
}

func TestTrySpawnObstacle_ShortIntervalWithActiveGates(t *testing.T) {
	m := newManager(6)
	require.True(t, m.SpawnGates([]int{1, 2, 3, 4, 5, 6}, t0))

	now := t0.Add(3 * time.Second)
	_, err := m.TrySpawnObstacle(now, now.Add(100*time.Millisecond), 100*time.Millisecond)
	assert.NoError(t, err, "the gate timer cannot fire while gates are active")
}

func TestTrySpawnObstacle_TrafficLimit(t *testing.T) {
	m := newManager(4)
	m.AddObstacle(0, -20)
	m.AddObstacle(1, -40)

	_, err := m.TrySpawnObstacle(t0, t0.Add(time.Minute), 5*time.Second)
	assert.ErrorIs(t, err, track.ErrTrafficFull)

	// Obstacles outside the window do not count.
	m2 := newManager(4)
	m2.AddObstacle(0, -120)
	m2.AddObstacle(1, -20)
	_, err = m2.TrySpawnObstacle(t0, t0.Add(time.Minute), 5*time.Second)
	assert.NoError(t, err)
}

func TestTrySpawnObstacle_PicksOnlyClearLanes(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		params := track.DefaultParams()
		m := track.NewManager(10, params, rand.New(rand.NewPCG(seed, 0)))
		// Lanes 0..3 are blocked near the spawn point.
		for lane := 0; lane < 4; lane++ {
			m.AddObstacle(lane, -80+float64(lane)*5)
		}

		o, err := m.TrySpawnObstacle(t0, t0.Add(time.Minute), 5*time.Second)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, o.Lane, 4, "seed %d picked blocked lane %d", seed, o.Lane)
	}
}

func TestTrySpawnObstacle_NoClearLane(t *testing.T) {
	params := track.DefaultParams()
	params.ActiveWindowZ = -90
	m := track.NewManager(4, params, rand.New(rand.NewPCG(1, 2)))
	// Only the last one is active, but all four sit near the spawn point.
	m.AddObstacle(0, -95)
	m.AddObstacle(1, -92)
	m.AddObstacle(2, -91)
	m.AddObstacle(3, -70)

	_, err := m.TrySpawnObstacle(t0, t0.Add(time.Minute), 5*time.Second)
	assert.ErrorIs(t, err, track.ErrNoClearLane)
	assert.Len(t, m.Obstacles(), 4)
}

func TestTrySpawnObstacle_CyclesColors(t *testing.T) {
	m := newManager(10)
	now := t0
	var colors []int
	for i := 0; i < 7; i++ {
		o, err := m.TrySpawnObstacle(now, now.Add(time.Minute), 5*time.Second)
		require.NoError(t, err)
		colors = append(colors, o.ColorIndex)
		m.Advance(200)
		m.Prune()
		now = now.Add(2 * time.Second)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 0, 1}, colors)
}

func TestReset(t *testing.T) {
	m := newManager(3)
	m.SpawnGates([]int{1, 2, 3}, t0)
	_, _ = m.TrySpawnObstacle(t0.Add(5*time.Second), t0.Add(time.Minute), 5*time.Second)

	m.Reset()
	assert.Empty(t, m.Gates())
	assert.Empty(t, m.Obstacles())
	assert.True(t, m.LastGateSpawn().IsZero())
}
