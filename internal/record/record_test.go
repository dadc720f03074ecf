package record

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Garsondee/Nightwood/internal/sim"
)

func newRun(t *testing.T, opts ...sim.SimOption) *sim.TestSim {
	t.Helper()
	ts, err := sim.NewTestSim(opts...)
	require.NoError(t, err)
	return ts
}

func TestRecorder_RoundTrip(t *testing.T) {
	ts := newRun(t, sim.WithPage(0, 1.7, -3))
	id := NewSessionID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, HeaderFor(id, 7, ts.Sim.World(), ts.Sim.Tuning()), 1)
	require.NoError(t, err)

	var want []sim.TickResult
	for i := 0; i < 20; i++ {
		r := ts.Step(0.1, sim.MovementIntents{Forward: true})
		want = append(want, r)
		require.NoError(t, rec.Record(r))
	}
	assert.Equal(t, 20, rec.Frames())

	rd, err := NewReader(&buf)
	require.NoError(t, err)
	h := rd.Header()
	assert.Equal(t, id, h.SessionID)
	assert.Equal(t, int64(7), h.Seed)
	assert.Equal(t, ts.Sim.Tuning(), h.Tuning)

	frames, err := rd.ReadAll()
	require.NoError(t, err)
	require.Len(t, frames, 20)
	for i, f := range frames {
		assert.Equal(t, want[i].Tick, f.Tick)
		assert.Equal(t, id, f.SessionID)
		assert.InDelta(t, want[i].Player.Position.Z(), f.Player[2], 1e-12)
		assert.Equal(t, want[i].Collected, f.Collected)
	}

	var pickup bool
	for _, f := range frames {
		for _, e := range f.Events {
			if e == "page_pickup" {
				pickup = true
			}
		}
	}
	assert.True(t, pickup, "page pickup should be in the recorded events")
}

func TestRecorder_StrideKeepsEventTicks(t *testing.T) {
	ts := newRun(t, sim.WithAdversary(0, 1.7, -20))
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, Header{SessionID: "s"}, 10)
	require.NoError(t, err)

	// Walk toward the adversary until caught.
	for i := 0; i < 200; i++ {
		r := ts.Step(0.1, sim.MovementIntents{Forward: true})
		require.NoError(t, rec.Record(r))
	}
	rd, err := NewReader(&buf)
	require.NoError(t, err)
	frames, err := rd.ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, frames)

	last := frames[len(frames)-1]
	assert.True(t, last.GameOver)
	assert.Equal(t, "caught", last.Reason)
	assert.Contains(t, last.Events, "captured")
	// The frozen session repeats its last tick; that is written once.
	seen := map[int]bool{}
	for _, f := range frames {
		assert.False(t, seen[f.Tick], "tick %d written twice", f.Tick)
		seen[f.Tick] = true
		if f.Tick%10 != 0 {
			assert.NotEmpty(t, f.Events, "off-stride tick %d kept without events", f.Tick)
		}
	}
}

func TestReader_RejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(&Header{Version: 99}))
	_, err := NewReader(&buf)
	assert.ErrorIs(t, err, ErrVersion)
}

func TestEncodeDecode(t *testing.T) {
	ts := newRun(t)
	r := ts.Step(0.5, sim.MovementIntents{Left: true})
	data, err := Encode(FromTick("abc", r))
	require.NoError(t, err)
	f, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "abc", f.SessionID)
	assert.Equal(t, r.Tick, f.Tick)
	assert.Len(t, f.Remaining, 3)
	assert.InDelta(t, r.Battery.Level, f.Battery, 1e-12)
}
