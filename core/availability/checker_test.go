package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/dockyard/core/model"
	"github.com/kilianp07/dockyard/core/registry"
	"github.com/kilianp07/dockyard/core/schedule"
)

var t0 = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func h(n int) time.Time { return t0.Add(time.Duration(n) * time.Hour) }

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(h(0), h(2), h(1), h(3)))
	assert.True(t, Overlaps(h(1), h(3), h(0), h(2)))
	assert.True(t, Overlaps(h(0), h(4), h(1), h(2)))
	assert.False(t, Overlaps(h(0), h(2), h(2), h(4)), "touching windows are not a conflict")
	assert.False(t, Overlaps(h(2), h(4), h(0), h(2)))
	assert.False(t, Overlaps(h(0), h(1), h(5), h(6)))
}

func TestIsFree(t *testing.T) {
	committed := []model.Mission{{ID: "M1", Start: h(0), End: h(2)}}
	assert.True(t, IsFree(nil, h(0), h(1)))
	assert.False(t, IsFree(committed, h(1), h(3)))
	assert.True(t, IsFree(committed, h(2), h(3)), "start equal to existing end is free")
	assert.True(t, IsFree(committed, h(-1), h(0)), "end equal to existing start is free")
	assert.True(t, IsFree(committed, h(1), h(1)), "empty window never conflicts")
}

func TestIsFreeReversedWindow(t *testing.T) {
	committed := []model.Mission{{ID: "M1", Start: h(9), End: h(13)}}
	assert.False(t, IsFree(committed, h(12), h(10)), "reversed window inside a mission conflicts")
	assert.True(t, IsFree(committed, h(20), h(14)), "reversed window after every mission is free")
}

func TestCanRefuel(t *testing.T) {
	reg := registry.Default()
	cases := []struct {
		port     model.PortID
		required bool
		want     bool
	}{
		{"A1", true, true},
		{"A1", false, true},
		{"A2", true, false},
		{"A2", false, true},
		{"B1", true, false},
	}
	for _, c := range cases {
		got, err := CanRefuel(reg, c.port, c.required)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s refuel=%v", c.port, c.required)
	}
	_, err := CanRefuel(reg, "ZZ", false)
	assert.True(t, errors.Is(err, model.ErrUnknownPort))
}

func TestCheckerIsFree(t *testing.T) {
	store := schedule.NewMemoryStore([]model.PortID{"A1"})
	require.NoError(t, store.Commit("A1", model.Mission{ID: "M1", Start: h(0), End: h(2)}))
	c := NewChecker(store)

	free, err := c.IsFree("A1", h(1), h(3))
	require.NoError(t, err)
	assert.False(t, free)

	free, err = c.IsFree("A1", h(2), h(3))
	require.NoError(t, err)
	assert.True(t, free)

	_, err = c.IsFree("B9", h(0), h(1))
	assert.True(t, errors.Is(err, model.ErrUnknownPort))
}
