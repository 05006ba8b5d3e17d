package ladder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraksi/internal/rejection"
)

func TestBuild_EntryAtReference(t *testing.T) {
	l, err := Build(1000, 1000)
	require.NoError(t, err)

	require.Len(t, l.Levels, 81)
	assert.Equal(t, 850.0, l.Levels[0].Price)
	assert.Equal(t, 1250.0, l.Levels[len(l.Levels)-1].Price)
	assert.Equal(t, 0, l.TicksFromReference)

	flagged := 0
	for i, lvl := range l.Levels {
		if i > 0 {
			assert.Greater(t, lvl.Price, l.Levels[i-1].Price)
		}
		if lvl.IsEntry && lvl.IsReference {
			flagged++
			assert.Equal(t, 1000.0, lvl.Price)
			assert.Equal(t, 0, lvl.TicksFromEntry)
			assert.Equal(t, 0, lvl.TicksFromReference)
			assert.Zero(t, lvl.PercentFromEntry)
			assert.Zero(t, lvl.PercentFromReference)
		}
	}
	assert.Equal(t, 1, flagged)
	assert.Equal(t, -30, l.Levels[0].TicksFromEntry)
	assert.Equal(t, 50, l.Levels[len(l.Levels)-1].TicksFromReference)
}

func TestBuild_EntryAwayFromReference(t *testing.T) {
	l, err := Build(130, 150)
	require.NoError(t, err)

	assert.Equal(t, 20, l.TicksFromReference)
	assert.InDelta(t, 15.3846, l.PercentFromReference, 1e-4)
	require.Len(t, l.Levels, 65)
	assert.Equal(t, 111.0, l.Levels[0].Price)
	assert.Equal(t, 175.0, l.Levels[len(l.Levels)-1].Price)

	var entries, refs int
	for _, lvl := range l.Levels {
		if lvl.IsEntry {
			entries++
			assert.Equal(t, 150.0, lvl.Price)
			assert.Equal(t, 20, lvl.TicksFromReference)
		}
		if lvl.IsReference {
			refs++
			assert.Equal(t, 130.0, lvl.Price)
			assert.False(t, lvl.IsEntry)
			assert.Equal(t, -20, lvl.TicksFromEntry)
		}
	}
	assert.Equal(t, 1, entries)
	assert.Equal(t, 1, refs)
}

func TestBuild_AcrossTickBoundary(t *testing.T) {
	l, err := Build(190, 190)
	require.NoError(t, err)

	// 162..199 by 1, then 200..256 by 2
	require.Len(t, l.Levels, 38+29)
	byPrice := make(map[float64]int)
	for _, lvl := range l.Levels {
		byPrice[lvl.Price] = lvl.TicksFromEntry
	}
	assert.Equal(t, 9, byPrice[199])
	assert.Equal(t, 10, byPrice[200])
	assert.Equal(t, 11, byPrice[202])
	_, odd := byPrice[201]
	assert.False(t, odd)
	assert.Equal(t, 256.0, l.Levels[len(l.Levels)-1].Price)
}

func TestBuild_Rejections(t *testing.T) {
	_, err := Build(1000, 1300)
	assert.ErrorIs(t, err, rejection.ErrOutOfBand)

	_, err = Build(1000, 800)
	assert.ErrorIs(t, err, rejection.ErrOutOfBand)

	_, err = Build(1000, 1003)
	assert.ErrorIs(t, err, rejection.ErrUnreachable)

	_, err = Build(30, 30)
	assert.ErrorIs(t, err, rejection.ErrUncovered)

	_, err = Build(1000, -1)
	assert.ErrorIs(t, err, rejection.ErrInvalidInput)
}

func TestBuild_IterationLimit(t *testing.T) {
	_, err := Build(2_000_000, 2_000_000)
	assert.ErrorIs(t, err, rejection.ErrIterationLimit)
}

func TestTrailingStop(t *testing.T) {
	plan, err := TrailingStop(1000, 4)
	require.NoError(t, err)

	assert.Equal(t, 5.0, plan.TickSize)
	assert.Equal(t, 980.0, plan.StopPrice)
	assert.Equal(t, 20.0, plan.Drop)
	assert.InDelta(t, 2.0, plan.DropPercent, 1e-12)

	require.Len(t, plan.Levels, 7)
	assert.Equal(t, -7, plan.Levels[0].Offset)
	assert.Equal(t, 965.0, plan.Levels[0].Price)
	assert.Equal(t, -1, plan.Levels[6].Offset)
	assert.Equal(t, 995.0, plan.Levels[6].Price)

	stops := 0
	for _, lvl := range plan.Levels {
		if lvl.IsStop {
			stops++
			assert.Equal(t, 980.0, lvl.Price)
		}
	}
	assert.Equal(t, 1, stops)
}

func TestTrailingStop_AcrossBoundary(t *testing.T) {
	plan, err := TrailingStop(204, 3)
	require.NoError(t, err)
	assert.Equal(t, 2.0, plan.TickSize)
	assert.Equal(t, 199.0, plan.StopPrice)
	assert.Equal(t, 5.0, plan.Drop)
}

func TestTrailingStop_Rejections(t *testing.T) {
	_, err := TrailingStop(0, 3)
	assert.ErrorIs(t, err, rejection.ErrInvalidInput)

	_, err = TrailingStop(100, 0)
	assert.ErrorIs(t, err, rejection.ErrInvalidInput)

	_, err = TrailingStop(3, 5)
	assert.ErrorIs(t, err, rejection.ErrInvalidInput)

	// The plan stops listing levels once prices run out.
	plan, err := TrailingStop(5, 2)
	require.NoError(t, err)
	assert.Len(t, plan.Levels, 4)
}
