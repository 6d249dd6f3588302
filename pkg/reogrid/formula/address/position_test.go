package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellName(t *testing.T) {
	tests := []struct {
		pos  Position
		name string
	}{
		{Position{0, 0}, "A1"},
		{Position{9, 2}, "C10"},
		{Position{0, 26}, "AA1"},
	}
	for _, tt := range tests {
		got, err := CellName(tt.pos)
		require.NoError(t, err)
		assert.Equal(t, tt.name, got)

		back, err := ParseCellName(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.pos, back)
	}

	_, err := CellName(Position{Row: -1, Col: 0})
	assert.Error(t, err)
}

func TestParseCellNameAbsolute(t *testing.T) {
	pos, err := ParseCellName("$D$4")
	require.NoError(t, err)
	assert.Equal(t, Position{Row: 3, Col: 3}, pos)
}

func TestParseRange(t *testing.T) {
	rng, err := ParseRange("C3:A1")
	require.NoError(t, err)
	assert.Equal(t, Range{Start: Position{0, 0}, End: Position{2, 2}}, rng)
	assert.Equal(t, 3, rng.Rows())
	assert.Equal(t, 3, rng.Cols())
	assert.Equal(t, "A1:C3", rng.String())

	_, err = ParseRange("A0:B2")
	assert.Error(t, err)
	_, err = ParseRange("0:2")
	assert.Error(t, err)
}

func TestRangeContainsAndIntersect(t *testing.T) {
	a := Range{Start: Position{0, 0}, End: Position{4, 4}}
	b := Range{Start: Position{3, 3}, End: Position{6, 6}}

	assert.True(t, a.Contains(Position{2, 2}))
	assert.False(t, a.Contains(Position{5, 0}))

	got, ok := a.Intersect(b)
	require.True(t, ok)
	assert.Equal(t, Range{Start: Position{3, 3}, End: Position{4, 4}}, got)

	_, ok = a.Intersect(Range{Start: Position{10, 10}, End: Position{11, 11}})
	assert.False(t, ok)
}

func TestPositionValid(t *testing.T) {
	assert.True(t, Position{0, 0}.Valid())
	assert.False(t, Position{MaxRows, 0}.Valid())
	assert.False(t, Position{0, -1}.Valid())
}
