package busname

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVector(t *testing.T) {
	bus, err := Parse("DATA[0..3]")
	require.NoError(t, err)

	assert.Equal(t, KindVector, bus.Kind)
	assert.Equal(t, "DATA", bus.Name)
	assert.Equal(t, 0, bus.Start)
	assert.Equal(t, 3, bus.End)
	require.Len(t, bus.Members, 4)
	for i, m := range bus.Members {
		assert.Equal(t, i, m.Index)
	}
	assert.Equal(t, "DATA2", bus.Members[2].Name)
	assert.Equal(t, "DATA[0..3]", bus.String())
}

func TestParseReversedVector(t *testing.T) {
	bus, err := Parse("A[7..4]")
	require.NoError(t, err)

	assert.Equal(t, 4, bus.Start)
	assert.Equal(t, 7, bus.End)
	assert.Equal(t, []string{"A4", "A5", "A6", "A7"}, bus.Flatten())
}

func TestParseGroup(t *testing.T) {
	bus, err := Parse("USB{DP DM VBUS}")
	require.NoError(t, err)

	assert.Equal(t, KindGroup, bus.Kind)
	assert.Equal(t, "USB", bus.Name)
	require.Len(t, bus.Members, 3)
	assert.Equal(t, "DM", bus.Members[1].Name)
	assert.Nil(t, bus.Members[1].Bus)
	assert.Equal(t, []string{"USB.DP", "USB.DM", "USB.VBUS"}, bus.Flatten())
}

func TestParseAnonymousGroupWithVector(t *testing.T) {
	bus, err := Parse("{SDA SCL ADDR[0..1]}")
	require.NoError(t, err)

	assert.Equal(t, "", bus.Name)
	require.Len(t, bus.Members, 3)

	vec := bus.Members[2]
	require.NotNil(t, vec.Bus)
	assert.Equal(t, "ADDR[0..1]", vec.Name)
	assert.Equal(t, KindVector, vec.Bus.Kind)
	assert.Equal(t, []string{"SDA", "SCL", "ADDR0", "ADDR1"}, bus.Flatten())
}

func TestParseDottedMemberNames(t *testing.T) {
	bus, err := Parse("MEM{CTRL.WE ADDR[0..1]}")
	require.NoError(t, err)

	assert.Equal(t, []string{"MEM.CTRL.WE", "MEM.ADDR0", "MEM.ADDR1"}, bus.Flatten())
}

func TestParseWhitespaceInRange(t *testing.T) {
	bus, err := Parse("D[ 0 .. 1 ]")
	require.NoError(t, err)
	assert.Equal(t, []string{"D0", "D1"}, bus.Flatten())
}

func TestParseNets(t *testing.T) {
	for _, text := range []string{"VCC", "Net-(R1-Pad2)", "/sub/CLK", "A[3]", "{}", "DATA[0..3]x", "X[0..]"} {
		_, err := Parse(text)
		if !errors.Is(err, ErrNotBus) {
			t.Errorf("Expected %q to be a net, got err=%v", text, err)
		}
		assert.False(t, IsBus(text), text)
	}
}
