package colorutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	c, ok := ParseHex("#FF8000")
	require.True(t, ok)
	assert.InDelta(t, 1.0, c.R, 1e-9)
	assert.InDelta(t, 128.0/255, c.G, 1e-9)
	assert.InDelta(t, 1.0, c.A, 1e-9)
	assert.False(t, c.HasAlpha)

	c, ok = ParseHex("ff800080")
	require.True(t, ok)
	assert.True(t, c.HasAlpha)
	assert.InDelta(t, 128.0/255, c.A, 1e-9)

	for _, bad := range []string{"", "#fff", "#GG0000", "#12345", "red", "#1234567"} {
		_, ok := ParseHex(bad)
		assert.False(t, ok, bad)
	}
}

func TestHexRoundTripsCase(t *testing.T) {
	c, ok := ParseHex("#a1b2c3d4")
	require.True(t, ok)
	assert.Equal(t, "#A1B2C3D4", c.Hex())
}

func TestEffectiveLuminance(t *testing.T) {
	assert.InDelta(t, 255, EffectiveLuminance("#FFFFFF", true), 0.01)
	assert.InDelta(t, 0, EffectiveLuminance("#000000", false), 0.01)
	// fully transparent white over black
	assert.InDelta(t, 0, EffectiveLuminance("#FFFFFF00", true), 0.01)
	assert.InDelta(t, 255, EffectiveLuminance("nope", true), 0.01)
	assert.InDelta(t, 0, EffectiveLuminance("nope", false), 0.01)
}

func TestShift(t *testing.T) {
	assert.Equal(t, "#969696", Shift("#000000", 150))
	assert.Equal(t, "#FFFFFF80", Shift("#F0F0F080", 100))
	assert.Equal(t, "bad", Shift("bad", 10))
}

func TestSuggested(t *testing.T) {
	// readable colors are kept
	assert.Equal(t, "#3366CC", Suggested("#3366CC", false))

	// too transparent on dark, opaque base is fine
	assert.Equal(t, "#FFFFFFE6", Suggested("#FFFFFF10", true))

	// black on dark becomes white
	assert.Equal(t, "#FFFFFF", Suggested("#000000", true))
	assert.Equal(t, "#000000", Suggested("#FFFFFF", false))

	// dark navy on dark background is lifted
	assert.Equal(t, "#96969E", Suggested("#000008", true))

	assert.Equal(t, "inherit", Suggested("inherit", true))
}

func TestOpaque(t *testing.T) {
	got, ok := Opaque("#FFFFFF80", true)
	require.True(t, ok)
	assert.Equal(t, "#808080", got)

	_, ok = Opaque("", true)
	assert.False(t, ok)
}
