package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tilebar/internal/theme"
	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

func TestDecodeAppliesValidKeys(t *testing.T) {
	opts, reset, err := Decode(KindCPU, map[string]any{
		"colorTheme":    "red",
		"warnThreshold": float64(65),
		"showIcon":      false,
		"label":         "CPU",
	})
	require.NoError(t, err)
	assert.Empty(t, reset)

	cpu, ok := opts.(*CPU)
	require.True(t, ok)
	assert.Equal(t, theme.Red, cpu.ColorTheme)
	assert.Equal(t, 65, cpu.WarnThreshold)
	assert.False(t, cpu.ShowIcon)
	assert.Equal(t, "CPU", cpu.Label)
}

func TestDecodeInvalidColorThemeFallsBackToDefault(t *testing.T) {
	opts, reset, err := Decode(KindBattery, map[string]any{
		"colorTheme":   "neon-orange",
		"lowThreshold": float64(10),
	})
	require.NoError(t, err)

	battery := opts.(*Battery)
	assert.Equal(t, theme.Green, battery.ColorTheme)
	assert.Equal(t, 10, battery.LowThreshold)
	assert.Equal(t, []string{"colorTheme"}, reset)
}

func TestDecodeTypeMismatchKeepsDefault(t *testing.T) {
	opts, reset, err := Decode(KindMedia, map[string]any{
		"maxLength":  "long",
		"showArtist": false,
	})
	require.NoError(t, err)

	media := opts.(*Media)
	assert.Equal(t, 30, media.MaxLength)
	assert.False(t, media.ShowArtist)
	assert.Contains(t, reset, "maxLength")
}

func TestDecodeOutOfRangeResets(t *testing.T) {
	opts, reset, err := Decode(KindCPU, map[string]any{"warnThreshold": float64(400)})
	require.NoError(t, err)
	assert.Equal(t, 80, opts.(*CPU).WarnThreshold)
	assert.Equal(t, []string{"warnThreshold"}, reset)
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	opts, reset, err := Decode(KindClock, map[string]any{"sparkles": true})
	require.NoError(t, err)
	assert.Empty(t, reset)
	assert.Equal(t, Defaults(KindClock), opts)
}

func TestDecodeEmptyRequiredFieldResets(t *testing.T) {
	opts, reset, err := Decode(KindClock, map[string]any{"format": ""})
	require.NoError(t, err)
	assert.Equal(t, "15:04", opts.(*Clock).Format)
	assert.Equal(t, []string{"format"}, reset)
}

func TestDecodeUnknownKind(t *testing.T) {
	_, _, err := Decode("weather", nil)
	var vErr *tberrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "type", vErr.Field)
	assert.Nil(t, MustDecode("weather", nil))
}

func TestDefaultsAreValid(t *testing.T) {
	for _, kind := range Kinds() {
		opts := Defaults(kind)
		require.NotNil(t, opts, kind)
		assert.Equal(t, kind, opts.Kind())
		assert.NoError(t, Validator().Struct(opts), kind)
	}
}

func TestKindNextWraps(t *testing.T) {
	assert.Equal(t, KindMemory, KindCPU.Next())
	assert.Equal(t, KindCPU, KindNotion.Next())
	assert.Equal(t, KindCPU, Kind("bogus").Next())
	assert.True(t, KindRSS.Valid())
	assert.False(t, Kind("bogus").Valid())
}
