package theme

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByNameFallsBackToDefault(t *testing.T) {
	require.Equal(t, "tokyo-night", ByName("tokyo-night").Name)
	require.Equal(t, FlexokiDark.Name, ByName("nope").Name)
}

func TestForLevel(t *testing.T) {
	th := FlexokiDark
	require.Equal(t, th.Good, th.ForLevel(0.2, false))
	require.Equal(t, th.Warn, th.ForLevel(0.75, false))
	require.Equal(t, th.Bad, th.ForLevel(0.95, false))

	// Inverted: a nearly empty stamina bar is bad.
	require.Equal(t, th.Bad, th.ForLevel(0.05, true))
	require.Equal(t, th.Good, th.ForLevel(0.9, true))
}
