package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "0 B", FormatBytes(0))
	require.Equal(t, "1.5 KiB", FormatBytes(1536))
	require.Equal(t, "1.0 GiB", FormatBytes(1<<30))
}

func TestFormatGB(t *testing.T) {
	require.Equal(t, "0.25 GB", FormatGB(0.25))
	require.Equal(t, "12.5 GB", FormatGB(12.5))
	require.Equal(t, "120 GB", FormatGB(120.4))
	require.Equal(t, "2.00 GB", FormatBytesAsGB(2<<30))
}

func TestFormatPoints(t *testing.T) {
	require.Equal(t, "12,345 pt", FormatPoints(12345))
	require.Equal(t, "+20", FormatSignedPoints(20))
	require.Equal(t, "-1,000", FormatSignedPoints(-1000))
	require.Equal(t, "0", FormatSignedPoints(0))
}

func TestFormatHours(t *testing.T) {
	require.Equal(t, "0m", FormatHours(0))
	require.Equal(t, "45m", FormatHours(0.75))
	require.Equal(t, "3h 20m", FormatHours(3+1.0/3))
	require.Equal(t, "10d 0h", FormatHours(240))
}

func TestFormatDayOfWeek(t *testing.T) {
	require.Equal(t, "Sun", FormatDayOfWeek(time.Sunday))
	require.Equal(t, "Sat", FormatDayOfWeek(time.Saturday))
	require.Equal(t, "never", FormatAgo(time.Time{}))
}
