// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/theirongolddev/dataneko/internal/model"
)

// FormatBytes formats a byte count with binary suffixes.
// e.g., 1536 -> "1.5 KiB"
func FormatBytes(n uint64) string {
	return humanize.IBytes(n)
}

// FormatGB formats a gigabyte value with precision that suits its size.
func FormatGB(gb float64) string {
	switch {
	case gb >= 100:
		return fmt.Sprintf("%.0f GB", gb)
	case gb >= 10:
		return fmt.Sprintf("%.1f GB", gb)
	default:
		return fmt.Sprintf("%.2f GB", gb)
	}
}

// FormatBytesAsGB converts bytes and formats them with FormatGB.
func FormatBytesAsGB(n uint64) string {
	return FormatGB(model.ToGB(n))
}

// FormatPoints adds comma separators to a point balance.
// e.g., 12345 -> "12,345 pt"
func FormatPoints(n int64) string {
	return humanize.Comma(n) + " pt"
}

// FormatSignedPoints formats a ledger amount with an explicit sign.
func FormatSignedPoints(n int64) string {
	if n > 0 {
		return "+" + humanize.Comma(n)
	}
	return humanize.Comma(n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

// FormatHours formats fractional hours as "2d 5h" or "3h 20m".
func FormatHours(h float64) string {
	if h <= 0 {
		return "0m"
	}
	mins := int64(math.Round(h * 60))
	days := mins / (24 * 60)
	hours := (mins % (24 * 60)) / 60
	rem := mins % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, rem)
	default:
		return fmt.Sprintf("%dm", rem)
	}
}

// FormatDayOfWeek returns a 3-letter day abbreviation.
func FormatDayOfWeek(d time.Weekday) string {
	return d.String()[:3]
}

// FormatAgo renders t relative to now, e.g. "3 minutes ago".
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
