package util

import (
	"fmt"
	"time"
)

// FormatDuration renders d as MM:SS from its whole-second rounding.
// Minutes are not wrapped into hours.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}

// ItemCountString is the album row subtitle.
func ItemCountString(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}
