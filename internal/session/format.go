package session

import (
	"fmt"
	"time"
)

// FormatRemaining renders d as zero padded MM:SS, rounding down and
// clamping at zero.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
