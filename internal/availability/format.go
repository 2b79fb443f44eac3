package availability

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders d as "N hours M minutes". Parts that are zero are
// dropped; a span under a minute renders as "0 minutes".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int64(d / time.Hour)
	minutes := max(0, int64(d/time.Minute)-hours*60)

	var b strings.Builder
	switch {
	case hours == 1:
		b.WriteString("1 hour ")
	case hours > 1:
		fmt.Fprintf(&b, "%d hours ", hours)
	}
	if minutes > 0 || hours == 0 {
		fmt.Fprintf(&b, "%d minutes", minutes)
	}
	return strings.TrimSpace(b.String())
}
