package reports

import (
	"fmt"
	"time"
)

// TimeAgo formats the age of a report at minute granularity:
// "Nm ago" under an hour, "Nh ago" under a day, otherwise "Nd ago".
func TimeAgo(now, ts time.Time) string {
	minutes := int(now.Sub(ts) / time.Minute)
	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%dh ago", minutes/60)
	default:
		return fmt.Sprintf("%dd ago", minutes/1440)
	}
}
