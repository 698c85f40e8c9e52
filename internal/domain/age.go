package domain

import "fmt"

// Millisecond spans for the age bands and the rolling stats window.
const (
	minuteMillis = 60_000
	hourMillis   = 3_600_000
	dayMillis    = 86_400_000
)

// TimeAgo formats the age of a timestamp (epoch milliseconds) as relative
// text: "Just now" under a minute, then minutes, hours, and days with
// floor division in each band. Pluralized only when n > 1.
func TimeAgo(timestamp int64) string {
	diff := NowMillis() - timestamp
	minutes := diff / minuteMillis
	hours := diff / hourMillis
	days := diff / dayMillis

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%d minute%s ago", minutes, plural(minutes))
	case hours < 24:
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	default:
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	}
}

func plural(n int64) string {
	if n > 1 {
		return "s"
	}
	return ""
}
