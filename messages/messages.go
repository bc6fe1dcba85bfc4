package messages

import (
	"fmt"
	"time"
)

func ClickHere(url string) string {
	return fmt.Sprintf("[Click here](%v)", url)
}

// FormatDuration renders an uptime-style duration, folding whole days out
// of Go's default hour-based formatting.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	days := d / (24 * time.Hour)
	if days == 0 {
		return d.String()
	}

	return fmt.Sprintf("%vd%v", int64(days), d-days*24*time.Hour)
}
