package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/fallincloud/travelog/internal/domain"
)

// Countdown display labels.
const (
	LabelDeparted = "already departed"
	LabelImminent = "starting imminently"
)

// PollInterval is the cadence at which clients re-request countdowns.
const PollInterval = 10 * time.Second

// referenceZone is the fixed civil-time zone countdowns are evaluated in,
// UTC+08:00, regardless of the server's local timezone.
var referenceZone = time.FixedZone("UTC+8", 8*60*60)

// ReferenceNow returns the current wall-clock time viewed in the fixed
// +08:00 reference zone.
func ReferenceNow() time.Time {
	return time.Now().In(referenceZone)
}

// Countdown is the result of one countdown evaluation.
type Countdown struct {
	Label  string `json:"label"`
	Urgent bool   `json:"urgent"`
}

const (
	msPerMinute = 60 * 1000
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// ComputeCountdown evaluates the remaining time from now until target and
// whether it falls inside the method's reminder threshold. Each call is
// stateless; callers re-invoke it on every poll tick with a fresh now.
//
// Once target is reached the result is terminal: the label reads departed and
// urgent is false. Urgency compares the exact millisecond difference against
// the threshold, independent of the label's whole-unit rounding.
func ComputeCountdown(target time.Time, method domain.TransportMethod, now time.Time) Countdown {
	diff := target.Sub(now)
	if diff <= 0 {
		return Countdown{Label: LabelDeparted, Urgent: false}
	}

	ms := diff.Milliseconds()
	days := ms / msPerDay
	ms -= days * msPerDay
	hours := ms / msPerHour
	ms -= hours * msPerHour
	minutes := ms / msPerMinute

	var label string
	switch {
	case days > 0:
		label = strings.Join([]string{plural(days, "day"), plural(hours, "hour"), plural(minutes, "minute")}, " ")
	case hours > 0:
		label = plural(hours, "hour") + " " + plural(minutes, "minute")
	case minutes > 0:
		label = plural(minutes, "minute")
	default:
		label = LabelImminent
	}

	return Countdown{
		Label:  label,
		Urgent: diff <= method.ReminderThreshold(),
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
