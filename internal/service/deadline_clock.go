package service

import (
	"fmt"
	"time"
)

// TimeRemaining renders the countdown label for a review deadline as seen at
// the given instant. Durations are floored, so 25h away reads as one day and
// 59 minutes away still counts as less than an hour. Overdue starts strictly
// after the deadline; at the deadline instant there is still time.
func TimeRemaining(deadline, now time.Time) string {
	remaining := deadline.Sub(now)
	switch {
	case remaining < 0:
		return "overdue"
	case remaining >= 24*time.Hour:
		return fmt.Sprintf("%dd remaining", int(remaining.Hours())/24)
	case remaining >= time.Hour:
		return fmt.Sprintf("%dh remaining", int(remaining.Hours()))
	default:
		return "less than 1h remaining"
	}
}
