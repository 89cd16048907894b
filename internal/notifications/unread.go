package notifications

import "hirelink/internal/models"

// UnreadTotal sums one side's unread counters over a thread snapshot.
// Archived threads still count: archiving hides a thread from the default
// listing, it does not read its messages.
func UnreadTotal(threads []*models.Thread, side models.Side) int {
	total := 0
	for _, t := range threads {
		if t == nil {
			continue
		}
		total += t.UnreadFor(side)
	}
	return total
}
