package booking

import (
	"venuehub/internal/models"
)

// HasConflict reports whether the candidate window collides with any of
// the venue's still-blocking bookings.
//
// The time comparison is applied to the whole date span, not per
// overlapping day: a 09:00-12:00 booking on Monday and a 11:00-13:00
// request for the same venue conflict even when their date ranges only
// touch on one day. This coarse semantics is load-bearing; callers
// depend on it when deciding which requests to accept.
func HasConflict(existing []models.Booking, candidate models.Window) bool {
	for i := range existing {
		if !existing[i].Blocks() {
			continue
		}
		if existing[i].Window().Overlaps(candidate) {
			return true
		}
	}
	return false
}
