package allocator

import (
	"fmt"
	"math"

	"github.com/campusworks/seatwise/pkg/core/model"
)

// ConfigurationError indicates an invalid quota setup on a course. It aborts
// an allocation run before any seat is granted.
type ConfigurationError struct {
	CourseID   string
	CourseCode string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid quota configuration on course %s: %s", e.CourseCode, e.Reason)
}

// SeatState tracks remaining seats on one course during an allocation run.
// Reserved seats are bucketed per category; seats lost to flooring and
// percentage points never assigned to a category both land in the unreserved
// pool, which any category may draw from once its own bucket is empty.
type SeatState struct {
	CourseID string

	// Quota is the computed per-category seat count, fixed at build time
	Quota map[model.ReservationCategory]int

	// Remaining is the per-category count still unclaimed
	Remaining map[model.ReservationCategory]int

	// UnreservedQuota is the unreserved pool size at build time
	UnreservedQuota int

	// Unreserved is the unreserved count still unclaimed
	Unreserved int
}

// BuildSeatState computes the seat buckets for a course from its quota
// percentages. Each category gets floor(capacity * pct / 100) seats; whatever
// capacity remains is unreserved. Percentages summing over 100, negative
// percentages and negative capacity all fail with ConfigurationError.
func BuildSeatState(course model.Course) (*SeatState, error) {
	if course.MaxCapacity < 0 {
		return nil, &ConfigurationError{
			CourseID:   course.ID,
			CourseCode: course.Code,
			Reason:     fmt.Sprintf("capacity is negative: %d", course.MaxCapacity),
		}
	}

	var totalPct float64
	for category, pct := range course.QuotaPercents {
		if pct < 0 {
			return nil, &ConfigurationError{
				CourseID:   course.ID,
				CourseCode: course.Code,
				Reason:     fmt.Sprintf("category %s has negative percentage %.2f", category, pct),
			}
		}
		totalPct += pct
	}
	if totalPct > 100 {
		return nil, &ConfigurationError{
			CourseID:   course.ID,
			CourseCode: course.Code,
			Reason:     fmt.Sprintf("quota percentages sum to %.2f, must not exceed 100", totalPct),
		}
	}

	state := &SeatState{
		CourseID:  course.ID,
		Quota:     make(map[model.ReservationCategory]int, len(model.Categories)),
		Remaining: make(map[model.ReservationCategory]int, len(model.Categories)),
	}

	reserved := 0
	for _, category := range model.Categories {
		seats := int(math.Floor(float64(course.MaxCapacity) * course.QuotaPercents[category] / 100))
		state.Quota[category] = seats
		state.Remaining[category] = seats
		reserved += seats
	}

	state.UnreservedQuota = course.MaxCapacity - reserved
	state.Unreserved = state.UnreservedQuota

	return state, nil
}

// TakeSeat claims a seat for the given category, drawing from the category's
// bucket first and the unreserved pool once that is empty. Returns false when
// neither has a seat left.
func (s *SeatState) TakeSeat(category model.ReservationCategory) bool {
	if s.Remaining[category] > 0 {
		s.Remaining[category]--
		return true
	}
	if s.Unreserved > 0 {
		s.Unreserved--
		return true
	}
	return false
}

// RemainingFor reports the seats left in a category's own bucket, excluding
// the unreserved pool.
func (s *SeatState) RemainingFor(category model.ReservationCategory) int {
	return s.Remaining[category]
}

// TotalRemaining reports all seats left on the course across every bucket.
func (s *SeatState) TotalRemaining() int {
	total := s.Unreserved
	for _, remaining := range s.Remaining {
		total += remaining
	}
	return total
}
