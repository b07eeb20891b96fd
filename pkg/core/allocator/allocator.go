package allocator

import (
	"sort"

	"github.com/campusworks/seatwise/pkg/core/model"
)

// AllocationConfig contains the inputs for a single allocation run
type AllocationConfig struct {
	// Students eligible for this run (one batch)
	Students []model.Student

	// Courses in the batch's course pool. Inactive courses are skipped.
	Courses []model.Course

	// Preferences across all students in the run
	Preferences []model.Preference
}

// Allocation is the outcome for one student
type Allocation struct {
	StudentID string

	// CourseID is empty for WAITLISTED and NOT_ALLOCATED outcomes
	CourseID string

	// Rank is the preference rank at which the seat was granted
	// (zero when no seat was granted)
	Rank int

	Status model.AllocationStatus
}

// AllocationOutcome represents the result of an allocation run
type AllocationOutcome struct {
	// Allocations holds exactly one entry per student in the config
	Allocations []Allocation

	// SeatStates is the final seat state per course ID
	SeatStates map[string]*SeatState

	TotalStudents     int
	AllocatedCount    int
	WaitlistedCount   int
	NotAllocatedCount int

	// AllocationsByCourse counts granted seats per course ID
	AllocationsByCourse map[string]int

	// AllocationsByCategory counts granted seats per reservation category
	AllocationsByCategory map[model.ReservationCategory]int
}

// Allocate runs the merit-ordered greedy allocation for one batch.
//
// Students are processed in descending merit order (qualifying marks), ties
// broken by ascending admission number so re-runs on the same snapshot are
// reproducible. Each student's preferences are tried in ascending rank order;
// the first course with a seat in the student's category bucket, or failing
// that the unreserved pool, wins. Students whose every preferred course is
// out of seats are waitlisted; students with no preferences at all are
// recorded as not allocated.
//
// Seat state construction happens up front so a quota ConfigurationError
// aborts the run before any allocation is made.
func Allocate(config AllocationConfig) (*AllocationOutcome, error) {
	// Build seat state for every active course in the pool
	seatStates := make(map[string]*SeatState, len(config.Courses))
	for _, course := range config.Courses {
		if !course.Active {
			continue
		}
		state, err := BuildSeatState(course)
		if err != nil {
			return nil, err
		}
		seatStates[course.ID] = state
	}

	// Group preferences by student, sorted by rank. Only relative order
	// matters; gaps between ranks are ignored.
	prefsByStudent := make(map[string][]model.Preference)
	for _, pref := range config.Preferences {
		prefsByStudent[pref.StudentID] = append(prefsByStudent[pref.StudentID], pref)
	}
	for _, prefs := range prefsByStudent {
		sort.Slice(prefs, func(i, j int) bool {
			return prefs[i].Rank < prefs[j].Rank
		})
	}

	// Merit order: marks descending, admission number ascending on ties
	students := make([]model.Student, len(config.Students))
	copy(students, config.Students)
	sort.Slice(students, func(i, j int) bool {
		if students[i].QualifyingMarks != students[j].QualifyingMarks {
			return students[i].QualifyingMarks > students[j].QualifyingMarks
		}
		return students[i].AdmissionNo < students[j].AdmissionNo
	})

	outcome := &AllocationOutcome{
		Allocations:           make([]Allocation, 0, len(students)),
		SeatStates:            seatStates,
		TotalStudents:         len(students),
		AllocationsByCourse:   make(map[string]int),
		AllocationsByCategory: make(map[model.ReservationCategory]int),
	}

	for _, student := range students {
		allocation := allocateStudent(student, prefsByStudent[student.ID], seatStates)
		outcome.Allocations = append(outcome.Allocations, allocation)

		switch allocation.Status {
		case model.StatusAllocated:
			outcome.AllocatedCount++
			outcome.AllocationsByCourse[allocation.CourseID]++
			outcome.AllocationsByCategory[student.Category]++
		case model.StatusWaitlisted:
			outcome.WaitlistedCount++
		case model.StatusNotAllocated:
			outcome.NotAllocatedCount++
		}
	}

	return outcome, nil
}

// allocateStudent tries each of the student's preferences in rank order and
// claims the first available seat. Preferences pointing at unknown or
// inactive courses are skipped.
func allocateStudent(student model.Student, prefs []model.Preference, seatStates map[string]*SeatState) Allocation {
	if len(prefs) == 0 {
		return Allocation{
			StudentID: student.ID,
			Status:    model.StatusNotAllocated,
		}
	}

	for _, pref := range prefs {
		state, ok := seatStates[pref.CourseID]
		if !ok {
			continue
		}
		if state.TakeSeat(student.Category) {
			return Allocation{
				StudentID: student.ID,
				CourseID:  pref.CourseID,
				Rank:      pref.Rank,
				Status:    model.StatusAllocated,
			}
		}
	}

	// No seat anywhere on the preference list
	return Allocation{
		StudentID: student.ID,
		Status:    model.StatusWaitlisted,
	}
}
