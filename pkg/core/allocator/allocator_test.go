package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/seatwise/pkg/core/model"
)

func course(id string, capacity int, percents map[model.ReservationCategory]float64) model.Course {
	return model.Course{
		ID:            id,
		Code:          id,
		MaxCapacity:   capacity,
		QuotaPercents: percents,
		Active:        true,
	}
}

func student(id string, marks float64, cat model.ReservationCategory) model.Student {
	return model.Student{
		ID:              id,
		AdmissionNo:     id,
		QualifyingMarks: marks,
		Category:        cat,
	}
}

func TestAllocate_SingleGeneralStudent(t *testing.T) {
	// Two seats total, one reserved for GENERAL; the lone GEN student gets
	// their rank-1 preference and the GEN bucket empties
	config := AllocationConfig{
		Students: []model.Student{student("s1", 90, model.CategoryGeneral)},
		Courses: []model.Course{
			course("c1", 2, map[model.ReservationCategory]float64{model.CategoryGeneral: 50}),
		},
		Preferences: []model.Preference{
			{StudentID: "s1", CourseID: "c1", Rank: 1},
		},
	}

	outcome, err := Allocate(config)
	require.NoError(t, err)
	require.Len(t, outcome.Allocations, 1)

	alloc := outcome.Allocations[0]
	assert.Equal(t, model.StatusAllocated, alloc.Status)
	assert.Equal(t, "c1", alloc.CourseID)
	assert.Equal(t, 1, alloc.Rank)
	assert.Equal(t, 0, outcome.SeatStates["c1"].RemainingFor(model.CategoryGeneral))
}

func TestAllocate_NoPreferencesMeansNotAllocated(t *testing.T) {
	config := AllocationConfig{
		Students: []model.Student{student("s1", 90, model.CategoryGeneral)},
		Courses: []model.Course{
			course("c1", 5, map[model.ReservationCategory]float64{model.CategoryGeneral: 100}),
		},
	}

	outcome, err := Allocate(config)
	require.NoError(t, err)
	require.Len(t, outcome.Allocations, 1)

	alloc := outcome.Allocations[0]
	assert.Equal(t, model.StatusNotAllocated, alloc.Status)
	assert.Empty(t, alloc.CourseID)
	assert.Zero(t, alloc.Rank)
	assert.Equal(t, 1, outcome.NotAllocatedCount)
}

func TestAllocate_ZeroSeatCourseWaitlistsEveryone(t *testing.T) {
	config := AllocationConfig{
		Students: []model.Student{
			student("s1", 90, model.CategoryGeneral),
			student("s2", 80, model.CategoryOBC),
		},
		Courses: []model.Course{course("c1", 0, nil)},
		Preferences: []model.Preference{
			{StudentID: "s1", CourseID: "c1", Rank: 1},
			{StudentID: "s2", CourseID: "c1", Rank: 1},
		},
	}

	outcome, err := Allocate(config)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.WaitlistedCount)
	for _, alloc := range outcome.Allocations {
		assert.Equal(t, model.StatusWaitlisted, alloc.Status)
		assert.Empty(t, alloc.CourseID)
	}
}

func TestAllocate_ZeroCategoryQuotaFallsBackToUnreserved(t *testing.T) {
	// ST has no quota anywhere, but the course has an unreserved pool
	config := AllocationConfig{
		Students: []model.Student{student("s1", 70, model.CategoryST)},
		Courses: []model.Course{
			course("c1", 10, map[model.ReservationCategory]float64{model.CategoryGeneral: 50}),
		},
		Preferences: []model.Preference{
			{StudentID: "s1", CourseID: "c1", Rank: 1},
		},
	}

	outcome, err := Allocate(config)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAllocated, outcome.Allocations[0].Status)
	// The unreserved pool paid for the seat; GENERAL quota untouched
	assert.Equal(t, 5, outcome.SeatStates["c1"].RemainingFor(model.CategoryGeneral))
	assert.Equal(t, 4, outcome.SeatStates["c1"].Unreserved)
}

func TestAllocate_MeritOrderWinsContestedSeat(t *testing.T) {
	// One seat, two students wanting it: higher marks wins, the other is
	// allocated their second preference
	config := AllocationConfig{
		Students: []model.Student{
			student("s-low", 60, model.CategoryGeneral),
			student("s-high", 95, model.CategoryGeneral),
		},
		Courses: []model.Course{
			course("c1", 1, map[model.ReservationCategory]float64{model.CategoryGeneral: 100}),
			course("c2", 1, map[model.ReservationCategory]float64{model.CategoryGeneral: 100}),
		},
		Preferences: []model.Preference{
			{StudentID: "s-low", CourseID: "c1", Rank: 1},
			{StudentID: "s-low", CourseID: "c2", Rank: 2},
			{StudentID: "s-high", CourseID: "c1", Rank: 1},
		},
	}

	outcome, err := Allocate(config)
	require.NoError(t, err)

	byStudent := make(map[string]Allocation)
	for _, alloc := range outcome.Allocations {
		byStudent[alloc.StudentID] = alloc
	}

	assert.Equal(t, "c1", byStudent["s-high"].CourseID)
	assert.Equal(t, 1, byStudent["s-high"].Rank)
	assert.Equal(t, "c2", byStudent["s-low"].CourseID)
	assert.Equal(t, 2, byStudent["s-low"].Rank)
}

func TestAllocate_TieBrokenByAdmissionNumber(t *testing.T) {
	config := AllocationConfig{
		Students: []model.Student{
			student("b-200", 80, model.CategoryGeneral),
			student("a-100", 80, model.CategoryGeneral),
		},
		Courses: []model.Course{
			course("c1", 1, map[model.ReservationCategory]float64{model.CategoryGeneral: 100}),
		},
		Preferences: []model.Preference{
			{StudentID: "b-200", CourseID: "c1", Rank: 1},
			{StudentID: "a-100", CourseID: "c1", Rank: 1},
		},
	}

	outcome, err := Allocate(config)
	require.NoError(t, err)

	byStudent := make(map[string]Allocation)
	for _, alloc := range outcome.Allocations {
		byStudent[alloc.StudentID] = alloc
	}

	assert.Equal(t, model.StatusAllocated, byStudent["a-100"].Status)
	assert.Equal(t, model.StatusWaitlisted, byStudent["b-200"].Status)
}

func TestAllocate_GapsInRanksOnlyOrderMatters(t *testing.T) {
	// Admin-entered ranks with gaps (3, 7, 12) behave like (1, 2, 3)
	config := AllocationConfig{
		Students: []model.Student{student("s1", 85, model.CategoryGeneral)},
		Courses: []model.Course{
			course("c-full", 0, nil),
			course("c-open", 1, map[model.ReservationCategory]float64{model.CategoryGeneral: 100}),
		},
		Preferences: []model.Preference{
			{StudentID: "s1", CourseID: "c-full", Rank: 3},
			{StudentID: "s1", CourseID: "c-open", Rank: 7},
		},
	}

	outcome, err := Allocate(config)
	require.NoError(t, err)

	alloc := outcome.Allocations[0]
	assert.Equal(t, "c-open", alloc.CourseID)
	assert.Equal(t, 7, alloc.Rank)
}

func TestAllocate_CategoryAllocationsNeverExceedQuota(t *testing.T) {
	// 4 seats: 2 SC, 1 GENERAL, 1 unreserved. Five SC students preferring
	// the course: 2 via quota, 1 via unreserved, remaining waitlisted —
	// the GENERAL bucket must survive untouched.
	students := []model.Student{
		student("s1", 99, model.CategorySC),
		student("s2", 98, model.CategorySC),
		student("s3", 97, model.CategorySC),
		student("s4", 96, model.CategorySC),
		student("s5", 95, model.CategorySC),
	}
	prefs := make([]model.Preference, 0, len(students))
	for _, s := range students {
		prefs = append(prefs, model.Preference{StudentID: s.ID, CourseID: "c1", Rank: 1})
	}

	config := AllocationConfig{
		Students: students,
		Courses: []model.Course{
			course("c1", 4, map[model.ReservationCategory]float64{
				model.CategorySC:      50,
				model.CategoryGeneral: 25,
			}),
		},
		Preferences: prefs,
	}

	outcome, err := Allocate(config)
	require.NoError(t, err)

	assert.Equal(t, 3, outcome.AllocatedCount)
	assert.Equal(t, 2, outcome.WaitlistedCount)

	state := outcome.SeatStates["c1"]
	assert.Equal(t, 0, state.RemainingFor(model.CategorySC))
	assert.Equal(t, 0, state.Unreserved)
	assert.Equal(t, 1, state.RemainingFor(model.CategoryGeneral))
}

func TestAllocate_MostPreferredAvailableCourseWins(t *testing.T) {
	// The student's rank-1 course has room; rank-2 must not be chosen
	config := AllocationConfig{
		Students: []model.Student{student("s1", 85, model.CategoryGeneral)},
		Courses: []model.Course{
			course("c1", 1, map[model.ReservationCategory]float64{model.CategoryGeneral: 100}),
			course("c2", 1, map[model.ReservationCategory]float64{model.CategoryGeneral: 100}),
		},
		Preferences: []model.Preference{
			{StudentID: "s1", CourseID: "c2", Rank: 2},
			{StudentID: "s1", CourseID: "c1", Rank: 1},
		},
	}

	outcome, err := Allocate(config)
	require.NoError(t, err)
	assert.Equal(t, "c1", outcome.Allocations[0].CourseID)
}

func TestAllocate_ConfigurationErrorAbortsRun(t *testing.T) {
	config := AllocationConfig{
		Students: []model.Student{student("s1", 85, model.CategoryGeneral)},
		Courses: []model.Course{
			course("c-bad", 10, map[model.ReservationCategory]float64{
				model.CategoryGeneral: 90,
				model.CategoryOBC:     20,
			}),
		},
		Preferences: []model.Preference{
			{StudentID: "s1", CourseID: "c-bad", Rank: 1},
		},
	}

	outcome, err := Allocate(config)
	require.Error(t, err)
	assert.Nil(t, outcome)
}

func TestAllocate_Deterministic(t *testing.T) {
	students := []model.Student{
		student("s1", 91, model.CategoryGeneral),
		student("s2", 88, model.CategoryOBC),
		student("s3", 88, model.CategorySC),
		student("s4", 75, model.CategoryEWS),
		student("s5", 70, model.CategoryST),
	}
	courses := []model.Course{
		course("c1", 2, map[model.ReservationCategory]float64{model.CategoryGeneral: 50, model.CategoryOBC: 27}),
		course("c2", 3, map[model.ReservationCategory]float64{model.CategorySC: 15, model.CategoryST: 7.5}),
	}
	prefs := []model.Preference{
		{StudentID: "s1", CourseID: "c1", Rank: 1},
		{StudentID: "s2", CourseID: "c1", Rank: 1},
		{StudentID: "s2", CourseID: "c2", Rank: 2},
		{StudentID: "s3", CourseID: "c1", Rank: 1},
		{StudentID: "s3", CourseID: "c2", Rank: 2},
		{StudentID: "s4", CourseID: "c2", Rank: 1},
		{StudentID: "s5", CourseID: "c2", Rank: 1},
	}

	first, err := Allocate(AllocationConfig{Students: students, Courses: courses, Preferences: prefs})
	require.NoError(t, err)
	second, err := Allocate(AllocationConfig{Students: students, Courses: courses, Preferences: prefs})
	require.NoError(t, err)

	assert.Equal(t, first.Allocations, second.Allocations)
	assert.Equal(t, first.AllocatedCount, second.AllocatedCount)
	assert.Equal(t, first.WaitlistedCount, second.WaitlistedCount)
}
