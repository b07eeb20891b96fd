package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusworks/seatwise/pkg/core/model"
	"github.com/campusworks/seatwise/pkg/db"
)

// mockReportStore implements the report-side store interfaces for testing
type mockReportStore struct {
	students    map[string]db.Student
	courses     map[string]db.Course
	allocations []db.Allocation

	categoryCounts map[string]int

	getStudentErr error
	getCourseErr  error
}

func (m *mockReportStore) GetStudent(ctx context.Context, studentID string) (*db.Student, error) {
	if m.getStudentErr != nil {
		return nil, m.getStudentErr
	}
	student, ok := m.students[studentID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &student, nil
}

func (m *mockReportStore) GetStudentsByIDs(ctx context.Context, studentIDs []string) ([]db.Student, error) {
	var records []db.Student
	for _, id := range studentIDs {
		if student, ok := m.students[id]; ok {
			records = append(records, student)
		}
	}
	return records, nil
}

func (m *mockReportStore) GetStudentsByBatch(ctx context.Context, batchID string) ([]db.Student, error) {
	var records []db.Student
	for _, student := range m.students {
		if student.BatchID == batchID {
			records = append(records, student)
		}
	}
	return records, nil
}

func (m *mockReportStore) GetCourse(ctx context.Context, courseID string) (*db.Course, error) {
	if m.getCourseErr != nil {
		return nil, m.getCourseErr
	}
	course, ok := m.courses[courseID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &course, nil
}

func (m *mockReportStore) GetCoursePool(ctx context.Context, batchID string) ([]db.Course, error) {
	var records []db.Course
	for _, course := range m.courses {
		records = append(records, course)
	}
	return records, nil
}

func (m *mockReportStore) GetStudentAllocation(ctx context.Context, studentID string) (*db.Allocation, error) {
	for _, allocation := range m.allocations {
		if allocation.StudentID == studentID {
			return &allocation, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockReportStore) GetAllocationsByCourse(ctx context.Context, courseID string) ([]db.Allocation, error) {
	var records []db.Allocation
	for _, allocation := range m.allocations {
		if allocation.CourseID == courseID && allocation.Status == "ALLOCATED" {
			records = append(records, allocation)
		}
	}
	return records, nil
}

func (m *mockReportStore) GetAllocationsByBatch(ctx context.Context, batchID string) ([]db.Allocation, error) {
	var records []db.Allocation
	for _, allocation := range m.allocations {
		if allocation.BatchID == batchID {
			records = append(records, allocation)
		}
	}
	return records, nil
}

func (m *mockReportStore) CountAllocatedByCategory(ctx context.Context, courseID string) (map[string]int, error) {
	return m.categoryCounts, nil
}

func reportStore() *mockReportStore {
	return &mockReportStore{
		students: map[string]db.Student{
			"s1": {ID: "s1", AdmissionNo: "ADM001", Name: "Asha Nair", BatchID: "batch-1", QualifyingMarks: 95, Category: "GENERAL"},
			"s2": {ID: "s2", AdmissionNo: "ADM002", Name: "Ravi Kumar", BatchID: "batch-1", QualifyingMarks: 88, Category: "OBC"},
			"s3": {ID: "s3", AdmissionNo: "ADM003", Name: "Meena Das", BatchID: "batch-1", QualifyingMarks: 72, Category: "SC"},
		},
		courses: map[string]db.Course{
			"c1": {ID: "c1", Code: "CS101", Name: "Intro to CS", MaxCapacity: 10, GeneralPct: 50, SCPct: 20, Active: true},
			"c2": {ID: "c2", Code: "EE201", Name: "Circuits", MaxCapacity: 5, Active: true},
		},
		allocations: []db.Allocation{
			{ID: "a1", BatchID: "batch-1", StudentID: "s1", CourseID: "c1", Status: "ALLOCATED", PreferenceRank: 1, AllocatedAt: time.Now()},
			{ID: "a2", BatchID: "batch-1", StudentID: "s2", CourseID: "c1", Status: "ALLOCATED", PreferenceRank: 2, AllocatedAt: time.Now()},
			{ID: "a3", BatchID: "batch-1", StudentID: "s3", Status: "WAITLISTED", AllocatedAt: time.Now()},
		},
	}
}

func TestStudentAllocation_GrantedSeat(t *testing.T) {
	store := reportStore()
	logger := zap.NewNop()

	result, err := StudentAllocation(context.Background(), store, logger, "s1")
	require.NoError(t, err)

	assert.Equal(t, "Asha Nair", result.StudentName)
	assert.Equal(t, model.StatusAllocated, result.Status)
	assert.Equal(t, "CS101", result.CourseCode)
	assert.Equal(t, 1, result.PreferenceRank)
}

func TestStudentAllocation_Waitlisted(t *testing.T) {
	store := reportStore()

	result, err := StudentAllocation(context.Background(), store, zap.NewNop(), "s3")
	require.NoError(t, err)

	assert.Equal(t, model.StatusWaitlisted, result.Status)
	assert.Empty(t, result.CourseID)
	assert.Empty(t, result.CourseCode)
	assert.Zero(t, result.PreferenceRank)
}

func TestStudentAllocation_UnknownStudent(t *testing.T) {
	store := reportStore()

	_, err := StudentAllocation(context.Background(), store, zap.NewNop(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestCourseAllocations_MeritOrdered(t *testing.T) {
	store := reportStore()

	result, err := CourseAllocations(context.Background(), store, zap.NewNop(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "CS101", result.CourseCode)
	require.Len(t, result.Students, 2)
	assert.Equal(t, "ADM001", result.Students[0].AdmissionNo)
	assert.Equal(t, "ADM002", result.Students[1].AdmissionNo)
	assert.Equal(t, 2, result.Students[1].PreferenceRank)
	assert.Equal(t, model.CategoryOBC, result.Students[1].Category)
}

func TestCourseAllocations_EmptyCourse(t *testing.T) {
	store := reportStore()

	result, err := CourseAllocations(context.Background(), store, zap.NewNop(), "c2")
	require.NoError(t, err)
	assert.Empty(t, result.Students)
}

func TestCourseSeatStats_OverflowCountsAgainstUnreserved(t *testing.T) {
	store := reportStore()
	// CS101: 10 seats, GENERAL 50% = 5, SC 20% = 2, unreserved 3.
	// 6 GENERAL grants means one drew from the unreserved pool.
	store.categoryCounts = map[string]int{
		"GENERAL": 6,
		"SC":      1,
	}

	result, err := CourseSeatStats(context.Background(), store, zap.NewNop(), "c1")
	require.NoError(t, err)

	assert.Equal(t, 10, result.MaxCapacity)
	assert.Equal(t, 3, result.UnreservedQuota)
	assert.Equal(t, 1, result.UnreservedAllocated)
	assert.Equal(t, 2, result.UnreservedRemaining)
	assert.Equal(t, 7, result.TotalAllocated)
	assert.Equal(t, 3, result.TotalRemaining)

	byCategory := make(map[model.ReservationCategory]CategorySeatStats)
	for _, stats := range result.Categories {
		byCategory[stats.Category] = stats
	}
	assert.Equal(t, 5, byCategory[model.CategoryGeneral].Quota)
	assert.Equal(t, 6, byCategory[model.CategoryGeneral].Allocated)
	assert.Equal(t, 0, byCategory[model.CategoryGeneral].Remaining)
	assert.Equal(t, 2, byCategory[model.CategorySC].Quota)
	assert.Equal(t, 1, byCategory[model.CategorySC].Remaining)
}

func TestCourseSeatStats_NoAllocations(t *testing.T) {
	store := reportStore()
	store.categoryCounts = map[string]int{}

	result, err := CourseSeatStats(context.Background(), store, zap.NewNop(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalAllocated)
	assert.Equal(t, 10, result.TotalRemaining)
}

func TestBuildAllocationReport_Summary(t *testing.T) {
	store := reportStore()

	report, err := BuildAllocationReport(context.Background(), store, zap.NewNop(), "batch-1")
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalStudents)
	assert.Equal(t, 2, report.AllocatedCount)
	assert.Equal(t, 1, report.WaitlistedCount)
	assert.Equal(t, 0, report.NotAllocatedCount)

	assert.Equal(t, 1, report.ByCategory[model.CategoryGeneral])
	assert.Equal(t, 1, report.ByCategory[model.CategoryOBC])

	assert.Equal(t, 1, report.ByPreference["1"])
	assert.Equal(t, 1, report.ByPreference["2"])
	assert.Equal(t, 0, report.ByPreference["4+"])

	// Courses ordered by code with fill rates
	require.Len(t, report.Courses, 2)
	assert.Equal(t, "CS101", report.Courses[0].CourseCode)
	assert.Equal(t, 2, report.Courses[0].Allocated)
	assert.InDelta(t, 0.2, report.Courses[0].FillRate, 1e-9)
	assert.Equal(t, "EE201", report.Courses[1].CourseCode)
	assert.Equal(t, 0, report.Courses[1].Allocated)
}
