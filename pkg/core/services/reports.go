package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/campusworks/seatwise/pkg/core/allocator"
	"github.com/campusworks/seatwise/pkg/core/model"
	"github.com/campusworks/seatwise/pkg/db"
)

// StudentAllocationStore defines the database operations needed to look up a
// student's allocation outcome
type StudentAllocationStore interface {
	GetStudent(ctx context.Context, studentID string) (*db.Student, error)
	GetStudentAllocation(ctx context.Context, studentID string) (*db.Allocation, error)
	GetCourse(ctx context.Context, courseID string) (*db.Course, error)
}

// StudentAllocationResult is a student's most recent allocation outcome.
// Course fields are empty when no seat was granted.
type StudentAllocationResult struct {
	StudentID      string
	StudentName    string
	Status         model.AllocationStatus
	CourseID       string
	CourseCode     string
	CourseName     string
	PreferenceRank int
	AllocatedAt    time.Time
}

// StudentAllocation retrieves the most recent allocation outcome for a
// student, resolving the granted course when there is one. Returns
// db.ErrNotFound when the student is unknown or has never been through a run.
func StudentAllocation(
	ctx context.Context,
	store StudentAllocationStore,
	logger *zap.Logger,
	studentID string,
) (*StudentAllocationResult, error) {
	student, err := store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student %s: %w", studentID, err)
	}

	allocation, err := store.GetStudentAllocation(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch allocation for student %s: %w", studentID, err)
	}

	result := &StudentAllocationResult{
		StudentID:      student.ID,
		StudentName:    student.Name,
		Status:         model.AllocationStatus(allocation.Status),
		PreferenceRank: allocation.PreferenceRank,
		AllocatedAt:    allocation.AllocatedAt,
	}

	if allocation.CourseID != "" {
		course, err := store.GetCourse(ctx, allocation.CourseID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch course %s: %w", allocation.CourseID, err)
		}
		result.CourseID = course.ID
		result.CourseCode = course.Code
		result.CourseName = course.Name
	}

	logger.Debug("Resolved student allocation",
		zap.String("student_id", studentID),
		zap.String("status", allocation.Status))

	return result, nil
}

// CourseAllocationsStore defines the database operations needed to list a
// course's granted seats
type CourseAllocationsStore interface {
	GetCourse(ctx context.Context, courseID string) (*db.Course, error)
	GetAllocationsByCourse(ctx context.Context, courseID string) ([]db.Allocation, error)
	GetStudentsByIDs(ctx context.Context, studentIDs []string) ([]db.Student, error)
}

// AllocatedStudent is one granted seat on a course
type AllocatedStudent struct {
	StudentID       string
	AdmissionNo     string
	Name            string
	Category        model.ReservationCategory
	QualifyingMarks float64
	PreferenceRank  int
}

// CourseAllocationsResult lists the students holding seats on a course,
// in descending merit order
type CourseAllocationsResult struct {
	CourseID   string
	CourseCode string
	CourseName string
	Students   []AllocatedStudent
}

// CourseAllocations lists the students granted a seat on a course, ordered by
// descending qualifying marks with ties broken by admission number, matching
// the order the engine processed them in.
func CourseAllocations(
	ctx context.Context,
	store CourseAllocationsStore,
	logger *zap.Logger,
	courseID string,
) (*CourseAllocationsResult, error) {
	course, err := store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course %s: %w", courseID, err)
	}

	allocations, err := store.GetAllocationsByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch allocations for course %s: %w", courseID, err)
	}
	logger.Debug("Found granted seats", zap.String("course_id", courseID), zap.Int("count", len(allocations)))

	studentIDs := make([]string, 0, len(allocations))
	rankByStudent := make(map[string]int, len(allocations))
	for _, allocation := range allocations {
		studentIDs = append(studentIDs, allocation.StudentID)
		rankByStudent[allocation.StudentID] = allocation.PreferenceRank
	}

	var records []db.Student
	if len(studentIDs) > 0 {
		records, err = store.GetStudentsByIDs(ctx, studentIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch allocated students: %w", err)
		}
	}

	students := make([]AllocatedStudent, 0, len(records))
	for _, record := range records {
		student := toModelStudent(record)
		students = append(students, AllocatedStudent{
			StudentID:       student.ID,
			AdmissionNo:     student.AdmissionNo,
			Name:            student.Name,
			Category:        student.Category,
			QualifyingMarks: student.QualifyingMarks,
			PreferenceRank:  rankByStudent[student.ID],
		})
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].QualifyingMarks != students[j].QualifyingMarks {
			return students[i].QualifyingMarks > students[j].QualifyingMarks
		}
		return students[i].AdmissionNo < students[j].AdmissionNo
	})

	return &CourseAllocationsResult{
		CourseID:   course.ID,
		CourseCode: course.Code,
		CourseName: course.Name,
		Students:   students,
	}, nil
}

// SeatStatsStore defines the database operations needed for per-course seat
// statistics
type SeatStatsStore interface {
	GetCourse(ctx context.Context, courseID string) (*db.Course, error)
	CountAllocatedByCategory(ctx context.Context, courseID string) (map[string]int, error)
}

// CategorySeatStats is the quota usage of one reservation category on a
// course
type CategorySeatStats struct {
	Category  model.ReservationCategory
	Quota     int
	Allocated int
	Remaining int
}

// SeatStatsResult breaks a course's seat usage down by reservation bucket
type SeatStatsResult struct {
	CourseID    string
	CourseCode  string
	CourseName  string
	MaxCapacity int

	Categories []CategorySeatStats

	UnreservedQuota     int
	UnreservedAllocated int
	UnreservedRemaining int

	TotalAllocated int
	TotalRemaining int
}

// CourseSeatStats reconstructs a course's per-bucket seat usage from its
// quota configuration and the committed allocations. A category's grants
// beyond its own quota are counted against the unreserved pool, which is
// exactly where the engine drew them from.
func CourseSeatStats(
	ctx context.Context,
	store SeatStatsStore,
	logger *zap.Logger,
	courseID string,
) (*SeatStatsResult, error) {
	record, err := store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course %s: %w", courseID, err)
	}
	course := toModelCourse(*record)

	state, err := allocator.BuildSeatState(course)
	if err != nil {
		return nil, fmt.Errorf("seat stats unavailable for course %s: %w", courseID, err)
	}

	counts, err := store.CountAllocatedByCategory(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count allocations for course %s: %w", courseID, err)
	}

	result := &SeatStatsResult{
		CourseID:        course.ID,
		CourseCode:      course.Code,
		CourseName:      course.Name,
		MaxCapacity:     course.MaxCapacity,
		UnreservedQuota: state.UnreservedQuota,
	}

	unreservedUsed := 0
	for _, category := range model.Categories {
		quota := state.Quota[category]
		count := counts[string(category)]

		inBucket := count
		if inBucket > quota {
			inBucket = quota
			unreservedUsed += count - quota
		}

		result.Categories = append(result.Categories, CategorySeatStats{
			Category:  category,
			Quota:     quota,
			Allocated: count,
			Remaining: quota - inBucket,
		})
		result.TotalAllocated += count
	}

	result.UnreservedAllocated = unreservedUsed
	result.UnreservedRemaining = state.UnreservedQuota - unreservedUsed
	result.TotalRemaining = course.MaxCapacity - result.TotalAllocated

	logger.Debug("Computed seat stats",
		zap.String("course_id", courseID),
		zap.Int("allocated", result.TotalAllocated),
		zap.Int("remaining", result.TotalRemaining))

	return result, nil
}

// AllocationReportStore defines the database operations needed for the batch
// allocation report
type AllocationReportStore interface {
	GetAllocationsByBatch(ctx context.Context, batchID string) ([]db.Allocation, error)
	GetStudentsByBatch(ctx context.Context, batchID string) ([]db.Student, error)
	GetCoursePool(ctx context.Context, batchID string) ([]db.Course, error)
}

// CourseReportRow summarizes one course's fill level in a batch report
type CourseReportRow struct {
	CourseID    string
	CourseCode  string
	CourseName  string
	MaxCapacity int
	Allocated   int
	FillRate    float64
}

// AllocationReport is the batch-level allocation dashboard summary
type AllocationReport struct {
	BatchID           string
	TotalStudents     int
	AllocatedCount    int
	WaitlistedCount   int
	NotAllocatedCount int

	// ByCategory counts granted seats per reservation category
	ByCategory map[model.ReservationCategory]int

	// ByPreference counts granted seats per rank band: "1", "2", "3", "4+"
	ByPreference map[string]int

	// Courses is ordered by course code
	Courses []CourseReportRow
}

// BuildAllocationReport summarizes a batch's committed allocation results:
// outcome counts, granted seats per category, the preference rank students
// were satisfied at, and per-course fill rates.
func BuildAllocationReport(
	ctx context.Context,
	store AllocationReportStore,
	logger *zap.Logger,
	batchID string,
) (*AllocationReport, error) {
	logger.Debug("Building allocation report", zap.String("batch_id", batchID))

	allocations, err := store.GetAllocationsByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch allocations for batch %s: %w", batchID, err)
	}

	students, err := store.GetStudentsByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch students for batch %s: %w", batchID, err)
	}
	categoryByStudent := make(map[string]model.ReservationCategory, len(students))
	for _, record := range students {
		categoryByStudent[record.ID] = toModelStudent(record).Category
	}

	pool, err := store.GetCoursePool(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course pool for batch %s: %w", batchID, err)
	}

	report := &AllocationReport{
		BatchID:       batchID,
		TotalStudents: len(allocations),
		ByCategory:    make(map[model.ReservationCategory]int),
		ByPreference:  map[string]int{"1": 0, "2": 0, "3": 0, "4+": 0},
	}

	allocatedByCourse := make(map[string]int)
	for _, allocation := range allocations {
		switch model.AllocationStatus(allocation.Status) {
		case model.StatusAllocated:
			report.AllocatedCount++
			allocatedByCourse[allocation.CourseID]++
			if category, ok := categoryByStudent[allocation.StudentID]; ok {
				report.ByCategory[category]++
			}
			report.ByPreference[rankBand(allocation.PreferenceRank)]++
		case model.StatusWaitlisted:
			report.WaitlistedCount++
		case model.StatusNotAllocated:
			report.NotAllocatedCount++
		}
	}

	for _, record := range pool {
		row := CourseReportRow{
			CourseID:    record.ID,
			CourseCode:  record.Code,
			CourseName:  record.Name,
			MaxCapacity: record.MaxCapacity,
			Allocated:   allocatedByCourse[record.ID],
		}
		if record.MaxCapacity > 0 {
			row.FillRate = float64(row.Allocated) / float64(record.MaxCapacity)
		}
		report.Courses = append(report.Courses, row)
	}
	sort.Slice(report.Courses, func(i, j int) bool {
		return report.Courses[i].CourseCode < report.Courses[j].CourseCode
	})

	logger.Info("Report built",
		zap.String("batch_id", batchID),
		zap.Int("allocated", report.AllocatedCount),
		zap.Int("waitlisted", report.WaitlistedCount),
		zap.Int("not_allocated", report.NotAllocatedCount))

	return report, nil
}

// rankBand buckets a granted preference rank for reporting
func rankBand(rank int) string {
	switch rank {
	case 1:
		return "1"
	case 2:
		return "2"
	case 3:
		return "3"
	default:
		return "4+"
	}
}
