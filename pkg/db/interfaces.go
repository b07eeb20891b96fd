package db

import "context"

// Database defines the interface for all database operations.
// The postgres.DB implementation satisfies it; services declare narrower
// store interfaces of their own and the CLI/API hand them this.
type Database interface {
	GetStudent(ctx context.Context, studentID string) (*Student, error)
	GetStudentsByBatch(ctx context.Context, batchID string) ([]Student, error)
	GetStudentsByIDs(ctx context.Context, studentIDs []string) ([]Student, error)
	GetStudents(ctx context.Context) ([]Student, error)

	GetCourse(ctx context.Context, courseID string) (*Course, error)
	GetCoursesByIDs(ctx context.Context, courseIDs []string) ([]Course, error)
	GetCourses(ctx context.Context) ([]Course, error)
	GetCoursePool(ctx context.Context, batchID string) ([]Course, error)

	GetPreferencesByBatch(ctx context.Context, batchID string) ([]Preference, error)

	GetAllocations(ctx context.Context) ([]Allocation, error)
	GetAllocationsByBatch(ctx context.Context, batchID string) ([]Allocation, error)
	GetAllocationsByCourse(ctx context.Context, courseID string) ([]Allocation, error)
	GetStudentAllocation(ctx context.Context, studentID string) (*Allocation, error)
	CountAllocatedByCategory(ctx context.Context, courseID string) (map[string]int, error)
	ReplaceBatchAllocations(ctx context.Context, batchID string, allocations []Allocation) error

	SaveScoringModel(ctx context.Context, scoringModel ScoringModel) error
	LatestScoringModel(ctx context.Context) (*ScoringModel, error)
}
