package db

import "time"

// Student represents a student database record
type Student struct {
	ID              string
	AdmissionNo     string
	Name            string
	DepartmentID    string
	ProgrammeID     string
	BatchID         string
	QualifyingMarks float64
	Category        string

	// Scoring attributes; zero values when the student has no academic
	// history or declared interests
	CGPA     float64
	AvgMarks float64

	// InterestTags is comma-separated, lowercase
	InterestTags string
}

// Course represents a course database record. The quota configuration is
// embedded as per-category percentages of MaxCapacity.
type Course struct {
	ID           string
	Code         string
	Name         string
	DepartmentID string
	Credits      int
	MaxCapacity  int

	GeneralPct float64
	EWSPct     float64
	OBCPct     float64
	SCPct      float64
	STPct      float64

	DifficultyLevel int

	// Tags is comma-separated, lowercase
	Tags string

	Active bool
}

// Preference represents one entry of a student's ranked course wishlist
type Preference struct {
	ID        string
	StudentID string
	CourseID  string
	Rank      int
}

// Allocation represents a database allocation record. One record per
// eligible student per run; re-running a batch replaces its records.
type Allocation struct {
	ID        string
	BatchID   string
	StudentID string

	// CourseID is empty for WAITLISTED and NOT_ALLOCATED outcomes
	CourseID string

	Status string

	// PreferenceRank is the rank at which the seat was granted (zero when
	// no seat was granted)
	PreferenceRank int

	AllocatedAt time.Time
}

// ScoringModel represents a persisted trained-model artifact. Artifact is an
// opaque blob owned by the scoring package.
type ScoringModel struct {
	ID        string
	TrainedAt time.Time
	Samples   int
	CVR2      float64
	Artifact  []byte
}
