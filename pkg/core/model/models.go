package model

// ReservationCategory is a student's seat reservation category
type ReservationCategory string

const (
	CategoryGeneral ReservationCategory = "GENERAL"
	CategoryEWS     ReservationCategory = "EWS"
	CategoryOBC     ReservationCategory = "OBC"
	CategorySC      ReservationCategory = "SC"
	CategoryST      ReservationCategory = "ST"
)

// Categories lists every reservation category in canonical order. Quota
// computation and reporting iterate this so output order is stable.
var Categories = []ReservationCategory{
	CategoryGeneral,
	CategoryEWS,
	CategoryOBC,
	CategorySC,
	CategoryST,
}

// IsValid reports whether the category is one of the known values
func (c ReservationCategory) IsValid() bool {
	switch c {
	case CategoryGeneral, CategoryEWS, CategoryOBC, CategorySC, CategoryST:
		return true
	}
	return false
}

// AllocationStatus is the outcome of an allocation run for one student
type AllocationStatus string

const (
	StatusAllocated    AllocationStatus = "ALLOCATED"
	StatusWaitlisted   AllocationStatus = "WAITLISTED"
	StatusNotAllocated AllocationStatus = "NOT_ALLOCATED"
)

// Student is an enrolled student eligible for course allocation
type Student struct {
	ID           string
	AdmissionNo  string
	Name         string
	DepartmentID string
	ProgrammeID  string
	BatchID      string

	// QualifyingMarks is the merit metric, a percentage
	QualifyingMarks float64

	Category ReservationCategory

	// CGPA (0-10) and AvgMarks feed the scoring features; zero means
	// no history
	CGPA     float64
	AvgMarks float64

	InterestTags []string
}

// Course is an elective course offered for allocation
type Course struct {
	ID           string
	Code         string
	Name         string
	DepartmentID string
	Credits      int
	MaxCapacity  int

	// QuotaPercents maps each reservation category to its percentage share
	// of MaxCapacity. Omitted categories get no reserved seats.
	QuotaPercents map[ReservationCategory]float64

	// DifficultyLevel is on a 1-10 scale; zero means unrated
	DifficultyLevel int

	Tags   []string
	Active bool
}

// Preference is one entry of a student's ranked course wish list
type Preference struct {
	StudentID string
	CourseID  string

	// Rank starts at 1 for the most preferred course. Gaps are allowed;
	// only relative order matters.
	Rank int
}
