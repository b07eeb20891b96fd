package services

import (
	"strings"

	"github.com/campusworks/seatwise/pkg/core/model"
	"github.com/campusworks/seatwise/pkg/db"
)

// toModelStudent converts a student database record to the domain type.
// Unknown reservation categories default to GENERAL.
func toModelStudent(record db.Student) model.Student {
	category := model.ReservationCategory(record.Category)
	if !category.IsValid() {
		category = model.CategoryGeneral
	}

	return model.Student{
		ID:              record.ID,
		AdmissionNo:     record.AdmissionNo,
		Name:            record.Name,
		DepartmentID:    record.DepartmentID,
		ProgrammeID:     record.ProgrammeID,
		BatchID:         record.BatchID,
		QualifyingMarks: record.QualifyingMarks,
		Category:        category,
		CGPA:            record.CGPA,
		AvgMarks:        record.AvgMarks,
		InterestTags:    splitTags(record.InterestTags),
	}
}

// toModelCourse converts a course database record to the domain type,
// assembling the quota percentage map from the per-category columns.
func toModelCourse(record db.Course) model.Course {
	return model.Course{
		ID:           record.ID,
		Code:         record.Code,
		Name:         record.Name,
		DepartmentID: record.DepartmentID,
		Credits:      record.Credits,
		MaxCapacity:  record.MaxCapacity,
		QuotaPercents: map[model.ReservationCategory]float64{
			model.CategoryGeneral: record.GeneralPct,
			model.CategoryEWS:     record.EWSPct,
			model.CategoryOBC:     record.OBCPct,
			model.CategorySC:      record.SCPct,
			model.CategoryST:      record.STPct,
		},
		DifficultyLevel: record.DifficultyLevel,
		Tags:            splitTags(record.Tags),
		Active:          record.Active,
	}
}

func toModelCourses(records []db.Course) []model.Course {
	courses := make([]model.Course, len(records))
	for i, record := range records {
		courses[i] = toModelCourse(record)
	}
	return courses
}

func toModelStudents(records []db.Student) []model.Student {
	students := make([]model.Student, len(records))
	for i, record := range records {
		students[i] = toModelStudent(record)
	}
	return students
}

func toModelPreferences(records []db.Preference) []model.Preference {
	preferences := make([]model.Preference, len(records))
	for i, record := range records {
		preferences[i] = model.Preference{
			StudentID: record.StudentID,
			CourseID:  record.CourseID,
			Rank:      record.Rank,
		}
	}
	return preferences
}

// splitTags parses a comma-separated tag string into a normalized
// (lowercase, trimmed) slice. Empty entries are dropped.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
