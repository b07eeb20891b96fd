package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/campusworks/seatwise/pkg/core/model"
	"github.com/campusworks/seatwise/pkg/core/services"
	"github.com/campusworks/seatwise/pkg/db"
)

type handler struct {
	database db.Database
	logger   *zap.Logger
}

type allocationRunResponse struct {
	BatchID       string         `json:"batch_id"`
	TotalStudents int            `json:"total_students"`
	Allocated     int            `json:"allocated"`
	Waitlisted    int            `json:"waitlisted"`
	NotAllocated  int            `json:"not_allocated"`
	ByCourse      map[string]int `json:"by_course"`
	ByCategory    map[string]int `json:"by_category"`
}

// runAllocation triggers the allocation run for a batch
func (h *handler) runAllocation(c echo.Context) error {
	batchID := c.Param("id")

	result, err := services.RunAllocation(c.Request().Context(), h.database, h.logger, batchID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, allocationRunResponse{
		BatchID:       result.BatchID,
		TotalStudents: result.TotalStudents,
		Allocated:     result.AllocatedCount,
		Waitlisted:    result.WaitlistedCount,
		NotAllocated:  result.NotAllocatedCount,
		ByCourse:      result.AllocationsByCourse,
		ByCategory:    categoryCounts(result.AllocationsByCategory),
	})
}

type trainModelResponse struct {
	ModelID     string             `json:"model_id"`
	Samples     int                `json:"samples"`
	CVR2        float64            `json:"cv_r2"`
	Importances map[string]float64 `json:"feature_importances"`
}

// trainModel retrains the scoring model from historical allocations
func (h *handler) trainModel(c echo.Context) error {
	result, err := services.TrainModel(c.Request().Context(), h.database, h.logger)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, trainModelResponse{
		ModelID:     result.ModelID,
		Samples:     result.Samples,
		CVR2:        result.CVR2,
		Importances: result.Importances,
	})
}

type modelStatusResponse struct {
	Strategy  string     `json:"strategy"`
	ModelID   string     `json:"model_id,omitempty"`
	TrainedAt *time.Time `json:"trained_at,omitempty"`
	Samples   int        `json:"samples,omitempty"`
	CVR2      float64    `json:"cv_r2,omitempty"`
}

// modelStatus reports the scoring strategy currently in effect
func (h *handler) modelStatus(c echo.Context) error {
	status, err := services.GetModelStatus(c.Request().Context(), h.database, h.logger)
	if err != nil {
		return err
	}

	resp := modelStatusResponse{
		Strategy: status.Strategy,
		ModelID:  status.ModelID,
		Samples:  status.Samples,
		CVR2:     status.CVR2,
	}
	if !status.TrainedAt.IsZero() {
		resp.TrainedAt = &status.TrainedAt
	}
	return c.JSON(http.StatusOK, resp)
}

type studentAllocationResponse struct {
	StudentID      string    `json:"student_id"`
	StudentName    string    `json:"student_name"`
	Status         string    `json:"status"`
	CourseID       string    `json:"course_id,omitempty"`
	CourseCode     string    `json:"course_code,omitempty"`
	CourseName     string    `json:"course_name,omitempty"`
	PreferenceRank int       `json:"preference_rank,omitempty"`
	AllocatedAt    time.Time `json:"allocated_at"`
}

// studentAllocation returns a student's most recent allocation outcome
func (h *handler) studentAllocation(c echo.Context) error {
	result, err := services.StudentAllocation(c.Request().Context(), h.database, h.logger, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, studentAllocationResponse{
		StudentID:      result.StudentID,
		StudentName:    result.StudentName,
		Status:         string(result.Status),
		CourseID:       result.CourseID,
		CourseCode:     result.CourseCode,
		CourseName:     result.CourseName,
		PreferenceRank: result.PreferenceRank,
		AllocatedAt:    result.AllocatedAt,
	})
}

type recommendationResponse struct {
	StudentID       string               `json:"student_id"`
	Strategy        string               `json:"strategy"`
	Recommendations []recommendationItem `json:"recommendations"`
}

type recommendationItem struct {
	CourseID   string  `json:"course_id"`
	CourseCode string  `json:"course_code"`
	CourseName string  `json:"course_name"`
	Score      float64 `json:"score"`
	Label      string  `json:"label"`
}

// recommendations scores the requested courses for a student
func (h *handler) recommendations(c echo.Context) error {
	courseIDs := splitParam(c.QueryParam("courses"))
	if len(courseIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "courses query parameter is required")
	}

	result, err := services.RecommendCourses(c.Request().Context(), h.database, h.logger, c.Param("id"), courseIDs)
	if err != nil {
		return err
	}

	items := make([]recommendationItem, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		items = append(items, recommendationItem{
			CourseID:   rec.CourseID,
			CourseCode: rec.CourseCode,
			CourseName: rec.CourseName,
			Score:      rec.Score,
			Label:      rec.Label,
		})
	}

	return c.JSON(http.StatusOK, recommendationResponse{
		StudentID:       result.StudentID,
		Strategy:        result.Strategy,
		Recommendations: items,
	})
}

type courseAllocationsResponse struct {
	CourseID   string             `json:"course_id"`
	CourseCode string             `json:"course_code"`
	CourseName string             `json:"course_name"`
	Students   []allocatedStudent `json:"students"`
}

type allocatedStudent struct {
	StudentID       string  `json:"student_id"`
	AdmissionNo     string  `json:"admission_no"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	QualifyingMarks float64 `json:"qualifying_marks"`
	PreferenceRank  int     `json:"preference_rank"`
}

// courseAllocations lists the students granted a seat on a course
func (h *handler) courseAllocations(c echo.Context) error {
	result, err := services.CourseAllocations(c.Request().Context(), h.database, h.logger, c.Param("id"))
	if err != nil {
		return err
	}

	students := make([]allocatedStudent, 0, len(result.Students))
	for _, s := range result.Students {
		students = append(students, allocatedStudent{
			StudentID:       s.StudentID,
			AdmissionNo:     s.AdmissionNo,
			Name:            s.Name,
			Category:        string(s.Category),
			QualifyingMarks: s.QualifyingMarks,
			PreferenceRank:  s.PreferenceRank,
		})
	}

	return c.JSON(http.StatusOK, courseAllocationsResponse{
		CourseID:   result.CourseID,
		CourseCode: result.CourseCode,
		CourseName: result.CourseName,
		Students:   students,
	})
}

type seatStatsResponse struct {
	CourseID    string              `json:"course_id"`
	CourseCode  string              `json:"course_code"`
	CourseName  string              `json:"course_name"`
	MaxCapacity int                 `json:"max_capacity"`
	Categories  []categorySeatStats `json:"categories"`
	Unreserved  categorySeatStats   `json:"unreserved"`
	Allocated   int                 `json:"total_allocated"`
	Remaining   int                 `json:"total_remaining"`
}

type categorySeatStats struct {
	Category  string `json:"category,omitempty"`
	Quota     int    `json:"quota"`
	Allocated int    `json:"allocated"`
	Remaining int    `json:"remaining"`
}

// courseSeatStats breaks a course's seat usage down by reservation bucket
func (h *handler) courseSeatStats(c echo.Context) error {
	result, err := services.CourseSeatStats(c.Request().Context(), h.database, h.logger, c.Param("id"))
	if err != nil {
		return err
	}

	categories := make([]categorySeatStats, 0, len(result.Categories))
	for _, stats := range result.Categories {
		categories = append(categories, categorySeatStats{
			Category:  string(stats.Category),
			Quota:     stats.Quota,
			Allocated: stats.Allocated,
			Remaining: stats.Remaining,
		})
	}

	return c.JSON(http.StatusOK, seatStatsResponse{
		CourseID:    result.CourseID,
		CourseCode:  result.CourseCode,
		CourseName:  result.CourseName,
		MaxCapacity: result.MaxCapacity,
		Categories:  categories,
		Unreserved: categorySeatStats{
			Quota:     result.UnreservedQuota,
			Allocated: result.UnreservedAllocated,
			Remaining: result.UnreservedRemaining,
		},
		Allocated: result.TotalAllocated,
		Remaining: result.TotalRemaining,
	})
}

type allocationReportResponse struct {
	BatchID      string            `json:"batch_id"`
	Total        int               `json:"total_students"`
	Allocated    int               `json:"allocated"`
	Waitlisted   int               `json:"waitlisted"`
	NotAllocated int               `json:"not_allocated"`
	ByCategory   map[string]int    `json:"by_category"`
	ByPreference map[string]int    `json:"by_preference_rank"`
	Courses      []courseReportRow `json:"courses"`
}

type courseReportRow struct {
	CourseID    string  `json:"course_id"`
	CourseCode  string  `json:"course_code"`
	CourseName  string  `json:"course_name"`
	MaxCapacity int     `json:"max_capacity"`
	Allocated   int     `json:"allocated"`
	FillRate    float64 `json:"fill_rate"`
}

// allocationReport summarizes a batch's committed allocation results
func (h *handler) allocationReport(c echo.Context) error {
	report, err := services.BuildAllocationReport(c.Request().Context(), h.database, h.logger, c.Param("id"))
	if err != nil {
		return err
	}

	courses := make([]courseReportRow, 0, len(report.Courses))
	for _, row := range report.Courses {
		courses = append(courses, courseReportRow{
			CourseID:    row.CourseID,
			CourseCode:  row.CourseCode,
			CourseName:  row.CourseName,
			MaxCapacity: row.MaxCapacity,
			Allocated:   row.Allocated,
			FillRate:    row.FillRate,
		})
	}

	return c.JSON(http.StatusOK, allocationReportResponse{
		BatchID:      report.BatchID,
		Total:        report.TotalStudents,
		Allocated:    report.AllocatedCount,
		Waitlisted:   report.WaitlistedCount,
		NotAllocated: report.NotAllocatedCount,
		ByCategory:   categoryCounts(report.ByCategory),
		ByPreference: report.ByPreference,
		Courses:      courses,
	})
}

func categoryCounts(counts map[model.ReservationCategory]int) map[string]int {
	out := make(map[string]int, len(counts))
	for category, count := range counts {
		out[string(category)] = count
	}
	return out
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}
