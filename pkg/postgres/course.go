package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campusworks/seatwise/pkg/db"
)

const courseColumns = `id, code, name, department_id, credits, max_capacity,
	general_pct, ews_pct, obc_pct, sc_pct, st_pct, difficulty_level, tags, active`

// GetCourse retrieves a single course by ID
func (d *DB) GetCourse(ctx context.Context, courseID string) (*db.Course, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		WHERE id = $1
	`, courseID)

	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query course %s: %w", courseID, err)
	}
	return &course, nil
}

// GetCoursesByIDs retrieves the courses with the given IDs
func (d *DB) GetCoursesByIDs(ctx context.Context, courseIDs []string) ([]db.Course, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		WHERE id = ANY($1)
	`, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses by ids: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

// GetCourses retrieves all course records
func (d *DB) GetCourses(ctx context.Context) ([]db.Course, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+courseColumns+`
		FROM courses
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

// GetCoursePool retrieves the active courses in a batch's course pool
func (d *DB) GetCoursePool(ctx context.Context, batchID string) ([]db.Course, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT c.id, c.code, c.name, c.department_id, c.credits, c.max_capacity,
			c.general_pct, c.ews_pct, c.obc_pct, c.sc_pct, c.st_pct,
			c.difficulty_level, c.tags, c.active
		FROM courses c
		JOIN course_pools p ON p.course_id = c.id
		WHERE p.batch_id = $1 AND p.active = TRUE
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course pool for batch %s: %w", batchID, err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

func scanCourse(row pgx.Row) (db.Course, error) {
	var c db.Course
	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &c.DepartmentID, &c.Credits, &c.MaxCapacity,
		&c.GeneralPct, &c.EWSPct, &c.OBCPct, &c.SCPct, &c.STPct,
		&c.DifficultyLevel, &c.Tags, &c.Active,
	)
	return c, err
}

func collectCourses(rows pgx.Rows) ([]db.Course, error) {
	var courses []db.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}
	return courses, nil
}
