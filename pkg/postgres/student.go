package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campusworks/seatwise/pkg/db"
)

const studentColumns = `id, admission_no, name, department_id, programme_id, batch_id,
	qualifying_marks, category, cgpa, avg_marks, interest_tags`

// GetStudent retrieves a single student by ID
func (d *DB) GetStudent(ctx context.Context, studentID string) (*db.Student, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE id = $1
	`, studentID)

	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query student %s: %w", studentID, err)
	}
	return &student, nil
}

// GetStudentsByBatch retrieves all students belonging to a batch
func (d *DB) GetStudentsByBatch(ctx context.Context, batchID string) ([]db.Student, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE batch_id = $1
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query students for batch %s: %w", batchID, err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

// GetStudentsByIDs retrieves the students with the given IDs
func (d *DB) GetStudentsByIDs(ctx context.Context, studentIDs []string) ([]db.Student, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE id = ANY($1)
	`, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query students by ids: %w", err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

// GetStudents retrieves all student records
func (d *DB) GetStudents(ctx context.Context) ([]db.Student, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+studentColumns+`
		FROM students
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

func scanStudent(row pgx.Row) (db.Student, error) {
	var s db.Student
	err := row.Scan(
		&s.ID, &s.AdmissionNo, &s.Name, &s.DepartmentID, &s.ProgrammeID, &s.BatchID,
		&s.QualifyingMarks, &s.Category, &s.CGPA, &s.AvgMarks, &s.InterestTags,
	)
	return s, err
}

func collectStudents(rows pgx.Rows) ([]db.Student, error) {
	var students []db.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating students: %w", err)
	}
	return students, nil
}
