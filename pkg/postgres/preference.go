package postgres

import (
	"context"
	"fmt"

	"github.com/campusworks/seatwise/pkg/db"
)

// GetPreferencesByBatch retrieves all preferences submitted by students in a
// batch
func (d *DB) GetPreferencesByBatch(ctx context.Context, batchID string) ([]db.Preference, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT p.id, p.student_id, p.course_id, p.rank
		FROM preferences p
		JOIN students s ON s.id = p.student_id
		WHERE s.batch_id = $1
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences for batch %s: %w", batchID, err)
	}
	defer rows.Close()

	var preferences []db.Preference
	for rows.Next() {
		var p db.Preference
		if err := rows.Scan(&p.ID, &p.StudentID, &p.CourseID, &p.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		preferences = append(preferences, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preferences: %w", err)
	}

	return preferences, nil
}
