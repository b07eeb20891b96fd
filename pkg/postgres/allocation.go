package postgres

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5"

	"github.com/campusworks/seatwise/pkg/db"
)

const allocationColumns = `id, batch_id, student_id, course_id, status, preference_rank, allocated_at`

// GetAllocations retrieves all allocation records
func (d *DB) GetAllocations(ctx context.Context) ([]db.Allocation, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+allocationColumns+`
		FROM allocations
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	return collectAllocations(rows)
}

// GetAllocationsByBatch retrieves the allocation records for a batch
func (d *DB) GetAllocationsByBatch(ctx context.Context, batchID string) ([]db.Allocation, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+allocationColumns+`
		FROM allocations
		WHERE batch_id = $1
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations for batch %s: %w", batchID, err)
	}
	defer rows.Close()

	return collectAllocations(rows)
}

// GetAllocationsByCourse retrieves the granted allocations for a course
func (d *DB) GetAllocationsByCourse(ctx context.Context, courseID string) ([]db.Allocation, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+allocationColumns+`
		FROM allocations
		WHERE course_id = $1 AND status = 'ALLOCATED'
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations for course %s: %w", courseID, err)
	}
	defer rows.Close()

	return collectAllocations(rows)
}

// GetStudentAllocation retrieves the most recent allocation outcome for a
// student
func (d *DB) GetStudentAllocation(ctx context.Context, studentID string) (*db.Allocation, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT `+allocationColumns+`
		FROM allocations
		WHERE student_id = $1
		ORDER BY allocated_at DESC
		LIMIT 1
	`, studentID)

	allocation, err := scanAllocation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query allocation for student %s: %w", studentID, err)
	}
	return &allocation, nil
}

// CountAllocatedByCategory counts granted seats on a course grouped by the
// students' reservation category
func (d *DB) CountAllocatedByCategory(ctx context.Context, courseID string) (map[string]int, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT s.category, COUNT(*)
		FROM allocations a
		JOIN students s ON s.id = a.student_id
		WHERE a.course_id = $1 AND a.status = 'ALLOCATED'
		GROUP BY s.category
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count allocations for course %s: %w", courseID, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category counts: %w", err)
	}

	return counts, nil
}

// ReplaceBatchAllocations atomically replaces all allocation records for a
// batch with the given set. The whole replace happens inside one transaction
// guarded by a per-batch advisory lock, so concurrent runs for the same
// batch serialize and readers never observe a half-updated result set.
func (d *DB) ReplaceBatchAllocations(ctx context.Context, batchID string, allocations []db.Allocation) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Held until commit/rollback; serializes runs per batch
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, batchLockKey(batchID)); err != nil {
		return fmt.Errorf("failed to acquire batch lock: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM allocations WHERE batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("failed to clear prior allocations for batch %s: %w", batchID, err)
	}

	for _, a := range allocations {
		var courseID *string
		if a.CourseID != "" {
			courseID = &a.CourseID
		}
		var rank *int
		if a.PreferenceRank != 0 {
			rank = &a.PreferenceRank
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO allocations (id, batch_id, student_id, course_id, status, preference_rank, allocated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, a.ID, a.BatchID, a.StudentID, courseID, a.Status, rank, a.AllocatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert allocation for student %s: %w", a.StudentID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// batchLockKey hashes a batch ID onto the advisory lock keyspace
func batchLockKey(batchID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(batchID))
	return int64(h.Sum64())
}

func scanAllocation(row pgx.Row) (db.Allocation, error) {
	var a db.Allocation
	var courseID *string
	var rank *int
	err := row.Scan(&a.ID, &a.BatchID, &a.StudentID, &courseID, &a.Status, &rank, &a.AllocatedAt)
	if err != nil {
		return a, err
	}
	if courseID != nil {
		a.CourseID = *courseID
	}
	if rank != nil {
		a.PreferenceRank = *rank
	}
	return a, nil
}

func collectAllocations(rows pgx.Rows) ([]db.Allocation, error) {
	var allocations []db.Allocation
	for rows.Next() {
		allocation, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		allocations = append(allocations, allocation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocations: %w", err)
	}
	return allocations, nil
}
