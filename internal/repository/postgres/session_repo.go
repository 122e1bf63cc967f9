package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"examscheduler/internal/domain"
)

type sessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{DB: db}
}

const sessionColumns = `id, subject_id, date, start_min, end_min, room_id, group_ids, supervisor_ids, intent, cancelled, created_at, updated_at`

// conflictQuery finds a non-cancelled session overlapping the interval that
// shares the room, a group, or a supervisor. $8 excludes one session ID so
// updates do not conflict with themselves.
const conflictQuery = `
	SELECT id FROM exam_sessions
	WHERE cancelled = FALSE
	  AND date = $1
	  AND start_min < $2
	  AND end_min > $3
	  AND (room_id = $4 OR group_ids && $5 OR supervisor_ids && $6)
	  AND id <> $7
	LIMIT 1
`

func findConflict(ctx context.Context, tx *sql.Tx, s *domain.ExamSession) error {
	var conflictID string
	err := tx.QueryRowContext(ctx, conflictQuery,
		civilToTime(s.Interval.Date), int(s.Interval.End), int(s.Interval.Start),
		s.RoomID, pq.Array(s.GroupIDs), pq.Array(s.SupervisorIDs), s.ID,
	).Scan(&conflictID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: session %s", domain.ErrBookingConflict, conflictID)
}

func insertSession(ctx context.Context, tx *sql.Tx, s *domain.ExamSession) error {
	query := `
		INSERT INTO exam_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := tx.ExecContext(ctx, query,
		s.ID, s.SubjectID, civilToTime(s.Interval.Date), int(s.Interval.Start), int(s.Interval.End),
		s.RoomID, pq.Array(s.GroupIDs), pq.Array(s.SupervisorIDs), string(s.Intent), s.Cancelled,
		s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// Create inserts the session inside a serializable transaction, re-checking
// for overlapping bookings first. The engine validates against a snapshot;
// this check closes the window between validation and commit.
func (r *sessionRepository) Create(ctx context.Context, s *domain.ExamSession) error {
	return r.withSerializableTx(ctx, func(tx *sql.Tx) error {
		if err := findConflict(ctx, tx, s); err != nil {
			return err
		}
		return insertSession(ctx, tx, s)
	})
}

// CreateBatch inserts all sessions in one serializable transaction; no
// session is written if any conflict re-check fails.
func (r *sessionRepository) CreateBatch(ctx context.Context, sessions []*domain.ExamSession) error {
	return r.withSerializableTx(ctx, func(tx *sql.Tx) error {
		for _, s := range sessions {
			if err := findConflict(ctx, tx, s); err != nil {
				return err
			}
			if err := insertSession(ctx, tx, s); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *sessionRepository) withSerializableTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		// Serialization failure means a concurrent commit touched the same
		// rows; report it as a booking conflict so callers can retry.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "40001" {
			return domain.ErrBookingConflict
		}
		return err
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.ExamSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM exam_sessions WHERE id = $1`
	s, err := scanSession(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// Update rewrites the session inside a serializable transaction with the
// same conflict re-check as Create, excluding the session's own row.
func (r *sessionRepository) Update(ctx context.Context, s *domain.ExamSession) error {
	return r.withSerializableTx(ctx, func(tx *sql.Tx) error {
		if err := findConflict(ctx, tx, s); err != nil {
			return err
		}
		query := `
			UPDATE exam_sessions
			SET subject_id = $2, date = $3, start_min = $4, end_min = $5, room_id = $6,
			    group_ids = $7, supervisor_ids = $8, intent = $9, updated_at = $10
			WHERE id = $1
		`
		res, err := tx.ExecContext(ctx, query,
			s.ID, s.SubjectID, civilToTime(s.Interval.Date), int(s.Interval.Start), int(s.Interval.End),
			s.RoomID, pq.Array(s.GroupIDs), pq.Array(s.SupervisorIDs), string(s.Intent), s.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

func (r *sessionRepository) Cancel(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE exam_sessions SET cancelled = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM exam_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sessionRepository) ListByDate(ctx context.Context, date domain.CivilDate) ([]*domain.ExamSession, error) {
	return r.ListInRange(ctx, date, date)
}

func (r *sessionRepository) ListInRange(ctx context.Context, from, to domain.CivilDate) ([]*domain.ExamSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM exam_sessions
		WHERE cancelled = FALSE AND date >= $1 AND date <= $2
		ORDER BY date, start_min, id
	`
	rows, err := r.DB.QueryContext(ctx, query, civilToTime(from), civilToTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []*domain.ExamSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.ExamSession, error) {
	s := &domain.ExamSession{}
	var date time.Time
	var startMin, endMin int
	var intent string
	err := row.Scan(&s.ID, &s.SubjectID, &date, &startMin, &endMin, &s.RoomID,
		pq.Array(&s.GroupIDs), pq.Array(&s.SupervisorIDs), &intent, &s.Cancelled,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Interval = domain.TimeInterval{
		Date:  domain.CivilDateOf(date),
		Start: domain.TimeOfDay(startMin),
		End:   domain.TimeOfDay(endMin),
	}
	s.Intent = domain.IntentKind(intent)
	return s, nil
}

func civilToTime(d domain.CivilDate) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
