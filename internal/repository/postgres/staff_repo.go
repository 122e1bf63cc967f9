package postgres

import (
	"context"
	"database/sql"
	"time"

	"examscheduler/internal/domain"
)

type staffRepository struct {
	DB *sql.DB
}

func NewStaffRepository(db *sql.DB) domain.StaffRepository {
	return &staffRepository{DB: db}
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	query := `
		SELECT id, name, email, created_at, updated_at
		FROM staff
		WHERE id = $1
	`
	s := &domain.Staff{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.Email, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *staffRepository) List(ctx context.Context) ([]*domain.Staff, error) {
	query := `
		SELECT id, name, email, created_at, updated_at
		FROM staff
		ORDER BY name, id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var staff []*domain.Staff
	for rows.Next() {
		s := &domain.Staff{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

func (r *staffRepository) CreateRule(ctx context.Context, rule *domain.WeeklyRule) error {
	query := `
		INSERT INTO weekly_rules (staff_id, day, start_min, end_min)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, rule.StaffID, int(rule.Day), int(rule.Start), int(rule.End)).Scan(&rule.ID)
}

func (r *staffRepository) ListRules(ctx context.Context, staffID string) ([]domain.WeeklyRule, error) {
	query := `
		SELECT id, staff_id, day, start_min, end_min
		FROM weekly_rules
		WHERE staff_id = $1
		ORDER BY day, start_min, id
	`
	return r.queryRules(ctx, query, staffID)
}

func (r *staffRepository) ListAllRules(ctx context.Context) ([]domain.WeeklyRule, error) {
	query := `
		SELECT id, staff_id, day, start_min, end_min
		FROM weekly_rules
		ORDER BY staff_id, day, start_min, id
	`
	return r.queryRules(ctx, query)
}

func (r *staffRepository) queryRules(ctx context.Context, query string, args ...any) ([]domain.WeeklyRule, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rules []domain.WeeklyRule
	for rows.Next() {
		var rule domain.WeeklyRule
		var day, startMin, endMin int
		if err := rows.Scan(&rule.ID, &rule.StaffID, &day, &startMin, &endMin); err != nil {
			return nil, err
		}
		rule.Day = time.Weekday(day)
		rule.Start = domain.TimeOfDay(startMin)
		rule.End = domain.TimeOfDay(endMin)
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *staffRepository) DeleteRule(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM weekly_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *staffRepository) CreateOverride(ctx context.Context, o *domain.DateOverride) error {
	query := `
		INSERT INTO date_overrides (staff_id, date, start_min, end_min, available, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		o.StaffID, civilToTime(o.Date), int(o.Start), int(o.End), o.Available, o.Reason,
	).Scan(&o.ID)
}

func (r *staffRepository) ListOverrides(ctx context.Context, staffID string) ([]domain.DateOverride, error) {
	query := `
		SELECT id, staff_id, date, start_min, end_min, available, reason
		FROM date_overrides
		WHERE staff_id = $1
		ORDER BY date, start_min, id
	`
	return r.queryOverrides(ctx, query, staffID)
}

func (r *staffRepository) ListOverridesInRange(ctx context.Context, from, to domain.CivilDate) ([]domain.DateOverride, error) {
	query := `
		SELECT id, staff_id, date, start_min, end_min, available, reason
		FROM date_overrides
		WHERE date >= $1 AND date <= $2
		ORDER BY staff_id, date, start_min, id
	`
	return r.queryOverrides(ctx, query, civilToTime(from), civilToTime(to))
}

func (r *staffRepository) queryOverrides(ctx context.Context, query string, args ...any) ([]domain.DateOverride, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var overrides []domain.DateOverride
	for rows.Next() {
		var o domain.DateOverride
		var date time.Time
		var startMin, endMin int
		if err := rows.Scan(&o.ID, &o.StaffID, &date, &startMin, &endMin, &o.Available, &o.Reason); err != nil {
			return nil, err
		}
		o.Date = domain.CivilDateOf(date)
		o.Start = domain.TimeOfDay(startMin)
		o.End = domain.TimeOfDay(endMin)
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (r *staffRepository) DeleteOverride(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM date_overrides WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
