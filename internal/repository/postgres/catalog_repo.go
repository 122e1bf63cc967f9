package postgres

import (
	"context"
	"database/sql"

	"examscheduler/internal/domain"
)

type catalogRepository struct {
	DB *sql.DB
}

func NewCatalogRepository(db *sql.DB) domain.CatalogRepository {
	return &catalogRepository{DB: db}
}

func (r *catalogRepository) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	query := `
		SELECT id, name, capacity, created_at, updated_at
		FROM rooms
		WHERE id = $1
	`
	room := &domain.Room{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

func (r *catalogRepository) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	query := `
		SELECT id, name, capacity, created_at, updated_at
		FROM rooms
		ORDER BY name
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rooms []*domain.Room
	for rows.Next() {
		room := &domain.Room{}
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *catalogRepository) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	query := `
		SELECT id, name, size, created_at, updated_at
		FROM groups
		WHERE id = $1
	`
	g := &domain.Group{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&g.ID, &g.Name, &g.Size, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *catalogRepository) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	query := `
		SELECT id, name, size, created_at, updated_at
		FROM groups
		ORDER BY name
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []*domain.Group
	for rows.Next() {
		g := &domain.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Size, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *catalogRepository) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM subjects
		WHERE id = $1
	`
	s := &domain.Subject{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *catalogRepository) ListSubjects(ctx context.Context) ([]*domain.Subject, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM subjects
		ORDER BY name
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subjects []*domain.Subject
	for rows.Next() {
		s := &domain.Subject{}
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *catalogRepository) ListRequirements(ctx context.Context) (map[string][]string, error) {
	query := `
		SELECT subject_id, group_id
		FROM subject_requirements
		ORDER BY subject_id, group_id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	requirements := make(map[string][]string)
	for rows.Next() {
		var subjectID, groupID string
		if err := rows.Scan(&subjectID, &groupID); err != nil {
			return nil, err
		}
		requirements[subjectID] = append(requirements[subjectID], groupID)
	}
	return requirements, rows.Err()
}
