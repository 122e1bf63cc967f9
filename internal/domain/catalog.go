package domain

import (
	"context"
	"time"
)

// Room represents an exam room with a fixed seating capacity.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRoom returns a new Room with the given fields. ID is typically set by the repository on create.
func NewRoom(name string, capacity int, createdAt, updatedAt time.Time) *Room {
	return &Room{
		Name:      name,
		Capacity:  capacity,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Group represents a student group sitting exams together.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGroup returns a new Group with the given fields. ID is typically set by the repository on create.
func NewGroup(name string, size int, createdAt, updatedAt time.Time) *Group {
	return &Group{
		Name:      name,
		Size:      size,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Subject represents an examinable subject.
type Subject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CatalogRepository defines lookup access to rooms, groups, subjects, and
// the subject-to-group requirement mapping consumed by the scheduling core.
type CatalogRepository interface {
	GetRoom(ctx context.Context, id string) (*Room, error)
	ListRooms(ctx context.Context) ([]*Room, error)
	GetGroup(ctx context.Context, id string) (*Group, error)
	ListGroups(ctx context.Context) ([]*Group, error)
	GetSubject(ctx context.Context, id string) (*Subject, error)
	ListSubjects(ctx context.Context) ([]*Subject, error)
	// ListRequirements returns, per subject ID, the IDs of groups that
	// require a session for that subject.
	ListRequirements(ctx context.Context) (map[string][]string, error)
}
