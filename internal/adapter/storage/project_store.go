// internal/adapter/storage/project_store.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"socialtrack/internal/domain/post"
)

// ProjectStore implements storage for projects
type ProjectStore struct {
	db *pgxpool.Pool
}

var _ post.ProjectStore = (*ProjectStore)(nil)

// NewProjectStore creates a new project store
func NewProjectStore(db *pgxpool.Pool) *ProjectStore {
	return &ProjectStore{
		db: db,
	}
}

// SaveProject saves a project to storage
func (s *ProjectStore) SaveProject(ctx context.Context, p post.Project) error {
	query := `
		INSERT INTO projects (id, owner_id, name, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET
			name = $3,
			description = $4
	`

	if _, err := s.db.Exec(ctx, query, p.ID, p.OwnerID, p.Name, p.Description); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetProject retrieves a project by ID
func (s *ProjectStore) GetProject(ctx context.Context, id string) (*post.Project, error) {
	query := `
		SELECT id, owner_id, name, description
		FROM projects
		WHERE id = $1
	`

	var p post.Project
	err := s.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("error querying project %s: %w", id, post.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying project: %w", err)
	}

	return &p, nil
}

// DeleteProject deletes a project. Posts and hashtags are removed through ON DELETE CASCADE.
func (s *ProjectStore) DeleteProject(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("error deleting project %s: %w", id, post.ErrNotFound)
	}

	return nil
}

// ProjectsForOwner returns every project owned by ownerID ordered by name
func (s *ProjectStore) ProjectsForOwner(ctx context.Context, ownerID string) ([]post.Project, error) {
	query := `
		SELECT id, owner_id, name, description
		FROM projects
		WHERE owner_id = $1
		ORDER BY name, id
	`

	rows, err := s.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	projects := []post.Project{}
	for rows.Next() {
		var p post.Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("error scanning project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// Owners returns the IDs of every owner with at least one project
func (s *ProjectStore) Owners(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT owner_id FROM projects ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("error scanning owner: %w", err)
		}
		owners = append(owners, owner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owners: %w", err)
	}

	return owners, nil
}
