// internal/domain/post/store.go

package post

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when a post or project does not exist
var ErrNotFound = errors.New("not found")

// Store defines persistence for posts and their hashtags
type Store interface {
	// SavePost inserts or replaces a post together with its hashtags
	SavePost(ctx context.Context, p Post) error

	// GetPost returns a post by ID
	GetPost(ctx context.Context, id string) (*Post, error)

	// ListPosts returns the posts of the given projects ordered by date and time
	ListPosts(ctx context.Context, projectIDs []string) ([]Post, error)

	// DeletePosts deletes posts and their hashtags, returning how many were removed
	DeletePosts(ctx context.Context, ids []string) (int, error)
}

// ProjectStore defines lookup of projects and their owners
type ProjectStore interface {
	// SaveProject inserts or updates a project
	SaveProject(ctx context.Context, p Project) error

	// ProjectsForOwner returns every project owned by ownerID
	ProjectsForOwner(ctx context.Context, ownerID string) ([]Project, error)

	// GetProject returns a project by ID
	GetProject(ctx context.Context, id string) (*Project, error)

	// DeleteProject deletes a project together with its posts and their hashtags
	DeleteProject(ctx context.Context, id string) error

	// Owners returns the IDs of every owner with at least one project
	Owners(ctx context.Context) ([]string, error)
}
