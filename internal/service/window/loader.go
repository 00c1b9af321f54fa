// internal/service/window/loader.go

package window

import (
	"context"
	"errors"
	"fmt"

	"socialtrack/internal/domain/post"
)

// ErrProjectNotFound is returned when a project does not exist or belongs to another owner
var ErrProjectNotFound = errors.New("project not found")

// Loader builds owner-scoped post windows from storage
type Loader struct {
	projects post.ProjectStore
	posts    post.Store
}

// NewLoader creates a new window loader
func NewLoader(projects post.ProjectStore, posts post.Store) *Loader {
	return &Loader{
		projects: projects,
		posts:    posts,
	}
}

// Load returns the posts of every project owned by ownerID, or of the single project
// projectID when it is not empty. Posts come back ordered by date and time.
func (l *Loader) Load(ctx context.Context, ownerID, projectID string) (post.Window, error) {
	w := post.Window{
		OwnerID:    ownerID,
		ProjectIDs: []string{},
		Posts:      []post.Post{},
	}

	if projectID != "" {
		p, err := l.projects.GetProject(ctx, projectID)
		if errors.Is(err, post.ErrNotFound) {
			return w, ErrProjectNotFound
		}
		if err != nil {
			return w, fmt.Errorf("error loading project %s: %w", projectID, err)
		}
		if p.OwnerID != ownerID {
			return w, ErrProjectNotFound
		}
		w.ProjectIDs = append(w.ProjectIDs, p.ID)
	} else {
		projects, err := l.projects.ProjectsForOwner(ctx, ownerID)
		if err != nil {
			return w, fmt.Errorf("error loading projects for owner %s: %w", ownerID, err)
		}
		for _, p := range projects {
			w.ProjectIDs = append(w.ProjectIDs, p.ID)
		}
	}

	if len(w.ProjectIDs) == 0 {
		return w, nil
	}

	posts, err := l.posts.ListPosts(ctx, w.ProjectIDs)
	if err != nil {
		return w, fmt.Errorf("error loading posts: %w", err)
	}
	if posts != nil {
		w.Posts = posts
	}

	return w, nil
}
