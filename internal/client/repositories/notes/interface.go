package notes

import (
	"context"

	"github.com/RndUsr76/Notish/internal/client/models"
)

// Repository describes the owner-scoped CRUD operations over notes.
type Repository interface {
	// List returns the owner's notes ordered by UpdatedAt, newest first.
	List(ctx context.Context, ownerID string) ([]models.Note, error)

	// Create stores a new note and returns it with ID and timestamps set.
	Create(ctx context.Context, ownerID string, fields models.NoteFields) (models.Note, error)

	// Update applies patch to the note and refreshes its UpdatedAt.
	Update(ctx context.Context, ownerID, id string, patch models.NotePatch) error

	// Delete removes the note. Missing notes are ignored.
	Delete(ctx context.Context, ownerID, id string) error
}
