package services

import "context"

// Selection switches the active note. Leaving a note that has no visible
// text deletes it, so blank notes are never kept.
type Selection struct {
	notes *NoteService
}

func NewSelection(notes *NoteService) *Selection {
	return &Selection{notes: notes}
}

// Current returns the active note id. ok is false for no selection.
func (s *Selection) Current() (id string, ok bool) {
	return s.notes.ActiveID()
}

// Select makes id the active note; "" selects nothing. If the note being
// left is blank it is deleted first, even when id is that same note. The
// target id is not checked for existence.
func (s *Selection) Select(ctx context.Context, id string) {
	if cur, ok := s.notes.ActiveID(); ok && s.notes.isBlank(cur) {
		// failures are logged by Delete; the selection still moves
		_ = s.notes.Delete(ctx, cur)
	}
	s.notes.activate(id)
}

// Clear is Select(ctx, "").
func (s *Selection) Clear(ctx context.Context) {
	s.Select(ctx, "")
}
