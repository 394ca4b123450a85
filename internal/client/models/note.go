package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultProject is the label used for notes that have no project.
const DefaultProject = "General"

// EmptyDocument is the structured content of a freshly created note.
var EmptyDocument = json.RawMessage(`{"type":"doc","content":[]}`)

// Note is a single user document. Content is opaque to the client core and
// is only stored and handed back to the editor; TextContent is its plain-text
// projection and the source of Tags.
type Note struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"user_id"`
	Content     json.RawMessage `json:"content"`
	TextContent string          `json:"text_content"`
	Tags        []string        `json:"tags"`
	Project     string          `json:"project"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsBlank reports whether the note has no visible text.
func (n Note) IsBlank() bool {
	return strings.TrimSpace(n.TextContent) == ""
}

// ProjectOrDefault returns Project, or DefaultProject when it is empty.
func (n Note) ProjectOrDefault() string {
	return NormalizeProject(n.Project)
}

// Clone returns a copy that shares no slices with n.
func (n Note) Clone() Note {
	c := n
	if n.Content != nil {
		c.Content = append(json.RawMessage(nil), n.Content...)
	}
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	return c
}

// NormalizeProject maps an empty or blank label to DefaultProject.
func NormalizeProject(project string) string {
	if strings.TrimSpace(project) == "" {
		return DefaultProject
	}
	return project
}

// NoteFields are the initial values passed to a store on creation.
type NoteFields struct {
	Content     json.RawMessage
	TextContent string
	Tags        []string
	Project     string
}

// NewNoteFields returns the fields of a brand new, empty note.
func NewNoteFields() NoteFields {
	return NoteFields{
		Content: EmptyDocument,
		Tags:    []string{},
		Project: DefaultProject,
	}
}

// NotePatch is a partial update. Nil fields are left untouched. UpdatedAt is
// always written; a zero value makes the store use its own clock.
type NotePatch struct {
	Content     *json.RawMessage
	TextContent *string
	Tags        *[]string
	Project     *string
	UpdatedAt   time.Time
}

// Apply merges the patch into n.
func (p NotePatch) Apply(n *Note) {
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.TextContent != nil {
		n.TextContent = *p.TextContent
	}
	if p.Tags != nil {
		n.Tags = *p.Tags
	}
	if p.Project != nil {
		n.Project = NormalizeProject(*p.Project)
	}
	if !p.UpdatedAt.IsZero() {
		n.UpdatedAt = p.UpdatedAt
	}
}
