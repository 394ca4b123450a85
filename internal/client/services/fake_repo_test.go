package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/RndUsr76/Notish/internal/client/models"
	"github.com/RndUsr76/Notish/internal/client/repositories/notes"
	"github.com/RndUsr76/Notish/internal/client/tags"
	"github.com/RndUsr76/Notish/internal/common"
	"github.com/RndUsr76/Notish/internal/logging"
)

type updateCall struct {
	owner string
	id    string
	patch models.NotePatch
}

// fakeNotes is an in-memory notes.Repository that records calls.
type fakeNotes struct {
	notes.Repository

	mu      sync.Mutex
	rows    []models.Note
	clock   time.Time
	nextID  int
	lists   int
	updates []updateCall
	deletes []string

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	// when set, Update and List signal started and then wait for release
	started chan struct{}
	release chan struct{}
}

func newFakeNotes(rows ...models.Note) *fakeNotes {
	return &fakeNotes{
		rows:  rows,
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeNotes) gate() {
	if f.started == nil {
		return
	}
	f.started <- struct{}{}
	<-f.release
}

func (f *fakeNotes) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeNotes) List(ctx context.Context, ownerID string) ([]models.Note, error) {
	f.gate()
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lists++
	if f.listErr != nil {
		return nil, &notes.StoreError{Op: "list", Err: f.listErr}
	}
	out := make([]models.Note, 0)
	for _, n := range f.rows {
		if n.OwnerID == ownerID {
			out = append(out, n.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b models.Note) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

func (f *fakeNotes) Create(ctx context.Context, ownerID string, fields models.NoteFields) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return models.Note{}, &notes.StoreError{Op: "create", Err: f.createErr}
	}
	f.nextID++
	now := f.tick()
	n := models.Note{
		ID:          fmt.Sprintf("new-%d", f.nextID),
		OwnerID:     ownerID,
		Content:     fields.Content,
		TextContent: fields.TextContent,
		Tags:        fields.Tags,
		Project:     models.NormalizeProject(fields.Project),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.rows = append(f.rows, n)
	return n.Clone(), nil
}

func (f *fakeNotes) Update(ctx context.Context, ownerID, id string, patch models.NotePatch) error {
	f.gate()
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updates = append(f.updates, updateCall{owner: ownerID, id: id, patch: patch})
	if f.updateErr != nil {
		return &notes.StoreError{Op: "update", Err: f.updateErr}
	}
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].OwnerID == ownerID {
			if patch.UpdatedAt.IsZero() {
				patch.UpdatedAt = f.tick()
			}
			patch.Apply(&f.rows[i])
			return nil
		}
	}
	return &notes.StoreError{Op: "update", Err: common.ErrNotFound}
}

func (f *fakeNotes) Delete(ctx context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return &notes.StoreError{Op: "delete", Err: f.deleteErr}
	}
	f.rows = slices.DeleteFunc(f.rows, func(n models.Note) bool { return n.ID == id && n.OwnerID == ownerID })
	return nil
}

func (f *fakeNotes) updateCalls() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.updates)
}

func (f *fakeNotes) deleteCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.deletes)
}

func (f *fakeNotes) setUpdateErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateErr = err
}

// memMetadata is an in-memory metadata.Repository.
type memMetadata struct {
	mu     sync.Mutex
	values map[string][]byte
	setErr error
}

func newMemMetadata() *memMetadata {
	return &memMetadata{values: map[string][]byte{}}
}

func (m *memMetadata) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memMetadata) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = slices.Clone(value)
	return nil
}

func (m *memMetadata) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func note(id, owner, project, text string, updated time.Time) models.Note {
	return models.Note{
		ID:          id,
		OwnerID:     owner,
		Content:     models.EmptyDocument,
		TextContent: text,
		Tags:        tags.Extract(text),
		Project:     project,
		CreatedAt:   updated,
		UpdatedAt:   updated,
	}
}

func nopLogger() logging.Logger {
	return logging.Discard()
}
