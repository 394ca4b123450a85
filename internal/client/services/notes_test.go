package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/RndUsr76/Notish/internal/client/migrations"
	"github.com/RndUsr76/Notish/internal/client/models"
	"github.com/RndUsr76/Notish/internal/client/repositories/notes"
	"github.com/RndUsr76/Notish/internal/common"
	"github.com/RndUsr76/Notish/internal/logging"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const fastDebounce = 40 * time.Millisecond

var (
	t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
	t2 = t0.Add(2 * time.Hour)
)

func newService(t *testing.T, repo notes.Repository) *NoteService {
	t.Helper()
	s := NewNoteService(repo, logging.Discard(), WithSaveDebounce(fastDebounce))
	t.Cleanup(func() { s.debounce.Stop() })
	return s
}

func ids(list []models.Note) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.ID
	}
	return out
}

func TestNoteService_LoadActivatesNewest(t *testing.T) {
	repo := newFakeNotes(
		note("old", "u1", "", "old", t0),
		note("new", "u1", "", "new", t2),
		note("mid", "u1", "", "mid", t1),
		note("other", "u2", "", "x", t2),
	)
	s := newService(t, repo)

	s.SetOwner(context.Background(), "u1")

	assert.Equal(t, []string{"new", "mid", "old"}, ids(s.Notes()))
	id, ok := s.ActiveID()
	require.True(t, ok)
	assert.Equal(t, "new", id)
	assert.False(t, s.IsLoading())
	assert.Equal(t, "u1", s.Owner())
}

func TestNoteService_LoadKeepsExistingActive(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "a", t0), note("b", "u1", "", "b", t1))
	s := newService(t, repo)
	ctx := context.Background()

	s.SetOwner(ctx, "u1")
	s.activate("a")
	s.Load(ctx)

	id, _ := s.ActiveID()
	assert.Equal(t, "a", id)
}

func TestNoteService_LoadEmptyLeavesNoSelection(t *testing.T) {
	s := newService(t, newFakeNotes())
	s.SetOwner(context.Background(), "u1")

	_, ok := s.ActiveID()
	assert.False(t, ok)
	assert.Empty(t, s.Notes())
	assert.Equal(t, []string{models.DefaultProject}, s.Projects())
}

func TestNoteService_NoOwnerClearsState(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "Work", "#x", t0))
	s := newService(t, repo)
	ctx := context.Background()

	s.SetOwner(ctx, "u1")
	require.Len(t, s.Notes(), 1)
	lists := repo.lists

	s.SetOwner(ctx, "")

	assert.Empty(t, s.Notes())
	_, ok := s.ActiveID()
	assert.False(t, ok)
	assert.Empty(t, s.Keywords())
	assert.Equal(t, []string{models.DefaultProject}, s.Projects())
	assert.Equal(t, lists, repo.lists, "no store call without an owner")
}

func TestNoteService_LoadFailureKeepsLastKnownGood(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "a", t0))
	s := newService(t, repo)
	ctx := context.Background()

	s.SetOwner(ctx, "u1")
	require.Len(t, s.Notes(), 1)

	repo.listErr = errors.New("offline")
	s.Load(ctx)

	assert.Equal(t, []string{"a"}, ids(s.Notes()))
	assert.False(t, s.IsLoading())
}

func TestNoteService_FirstLoadFailureIsEmpty(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "a", t0))
	repo.listErr = errors.New("offline")
	s := newService(t, repo)

	s.SetOwner(context.Background(), "u1")

	assert.Empty(t, s.Notes())
	assert.False(t, s.IsLoading())
}

func TestNoteService_LoadingFlagDuringCall(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "a", t0))
	repo.started = make(chan struct{})
	repo.release = make(chan struct{})
	s := newService(t, repo)

	done := make(chan struct{})
	go func() {
		s.SetOwner(context.Background(), "u1")
		close(done)
	}()

	<-repo.started
	assert.True(t, s.IsLoading())
	close(repo.release)
	<-done
	assert.False(t, s.IsLoading())
}

func TestNoteService_StaleLoadIsDiscarded(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "a", t0), note("b", "u2", "", "b", t0))
	repo.started = make(chan struct{}, 2)
	repo.release = make(chan struct{})
	s := newService(t, repo)
	ctx := context.Background()

	first := make(chan struct{})
	go func() {
		s.SetOwner(ctx, "u1")
		close(first)
	}()
	<-repo.started

	second := make(chan struct{})
	go func() {
		s.SetOwner(ctx, "u2")
		close(second)
	}()
	<-repo.started

	close(repo.release)
	<-first
	<-second

	assert.Equal(t, []string{"b"}, ids(s.Notes()))
	assert.Equal(t, "u2", s.Owner())
}

func TestNoteService_CreateRequiresOwner(t *testing.T) {
	s := newService(t, newFakeNotes())

	_, err := s.Create(context.Background())
	require.ErrorIs(t, err, common.ErrNoOwner)
}

func TestNoteService_CreateIsEmptyGeneralAndActive(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "Work", "hello", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	n, err := s.Create(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.DefaultProject, n.Project)
	assert.Empty(t, n.Tags)
	assert.Equal(t, "", n.TextContent)
	assert.JSONEq(t, string(models.EmptyDocument), string(n.Content))

	assert.Equal(t, []string{n.ID, "a"}, ids(s.Notes()))
	id, _ := s.ActiveID()
	assert.Equal(t, n.ID, id)
}

func TestNoteService_CreateFailureLeavesState(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "a", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	repo.createErr = errors.New("quota")
	_, err := s.Create(ctx)
	require.Error(t, err)

	var se *notes.StoreError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"a"}, ids(s.Notes()))
	id, _ := s.ActiveID()
	assert.Equal(t, "a", id)
}

func TestNoteService_DeleteActiveActivatesNextNewest(t *testing.T) {
	repo := newFakeNotes(
		note("a", "u1", "", "a", t2),
		note("b", "u1", "", "b", t0),
		note("c", "u1", "", "c", t1),
	)
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	require.NoError(t, s.Delete(ctx, "a"))
	id, _ := s.ActiveID()
	assert.Equal(t, "c", id)

	require.NoError(t, s.Delete(ctx, "c"))
	id, _ = s.ActiveID()
	assert.Equal(t, "b", id)

	require.NoError(t, s.Delete(ctx, "b"))
	_, ok := s.ActiveID()
	assert.False(t, ok)
	assert.Empty(t, s.Notes())
}

func TestNoteService_DeleteInactiveKeepsSelection(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "a", t2), note("b", "u1", "", "b", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	require.NoError(t, s.Delete(ctx, "b"))
	id, _ := s.ActiveID()
	assert.Equal(t, "a", id)
	assert.Equal(t, []string{"a"}, ids(s.Notes()))
}

func TestNoteService_DeleteFailureKeepsNote(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "a", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	repo.deleteErr = errors.New("denied")
	require.Error(t, s.Delete(ctx, "a"))

	assert.Equal(t, []string{"a"}, ids(s.Notes()))
	id, _ := s.ActiveID()
	assert.Equal(t, "a", id)
}

func TestNoteService_DeleteFailureKeepsPendingEdit(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "old", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	s.Save(ctx, "a", nil, "important edit")
	repo.deleteErr = errors.New("denied")
	require.Error(t, s.Delete(ctx, "a"))

	d, pending := s.Draft("a")
	require.True(t, pending)
	assert.Equal(t, "important edit", d.TextContent)

	require.Eventually(t, func() bool { return len(repo.updateCalls()) == 1 && !s.IsSaving() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "important edit", *repo.updateCalls()[0].patch.TextContent)
	n, ok := s.Note("a")
	require.True(t, ok)
	assert.Equal(t, "important edit", n.TextContent)
}

func TestNoteService_SaveDebouncesToLastCall(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	for _, text := range []string{"h", "he #x", "hel #x", "hello #World #go"} {
		s.Save(ctx, "a", json.RawMessage(`{"t":"`+text+`"}`), text)
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(repo.updateCalls()) == 1 && !s.IsSaving() }, time.Second, 5*time.Millisecond)
	time.Sleep(2 * fastDebounce)

	calls := repo.updateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "u1", calls[0].owner)
	assert.Equal(t, "hello #World #go", *calls[0].patch.TextContent)
	assert.Equal(t, []string{"go", "world"}, *calls[0].patch.Tags)
	assert.JSONEq(t, `{"t":"hello #World #go"}`, string(*calls[0].patch.Content))
	assert.Nil(t, calls[0].patch.Project)

	n, ok := s.Note("a")
	require.True(t, ok)
	assert.Equal(t, "hello #World #go", n.TextContent)
	assert.Equal(t, []string{"go", "world"}, n.Tags)
	assert.True(t, n.UpdatedAt.After(t0))
	assert.Equal(t, []string{"go", "world"}, s.Keywords())

	_, pending := s.Draft("a")
	assert.False(t, pending)
}

func TestNoteService_SaveIsKeyedPerNote(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "", t0), note("b", "u1", "", "", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	s.Save(ctx, "a", nil, "for a")
	s.Save(ctx, "b", nil, "for b")

	require.Eventually(t, func() bool { return len(repo.updateCalls()) == 2 }, time.Second, 5*time.Millisecond)

	got := map[string]string{}
	for _, c := range repo.updateCalls() {
		got[c.id] = *c.patch.TextContent
	}
	assert.Equal(t, map[string]string{"a": "for a", "b": "for b"}, got)
}

func TestNoteService_SavingFlagAroundWrite(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	repo.started = make(chan struct{})
	repo.release = make(chan struct{})

	s.Save(ctx, "a", nil, "text")
	assert.False(t, s.IsSaving(), "nothing in flight during the quiet period")

	<-repo.started
	assert.True(t, s.IsSaving())
	close(repo.release)

	require.Eventually(t, func() bool { return !s.IsSaving() }, time.Second, 5*time.Millisecond)
}

func TestNoteService_SaveFailureNoRollbackFlagReset(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "before", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")
	repo.setUpdateErr(errors.New("network down"))

	s.Save(ctx, "a", nil, "after #kept")

	require.Eventually(t, func() bool { return len(repo.updateCalls()) == 1 && !s.IsSaving() }, time.Second, 5*time.Millisecond)

	n, _ := s.Note("a")
	assert.Equal(t, "before", n.TextContent, "stored note only changes on success")

	d, pending := s.Draft("a")
	require.True(t, pending, "the rejected edit stays visible")
	assert.Equal(t, "after #kept", d.TextContent)
	assert.Equal(t, []string{"kept"}, d.Tags)
	assert.True(t, d.Failed)

	time.Sleep(2 * fastDebounce)
	assert.Len(t, repo.updateCalls(), 1, "no retry")
}

func TestNoteService_SaveAfterFailureClearsDraft(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "before", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	repo.setUpdateErr(errors.New("network down"))
	s.Save(ctx, "a", nil, "first")
	require.Eventually(t, func() bool {
		d, ok := s.Draft("a")
		return ok && d.Failed
	}, time.Second, 5*time.Millisecond)

	repo.setUpdateErr(nil)
	s.Save(ctx, "a", nil, "second")
	d, ok := s.Draft("a")
	require.True(t, ok)
	assert.False(t, d.Failed)

	require.Eventually(t, func() bool { return len(repo.updateCalls()) == 2 && !s.IsSaving() }, time.Second, 5*time.Millisecond)
	_, ok = s.Draft("a")
	assert.False(t, ok)
	n, _ := s.Note("a")
	assert.Equal(t, "second", n.TextContent)
}

func TestNoteService_SaveWithoutOwnerIsIgnored(t *testing.T) {
	repo := newFakeNotes()
	s := newService(t, repo)

	s.Save(context.Background(), "a", nil, "x")
	time.Sleep(2 * fastDebounce)

	assert.Empty(t, repo.updateCalls())
}

func TestNoteService_SaveSurvivesCancelledContext(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "", t0))
	s := newService(t, repo)
	s.SetOwner(context.Background(), "u1")

	ctx, cancel := context.WithCancel(context.Background())
	s.Save(ctx, "a", nil, "kept")
	cancel()

	require.Eventually(t, func() bool { return len(repo.updateCalls()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestNoteService_DeleteCancelsPendingSave(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	s.Save(ctx, "a", nil, "doomed")
	require.NoError(t, s.Delete(ctx, "a"))

	time.Sleep(3 * fastDebounce)
	assert.Empty(t, repo.updateCalls())
}

func TestNoteService_CloseFlushesPendingSaves(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "", t0))
	s := NewNoteService(repo, logging.Discard(), WithSaveDebounce(time.Hour))
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	s.Save(ctx, "a", nil, "#late")
	assert.Empty(t, repo.updateCalls())

	s.Close(ctx)

	calls := repo.updateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "#late", *calls[0].patch.TextContent)
	n, _ := s.Note("a")
	assert.Equal(t, []string{"late"}, n.Tags)
}

func TestNoteService_CloseWaitsForWriteInFlight(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	repo.started = make(chan struct{})
	repo.release = make(chan struct{})

	s.Save(ctx, "a", nil, "last words")
	<-repo.started
	require.True(t, s.IsSaving())

	closed := make(chan struct{})
	go func() {
		s.Close(ctx)
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned with a write in flight")
	case <-time.After(3 * fastDebounce):
	}

	close(repo.release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
	assert.False(t, s.IsSaving())
	require.Len(t, repo.updateCalls(), 1)
	assert.Equal(t, "last words", *repo.updateCalls()[0].patch.TextContent)
}

func TestNoteService_SaveAfterCloseIsNotWritten(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	s.Close(ctx)
	s.Save(ctx, "a", nil, "too late")

	time.Sleep(3 * fastDebounce)
	assert.Empty(t, repo.updateCalls())
}

func TestNoteService_UpdateProject(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "x", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	require.NoError(t, s.UpdateProject(ctx, "a", "Work"))

	calls := repo.updateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Work", *calls[0].patch.Project)
	assert.Nil(t, calls[0].patch.TextContent)
	assert.False(t, calls[0].patch.UpdatedAt.IsZero())

	n, _ := s.Note("a")
	assert.Equal(t, "Work", n.Project)
	assert.Equal(t, []string{models.DefaultProject, "Work"}, s.Projects())

	require.NoError(t, s.UpdateProject(ctx, "a", " "))
	n, _ = s.Note("a")
	assert.Equal(t, models.DefaultProject, n.Project)
}

func TestNoteService_UpdateProjectFailure(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "Home", "x", t0))
	s := newService(t, repo)
	ctx := context.Background()
	s.SetOwner(ctx, "u1")
	repo.setUpdateErr(errors.New("boom"))

	err := s.UpdateProject(ctx, "a", "Work")
	require.Error(t, err)

	n, _ := s.Note("a")
	assert.Equal(t, "Home", n.Project)
}

func TestNoteService_UpdateProjectMissingNote(t *testing.T) {
	s := newService(t, newFakeNotes())
	ctx := context.Background()
	s.SetOwner(ctx, "u1")

	err := s.UpdateProject(ctx, "ghost", "Work")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestNoteService_Indexes(t *testing.T) {
	repo := newFakeNotes(
		note("a", "u1", "Work", "#urgent fix #b", t0),
		note("b", "u1", "", "#b and #a", t1),
		note("c", "u1", "Home", "", t2),
	)
	s := newService(t, repo)
	s.SetOwner(context.Background(), "u1")

	assert.Equal(t, []string{"a", "b", "urgent"}, s.Keywords())
	assert.Equal(t, []string{models.DefaultProject, "Home", "Work"}, s.Projects())
}

func TestNoteService_NotesAreCopies(t *testing.T) {
	repo := newFakeNotes(note("a", "u1", "", "#x", t0))
	s := newService(t, repo)
	s.SetOwner(context.Background(), "u1")

	list := s.Notes()
	list[0].Tags[0] = "mutated"
	list[0].TextContent = "mutated"

	n, _ := s.Note("a")
	assert.Equal(t, []string{"x"}, n.Tags)
	assert.Equal(t, "#x", n.TextContent)
}

func newSQLiteNotes(t *testing.T) *notes.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db, goose.DialectSQLite3))
	return notes.NewSQLiteRepository(db)
}

func TestNoteService_TagsRoundTripThroughSQLite(t *testing.T) {
	repo := newSQLiteNotes(t)
	ctx := context.Background()

	s := NewNoteService(repo, logging.Discard(), WithSaveDebounce(time.Hour))
	s.SetOwner(ctx, "u1")
	n, err := s.Create(ctx)
	require.NoError(t, err)

	s.Save(ctx, n.ID, json.RawMessage(`{"type":"doc"}`), "#a #b #a")
	s.Close(ctx)

	reloaded := newService(t, repo)
	reloaded.SetOwner(ctx, "u1")

	got, ok := reloaded.Note(n.ID)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"a", "b"}, got.Tags)
	assert.Equal(t, "#a #b #a", got.TextContent)
	assert.Equal(t, models.DefaultProject, got.Project)
}
