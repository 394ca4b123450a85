package services

import (
	"context"
	"encoding/json"
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

// DefaultSaveDebounce is the quiet period after the last edit of a note
// before it is written to the store.
const DefaultSaveDebounce = time.Second

// Draft is an edit accepted by Save that has not been written yet. Failed
// is set when the write was attempted and the store rejected it; the draft
// then stays until the note is saved again or deleted.
type Draft struct {
	Content     json.RawMessage
	TextContent string
	Tags        []string
	Failed      bool

	seq uint64
}

// NoteService owns the in-memory notes of the current owner and the active
// note id. All store calls are made without holding the service lock; store
// failures are logged and leave the in-memory state as it was.
type NoteService struct {
	repo     notes.Repository
	log      logging.Logger
	debounce *Debouncer
	now      func() time.Time

	mu       sync.Mutex
	owner    string
	notes    []models.Note
	activeID string
	loading  bool
	saving   int
	loadGen  uint64
	draftSeq uint64
	drafts   map[string]Draft
	keywords []string
	projects []string
}

// NoteOption configures a NoteService.
type NoteOption func(*NoteService)

// WithSaveDebounce overrides DefaultSaveDebounce.
func WithSaveDebounce(d time.Duration) NoteOption {
	return func(s *NoteService) {
		if d > 0 {
			s.debounce = NewDebouncer(d)
		}
	}
}

// NewNoteService returns a NoteService with no owner.
func NewNoteService(repo notes.Repository, log logging.Logger, opts ...NoteOption) *NoteService {
	s := &NoteService{
		repo:     repo,
		log:      log.With("component", "notes"),
		debounce: NewDebouncer(DefaultSaveDebounce),
		now:      time.Now,
		drafts:   make(map[string]Draft),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reindexLocked()
	return s
}

// SetOwner switches the service to owner and loads its notes. An empty owner
// clears all state without touching the store.
func (s *NoteService) SetOwner(ctx context.Context, owner string) {
	s.mu.Lock()
	if owner != s.owner {
		s.owner = owner
		s.notes = nil
		s.activeID = ""
		s.drafts = make(map[string]Draft)
		s.reindexLocked()
	}
	s.mu.Unlock()

	s.Load(ctx)
}

// Owner returns the current owner, or "" when there is none.
func (s *NoteService) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Load fetches the owner's notes. When nothing is active the newest note
// becomes active. A failed load keeps the last known list.
func (s *NoteService) Load(ctx context.Context) {
	s.mu.Lock()
	owner := s.owner
	if owner == "" {
		s.notes = nil
		s.activeID = ""
		s.loading = false
		s.loadGen++
		s.reindexLocked()
		s.mu.Unlock()
		return
	}
	s.loadGen++
	gen := s.loadGen
	s.loading = true
	s.mu.Unlock()

	list, err := s.repo.List(ctx, owner)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.loadGen {
		// the owner changed or another load started while this one ran
		return
	}
	s.loading = false

	if err != nil {
		s.log.Error(ctx, "load notes failed", "op", "list", "owner", owner, "err", err)
		return
	}

	s.notes = list
	s.reindexLocked()
	if s.activeID == "" && len(s.notes) > 0 {
		s.activeID = s.notes[0].ID
	}
	s.log.Debug(ctx, "notes loaded", "owner", owner, "count", len(list))
}

// Create persists a new empty note, prepends it to the list and makes it
// active.
func (s *NoteService) Create(ctx context.Context) (models.Note, error) {
	owner := s.Owner()
	if owner == "" {
		return models.Note{}, common.ErrNoOwner
	}

	n, err := s.repo.Create(ctx, owner, models.NewNoteFields())
	if err != nil {
		s.log.Error(ctx, "create note failed", "op", "create", "owner", owner, "err", err)
		return models.Note{}, fmt.Errorf("create note: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner != owner {
		return n.Clone(), nil
	}
	s.notes = append([]models.Note{n}, s.notes...)
	s.activeID = n.ID
	s.reindexLocked()

	return n.Clone(), nil
}

// Delete removes the note from the store and from the list. Any unsaved edit
// of the note is dropped once the store delete succeeds; when it fails, a
// save that was waiting is scheduled again. When the active note goes, the
// newest remaining note becomes active.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	owner := s.Owner()
	if owner == "" {
		return common.ErrNoOwner
	}

	// the pending write must not race the delete
	wasPending := s.debounce.Cancel(id)

	if err := s.repo.Delete(ctx, owner, id); err != nil {
		s.log.Error(ctx, "delete note failed", "op", "delete", "note_id", id, "owner", owner, "err", err)
		if wasPending {
			s.rearm(ctx, owner, id)
		}
		return fmt.Errorf("delete note: %w", err)
	}
	s.debounce.Cancel(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner != owner {
		return nil
	}
	delete(s.drafts, id)
	s.notes = slices.DeleteFunc(s.notes, func(n models.Note) bool { return n.ID == id })
	if s.activeID == id {
		s.activeID = newestID(s.notes)
	}
	s.reindexLocked()
	return nil
}

// rearm schedules the current draft of id again unless a newer edit already
// did.
func (s *NoteService) rearm(ctx context.Context, owner, id string) {
	s.mu.Lock()
	d, ok := s.drafts[id]
	s.mu.Unlock()
	if !ok || s.debounce.Pending(id) {
		return
	}
	s.schedule(ctx, owner, id, d)
	s.log.Info(ctx, "pending edit kept after failed delete", "note_id", id)
}

// Save records an edit of note id and schedules it to be written once the
// note has been quiet for the debounce period. Only the last edit of a burst
// reaches the store. The in-memory note is updated when the write succeeds.
func (s *NoteService) Save(ctx context.Context, id string, content json.RawMessage, text string) {
	s.mu.Lock()
	owner := s.owner
	if owner == "" {
		s.mu.Unlock()
		return
	}
	s.draftSeq++
	d := Draft{
		Content:     append(json.RawMessage(nil), content...),
		TextContent: text,
		Tags:        tags.Extract(text),
		seq:         s.draftSeq,
	}
	s.drafts[id] = d
	s.mu.Unlock()

	s.schedule(ctx, owner, id, d)
}

func (s *NoteService) schedule(ctx context.Context, owner, id string, d Draft) {
	ctx = context.WithoutCancel(ctx)
	if !s.debounce.Trigger(id, func() { s.persist(ctx, owner, id, d) }) {
		s.log.Warn(ctx, "edit after close not saved", "note_id", id, "owner", owner)
	}
}

func (s *NoteService) persist(ctx context.Context, owner, id string, d Draft) {
	s.mu.Lock()
	s.saving++
	s.mu.Unlock()

	patch := models.NotePatch{
		Content:     &d.Content,
		TextContent: &d.TextContent,
		Tags:        &d.Tags,
		UpdatedAt:   s.now(),
	}
	err := s.repo.Update(ctx, owner, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving--

	cur, current := s.drafts[id]
	current = current && cur.seq == d.seq

	if err != nil {
		s.log.Error(ctx, "save note failed", "op", "update", "note_id", id, "owner", owner, "err", err)
		if current {
			// the edit stays visible; the next Save retries it
			cur.Failed = true
			s.drafts[id] = cur
		}
		return
	}
	if current {
		delete(s.drafts, id)
	}
	if s.owner != owner {
		return
	}
	if i := s.indexLocked(id); i >= 0 {
		patch.Apply(&s.notes[i])
		s.reindexLocked()
	}
	s.log.Debug(ctx, "note saved", "note_id", id)
}

// UpdateProject moves the note to project. A blank project means the
// default one.
func (s *NoteService) UpdateProject(ctx context.Context, id, project string) error {
	owner := s.Owner()
	if owner == "" {
		return common.ErrNoOwner
	}

	project = models.NormalizeProject(project)
	patch := models.NotePatch{Project: &project, UpdatedAt: s.now()}

	if err := s.repo.Update(ctx, owner, id, patch); err != nil {
		s.log.Error(ctx, "update project failed", "op", "update", "note_id", id, "owner", owner, "err", err)
		return fmt.Errorf("update project: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner != owner {
		return nil
	}
	if i := s.indexLocked(id); i >= 0 {
		patch.Apply(&s.notes[i])
		s.reindexLocked()
	}
	return nil
}

// Close writes every pending edit, waits for writes already under way and
// stops the debouncer. Saves made after Close are not written.
func (s *NoteService) Close(ctx context.Context) {
	if n := s.debounce.FlushAll(); n > 0 {
		s.log.Info(ctx, "pending edits flushed", "count", n)
	}
	s.debounce.Stop()
}

// Notes returns a copy of the list, newest updated first as loaded.
func (s *NoteService) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

// Note returns the note with the given id.
func (s *NoteService) Note(id string) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.notes[i].Clone(), true
	}
	return models.Note{}, false
}

// Draft returns the unsaved edit of note id, if any.
func (s *NoteService) Draft(id string) (Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	return d, ok
}

// ActiveID returns the active note id. ok is false when nothing is active.
func (s *NoteService) ActiveID() (id string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID, s.activeID != ""
}

// Keywords returns every distinct tag across the notes, sorted.
func (s *NoteService) Keywords() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.keywords)
}

// Projects returns every distinct project, the default included, sorted.
func (s *NoteService) Projects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.projects)
}

func (s *NoteService) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *NoteService) IsSaving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving > 0
}

// activate is used by Selection; no existence check is made.
func (s *NoteService) activate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// isBlank reports whether note id has no visible text, counting an unsaved
// edit as its text. Unknown ids are not blank.
func (s *NoteService) isBlank(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.drafts[id]; ok {
		return models.Note{TextContent: d.TextContent}.IsBlank()
	}
	if i := s.indexLocked(id); i >= 0 {
		return s.notes[i].IsBlank()
	}
	return false
}

func (s *NoteService) indexLocked(id string) int {
	return slices.IndexFunc(s.notes, func(n models.Note) bool { return n.ID == id })
}

func (s *NoteService) reindexLocked() {
	kw := make(map[string]struct{})
	pr := map[string]struct{}{models.DefaultProject: {}}
	for _, n := range s.notes {
		for _, t := range n.Tags {
			kw[t] = struct{}{}
		}
		pr[n.ProjectOrDefault()] = struct{}{}
	}
	s.keywords = sortedKeys(kw)
	s.projects = sortedKeys(pr)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// newestID returns the id of the most recently updated note, or "".
func newestID(list []models.Note) string {
	if len(list) == 0 {
		return ""
	}
	best := list[0]
	for _, n := range list[1:] {
		if n.UpdatedAt.After(best.UpdatedAt) {
			best = n
		}
	}
	return best.ID
}
