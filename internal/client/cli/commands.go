package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RndUsr76/Notish/internal/client/models"
	"github.com/RndUsr76/Notish/internal/client/services"
	"github.com/RndUsr76/Notish/internal/client/tags"
	"github.com/RndUsr76/Notish/internal/client/views"
	"github.com/dustin/go-humanize"
)

var errNoActiveNote = errors.New("no active note")

// clock is a test seam for list ages.
var clock = time.Now

const timeLayout = "2006-01-02 15:04"

func (a *App) Login(ctx context.Context) error {
	token, err := GetSecret("Access token (empty for local notes): ", a.out)
	if err != nil {
		printlnFn("Cannot read token:", err)
		return err
	}

	owner, err := a.session.Login(ctx, token)
	if err != nil {
		printlnFn("Login failed:", err)
		return err
	}
	printlnFn(fmt.Sprintf("Logged in as %s (%d notes)", owner, len(a.notes.Notes())))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.filter = views.Filter{}
	printlnFn("Logged out")
	return nil
}

func (a *App) List(ctx context.Context) error {
	list := a.filter.Apply(a.notes.Notes())
	if len(list) == 0 {
		printlnFn("No notes.")
		return nil
	}

	active, _ := a.selection.Current()
	if a.mode == views.ModeProject {
		for _, g := range views.GroupByProject(list) {
			printlnFn(fmt.Sprintf("%s (%d)", g.Project, len(g.Notes)))
			for _, n := range g.Notes {
				for _, line := range noteLines(n, active) {
					printlnFn("  " + line)
				}
			}
		}
		return nil
	}

	for _, n := range list {
		for _, line := range noteLines(n, active) {
			printlnFn(line)
		}
	}
	return nil
}

// noteLines renders a list entry: title line, then preview and age.
//
//	* 1f0c9a2e  Groceries  [Home]  #shopping
//	    milk eggs bread  (3 minutes ago)
func noteLines(n models.Note, active string) []string {
	mark := " "
	if n.ID == active {
		mark = "*"
	}
	title := fmt.Sprintf("%s %s  %s  [%s]", mark, shortID(n.ID), views.Title(n), n.ProjectOrDefault())
	if len(n.Tags) > 0 {
		title += "  #" + strings.Join(n.Tags, " #")
	}

	preview := views.Preview(n)
	if strings.TrimSpace(preview) == "" {
		preview = "No additional content..."
	}
	age := humanize.RelTime(n.UpdatedAt, clock(), "ago", "from now")

	return []string{title, fmt.Sprintf("    %s  (%s)", preview, age)}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (a *App) New(ctx context.Context) error {
	a.selection.Clear(ctx)

	n, err := a.notes.Create(ctx)
	if err != nil {
		printlnFn("Cannot create note:", err)
		return err
	}
	printlnFn("Created note", shortID(n.ID))
	return nil
}

// resolve finds the note whose id equals or uniquely starts with ref.
func (a *App) resolve(ref string) (models.Note, error) {
	var found []models.Note
	for _, n := range a.notes.Notes() {
		if n.ID == ref {
			return n, nil
		}
		if strings.HasPrefix(n.ID, ref) {
			found = append(found, n)
		}
	}
	switch len(found) {
	case 0:
		return models.Note{}, fmt.Errorf("no note %q", ref)
	case 1:
		return found[0], nil
	default:
		return models.Note{}, fmt.Errorf("note id %q is ambiguous", ref)
	}
}

func (a *App) Open(ctx context.Context, ref string) error {
	n, err := a.resolve(ref)
	if err != nil {
		printlnFn(err)
		return err
	}
	a.selection.Select(ctx, n.ID)
	return a.Show(ctx)
}

func (a *App) CloseNote(ctx context.Context) error {
	a.selection.Clear(ctx)
	return nil
}

func (a *App) active() (models.Note, error) {
	id, ok := a.selection.Current()
	if !ok {
		return models.Note{}, errNoActiveNote
	}
	n, ok := a.notes.Note(id)
	if !ok {
		return models.Note{}, errNoActiveNote
	}
	return n, nil
}

func (a *App) Show(ctx context.Context) error {
	n, err := a.active()
	if err != nil {
		printlnFn("No note is open.")
		return err
	}

	text, noteTags, unsaved := n.TextContent, n.Tags, ""
	if d, ok := a.notes.Draft(n.ID); ok {
		text, noteTags, unsaved = d.TextContent, d.Tags, " (unsaved)"
		if d.Failed {
			unsaved = " (not saved: store error)"
		}
	}

	printlnFn(fmt.Sprintf("%s  [%s]  updated %s%s", n.ID, n.ProjectOrDefault(), n.UpdatedAt.Local().Format(timeLayout), unsaved))
	if len(noteTags) > 0 {
		printlnFn("#" + strings.Join(noteTags, " #"))
	}
	printlnFn("---")
	printlnFn(text)
	return nil
}

// Edit replaces the text of the active note. Known keywords typed without a
// '#' are turned into hashtags as each line is entered.
func (a *App) Edit(ctx context.Context) error {
	n, err := a.active()
	if err != nil {
		printlnFn("No note is open.")
		return err
	}

	known := a.notes.Keywords()
	lines, err := GetMultiline(a.reader, "Enter the note text", a.out, func(line string) string {
		// Enter ends the last word the way a space does
		return strings.TrimSuffix(tags.Autotag(line+" ", known), " ")
	})
	if err != nil {
		printlnFn("Cannot read text:", err)
		return err
	}

	content, text := buildDocument(lines)
	a.notes.Save(ctx, n.ID, content, text)
	printlnFn(fmt.Sprintf("Saving in %s ...", a.config.SaveDebounce))
	return nil
}

func (a *App) Move(ctx context.Context, project string) error {
	n, err := a.active()
	if err != nil {
		printlnFn("No note is open.")
		return err
	}

	if project == "" {
		project, err = GetSimpleText(a.reader, fmt.Sprintf("Project (empty for %s)", models.DefaultProject), a.out)
		if err != nil {
			return err
		}
	}

	if err := a.notes.UpdateProject(ctx, n.ID, project); err != nil {
		printlnFn("Cannot move note:", err)
		return err
	}
	printlnFn("Moved to", models.NormalizeProject(project))
	return nil
}

func (a *App) Delete(ctx context.Context, ref string) error {
	var (
		n   models.Note
		err error
	)
	if ref == "" {
		n, err = a.active()
	} else {
		n, err = a.resolve(ref)
	}
	if err != nil {
		printlnFn(err)
		return err
	}

	if err := a.notes.Delete(ctx, n.ID); err != nil {
		printlnFn("Cannot delete note:", err)
		return err
	}
	printlnFn("Deleted", shortID(n.ID))
	return nil
}

func (a *App) Search(ctx context.Context, text string) error {
	a.filter.Search = text
	return a.List(ctx)
}

// Tag sets the keyword filter and counts the click. An empty keyword clears
// the filter.
func (a *App) Tag(ctx context.Context, keyword string) error {
	a.filter.Keyword = tags.Normalize(keyword)
	if a.filter.Keyword != "" {
		if err := a.keywords.Click(ctx, a.filter.Keyword); err != nil {
			a.log.Warn(ctx, "keyword click not saved", "keyword", a.filter.Keyword, "err", err)
		}
	}
	return a.List(ctx)
}

func (a *App) Tags(ctx context.Context) error {
	kw := a.notes.Keywords()
	if len(kw) == 0 {
		printlnFn("No keywords.")
		return nil
	}
	printlnFn("#" + strings.Join(kw, " #"))
	return nil
}

func (a *App) Top(ctx context.Context) error {
	top := a.keywords.Top(services.TopKeywordCount)
	if len(top) == 0 {
		printlnFn("No keywords used yet.")
		return nil
	}
	for _, k := range top {
		printlnFn(fmt.Sprintf("#%s (%d)", k.Keyword, k.Count))
	}
	return nil
}

func (a *App) Projects(ctx context.Context) error {
	for _, p := range a.notes.Projects() {
		printlnFn(p)
	}
	return nil
}

func (a *App) View(ctx context.Context, mode string) error {
	switch mode {
	case "project", "projects":
		a.mode = views.ModeProject
	case "list", "":
		a.mode = views.ModeList
	default:
		printlnFn("Usage: view list|project")
		return fmt.Errorf("unknown view %q", mode)
	}
	return a.List(ctx)
}

func (a *App) Zoom(ctx context.Context, direction string) error {
	var (
		level int
		err   error
	)
	switch direction {
	case "in", "+":
		level, err = a.zoom.In(ctx)
	case "out", "-":
		level, err = a.zoom.Out(ctx)
	case "reset":
		err = a.zoom.Reset(ctx)
		level = a.zoom.Level()
	case "":
		level = a.zoom.Level()
	default:
		printlnFn("Usage: zoom in|out|reset")
		return fmt.Errorf("unknown zoom direction %q", direction)
	}
	if err != nil {
		a.log.Warn(ctx, "zoom not saved", "err", err)
	}
	printlnFn(fmt.Sprintf("Zoom %d%%", level))
	return nil
}

func (a *App) Status(ctx context.Context) error {
	owner := a.session.Owner()
	if owner == "" {
		owner = "-"
	}
	active, ok := a.selection.Current()
	if !ok {
		active = "-"
	}

	printlnFn(fmt.Sprintf("owner: %s", owner))
	printlnFn(fmt.Sprintf("store: %s", a.backend))
	printlnFn(fmt.Sprintf("notes: %d", len(a.notes.Notes())))
	printlnFn(fmt.Sprintf("active: %s", active))
	printlnFn(fmt.Sprintf("loading: %t, saving: %t", a.notes.IsLoading(), a.notes.IsSaving()))
	printlnFn(fmt.Sprintf("view: %s, search: %q, keyword: %q", a.mode, a.filter.Search, a.filter.Keyword))
	printlnFn(fmt.Sprintf("zoom: %d%%", a.zoom.Level()))
	return nil
}
