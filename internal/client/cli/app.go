package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/RndUsr76/Notish/internal/client/config"
	"github.com/RndUsr76/Notish/internal/client/services"
	"github.com/RndUsr76/Notish/internal/client/storage"
	"github.com/RndUsr76/Notish/internal/client/views"
	"github.com/RndUsr76/Notish/internal/logging"
)

type App struct {
	config    *config.Config
	backend   string
	notes     *services.NoteService
	selection *services.Selection
	keywords  *services.KeywordService
	zoom      *services.ZoomService
	session   services.SessionService
	log       logging.Logger

	filter views.Filter
	mode   views.Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires the client services on top of repos. Commands read from in
// and prompts are written to out.
func NewApp(c *config.Config, repos *storage.Repositories, log logging.Logger, in io.Reader, out io.Writer) *App {
	ns := services.NewNoteService(repos.Notes, log, services.WithSaveDebounce(c.SaveDebounce))
	sel := services.NewSelection(ns)
	ks := services.NewKeywordService(repos.Metadata, log)
	zs := services.NewZoomService(repos.Metadata, log)
	ss := services.NewSessionService([]byte(c.JWTSecret), c.LocalOwner, ns, sel, ks, log)

	return &App{
		config:    c,
		backend:   repos.Backend,
		notes:     ns,
		selection: sel,
		keywords:  ks,
		zoom:      zs,
		session:   ss,
		log:       log,
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

// Run restores the zoom level, asks for a login and serves commands until
// the user exits or input ends. Pending edits are written before it returns.
func (a *App) Run(ctx context.Context) {
	defer a.Shutdown(ctx)

	a.zoom.Load(ctx)
	printlnFn("Welcome to Notish (type 'help' for commands)")
	_ = a.Login(ctx)

	runREPL(ctx, a, a.status, a.reader)
}

// Shutdown writes pending edits.
func (a *App) Shutdown(ctx context.Context) {
	a.notes.Close(context.WithoutCancel(ctx))
}

func (a *App) isLoggedIn() bool {
	return a.session.Owner() != ""
}

func (a *App) status() string {
	owner := a.session.Owner()
	if owner == "" {
		return "(logged out)"
	}
	s := owner
	if a.notes.IsLoading() {
		s += " loading"
	}
	if a.notes.IsSaving() {
		s += " saving"
	}
	return fmt.Sprintf("(%s)", s)
}
