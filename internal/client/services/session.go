// Package services contains the application services of the Notish client:
// the note collection, the selection of the active note, keyword ranking,
// zoom, and the session that ties them to an owner.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/RndUsr76/Notish/internal/client/auth"
	"github.com/RndUsr76/Notish/internal/logging"
)

// SessionService binds the client to an owner identity.
//
// Contract:
//   - Login: resolve the owner from an access token (empty token means the
//     configured local owner), then load that owner's notes and keyword
//     counts.
//   - Logout: leave the active note and clear all owner state.
//   - Owner: the current owner, "" when logged out.
type SessionService interface {
	Login(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context)
	Owner() string
}

type sessionService struct {
	secret     []byte
	localOwner string
	notes      *NoteService
	selection  *Selection
	keywords   *KeywordService
	log        logging.Logger

	mu    sync.Mutex
	owner string
}

// NewSessionService constructs a SessionService. secret verifies tokens when
// non-empty.
func NewSessionService(secret []byte, localOwner string, notes *NoteService, selection *Selection, keywords *KeywordService, log logging.Logger) SessionService {
	return &sessionService{
		secret:     secret,
		localOwner: localOwner,
		notes:      notes,
		selection:  selection,
		keywords:   keywords,
		log:        log.With("component", "session"),
	}
}

func (s *sessionService) Login(ctx context.Context, token string) (string, error) {
	owner := s.localOwner
	if token != "" {
		var err error
		owner, err = auth.OwnerFromToken(token, s.secret)
		if err != nil {
			s.log.Warn(ctx, "login rejected", "err", err)
			return "", fmt.Errorf("login: %w", err)
		}
	}

	if s.Owner() != "" && s.Owner() != owner {
		s.selection.Clear(ctx)
	}

	s.mu.Lock()
	s.owner = owner
	s.mu.Unlock()

	s.keywords.Load(ctx, owner)
	s.notes.SetOwner(ctx, owner)
	s.log.Info(ctx, "logged in", "owner", owner)
	return owner, nil
}

func (s *sessionService) Logout(ctx context.Context) {
	if s.Owner() == "" {
		return
	}
	s.selection.Clear(ctx)

	s.mu.Lock()
	s.owner = ""
	s.mu.Unlock()

	s.keywords.Load(ctx, "")
	s.notes.SetOwner(ctx, "")
	s.log.Info(ctx, "logged out")
}

func (s *sessionService) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}
