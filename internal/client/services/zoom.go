package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/RndUsr76/Notish/internal/client/repositories/metadata"
	"github.com/RndUsr76/Notish/internal/logging"
)

// Zoom limits, in percent.
const (
	ZoomMin     = 50
	ZoomMax     = 200
	ZoomStep    = 10
	ZoomDefault = 100
)

const zoomKey = "zoom"

// ZoomService holds the editor zoom level. It is process-wide and does not
// depend on the owner.
type ZoomService struct {
	repo metadata.Repository
	log  logging.Logger

	mu    sync.Mutex
	level int
}

func NewZoomService(repo metadata.Repository, log logging.Logger) *ZoomService {
	return &ZoomService{repo: repo, log: log.With("component", "zoom"), level: ZoomDefault}
}

// Load reads the stored level. Missing or out of range values fall back to
// ZoomDefault.
func (s *ZoomService) Load(ctx context.Context) int {
	level := ZoomDefault
	if _, err := metadata.LoadJSON(ctx, s.repo, zoomKey, &level); err != nil {
		s.log.Warn(ctx, "zoom not loaded", "err", err)
		level = ZoomDefault
	}
	if level < ZoomMin || level > ZoomMax {
		level = ZoomDefault
	}

	s.mu.Lock()
	s.level = level
	s.mu.Unlock()
	return level
}

func (s *ZoomService) Level() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

func (s *ZoomService) In(ctx context.Context) (int, error) {
	return s.set(ctx, s.Level()+ZoomStep)
}

func (s *ZoomService) Out(ctx context.Context) (int, error) {
	return s.set(ctx, s.Level()-ZoomStep)
}

// Reset returns to ZoomDefault and forgets the stored level.
func (s *ZoomService) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.level = ZoomDefault
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, zoomKey); err != nil {
		return fmt.Errorf("reset zoom: %w", err)
	}
	return nil
}

func (s *ZoomService) set(ctx context.Context, level int) (int, error) {
	level = min(max(level, ZoomMin), ZoomMax)

	s.mu.Lock()
	s.level = level
	s.mu.Unlock()

	if err := metadata.StoreJSON(ctx, s.repo, zoomKey, level); err != nil {
		return level, fmt.Errorf("save zoom: %w", err)
	}
	return level, nil
}
