package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/RndUsr76/Notish/internal/client/repositories/metadata"
	"github.com/RndUsr76/Notish/internal/client/tags"
	"github.com/RndUsr76/Notish/internal/logging"
)

// TopKeywordCount is how many keywords the "frequently used" list shows.
const TopKeywordCount = 4

const keywordClicksPrefix = "keyword_clicks/"

// KeywordCount is a keyword with its click count.
type KeywordCount struct {
	Keyword string
	Count   int
}

// KeywordService keeps the per-owner keyword click counts used to rank
// frequently used keywords.
type KeywordService struct {
	repo metadata.Repository
	log  logging.Logger

	mu     sync.Mutex
	owner  string
	clicks map[string]int
}

func NewKeywordService(repo metadata.Repository, log logging.Logger) *KeywordService {
	return &KeywordService{
		repo:   repo,
		log:    log.With("component", "keywords"),
		clicks: map[string]int{},
	}
}

func clicksKey(owner string) string {
	return keywordClicksPrefix + owner
}

// Load reads the click counts of owner. An empty owner clears them.
func (s *KeywordService) Load(ctx context.Context, owner string) {
	clicks := map[string]int{}
	if owner != "" {
		if _, err := metadata.LoadJSON(ctx, s.repo, clicksKey(owner), &clicks); err != nil {
			s.log.Warn(ctx, "keyword clicks not loaded", "owner", owner, "err", err)
			clicks = map[string]int{}
		}
	}

	s.mu.Lock()
	s.owner = owner
	s.clicks = clicks
	s.mu.Unlock()
}

// Click records that keyword was selected and persists the counts.
func (s *KeywordService) Click(ctx context.Context, keyword string) error {
	keyword = tags.Normalize(keyword)
	if keyword == "" {
		return nil
	}

	s.mu.Lock()
	owner := s.owner
	s.clicks[keyword]++
	snapshot := make(map[string]int, len(s.clicks))
	for k, v := range s.clicks {
		snapshot[k] = v
	}
	s.mu.Unlock()

	if owner == "" {
		return nil
	}
	if err := metadata.StoreJSON(ctx, s.repo, clicksKey(owner), snapshot); err != nil {
		return fmt.Errorf("save keyword clicks: %w", err)
	}
	return nil
}

// Count returns the number of clicks on keyword.
func (s *KeywordService) Count(keyword string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks[tags.Normalize(keyword)]
}

// Top returns up to n keywords by click count, highest first. Equal counts
// are ordered alphabetically.
func (s *KeywordService) Top(n int) []KeywordCount {
	s.mu.Lock()
	out := make([]KeywordCount, 0, len(s.clicks))
	for k, v := range s.clicks {
		out = append(out, KeywordCount{Keyword: k, Count: v})
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b KeywordCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Keyword, b.Keyword)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
