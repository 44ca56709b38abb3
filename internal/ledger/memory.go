package ledger

import (
	"context"
	"sync"

	"github.com/dgnsrekt/stockfolio/internal/types"
)

type userLedger struct {
	mu       sync.Mutex
	holdings []types.Holding
}

// MemoryStore keeps ledgers in process memory. Each user's ledger has its own
// lock held for the whole of a Mutate call.
type MemoryStore struct {
	mu      sync.RWMutex
	ledgers map[int64]*userLedger
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ledgers: make(map[int64]*userLedger)}
}

func (s *MemoryStore) get(userID int64) (*userLedger, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ul, ok := s.ledgers[userID]
	return ul, ok
}

func (s *MemoryStore) Holdings(_ context.Context, userID int64) ([]types.Holding, error) {
	ul, ok := s.get(userID)
	if !ok {
		return []types.Holding{}, nil
	}
	ul.mu.Lock()
	defer ul.mu.Unlock()
	out := make([]types.Holding, len(ul.holdings))
	copy(out, ul.holdings)
	return out, nil
}

func (s *MemoryStore) Provisioned(_ context.Context, userID int64) (bool, error) {
	_, ok := s.get(userID)
	return ok, nil
}

func (s *MemoryStore) Provision(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ledgers[userID]; !ok {
		s.ledgers[userID] = &userLedger{}
	}
	return nil
}

func (s *MemoryStore) Mutate(ctx context.Context, userID int64, fn func(*Ledger) error) error {
	ul, ok := s.get(userID)
	if !ok {
		return portfolioNotFound(userID)
	}
	ul.mu.Lock()
	defer ul.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	l := newLedger(ul.holdings)
	if err := fn(l); err != nil {
		return err
	}
	ul.holdings = l.holdings
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers = make(map[int64]*userLedger)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
