package memory

import (
	"sync"

	"p2p-lending/internal/domain/loan"
	"p2p-lending/internal/domain/user"
)

// Store is the volatile ledger: users and loans in insertion order. Stored
// rows are never mutated in place; writers replace them with fresh copies,
// so a slice snapshot is enough to roll a unit of work back.
type Store struct {
	mu    sync.RWMutex
	users []*user.User
	loans []*loan.Loan
}

func NewStore() *Store { return &Store{} }

// guard is the locking mode of a repository: tx-bound repositories run
// while the unit of work already holds the write lock.
type guard struct {
	s    *Store
	held bool
}

func (g guard) read() func() {
	if g.held {
		return func() {}
	}
	g.s.mu.RLock()
	return g.s.mu.RUnlock
}

func (g guard) write() func() {
	if g.held {
		return func() {}
	}
	g.s.mu.Lock()
	return g.s.mu.Unlock
}

// caller must hold the lock
func (s *Store) loanIndex(loanID string) int {
	for i, l := range s.loans {
		if l.ID == loanID {
			return i
		}
	}
	return -1
}

type snapshot struct {
	users []*user.User
	loans []*loan.Loan
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		users: append([]*user.User(nil), s.users...),
		loans: append([]*loan.Loan(nil), s.loans...),
	}
}

func (s *Store) restore(sn snapshot) {
	s.users = sn.users
	s.loans = sn.loans
}
