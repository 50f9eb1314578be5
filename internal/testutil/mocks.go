package testutil

import (
	"context"
	"sync"

	"github.com/MrGreenNV/bank-rest-test/internal/domain/account"
	domainErrors "github.com/MrGreenNV/bank-rest-test/internal/domain/errors"
	"github.com/google/uuid"
)

// --- Account Repository Mock ---

// MockAccountRepository is a mock implementation of account.Repository backed
// by an in-memory map. Individual methods can be overridden through the
// corresponding Func fields.
type MockAccountRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*account.Account
	nextSeq  int64

	CreateFunc             func(ctx context.Context, a *account.Account) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByNameFunc          func(ctx context.Context, name string) (*account.Account, error)
	ExistsActiveByNameFunc func(ctx context.Context, name string) (bool, error)
	ListFunc               func(ctx context.Context, limit, offset int) ([]*account.Account, error)
	UpdateFunc             func(ctx context.Context, a *account.Account) error
	DeleteFunc             func(ctx context.Context, id uuid.UUID) error
	LockFunc               func(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[uuid.UUID]*account.Account),
	}
}

func copyAccount(a *account.Account) *account.Account {
	cp := *a
	return &cp
}

// AddAccount seeds an account directly into the store, assigning a sequence
// and display number if missing.
func (m *MockAccountRepository) AddAccount(a *account.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.Seq == 0 {
		m.nextSeq++
		a.AssignNumber(m.nextSeq)
	} else if a.Seq > m.nextSeq {
		m.nextSeq = a.Seq
	}
	m.accounts[a.ID] = copyAccount(a)
}

// GetAccountByID reads the stored state directly, for assertions.
func (m *MockAccountRepository) GetAccountByID(id uuid.UUID) *account.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil
	}
	return copyAccount(a)
}

func (m *MockAccountRepository) Create(ctx context.Context, a *account.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Name == a.Name && existing.Status == account.StatusActive {
			return domainErrors.ErrDuplicateName
		}
	}
	m.nextSeq++
	a.AssignNumber(m.nextSeq)
	m.accounts[a.ID] = copyAccount(a)
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, domainErrors.ErrAccountNotFound
	}
	return copyAccount(a), nil
}

func (m *MockAccountRepository) GetByName(ctx context.Context, name string) (*account.Account, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// An active and a soft-deleted account may share a name; the active row
	// wins, matching the store's resolution order.
	var match *account.Account
	for _, a := range m.accounts {
		if a.Name != name {
			continue
		}
		if a.Status == account.StatusActive {
			return copyAccount(a), nil
		}
		if match == nil || a.Seq > match.Seq {
			match = a
		}
	}
	if match == nil {
		return nil, domainErrors.ErrAccountNotFound
	}
	return copyAccount(match), nil
}

func (m *MockAccountRepository) ExistsActiveByName(ctx context.Context, name string) (bool, error) {
	if m.ExistsActiveByNameFunc != nil {
		return m.ExistsActiveByNameFunc(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Name == name && a.Status == account.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*account.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*account.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		all = append(all, copyAccount(a))
	}
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j-1].Seq > all[j].Seq; j-- {
			all[j-1], all[j] = all[j], all[j-1]
		}
	}
	if offset > 0 {
		if offset >= len(all) {
			return nil, nil
		}
		all = all[offset:]
	}
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, a *account.Account) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.accounts[a.ID]
	if !ok {
		return domainErrors.ErrAccountNotFound
	}
	if stored.Version != a.Version-1 {
		return domainErrors.ErrOptimisticLockFailed
	}
	m.accounts[a.ID] = copyAccount(a)
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return domainErrors.ErrAccountNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *MockAccountRepository) Lock(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if m.LockFunc != nil {
		return m.LockFunc(ctx, id)
	}
	return m.GetByID(ctx, id)
}

// --- Transaction Manager Mock ---

// MockTxManager serializes transactions with a single mutex, standing in for
// the row locks a real store transaction would hold.
type MockTxManager struct {
	mu sync.Mutex

	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// --- Pin Hasher Mock ---

// MockPinHasher is a cheap, deterministic stand-in for the bcrypt hasher.
type MockPinHasher struct {
	HashFunc   func(rawPin string) (string, error)
	VerifyFunc func(rawPin, digest string) bool
}

func NewMockPinHasher() *MockPinHasher {
	return &MockPinHasher{}
}

func (m *MockPinHasher) Hash(rawPin string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(rawPin)
	}
	return PinDigest(rawPin), nil
}

func (m *MockPinHasher) Verify(rawPin, digest string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(rawPin, digest)
	}
	return digest == PinDigest(rawPin)
}
