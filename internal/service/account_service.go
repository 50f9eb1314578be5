package service

import (
	"context"
	"fmt"

	"github.com/MrGreenNV/bank-rest-test/internal/domain/account"
	domainErrors "github.com/MrGreenNV/bank-rest-test/internal/domain/errors"
	"github.com/MrGreenNV/bank-rest-test/internal/infrastructure/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AccountService is the account transaction engine. It is the sole writer of
// account state: every operation loads the affected row(s) under lock inside
// a store transaction, checks the operation's invariants in the specified
// order, and persists the result.
type AccountService struct {
	repo      account.Repository
	hasher    PinHasher
	txManager TransactionManager
	cache     AccountCache
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewAccountService creates a new AccountService. cache and metrics may be
// nil.
func NewAccountService(
	repo account.Repository,
	hasher PinHasher,
	txManager TransactionManager,
	cache AccountCache,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		repo:      repo,
		hasher:    hasher,
		txManager: txManager,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}

// Create opens a new account with a zero balance. The store assigns the
// sequence behind the display number.
func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (acct *account.Account, err error) {
	defer func() { s.record("create", err) }()

	if req.Name == "" {
		return nil, domainErrors.NewValidationError("account_name", "cannot be empty")
	}

	exists, err := s.repo.ExistsActiveByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("check name availability: %w", err)
	}
	if exists {
		return nil, domainErrors.ErrDuplicateName
	}

	digest, err := s.hasher.Hash(req.Pin)
	if err != nil {
		return nil, err
	}

	acct, err = account.NewAccount(req.Name, digest)
	if err != nil {
		return nil, err
	}

	if err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, acct)
	}); err != nil {
		return nil, err
	}

	s.cacheSet(ctx, acct)
	s.logger.Info().Str("account_name", acct.Name).Str("account_number", acct.Number).Msg("account created")
	return acct, nil
}

// Rename changes the account name. Check order: existence, pin, new-name
// emptiness, duplicate. The access check runs before any validation of the
// new name so an unauthenticated caller learns nothing about taken names.
func (s *AccountService) Rename(ctx context.Context, id uuid.UUID, req RenameAccountRequest) (acct *account.Account, err error) {
	defer func() { s.record("rename", err) }()

	var oldName string
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		a, err := s.repo.Lock(txCtx, id)
		if err != nil {
			return err
		}
		if !s.hasher.Verify(req.Pin, a.PinDigest) {
			return domainErrors.ErrAccessDenied
		}
		if req.NewName == "" {
			return domainErrors.NewValidationError("new_account_name", "cannot be empty")
		}
		if req.NewName != a.Name {
			exists, err := s.repo.ExistsActiveByName(txCtx, req.NewName)
			if err != nil {
				return fmt.Errorf("check name availability: %w", err)
			}
			if exists {
				return domainErrors.ErrDuplicateName
			}
		}

		oldName = a.Name
		if err := a.Rename(req.NewName); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, a); err != nil {
			return err
		}
		acct = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cacheInvalidate(ctx, acct.ID, oldName, acct.Name)
	s.logger.Info().Str("account_name", acct.Name).Msg("account renamed")
	return acct, nil
}

// Get returns the account identified by ref. Soft-deleted accounts are still
// returned.
func (s *AccountService) Get(ctx context.Context, ref Ref) (*account.Account, error) {
	if s.cache != nil {
		if ref.ID != nil {
			if a, ok := s.cache.GetByID(ctx, *ref.ID); ok {
				return a, nil
			}
		} else if a, ok := s.cache.GetByName(ctx, ref.Name); ok {
			return a, nil
		}
	}

	a, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, a)
	return a, nil
}

// List returns accounts, soft-deleted included. A non-positive limit returns
// everything.
func (s *AccountService) List(ctx context.Context, limit, offset int) ([]*account.Account, error) {
	return s.repo.List(ctx, limit, offset)
}

// Delete permanently removes the account record. A non-zero balance does not
// block deletion; the destroyed amount is logged.
func (s *AccountService) Delete(ctx context.Context, ref Ref) (err error) {
	defer func() { s.record("delete", err) }()

	a, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if a.Balance > 0 {
		s.logger.Warn().
			Str("account_name", a.Name).
			Int64("balance", a.Balance).
			Msg("hard delete destroys a non-zero balance")
	}

	if err = s.repo.Delete(ctx, a.ID); err != nil {
		return err
	}

	s.cacheInvalidate(ctx, a.ID, a.Name)
	s.logger.Info().Str("account_name", a.Name).Msg("account deleted")
	return nil
}

// Deactivate soft-deletes the account in place. The record remains fetchable.
func (s *AccountService) Deactivate(ctx context.Context, ref Ref) (err error) {
	defer func() { s.record("deactivate", err) }()

	a, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		locked, err := s.repo.Lock(txCtx, a.ID)
		if err != nil {
			return err
		}
		locked.Deactivate()
		if err := s.repo.Update(txCtx, locked); err != nil {
			return err
		}
		a = locked
		return nil
	})
	if err != nil {
		return err
	}

	s.cacheInvalidate(ctx, a.ID, a.Name)
	s.logger.Info().Str("account_name", a.Name).Msg("account deactivated")
	return nil
}

// Deposit credits the account. No pin is required for deposits.
func (s *AccountService) Deposit(ctx context.Context, id uuid.UUID, amount int64) (acct *account.Account, err error) {
	defer func() { s.record("deposit", err) }()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		a, err := s.repo.Lock(txCtx, id)
		if err != nil {
			return err
		}
		if err := a.Credit(amount); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, a); err != nil {
			return err
		}
		acct = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cacheInvalidate(ctx, acct.ID, acct.Name)
	s.logger.Info().Str("account_name", acct.Name).Int64("amount", amount).Msg("deposit applied")
	return acct, nil
}

// Withdraw debits the account. Check order: existence, pin, amount validity,
// sufficiency. A caller with a wrong pin learns nothing about the balance.
func (s *AccountService) Withdraw(ctx context.Context, id uuid.UUID, pin string, amount int64) (acct *account.Account, err error) {
	defer func() { s.record("withdraw", err) }()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		a, err := s.repo.Lock(txCtx, id)
		if err != nil {
			return err
		}
		if !s.hasher.Verify(pin, a.PinDigest) {
			return domainErrors.ErrAccessDenied
		}
		if err := a.Debit(amount); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, a); err != nil {
			return err
		}
		acct = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cacheInvalidate(ctx, acct.ID, acct.Name)
	s.logger.Info().Str("account_name", acct.Name).Int64("amount", amount).Msg("withdrawal applied")
	return acct, nil
}

// Transfer debits the account identified by id and credits the account
// holding req.DestinationName. Both mutations commit in one store
// transaction with the rows locked in ascending id order. Returns the
// debited account.
func (s *AccountService) Transfer(ctx context.Context, id uuid.UUID, req TransferRequest) (debited *account.Account, err error) {
	defer func() { s.record("transfer", err) }()

	// Unlocked pre-checks fix the caller-visible error order; the
	// authoritative amount checks rerun on the locked rows below.
	src, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(req.Pin, src.PinDigest) {
		return nil, domainErrors.ErrAccessDenied
	}
	dst, err := s.repo.GetByName(ctx, req.DestinationName)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	if src.Balance < req.Amount {
		return nil, domainErrors.ErrInsufficientFunds
	}

	var credited *account.Account
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if src.ID == dst.ID {
			// Self-transfer nets to zero but runs the same checks. Both
			// legs persist separately, one version bump each.
			a, err := s.repo.Lock(txCtx, src.ID)
			if err != nil {
				return err
			}
			if err := a.Debit(req.Amount); err != nil {
				return err
			}
			if err := s.repo.Update(txCtx, a); err != nil {
				return err
			}
			if err := a.Credit(req.Amount); err != nil {
				return err
			}
			if err := s.repo.Update(txCtx, a); err != nil {
				return err
			}
			debited, credited = a, a
			return nil
		}

		// Lock both rows in deterministic order to prevent deadlocks
		ids := sortUUIDs(src.ID, dst.ID)
		first, err := s.repo.Lock(txCtx, ids[0])
		if err != nil {
			return err
		}
		second, err := s.repo.Lock(txCtx, ids[1])
		if err != nil {
			return err
		}

		debited, credited = first, second
		if debited.ID != src.ID {
			debited, credited = second, first
		}

		if err := debited.Debit(req.Amount); err != nil {
			return err
		}
		if err := credited.Credit(req.Amount); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, debited); err != nil {
			return err
		}
		return s.repo.Update(txCtx, credited)
	})
	if err != nil {
		return nil, err
	}

	s.cacheInvalidate(ctx, debited.ID, debited.Name)
	if credited.ID != debited.ID {
		s.cacheInvalidate(ctx, credited.ID, credited.Name)
	}
	s.logger.Info().
		Str("account_name", debited.Name).
		Str("destination_name", credited.Name).
		Int64("amount", req.Amount).
		Msg("transfer applied")
	return debited, nil
}

func (s *AccountService) resolve(ctx context.Context, ref Ref) (*account.Account, error) {
	if ref.ID != nil {
		return s.repo.GetByID(ctx, *ref.ID)
	}
	return s.repo.GetByName(ctx, ref.Name)
}

func (s *AccountService) cacheSet(ctx context.Context, a *account.Account) {
	if s.cache != nil {
		s.cache.Set(ctx, a)
	}
}

func (s *AccountService) cacheInvalidate(ctx context.Context, id uuid.UUID, names ...string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id, names...)
	}
}

func (s *AccountService) record(operation string, err error) {
	if s.metrics != nil {
		s.metrics.RecordOperation(operation, err)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("operation", operation).Msg("account operation failed")
	}
}

// sortUUIDs returns two UUIDs in deterministic order (by string comparison).
func sortUUIDs(a, b uuid.UUID) [2]uuid.UUID {
	if a.String() < b.String() {
		return [2]uuid.UUID{a, b}
	}
	return [2]uuid.UUID{b, a}
}
