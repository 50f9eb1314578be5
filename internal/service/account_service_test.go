package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MrGreenNV/bank-rest-test/internal/domain/account"
	domainErrors "github.com/MrGreenNV/bank-rest-test/internal/domain/errors"
	"github.com/MrGreenNV/bank-rest-test/internal/testutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// --- Test Helpers ---

func setupAccountService() (*AccountService, *testutil.MockAccountRepository) {
	accountRepo := testutil.NewMockAccountRepository()
	svc := NewAccountService(
		accountRepo,
		testutil.NewMockPinHasher(),
		testutil.NewMockTxManager(),
		nil,
		nil,
		zerolog.Nop(),
	)
	return svc, accountRepo
}

func seedAccount(repo *testutil.MockAccountRepository, name, pin string, balanceCents int64) *account.Account {
	a := testutil.NewTestAccount(name, pin, balanceCents)
	repo.AddAccount(a)
	return a
}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	acct, err := svc.Create(ctx, CreateAccountRequest{Name: "alice", Pin: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "alice", acct.Name)
	assert.Equal(t, int64(0), acct.Balance)
	assert.Equal(t, account.StatusActive, acct.Status)
	assert.NotEqual(t, "1234", acct.PinDigest)
	assert.Len(t, acct.Number, 20)

	stored := accountRepo.GetAccountByID(acct.ID)
	require.NotNil(t, stored)
	assert.Equal(t, acct.Number, stored.Number)
}

func TestCreate_SequentialNumbers(t *testing.T) {
	svc, _ := setupAccountService()
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateAccountRequest{Name: "alice", Pin: "1234"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateAccountRequest{Name: "bob", Pin: "1111"})
	require.NoError(t, err)

	assert.Equal(t, account.NumberFor(first.Seq), first.Number)
	assert.Equal(t, first.Seq+1, second.Seq)
	assert.NotEqual(t, first.Number, second.Number)
}

func TestCreate_EmptyName(t *testing.T) {
	svc, _ := setupAccountService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAccountRequest{Name: "", Pin: "1234"})
	require.Error(t, err)

	var validationErr *domainErrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreate_DuplicateName(t *testing.T) {
	svc, _ := setupAccountService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAccountRequest{Name: "bob", Pin: "1111"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateAccountRequest{Name: "bob", Pin: "2222"})
	assert.ErrorIs(t, err, domainErrors.ErrDuplicateName)
}

func TestCreate_NameFreedByDeactivation(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	accountRepo.AddAccount(testutil.NewDeactivatedAccount("bob", "1111", 0))

	// deactivated accounts do not hold their name
	_, err := svc.Create(ctx, CreateAccountRequest{Name: "bob", Pin: "2222"})
	assert.NoError(t, err)
}

func TestCreate_RepositoryError(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	accountRepo.CreateFunc = func(ctx context.Context, a *account.Account) error {
		return errors.New("database error")
	}

	_, err := svc.Create(ctx, CreateAccountRequest{Name: "alice", Pin: "1234"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
}

// --- Rename ---

func TestRename_Success(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 5000)

	acct, err := svc.Rename(ctx, alice.ID, RenameAccountRequest{NewName: "alice-savings", Pin: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "alice-savings", acct.Name)
	assert.Equal(t, int64(5000), acct.Balance)

	stored := accountRepo.GetAccountByID(alice.ID)
	assert.Equal(t, "alice-savings", stored.Name)
}

func TestRename_NotFound(t *testing.T) {
	svc, _ := setupAccountService()
	ctx := context.Background()

	_, err := svc.Rename(ctx, uuid.New(), RenameAccountRequest{NewName: "x", Pin: "1234"})
	assert.ErrorIs(t, err, domainErrors.ErrAccountNotFound)
}

func TestRename_WrongPin(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 0)

	_, err := svc.Rename(ctx, alice.ID, RenameAccountRequest{NewName: "x", Pin: "0000"})
	assert.ErrorIs(t, err, domainErrors.ErrAccessDenied)
	assert.Equal(t, "alice", accountRepo.GetAccountByID(alice.ID).Name)
}

func TestRename_WrongPinPrecedesNameChecks(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 0)
	seedAccount(accountRepo, "bob", "1111", 0)

	// a caller with a wrong pin must not learn whether a name is taken
	_, err := svc.Rename(ctx, alice.ID, RenameAccountRequest{NewName: "bob", Pin: "0000"})
	assert.ErrorIs(t, err, domainErrors.ErrAccessDenied)

	_, err = svc.Rename(ctx, alice.ID, RenameAccountRequest{NewName: "", Pin: "0000"})
	assert.ErrorIs(t, err, domainErrors.ErrAccessDenied)
}

func TestRename_EmptyName(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 0)

	_, err := svc.Rename(ctx, alice.ID, RenameAccountRequest{NewName: "", Pin: "1234"})
	var validationErr *domainErrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestRename_DuplicateName(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 0)
	seedAccount(accountRepo, "bob", "1111", 0)

	_, err := svc.Rename(ctx, alice.ID, RenameAccountRequest{NewName: "bob", Pin: "1234"})
	assert.ErrorIs(t, err, domainErrors.ErrDuplicateName)
}

func TestRename_SameNameIsNotDuplicate(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 0)

	acct, err := svc.Rename(ctx, alice.ID, RenameAccountRequest{NewName: "alice", Pin: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "alice", acct.Name)
}

// --- Get / List ---

func TestGet_ByIDAndByName(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 7500)

	byID, err := svc.Get(ctx, RefByID(alice.ID))
	require.NoError(t, err)
	byName, err := svc.Get(ctx, RefByName("alice"))
	require.NoError(t, err)

	assert.Equal(t, byID.ID, byName.ID)
	assert.Equal(t, int64(7500), byID.Balance)
}

func TestGet_NotFound_BothKeys(t *testing.T) {
	svc, _ := setupAccountService()
	ctx := context.Background()

	_, err := svc.Get(ctx, RefByID(uuid.New()))
	assert.ErrorIs(t, err, domainErrors.ErrAccountNotFound)

	_, err = svc.Get(ctx, RefByName("ghost"))
	assert.ErrorIs(t, err, domainErrors.ErrAccountNotFound)
}

func TestGet_ReadsAreIdempotent(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 7500)

	first, err := svc.Get(ctx, RefByID(alice.ID))
	require.NoError(t, err)
	second, err := svc.Get(ctx, RefByID(alice.ID))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGet_DeactivatedIsStillFetchable(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	ghost := testutil.NewDeactivatedAccount("ghost", "1234", 100)
	accountRepo.AddAccount(ghost)

	acct, err := svc.Get(ctx, RefByID(ghost.ID))
	require.NoError(t, err)
	assert.Equal(t, account.StatusDeleted, acct.Status)
}

func TestGet_ByName_ReusedNamePrefersActive(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	// deactivation freed the name, so two rows hold it now
	accountRepo.AddAccount(testutil.NewDeactivatedAccount("bob", "1111", 550))
	bob := seedAccount(accountRepo, "bob", "2222", 90)

	for i := 0; i < 50; i++ {
		acct, err := svc.Get(ctx, RefByName("bob"))
		require.NoError(t, err)
		assert.Equal(t, bob.ID, acct.ID)
		assert.Equal(t, account.StatusActive, acct.Status)
	}
}

func TestGet_ByName_OnlyDeactivatedHolder(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	ghost := testutil.NewDeactivatedAccount("ghost", "1111", 100)
	accountRepo.AddAccount(ghost)

	acct, err := svc.Get(ctx, RefByName("ghost"))
	require.NoError(t, err)
	assert.Equal(t, ghost.ID, acct.ID)
}

func TestList_IncludesDeactivated(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	seedAccount(accountRepo, "alice", "1234", 0)
	accountRepo.AddAccount(testutil.NewDeactivatedAccount("ghost", "1111", 0))

	accounts, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

// --- Delete / Deactivate ---

func TestDelete_ByIDAndByName(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 0)
	bob := seedAccount(accountRepo, "bob", "1111", 0)

	require.NoError(t, svc.Delete(ctx, RefByID(alice.ID)))
	require.NoError(t, svc.Delete(ctx, RefByName("bob")))

	assert.Nil(t, accountRepo.GetAccountByID(alice.ID))
	assert.Nil(t, accountRepo.GetAccountByID(bob.ID))
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := setupAccountService()
	ctx := context.Background()

	err := svc.Delete(ctx, RefByID(uuid.New()))
	assert.ErrorIs(t, err, domainErrors.ErrAccountNotFound)
}

func TestDelete_NonZeroBalanceIsDestroyed(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	rich := seedAccount(accountRepo, "rich", "1234", 1_000_000)

	require.NoError(t, svc.Delete(ctx, RefByID(rich.ID)))
	assert.Nil(t, accountRepo.GetAccountByID(rich.ID))
}

func TestDeactivate_Success(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 2500)

	require.NoError(t, svc.Deactivate(ctx, RefByID(alice.ID)))

	stored := accountRepo.GetAccountByID(alice.ID)
	assert.Equal(t, account.StatusDeleted, stored.Status)
	assert.Equal(t, int64(2500), stored.Balance)
}

func TestDeactivate_NotFound(t *testing.T) {
	svc, _ := setupAccountService()
	ctx := context.Background()

	err := svc.Deactivate(ctx, RefByName("ghost"))
	assert.ErrorIs(t, err, domainErrors.ErrAccountNotFound)
}

// --- Deposit ---

func TestDeposit_Success(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 0)

	acct, err := svc.Deposit(ctx, alice.ID, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), acct.Balance)
	assert.Equal(t, int64(5000), accountRepo.GetAccountByID(alice.ID).Balance)
}

func TestDeposit_NotFound(t *testing.T) {
	svc, _ := setupAccountService()
	ctx := context.Background()

	_, err := svc.Deposit(ctx, uuid.New(), 5000)
	assert.ErrorIs(t, err, domainErrors.ErrAccountNotFound)
}

func TestDeposit_InvalidAmount(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 1000)

	for _, amount := range []int64{0, -500} {
		_, err := svc.Deposit(ctx, alice.ID, amount)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidAmount)
	}
	assert.Equal(t, int64(1000), accountRepo.GetAccountByID(alice.ID).Balance)
}

// --- Withdraw ---

func TestWithdraw_Success(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 5000)

	acct, err := svc.Withdraw(ctx, alice.ID, "1234", 3000)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), acct.Balance)
}

func TestWithdraw_ExactBalance(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 5000)

	acct, err := svc.Withdraw(ctx, alice.ID, "1234", 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), acct.Balance)
}

func TestWithdraw_OneCentOverBalance(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 5000)

	_, err := svc.Withdraw(ctx, alice.ID, "1234", 5001)
	assert.ErrorIs(t, err, domainErrors.ErrInsufficientFunds)
	assert.Equal(t, int64(5000), accountRepo.GetAccountByID(alice.ID).Balance)
}

func TestWithdraw_WrongPin(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 5000)

	_, err := svc.Withdraw(ctx, alice.ID, "0000", 1000)
	assert.ErrorIs(t, err, domainErrors.ErrAccessDenied)
	assert.Equal(t, int64(5000), accountRepo.GetAccountByID(alice.ID).Balance)
}

func TestWithdraw_WrongPinPrecedesAmountChecks(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 5000)

	// a caller with a wrong pin must not learn anything about the balance
	_, err := svc.Withdraw(ctx, alice.ID, "0000", -1)
	assert.ErrorIs(t, err, domainErrors.ErrAccessDenied)

	_, err = svc.Withdraw(ctx, alice.ID, "0000", 1_000_000)
	assert.ErrorIs(t, err, domainErrors.ErrAccessDenied)
}

func TestWithdraw_InvalidAmount(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 5000)

	for _, amount := range []int64{0, -100} {
		_, err := svc.Withdraw(ctx, alice.ID, "1234", amount)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidAmount)
	}
}

func TestWithdraw_NotFound(t *testing.T) {
	svc, _ := setupAccountService()
	ctx := context.Background()

	_, err := svc.Withdraw(ctx, uuid.New(), "1234", 1000)
	assert.ErrorIs(t, err, domainErrors.ErrAccountNotFound)
}

// --- Transfer ---

func TestTransfer_Success(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 50000)
	bob := seedAccount(accountRepo, "bob", "1111", 10000)

	acct, err := svc.Transfer(ctx, alice.ID, TransferRequest{Pin: "1234", DestinationName: "bob", Amount: 30000})
	require.NoError(t, err)

	// the returned view is the debited account
	assert.Equal(t, "alice", acct.Name)
	assert.Equal(t, int64(20000), acct.Balance)
	assert.Equal(t, int64(20000), accountRepo.GetAccountByID(alice.ID).Balance)
	assert.Equal(t, int64(40000), accountRepo.GetAccountByID(bob.ID).Balance)
}

func TestTransfer_ConservesTotalBalance(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 50000)
	bob := seedAccount(accountRepo, "bob", "1111", 10000)
	before := alice.Balance + bob.Balance

	_, err := svc.Transfer(ctx, alice.ID, TransferRequest{Pin: "1234", DestinationName: "bob", Amount: 12345})
	require.NoError(t, err)

	after := accountRepo.GetAccountByID(alice.ID).Balance + accountRepo.GetAccountByID(bob.ID).Balance
	assert.Equal(t, before, after)
}

func TestTransfer_SourceNotFound(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	seedAccount(accountRepo, "bob", "1111", 0)

	_, err := svc.Transfer(ctx, uuid.New(), TransferRequest{Pin: "1234", DestinationName: "bob", Amount: 100})
	assert.ErrorIs(t, err, domainErrors.ErrAccountNotFound)
}

func TestTransfer_WrongPin(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 50000)
	bob := seedAccount(accountRepo, "bob", "1111", 10000)

	_, err := svc.Transfer(ctx, alice.ID, TransferRequest{Pin: "0000", DestinationName: "bob", Amount: 100})
	assert.ErrorIs(t, err, domainErrors.ErrAccessDenied)
	assert.Equal(t, int64(50000), accountRepo.GetAccountByID(alice.ID).Balance)
	assert.Equal(t, int64(10000), accountRepo.GetAccountByID(bob.ID).Balance)
}

func TestTransfer_WrongPinPrecedesDestinationLookup(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 50000)

	_, err := svc.Transfer(ctx, alice.ID, TransferRequest{Pin: "0000", DestinationName: "ghost", Amount: 100})
	assert.ErrorIs(t, err, domainErrors.ErrAccessDenied)
}

func TestTransfer_DestinationNotFound(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 50000)

	_, err := svc.Transfer(ctx, alice.ID, TransferRequest{Pin: "1234", DestinationName: "ghost", Amount: 100})
	assert.ErrorIs(t, err, domainErrors.ErrAccountNotFound)
	assert.Equal(t, int64(50000), accountRepo.GetAccountByID(alice.ID).Balance)
}

func TestTransfer_InvalidAmount(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 50000)
	seedAccount(accountRepo, "bob", "1111", 10000)

	for _, amount := range []int64{0, -100} {
		_, err := svc.Transfer(ctx, alice.ID, TransferRequest{Pin: "1234", DestinationName: "bob", Amount: amount})
		assert.ErrorIs(t, err, domainErrors.ErrInvalidAmount)
	}
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 100)
	bob := seedAccount(accountRepo, "bob", "1111", 0)

	_, err := svc.Transfer(ctx, alice.ID, TransferRequest{Pin: "1234", DestinationName: "bob", Amount: 101})
	assert.ErrorIs(t, err, domainErrors.ErrInsufficientFunds)
	assert.Equal(t, int64(100), accountRepo.GetAccountByID(alice.ID).Balance)
	assert.Equal(t, int64(0), accountRepo.GetAccountByID(bob.ID).Balance)
}

func TestTransfer_ReusedNameCreditsActiveAccount(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 100000)
	dead := testutil.NewDeactivatedAccount("bob", "1111", 550)
	accountRepo.AddAccount(dead)
	bob := seedAccount(accountRepo, "bob", "2222", 90)

	for i := 0; i < 10; i++ {
		_, err := svc.Transfer(ctx, alice.ID, TransferRequest{Pin: "1234", DestinationName: "bob", Amount: 10})
		require.NoError(t, err)
	}

	assert.Equal(t, int64(190), accountRepo.GetAccountByID(bob.ID).Balance)
	assert.Equal(t, int64(550), accountRepo.GetAccountByID(dead.ID).Balance)
}

func TestTransfer_ToSelf(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 50000)

	acct, err := svc.Transfer(ctx, alice.ID, TransferRequest{Pin: "1234", DestinationName: "alice", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(50000), acct.Balance)
	assert.Equal(t, int64(50000), accountRepo.GetAccountByID(alice.ID).Balance)
}

// --- Concurrency ---

func TestDeposit_ConcurrentDepositsSumExactly(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 0)

	const n = 50
	const amount = int64(100)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := svc.Deposit(ctx, alice.ID, amount)
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(n)*amount, accountRepo.GetAccountByID(alice.ID).Balance)
}

func TestTransfer_ConcurrentOpposingTransfers(t *testing.T) {
	svc, accountRepo := setupAccountService()
	ctx := context.Background()

	alice := seedAccount(accountRepo, "alice", "1234", 100000)
	bob := seedAccount(accountRepo, "bob", "1111", 100000)

	const rounds = 20

	var g errgroup.Group
	g.Go(func() error {
		for i := 0; i < rounds; i++ {
			if _, err := svc.Transfer(ctx, alice.ID, TransferRequest{Pin: "1234", DestinationName: "bob", Amount: 10}); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for i := 0; i < rounds; i++ {
			if _, err := svc.Transfer(ctx, bob.ID, TransferRequest{Pin: "1111", DestinationName: "alice", Amount: 10}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())

	total := accountRepo.GetAccountByID(alice.ID).Balance + accountRepo.GetAccountByID(bob.ID).Balance
	assert.Equal(t, int64(200000), total)
}
