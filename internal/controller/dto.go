package controller

import (
	"math"
	"time"

	"github.com/MrGreenNV/bank-rest-test/internal/domain/account"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (float64 for money, string for IDs,
// validation tags). Controllers convert these to service layer DTOs before
// calling business logic.
//
// Account names deliberately carry no `required` tag: an empty name is a
// business rule violation reported by the service, not a schema failure.

// CreateAccountRequest holds the input for opening an account.
type CreateAccountRequest struct {
	AccountName string `json:"account_name"`
	Pin         string `json:"pin" validate:"required,len=4,numeric"`
}

// RenameAccountRequest holds the input for renaming an account.
type RenameAccountRequest struct {
	NewAccountName string `json:"new_account_name"`
	Pin            string `json:"pin" validate:"required,len=4,numeric"`
}

// DepositRequest holds the input for a deposit. Amount is a pointer so a
// missing field is distinguishable from an explicit zero; both are rejected
// downstream as invalid amounts.
type DepositRequest struct {
	Amount *float64 `json:"amount"`
}

// WithdrawRequest holds the input for a withdrawal.
type WithdrawRequest struct {
	Amount *float64 `json:"amount"`
	Pin    string   `json:"pin" validate:"required,len=4,numeric"`
}

// TransferRequest holds the input for a transfer out of the account in the
// URL into the account named in the body.
type TransferRequest struct {
	Amount          *float64 `json:"amount"`
	Pin             string   `json:"pin" validate:"required,len=4,numeric"`
	DestinationName string   `json:"destination_name"`
}

// --- Response DTOs ---

// AccountSummaryResponse is the short view returned by mutating endpoints.
type AccountSummaryResponse struct {
	AccountName string  `json:"account_name"`
	Balance     float64 `json:"balance"`
}

// AccountResponse is the full view returned by read endpoints.
type AccountResponse struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"account_number"`
	AccountName   string    `json:"account_name"`
	Balance       float64   `json:"balance"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromAccount converts a domain account to the full API view.
func FromAccount(a *account.Account) *AccountResponse {
	return &AccountResponse{
		ID:            a.ID.String(),
		AccountNumber: a.Number,
		AccountName:   a.Name,
		Balance:       centsToFloat(a.Balance),
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// SummaryFromAccount converts a domain account to the summary API view.
func SummaryFromAccount(a *account.Account) *AccountSummaryResponse {
	return &AccountSummaryResponse{
		AccountName: a.Name,
		Balance:     centsToFloat(a.Balance),
	}
}

// amountToCents converts a wire amount in currency units to minor units.
// A missing amount maps to zero, which the service rejects as invalid.
func amountToCents(f *float64) int64 {
	if f == nil {
		return 0
	}
	return int64(math.Round(*f * 100))
}

// centsToFloat converts minor units to a wire amount in currency units.
func centsToFloat(cents int64) float64 {
	return float64(cents) / 100.0
}
