package controller

import (
	"net/http"
	"strconv"

	"github.com/MrGreenNV/bank-rest-test/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AccountController struct {
	accountService *service.AccountService
}

func NewAccountController(accountService *service.AccountService) *AccountController {
	return &AccountController{accountService: accountService}
}

func (h *AccountController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	acct, err := h.accountService.Create(r.Context(), service.CreateAccountRequest{
		Name: req.AccountName,
		Pin:  req.Pin,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, SummaryFromAccount(acct))
}

func (h *AccountController) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	// Negative paging values would be rejected by the store; treat them as
	// unset instead.
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}

	accounts, err := h.accountService.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, FromAccount(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AccountController) Get(w http.ResponseWriter, r *http.Request) {
	ref := service.ParseRef(chi.URLParam(r, "ref"))

	acct, err := h.accountService.Get(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromAccount(acct))
}

func (h *AccountController) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "ref"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid account id", Code: "invalid_id"})
		return
	}

	var req RenameAccountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	acct, err := h.accountService.Rename(r.Context(), id, service.RenameAccountRequest{
		NewName: req.NewAccountName,
		Pin:     req.Pin,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SummaryFromAccount(acct))
}

func (h *AccountController) Delete(w http.ResponseWriter, r *http.Request) {
	ref := service.ParseRef(chi.URLParam(r, "ref"))

	if err := h.accountService.Delete(r.Context(), ref); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountController) Deactivate(w http.ResponseWriter, r *http.Request) {
	ref := service.ParseRef(chi.URLParam(r, "ref"))

	if err := h.accountService.Deactivate(r.Context(), ref); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountController) Deposit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "ref"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid account id", Code: "invalid_id"})
		return
	}

	var req DepositRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	acct, err := h.accountService.Deposit(r.Context(), id, amountToCents(req.Amount))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SummaryFromAccount(acct))
}

func (h *AccountController) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "ref"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid account id", Code: "invalid_id"})
		return
	}

	var req WithdrawRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	acct, err := h.accountService.Withdraw(r.Context(), id, req.Pin, amountToCents(req.Amount))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SummaryFromAccount(acct))
}

func (h *AccountController) Transfer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "ref"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid account id", Code: "invalid_id"})
		return
	}

	var req TransferRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	acct, err := h.accountService.Transfer(r.Context(), id, service.TransferRequest{
		Pin:             req.Pin,
		DestinationName: req.DestinationName,
		Amount:          amountToCents(req.Amount),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SummaryFromAccount(acct))
}
