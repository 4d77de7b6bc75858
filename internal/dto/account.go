package dto

import (
	"github.com/SscSPs/account_auth_service/internal/core/domain"
)

// RegisterRequest defines data for creating a new account.
type RegisterRequest struct {
	Username string `json:"userName" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUsernameRequest defines the data allowed for renaming an account.
type UpdateUsernameRequest struct {
	Username string `json:"userName" binding:"required"`
}

// DeleteAccountRequest identifies the account an admin wants removed.
type DeleteAccountRequest struct {
	Email string `json:"email" binding:"required"`
}

// ListAccountsParams defines query parameters for listing accounts.
// Page and Limit are read as raw strings so non-numeric values fall back to defaults.
type ListAccountsParams struct {
	Page  string `form:"page"`
	Limit string `form:"limit"`
}

// SearchAccountsParams defines query parameters for searching accounts.
type SearchAccountsParams struct {
	Query string `form:"q"`
}

// AccountResponse is an account with credential fields stripped.
type AccountResponse struct {
	AccountID     string `json:"accountID"`
	Username      string `json:"userName"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	CreatedAt     string `json:"createdAt,omitempty"`
	LastUpdatedAt string `json:"lastUpdatedAt,omitempty"`
}

// AccountSummaryResponse is an account with credential and timestamp fields stripped.
type AccountSummaryResponse struct {
	AccountID string `json:"accountID"`
	Username  string `json:"userName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// PaginationResponse describes the page returned by ListAccounts.
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ListAccountsResponse wraps one page of accounts.
type ListAccountsResponse struct {
	Accounts   []AccountSummaryResponse `json:"userAll"`
	Pagination PaginationResponse       `json:"pagination"`
}

// SearchAccountsResponse wraps the search result; an empty match is an empty list.
type SearchAccountsResponse struct {
	Accounts []AccountSummaryResponse `json:"users"`
}

// CountAccountsResponse carries the total number of accounts.
type CountAccountsResponse struct {
	UserCount int64 `json:"userCount"`
}

// DeleteAccountResponse echoes the removed email.
type DeleteAccountResponse struct {
	Email string `json:"email"`
}

// UpdateUsernameResponse carries the renamed account.
type UpdateUsernameResponse struct {
	Username string          `json:"userName"`
	Account  AccountResponse `json:"user"`
}

// ToAccountResponse converts domain.Account to DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	resp := AccountResponse{
		AccountID: a.AccountID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      string(a.Role),
	}
	if !a.CreatedAt.IsZero() {
		resp.CreatedAt = a.CreatedAt.UTC().Format(timeLayout)
	}
	if !a.LastUpdatedAt.IsZero() {
		resp.LastUpdatedAt = a.LastUpdatedAt.UTC().Format(timeLayout)
	}
	return resp
}

// ToAccountSummaryResponse converts domain.Account to the timestamp-free DTO.
func ToAccountSummaryResponse(a *domain.Account) AccountSummaryResponse {
	return AccountSummaryResponse{
		AccountID: a.AccountID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      string(a.Role),
	}
}

// ToAccountSummaryList converts a slice of domain accounts. A nil slice becomes an empty one.
func ToAccountSummaryList(accounts []domain.Account) []AccountSummaryResponse {
	out := make([]AccountSummaryResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountSummaryResponse(&accounts[i])
	}
	return out
}

// ToListAccountsResponse converts a domain.AccountPage to ListAccountsResponse DTO
func ToListAccountsResponse(page *domain.AccountPage) ListAccountsResponse {
	return ListAccountsResponse{
		Accounts: ToAccountSummaryList(page.Accounts),
		Pagination: PaginationResponse{
			Page:       page.Page,
			Limit:      page.PageSize,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	}
}
