package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/dto"
	"github.com/SscSPs/account_auth_service/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// accountHandler handles account-related requests
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler
func newAccountHandler(accountService portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: accountService}
}

// registerAccountRoutes registers the account routes. Every one of them needs a session.
func registerAccountRoutes(users *gin.RouterGroup, authenticated gin.HandlerFunc, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	users.GET("/me", authenticated, h.getMe)
	users.GET("/allUser", authenticated, h.listAccounts)
	users.GET("/getUserLength", authenticated, h.countAccounts)
	users.GET("/searchUser", authenticated, h.searchAccounts)
	users.PUT("/editUserName", authenticated, h.updateUsername)
	users.DELETE("/userDelete", authenticated, h.deleteAccount)
}

// getMe godoc
// @Summary Get the current account
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (h *accountHandler) getMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, dto.ToAccountResponse(account), "User fetched successfully")
}

// listAccounts godoc
// @Summary List accounts
// @Description One page of accounts, oldest first. page and limit fall back to 1 and 10.
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListAccountsResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/allUser [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	page, pageSize := pagination.ParseParams(params.Page, params.Limit)
	result, err := h.accountService.ListAccounts(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, dto.ToListAccountsResponse(result), "Users fetched successfully")
}

// countAccounts godoc
// @Summary Count accounts
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CountAccountsResponse}
// @Security BearerAuth
// @Router /users/getUserLength [get]
func (h *accountHandler) countAccounts(c *gin.Context) {
	total, err := h.accountService.CountAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, dto.CountAccountsResponse{UserCount: total}, "User count fetched successfully")
}

// searchAccounts godoc
// @Summary Search accounts
// @Description Case-insensitive substring match on username and email. No match is an empty list.
// @Tags users
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} dto.APIResponse{data=dto.SearchAccountsResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/searchUser [get]
func (h *accountHandler) searchAccounts(c *gin.Context) {
	var params dto.SearchAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	accounts, err := h.accountService.SearchAccounts(c.Request.Context(), params.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, dto.SearchAccountsResponse{Accounts: dto.ToAccountSummaryList(accounts)}, "Users fetched successfully")
}

// updateUsername godoc
// @Summary Rename the current account
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.UpdateUsernameRequest true "New username"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateUsernameResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/editUserName [put]
func (h *accountHandler) updateUsername(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accountService.UpdateUsername(c.Request.Context(), userID, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, dto.UpdateUsernameResponse{
		Username: account.Username,
		Account:  dto.ToAccountResponse(account),
	}, "Username updated successfully")
}

// deleteAccount godoc
// @Summary Delete an account
// @Description Admin only. Removes the account with the given email.
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.DeleteAccountRequest true "Email of the account to delete"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteAccountResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/userDelete [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), userID, req.Email); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, dto.DeleteAccountResponse{Email: req.Email}, "User deleted successfully")
}
