package handlers

import (
	"context"
	"errors"
	"net/http"

	dom "github.com/xixhienxix/task-list/internal/domain"
	"github.com/xixhienxix/task-list/internal/dto"
	"github.com/xixhienxix/task-list/internal/logging"
	"github.com/xixhienxix/task-list/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Error codes embedded in account-route failures. These are sent with
// HTTP 200.
const (
	CodeNotRegistered = 40
	CodeEmailRequired = 41
	CodeAccountExists = 42
)

const (
	msgLoginEmailRequired    = "Email obligatorio"
	msgNotRegistered         = "Usuario no registrado, registese antes de poder acceder"
	msgRegisterEmailRequired = "email es obligatorio"
	msgAccountExists         = "El usuario ya existe!"
	msgInternal              = "Error interno del servidor"
	msgInvalidJSON           = "Cuerpo JSON inválido"
)

// AccountDirectory resolves and registers accounts.
type AccountDirectory interface {
	Authenticate(ctx context.Context, email string) (dom.Account, error)
	Register(ctx context.Context, email, name string) (dom.Account, error)
}

// AccountHandler handles login and register.
type AccountHandler struct {
	accounts AccountDirectory
	log      logrus.FieldLogger
}

// NewAccountHandler returns a new AccountHandler.
func NewAccountHandler(accounts AccountDirectory, log logrus.FieldLogger) *AccountHandler {
	return &AccountHandler{accounts: accounts, log: log}
}

// Login godoc
// @Summary      Login by email
// @Description  Looks the email up. There is no password. Failures are sent with HTTP 200 and an errorCode (40 not registered, 41 email missing).
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Email"
// @Success      200   {object}  dto.AccountResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: msgInvalidJSON, Error: err.Error()})
		return
	}
	a, err := h.accounts.Authenticate(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired):
			c.JSON(http.StatusOK, dto.AccountFailure{ErrorCode: CodeEmailRequired, Message: msgLoginEmailRequired})
		case errors.Is(err, service.ErrNotRegistered):
			c.JSON(http.StatusOK, dto.AccountFailure{ErrorCode: CodeNotRegistered, Message: msgNotRegistered})
		default:
			logging.FromContext(c, h.log).WithError(err).Error("login failed")
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: msgInternal, Error: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, accountToResponse(a))
}

// Register godoc
// @Summary      Register an email
// @Description  Creates the account unless the email exists. Failures are sent with HTTP 200 and an errorCode (41 email missing, 42 already registered).
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterRequest  true  "Email and optional name"
// @Success      200   {object}  dto.AccountResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: msgInvalidJSON, Error: err.Error()})
		return
	}
	a, err := h.accounts.Register(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired):
			c.JSON(http.StatusOK, dto.AccountFailure{ErrorCode: CodeEmailRequired, Message: msgRegisterEmailRequired})
		case errors.Is(err, service.ErrAccountExists):
			c.JSON(http.StatusOK, dto.AccountFailure{ErrorCode: CodeAccountExists, Message: msgAccountExists})
		default:
			logging.FromContext(c, h.log).WithError(err).Error("register failed")
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: msgInternal, Error: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, accountToResponse(a))
}

func accountToResponse(a dom.Account) dto.AccountResponse {
	return dto.AccountResponse{Success: true, ID: a.ID, Email: a.Email, Name: a.Name}
}
