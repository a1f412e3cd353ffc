package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cyberkids_accounts/internal/apperr"
	"cyberkids_accounts/internal/metrics"
	"cyberkids_accounts/internal/service"
)

const msgRegistered = "user registered successfully"

// RegisterRequest is the self-registration payload.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"s3cret"`
	Age      *int   `json:"age,omitempty" example:"35"`
	// One of student, parent, teacher, admin. Defaults to student.
	Role string `json:"role,omitempty" example:"parent"`
}

// RegisterResponse is returned on 201.
type RegisterResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginRequest accepts a username or an email in one field.
type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" example:"alice@example.com"`
	Password        string `json:"password" example:"s3cret"`
}

// LoginResponse carries the token pair and the caller's identity.
type LoginResponse struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type RefreshResponse struct {
	Access string `json:"access"`
}

// bindJSON tries to bind the request body into dst. On failure it writes a
// 400 via onError and returns false.
func (h *Handler) bindJSON(c *gin.Context, dst any, onError func(c *gin.Context, err error)) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.Request.URL.Path, "err", err)
		}
		onError(c, err)
		return false
	}
	return true
}

func malformedFields(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{nonFieldErrors: []string{"malformed request body: " + err.Error()}})
}

func malformed(key string) func(c *gin.Context, err error) {
	return func(c *gin.Context, err error) {
		c.JSON(http.StatusBadRequest, gin.H{key: "malformed request body: " + err.Error()})
	}
}

// @Summary      Register an account
// @Description  Parents also get a linked placeholder student account.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        input  body      RegisterRequest  true  "account"
// @Success      201    {object}  RegisterResponse
// @Failure      400    {object}  map[string][]string
// @Failure      500    {object}  map[string][]string
// @Router       /register [post]
func (h *Handler) register(c *gin.Context) {
	var input RegisterRequest
	if !h.bindJSON(c, &input, malformedFields) {
		return
	}

	account, err := h.services.Register(c.Request.Context(), service.RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Age:      input.Age,
		Role:     input.Role,
	})
	if err != nil {
		h.respondFields(c, "register_failed", err, "username", input.Username)
		return
	}

	h.metrics.RecordRegistration(string(account.Role))
	if h.log != nil {
		h.log.Infow("account_registered", "username", account.Username, "role", account.Role)
	}
	c.JSON(http.StatusCreated, RegisterResponse{
		Message:  msgRegistered,
		Username: account.Username,
		Email:    account.Email,
		Role:     string(account.Role),
	})
}

// @Summary      Log in
// @Description  Accepts a username or an email and returns a JWT pair.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        input  body      LoginRequest  true  "credentials"
// @Success      200    {object}  LoginResponse
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /login [post]
func (h *Handler) login(c *gin.Context) {
	var input LoginRequest
	if !h.bindJSON(c, &input, malformed("detail")) {
		return
	}

	res, err := h.services.Login(c.Request.Context(), input.UsernameOrEmail, input.Password)
	if err != nil {
		h.metrics.RecordLogin(loginOutcome(err))
		h.respondMessage(c, "detail", http.StatusBadRequest, "auth_login_failed", err,
			"identifier", input.UsernameOrEmail)
		return
	}

	h.metrics.RecordLogin(metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, LoginResponse{
		Access:   res.Access,
		Refresh:  res.Refresh,
		Username: res.Username,
		Role:     string(res.Role),
	})
}

func loginOutcome(err error) string {
	switch {
	case apperr.Message(err) == "inactive account":
		return metrics.OutcomeInactive
	case apperr.Is(err, apperr.CodeAuth), apperr.Is(err, apperr.CodeValidation):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

// @Summary      Refresh access token
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        input  body      RefreshRequest  true  "refresh token"
// @Success      200    {object}  RefreshResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /token/refresh [post]
func (h *Handler) refreshToken(c *gin.Context) {
	var input RefreshRequest
	if !h.bindJSON(c, &input, malformed("detail")) {
		return
	}
	if input.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "refresh is required"})
		return
	}

	access, err := h.services.Refresh(c.Request.Context(), input.Refresh)
	if err != nil {
		h.respondMessage(c, "detail", http.StatusUnauthorized, "auth_refresh_failed", err)
		return
	}
	c.JSON(http.StatusOK, RefreshResponse{Access: access})
}
