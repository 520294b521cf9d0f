package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/security"
	"github.com/Abin-1409/fuel-swift/internal/server/resp"
	"github.com/Abin-1409/fuel-swift/internal/store"
	"github.com/Abin-1409/fuel-swift/internal/users"
	"github.com/Abin-1409/fuel-swift/internal/util"
)

type AuthHandler struct {
	logger *zap.Logger

	users   UserStore
	jwtm    TokenIssuer
	refresh RefreshTokens
}

func NewAuthHandler(logger *zap.Logger, usersRepo UserStore, jwtm TokenIssuer, refreshStore RefreshTokens) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		users:   usersRepo,
		jwtm:    jwtm,
		refresh: refreshStore,
	}
}

type registerReq struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Address         string `json:"address"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if f := missingField(
		[2]string{"first_name", strings.TrimSpace(req.FirstName)},
		[2]string{"last_name", strings.TrimSpace(req.LastName)},
		[2]string{"email", strings.TrimSpace(req.Email)},
		[2]string{"phone_number", strings.TrimSpace(req.PhoneNumber)},
		[2]string{"password", req.Password},
		[2]string{"confirm_password", req.ConfirmPassword},
	); f != "" {
		resp.Error(c, http.StatusBadRequest, "Missing field: "+f)
		return
	}
	if req.Password != req.ConfirmPassword {
		resp.Error(c, http.StatusBadRequest, "Passwords do not match")
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	email, err := util.NormalizeEmail(req.Email)
	if err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	phone, err := util.NormalizePhone(req.PhoneNumber)
	if err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	phoneTaken, emailTaken, err := h.users.Exists(ctx, phone, email)
	if err != nil {
		h.logger.Error("user exists check failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	if phoneTaken {
		resp.Error(c, http.StatusBadRequest, users.ErrPhoneTaken.Error())
		return
	}
	if emailTaken {
		resp.Error(c, http.StatusBadRequest, users.ErrEmailTaken.Error())
		return
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password hash failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	_, err = h.users.Create(ctx, users.CreateParams{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PhoneNumber:  phone,
		Address:      strings.TrimSpace(req.Address),
		PasswordHash: hash,
		UserType:     string(domain.UserCustomer),
	})
	if err != nil {
		// lost a race with a concurrent sign-up
		if errors.Is(err, users.ErrPhoneTaken) || errors.Is(err, users.ErrEmailTaken) {
			resp.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("user create failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	resp.Msg(c, http.StatusCreated, "Registration successful")
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		resp.Error(c, http.StatusBadRequest, "Email and password required")
		return
	}

	u, err := h.users.FindByEmail(c.Request.Context(), email)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		h.logger.Error("login lookup failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	if u == nil || !u.IsActive || !util.ComparePassword(u.PasswordHash, req.Password) {
		resp.Error(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tokens, ok := h.issue(c, security.Principal{UserID: u.ID, Role: u.UserType, Email: u.Email})
	if !ok {
		return
	}
	resp.OK(c, gin.H{
		"message": "Login successful",
		"tokens":  tokens,
		"user":    u,
	})
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	p, claims, err := h.jwtm.ParseRefresh(req.RefreshToken)
	if err != nil {
		resp.Error(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	if err := h.refresh.Consume(c.Request.Context(), p.UserID, claims.ID); err != nil {
		if errors.Is(err, store.ErrRefreshInvalid) {
			resp.Error(c, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		h.logger.Error("refresh consume failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}

	// role or activation may have changed since the token was issued
	u, err := h.users.FindByID(c.Request.Context(), p.UserID)
	if err != nil || !u.IsActive {
		resp.Error(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	tokens, ok := h.issue(c, security.Principal{UserID: u.ID, Role: u.UserType, Email: u.Email})
	if !ok {
		return
	}
	resp.OK(c, gin.H{"tokens": tokens})
}

func (h *AuthHandler) issue(c *gin.Context, p security.Principal) (security.Tokens, bool) {
	tokens, rc, err := h.jwtm.Issue(p)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return security.Tokens{}, false
	}
	if err := h.refresh.Put(c.Request.Context(), p.UserID, rc.ID); err != nil {
		h.logger.Error("refresh store failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return security.Tokens{}, false
	}
	return tokens, true
}
