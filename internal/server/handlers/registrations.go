package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/events"
	"github.com/Abin-1409/fuel-swift/internal/registrations"
	"github.com/Abin-1409/fuel-swift/internal/server/resp"
	"github.com/Abin-1409/fuel-swift/internal/users"
	"github.com/Abin-1409/fuel-swift/internal/util"
)

const maxProofSize = 5 << 20

var proofExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".pdf": true}

type RegistrationsHandler struct {
	logger *zap.Logger

	users       UserStore
	regs        RegistrationStore
	events      events.Publisher
	storagePath string
}

func NewRegistrationsHandler(logger *zap.Logger, usersRepo UserStore, regsRepo RegistrationStore, publisher events.Publisher, storagePath string) *RegistrationsHandler {
	return &RegistrationsHandler{
		logger:      logger,
		users:       usersRepo,
		regs:        regsRepo,
		events:      publisher,
		storagePath: storagePath,
	}
}

// Submit takes a multipart agent application with an ID proof upload.
func (h *RegistrationsHandler) Submit(c *gin.Context) {
	form := func(k string) string { return strings.TrimSpace(c.PostForm(k)) }
	fullName, phoneRaw, emailRaw := form("full_name"), form("phone_number"), form("email")
	password := c.PostForm("password")
	proofType, proofNumber := strings.ToLower(form("id_proof_type")), form("id_proof_number")

	file, fileErr := c.FormFile("id_proof_file")
	fileSet := ""
	if fileErr == nil {
		fileSet = "set"
	}
	if f := missingField(
		[2]string{"full_name", fullName},
		[2]string{"phone_number", phoneRaw},
		[2]string{"email", emailRaw},
		[2]string{"password", password},
		[2]string{"id_proof_type", proofType},
		[2]string{"id_proof_number", proofNumber},
		[2]string{"id_proof_file", fileSet},
	); f != "" {
		resp.Error(c, http.StatusBadRequest, "Missing field: "+f)
		return
	}
	if len(fullName) > 61 {
		resp.Error(c, http.StatusBadRequest, "full_name is too long")
		return
	}
	if !domain.IDProofTypes[proofType] {
		resp.Error(c, http.StatusBadRequest, "Invalid ID proof type")
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !proofExtensions[ext] {
		resp.Error(c, http.StatusBadRequest, "ID proof must be a jpg, jpeg, png or pdf file")
		return
	}
	if file.Size > maxProofSize {
		resp.Error(c, http.StatusBadRequest, "ID proof must be 5MB or smaller")
		return
	}
	if err := util.ValidatePassword(password); err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	email, err := util.NormalizeEmail(emailRaw)
	if err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	phone, err := util.NormalizePhone(phoneRaw)
	if err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	phoneTaken, emailTaken, err := h.users.Exists(ctx, phone, email)
	if err != nil {
		h.internal(c, "registration user check failed", err)
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
	pending, err := h.regs.HasPending(ctx, email)
	if err != nil {
		h.internal(c, "registration pending check failed", err)
		return
	}
	if pending {
		resp.Error(c, http.StatusBadRequest, registrations.ErrAlreadyPending.Error())
		return
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		h.internal(c, "password hash failed", err)
		return
	}
	reg, err := h.regs.Create(ctx, registrations.CreateParams{
		FullName:      fullName,
		PhoneNumber:   phone,
		Email:         email,
		PasswordHash:  hash,
		IDProofType:   proofType,
		IDProofNumber: proofNumber,
	})
	if err != nil {
		if errors.Is(err, registrations.ErrAlreadyPending) {
			resp.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		h.internal(c, "registration create failed", err)
		return
	}

	rel := filepath.Join("agent_requests", fmt.Sprint(reg.ID), "id_proof"+ext)
	dst := filepath.Join(h.storagePath, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		h.internal(c, "proof dir create failed", err)
		return
	}
	if err := c.SaveUploadedFile(file, dst); err != nil {
		h.internal(c, "proof save failed", err)
		return
	}
	if err := h.regs.SetProofPath(ctx, reg.ID, filepath.ToSlash(rel)); err != nil {
		h.internal(c, "proof path update failed", err)
		return
	}
	reg.IDProofPath = filepath.ToSlash(rel)

	publish(ctx, h.logger, h.events, events.Event{
		Type:   events.RegistrationCreated,
		Status: reg.Status,
		Data: map[string]any{
			"registration_id": reg.ID,
			"full_name":       reg.FullName,
			"email":           reg.Email,
			"phone_number":    reg.PhoneNumber,
			"id_proof_type":   reg.IDProofType,
		},
	})
	resp.Created(c, gin.H{"message": "Registration request submitted", "id": reg.ID, "status": reg.Status})
}

func (h *RegistrationsHandler) List(c *gin.Context) {
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	switch domain.RegistrationStatus(status) {
	case "", domain.RegistrationPending, domain.RegistrationApproved, domain.RegistrationRejected:
	default:
		resp.Error(c, http.StatusBadRequest, "Invalid status")
		return
	}
	list, err := h.regs.List(c.Request.Context(), status)
	if err != nil {
		h.internal(c, "list registrations failed", err)
		return
	}
	if list == nil {
		list = []registrations.Request{}
	}
	resp.OK(c, list)
}

func (h *RegistrationsHandler) Accept(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	reg, err := h.regs.Approve(c.Request.Context(), id)
	if err != nil {
		h.reviewErr(c, err, id)
		return
	}
	h.reviewed(c, reg)
	resp.OK(c, gin.H{"message": "Agent approved", "id": reg.ID, "status": reg.Status, "user_id": reg.UserID})
}

type rejectReq struct {
	Reason string `json:"reason"`
}

func (h *RegistrationsHandler) Reject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req rejectReq
	// the body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			resp.Error(c, http.StatusBadRequest, "invalid payload")
			return
		}
	}
	reg, err := h.regs.Reject(c.Request.Context(), id, strings.TrimSpace(req.Reason))
	if err != nil {
		h.reviewErr(c, err, id)
		return
	}
	h.reviewed(c, reg)
	resp.OK(c, gin.H{"message": "Agent rejected", "id": reg.ID, "status": reg.Status})
}

// Status is the public lookup applicants use while they wait.
func (h *RegistrationsHandler) Status(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		resp.Error(c, http.StatusBadRequest, "Missing field: email")
		return
	}
	reg, err := h.regs.LatestByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, registrations.ErrNotFound) {
			resp.Error(c, http.StatusNotFound, "No registration found for this email.")
			return
		}
		h.internal(c, "registration status failed", err)
		return
	}
	out := gin.H{"status": reg.Status}
	if reg.Reason != "" {
		out["reason"] = reg.Reason
	}
	resp.OK(c, out)
}

func (h *RegistrationsHandler) reviewErr(c *gin.Context, err error, id int64) {
	switch {
	case errors.Is(err, registrations.ErrNotFound):
		resp.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, registrations.ErrNotPending):
		resp.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrPhoneTaken):
		resp.Error(c, http.StatusBadRequest, users.ErrPhoneTaken.Error())
	case errors.Is(err, users.ErrEmailTaken):
		resp.Error(c, http.StatusBadRequest, users.ErrEmailTaken.Error())
	default:
		h.logger.Error("registration review failed", zap.Error(err), zap.Int64("registration_id", id))
		resp.Error(c, http.StatusInternalServerError, "internal error")
	}
}

func (h *RegistrationsHandler) reviewed(c *gin.Context, reg *registrations.Request) {
	publish(c.Request.Context(), h.logger, h.events, events.Event{
		Type:   events.RegistrationReviewed,
		Status: reg.Status,
		Data:   map[string]any{"registration_id": reg.ID, "email": reg.Email},
	})
}

func (h *RegistrationsHandler) internal(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	resp.Error(c, http.StatusInternalServerError, "internal error")
}
