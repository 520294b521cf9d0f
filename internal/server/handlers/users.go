package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/server/mw"
	"github.com/Abin-1409/fuel-swift/internal/server/resp"
	"github.com/Abin-1409/fuel-swift/internal/users"
	"github.com/Abin-1409/fuel-swift/internal/util"
)

type UsersHandler struct {
	logger *zap.Logger
	users  UserStore
}

func NewUsersHandler(logger *zap.Logger, usersRepo UserStore) *UsersHandler {
	return &UsersHandler{logger: logger, users: usersRepo}
}

func (h *UsersHandler) List(c *gin.Context) {
	list, err := h.users.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []users.User{}
	}
	resp.OK(c, list)
}

type updateUserReq struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
	Photo       *string `json:"photo"`
}

// Update is a partial profile update by the owner or an admin.
func (h *UsersHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, _ := mw.Principal(c)
	if p.UserID != id && !mw.IsAdmin(c) {
		resp.Error(c, http.StatusForbidden, "You do not have permission to perform this action")
		return
	}

	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	params := users.UpdateParams{Address: req.Address, Photo: req.Photo}
	for _, f := range []struct {
		in  *string
		out **string
		max int
	}{
		{req.FirstName, &params.FirstName, 30},
		{req.LastName, &params.LastName, 30},
	} {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if v == "" || len(v) > f.max {
			resp.Error(c, http.StatusBadRequest, "name must be 1 to 30 characters")
			return
		}
		*f.out = &v
	}
	if req.PhoneNumber != nil {
		phone, err := util.NormalizePhone(*req.PhoneNumber)
		if err != nil {
			resp.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		params.PhoneNumber = &phone
	}

	u, err := h.users.Update(c.Request.Context(), id, params)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			resp.Error(c, http.StatusNotFound, "User not found")
		case errors.Is(err, users.ErrPhoneTaken):
			resp.Error(c, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("update user failed", zap.Error(err), zap.Int64("user_id", id))
			resp.Error(c, http.StatusInternalServerError, "internal error")
		}
		return
	}
	resp.OK(c, u)
}

func (h *UsersHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			resp.Error(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("delete user failed", zap.Error(err), zap.Int64("user_id", id))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	resp.Msg(c, http.StatusOK, "User deleted")
}
