package admin

import (
	"errors"
	"time"

	"github.com/bistro-next/internal/http/response"
	"github.com/bistro-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminLoginRequest 管理员登录请求
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.AdminLogin(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "invalid username or password", nil)
		case errors.Is(err, service.ErrStoreUnavailable):
			respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		default:
			respondError(c, response.CodeInternal, "login failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
		},
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// UpdateAdminPasswordRequest 修改密码请求
type UpdateAdminPasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateAdminPassword 修改管理员密码
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req UpdateAdminPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.AuthService.ChangeAdminPassword(adminID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "password is incorrect or too weak", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "admin not found", nil)
		case errors.Is(err, service.ErrStoreUnavailable):
			respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		default:
			respondError(c, response.CodeInternal, "password update failed", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}
