package public

import (
	handlershared "github.com/bistro-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithMsgs(c, "user_id", "invalid user id", "invalid user id type")
}

func getUserEmail(c *gin.Context) string {
	return handlershared.GetContextString(c, "user_email")
}
