package admin

import (
	"fmt"
	"time"

	handlershared "github.com/bistro-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithMsgs(c, "admin_id", "invalid admin id", "invalid admin id type")
}

// adminActor 生成状态流水里记录的操作者标识
func adminActor(adminID uint) string {
	return fmt.Sprintf("admin:%d", adminID)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
