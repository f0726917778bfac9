package shared

import (
	"github.com/bistro-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextUintWithMsgs 从上下文读取 uint 值并统一处理错误响应。
func GetContextUintWithMsgs(c *gin.Context, key, invalidMsg, typeInvalidMsg string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidMsg, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidMsg, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, typeInvalidMsg, nil)
		return 0, false
	}
}

// GetContextString 从上下文读取字符串值，缺失时返回空串。
func GetContextString(c *gin.Context, key string) string {
	value, exists := c.Get(key)
	if !exists {
		return ""
	}
	if text, ok := value.(string); ok {
		return text
	}
	return ""
}
