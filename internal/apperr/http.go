package apperr

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/carstore-api/internal/logging"
)

// Respond は err をステータスコードと {"message": ...} のJSONに変換して返します。
// 想定外のエラーは詳細をログに残し、クライアントには固定メッセージのみ返します。
func Respond(c *gin.Context, err error) {
	kind := KindOf(err)
	if kind == KindInternal {
		logging.FromContext(c).Error("request failed", zap.Error(err))
		c.AbortWithStatusJSON(kind.Status(), gin.H{"message": InternalMessage})
		return
	}

	var appErr *Error
	errors.As(err, &appErr)
	c.AbortWithStatusJSON(kind.Status(), gin.H{"message": appErr.Message})
}
