package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/carstore-api/internal/apperr"
)

// ListHandler は GET /cars-data のハンドラーを返します。
func ListHandler(lister Lister) gin.HandlerFunc {
	return func(c *gin.Context) {
		vehicles, err := lister.ListAll(c.Request.Context())
		if err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, vehicles)
	}
}
