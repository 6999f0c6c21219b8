package rest

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
)

type idParam struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

// pathID reads the positive :id path parameter.
func pathID(c *gin.Context) (int64, error) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		return 0, fmt.Errorf("%w: id must be a positive integer", common.ErrValidation)
	}
	return p.ID, nil
}

// bindJSON decodes the request body into dst.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", common.ErrValidation, err)
	}
	return nil
}

type createdResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
