package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck/internal/apperr"
)

// ParseID reads a positive numeric path parameter.
func ParseID(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, apperr.Validation(fmt.Sprintf("%s is required", name))
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil || id == 0 {
		return 0, apperr.Validation(fmt.Sprintf("Invalid %s", name))
	}

	return uint(id), nil
}

// ParseOptionalID reads a numeric query parameter; an absent value yields nil.
func ParseOptionalID(ctx *gin.Context, name string) (*uint, error) {
	raw := ctx.Query(name)

	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil || id == 0 {
		return nil, apperr.Validation(fmt.Sprintf("Invalid %s", name))
	}

	value := uint(id)

	return &value, nil
}
