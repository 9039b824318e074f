package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (policy.Caller, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return policy.Caller{}, fmt.Errorf("user not authenticated")
	}

	caller, ok := user.(policy.Caller)

	if !ok {
		return policy.Caller{}, fmt.Errorf("invalid user type in context")
	}

	return caller, nil
}
