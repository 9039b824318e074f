package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/response"
	"github.com/taskdeck/taskdeck/internal/types"
	"github.com/taskdeck/taskdeck/internal/utils"
)

// Authenticate requires a valid session cookie and stores the caller under types.ContextUserKey.
func Authenticate(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := ctx.Cookie(types.SessionCookieName)

		if err != nil || tokenString == "" {
			response.Abort(ctx, apperr.Auth("Authentication token is required"), "")
			return
		}

		claims, err := issuer.VerifyJWT(tokenString)

		if err != nil {
			response.Abort(ctx, apperr.Auth("Invalid or expired token"), "")
			return
		}

		ctx.Set(types.ContextUserKey, policy.Caller{
			ID:    claims.ID,
			Name:  claims.Name,
			Email: claims.Email,
			Role:  claims.Role,
		})
		ctx.Next()
	}
}

// AuthorizeAdmin must run after Authenticate. The role in the token is not trusted;
// the stored role is looked up on every request.
func AuthorizeAdmin(authz *policy.Authorizer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		caller, err := utils.GetCurrentUser(ctx)

		if err != nil {
			response.Abort(ctx, apperr.Auth("User not authenticated"), "")
			return
		}

		role, err := authz.Role(ctx.Request.Context(), caller)

		if err != nil {
			response.Abort(ctx, err, "Authorization failed")
			return
		}

		caller.Role = role
		ctx.Set(types.ContextUserKey, caller)

		if !policy.Allowed(role, caller.ID, policy.AdminArea, nil) {
			response.Abort(ctx, apperr.Forbidden("Forbidden: Admin access required"), "")
			return
		}

		ctx.Next()
	}
}
