package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/response"
	"github.com/taskdeck/taskdeck/internal/services"
	"github.com/taskdeck/taskdeck/internal/utils"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthHandler struct {
	users   *services.UserService
	issuer  *auth.TokenIssuer
	cookies auth.CookieSettings
}

func NewAuthHandler(users *services.UserService, issuer *auth.TokenIssuer, cookies auth.CookieSettings) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer, cookies: cookies}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		response.Error(ctx, apperr.Validation("Invalid request body"), "")
		return
	}

	user, err := h.users.Register(ctx.Request.Context(), services.RegisterInput{
		Email:    body.Email,
		Name:     body.Name,
		Password: body.Password,
	})

	if err != nil {
		response.Error(ctx, err, "Failed to register user")
		return
	}

	response.Success(ctx, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		response.Error(ctx, apperr.Validation("Invalid request body"), "")
		return
	}

	user, err := h.users.Login(ctx.Request.Context(), body.Email, body.Password)

	if err != nil {
		response.Error(ctx, err, "Failed to log in")
		return
	}

	token, err := h.issuer.GenerateJWT(user)

	if err != nil {
		response.Error(ctx, err, "Failed to issue session token")
		return
	}

	http.SetCookie(ctx.Writer, h.cookies.Session(token, h.issuer.TTL()))

	response.Success(ctx, http.StatusOK, "Login successful", user)
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, h.cookies.Cleared())

	response.Success(ctx, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)

	if err != nil {
		response.Error(ctx, apperr.Auth("User not authenticated"), "")
		return
	}

	user, err := h.users.Get(ctx.Request.Context(), caller.ID)

	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			err = apperr.Auth("User not authenticated")
		}
		response.Error(ctx, err, "Failed to fetch user")
		return
	}

	response.Success(ctx, http.StatusOK, "Current user", user.Public())
}

func (h *AuthHandler) ListUsers(ctx *gin.Context) {
	users, err := h.users.List(ctx.Request.Context())

	if err != nil {
		response.Error(ctx, err, "Failed to fetch users")
		return
	}

	response.Success(ctx, http.StatusOK, "Users fetched successfully", users)
}
