// Package handlers wires HTTP endpoints to the service layer. Handlers only
// parse input, call a service, and render the result; business rules live in
// the services.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/middleware"
	"moneta/internal/services"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	users services.UserServicer
	audit services.AuditServicer
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users services.UserServicer, audit services.AuditServicer) *AuthHandler {
	return &AuthHandler{users: users, audit: audit}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.CreateUser(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		renderError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email)
	if err != nil {
		renderError(c, err)
		return
	}

	h.audit.Log(user.ID, "user.register", "user", user.ID, c.ClientIP(), nil)
	c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

// Login authenticates a user and issues a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.AttemptLogin(req.Email, req.Password)
	if err != nil {
		renderError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email)
	if err != nil {
		renderError(c, err)
		return
	}

	h.audit.Log(user.ID, "user.login", "user", user.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetUserByID(middleware.UserID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
