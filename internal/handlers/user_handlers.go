package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/01moynul/relique/internal/auth"
	"github.com/01moynul/relique/internal/middleware"
	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/store"
	"github.com/gin-gonic/gin"
)

//
// --- Registration & Login ---
//

// RegisterUserInput is the body of POST /v1/auth/register. It is separate
// from models.User so that clients can never choose their id, role or status.
type RegisterUserInput struct {
	FullName    string  `json:"fullName" binding:"required,max=200"`
	Email       string  `json:"email" binding:"required,email,max=255"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=50"`
}

// LoginInput is the body of POST /v1/auth/login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /v1/auth/register. New accounts are always clients.
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Create the user ---
	user, err := h.createUser(c, input.FullName, input.Email, input.Password, input.PhoneNumber, models.RoleClient)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.respondError(c, err, "User")
		return
	}

	// 3. --- Issue a token ---
	token, err := auth.GenerateToken(h.Config.JWTSecret, user.ID, user.Role, h.Config.TokenTTL)
	if err != nil {
		h.respondError(c, err, "Token")
		return
	}

	c.Set(middleware.ContextUserID, user.ID)
	h.recordActivity(c, "auth.register", "user", user.ID, "Account created")

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login handles POST /v1/auth/login.
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Find the user ---
	// Unknown email and wrong password get the same answer.
	user, err := h.Store.GetUserByEmail(c.Request.Context(), input.Email)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		h.respondError(c, err, "User")
		return
	}

	// 3. --- Check the password ---
	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if user.Status != models.UserStatusActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account suspended"})
		return
	}

	// 4. --- Issue a token ---
	token, err := auth.GenerateToken(h.Config.JWTSecret, user.ID, user.Role, h.Config.TokenTTL)
	if err != nil {
		h.respondError(c, err, "Token")
		return
	}

	c.Set(middleware.ContextUserID, user.ID)
	h.recordActivity(c, "auth.login", "user", user.ID, "Signed in")

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// GetMe handles GET /v1/me.
func (h *Handlers) GetMe(c *gin.Context) {
	user, err := h.Store.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// createUser hashes password and stores a new user with role.
func (h *Handlers) createUser(c *gin.Context, fullName, email, plaintext string, phone *string, role string) (*models.User, error) {
	var password models.Password
	if err := password.Set(plaintext); err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: password.Hash,
		FullName:     strings.TrimSpace(fullName),
		PhoneNumber:  phone,
		Role:         role,
		Status:       models.UserStatusActive,
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		return nil, err
	}
	return user, nil
}

//
// --- Admin: user management ---
//

// CreateUserInput is the body of POST /v1/admin/users.
type CreateUserInput struct {
	RegisterUserInput
	Role string `json:"role" binding:"required,oneof=client editor admin"`
}

// CreateUser handles POST /v1/admin/users. Admins use it to add editors
// and other admins.
func (h *Handlers) CreateUser(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Create the user ---
	user, err := h.createUser(c, input.FullName, input.Email, input.Password, input.PhoneNumber, input.Role)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.respondError(c, err, "User")
		return
	}

	// 3. --- Audit ---
	h.recordAudit(c, "user.create", "user", user.ID, nil, strPtr(user.Role), map[string]any{"email": user.Email})

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": user})
}

type listUsersQuery struct {
	pageQuery
	Role string `form:"role" binding:"omitempty,oneof=client editor admin"`
}

// ListUsers handles GET /v1/admin/users.
func (h *Handlers) ListUsers(c *gin.Context) {
	var q listUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page := q.toPage()
	users, total, err := h.Store.ListUsers(c.Request.Context(), q.Role, page)
	if err != nil {
		h.respondError(c, err, "Users")
		return
	}
	c.JSON(http.StatusOK, pageResponse("users", users, total, page))
}
