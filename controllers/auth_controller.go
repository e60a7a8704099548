package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/deifrati/api/middleware"
	"github.com/deifrati/api/models"
	"github.com/deifrati/api/utils"
)

// AuthController handles staff login, registration and token checks.
type AuthController struct {
	db       *gorm.DB
	secret   string
	tokenTTL time.Duration
}

// NewAuthController signs tokens with secret, valid for ttl.
func NewAuthController(db *gorm.DB, secret string, ttl time.Duration) *AuthController {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthController{db: db, secret: secret, tokenTTL: ttl}
}

func userResponse(u models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

// Register creates an account. Only an authenticated admin may choose the role.
func (a *AuthController) Register(ctx *gin.Context) {
	body := bindBody(ctx)
	name := strings.TrimSpace(str(body, "name"))
	email := strings.ToLower(strings.TrimSpace(str(body, "email")))
	password := str(body, "password")

	var chk utils.Checker
	chk.Check(utils.MinLen(name, 2), "name", body["name"], "Name must be at least 2 characters")
	chk.Check(utils.IsEmail(email), "email", body["email"], "Please provide a valid email")
	chk.Check(len(password) >= utils.MinPasswordLen, "password", nil, "Password must be at least 6 characters")
	if !chk.Valid() {
		utils.ValidationFailed(ctx, chk.Errors())
		return
	}

	role := models.RoleUser
	if requested := str(body, "role"); requested == models.RoleAdmin && a.callerIsAdmin(ctx) {
		role = models.RoleAdmin
	}

	var existing int64
	if err := a.db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error registering user", err)
		return
	}
	if existing > 0 {
		utils.Error(ctx, http.StatusBadRequest, "User already exists")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error registering user", err)
		return
	}
	user := models.User{Name: utils.SanitizeText(name), Email: email, Password: hash, Role: role}
	if err := a.db.Create(&user).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error registering user", err)
		return
	}

	utils.Respond(ctx, http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  user.ID,
	})
}

// callerIsAdmin inspects an optional bearer token on an otherwise public route.
func (a *AuthController) callerIsAdmin(ctx *gin.Context) bool {
	token := middleware.BearerToken(ctx)
	if token == "" || utils.IsTokenRevoked(token) {
		return false
	}
	claims, err := utils.ParseToken(a.secret, token)
	return err == nil && claims.Role == models.RoleAdmin
}

// Login exchanges email and password for a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	body := bindBody(ctx)
	email := strings.ToLower(strings.TrimSpace(str(body, "email")))
	password := str(body, "password")
	if email == "" || password == "" {
		utils.Error(ctx, http.StatusBadRequest, "Email and password are required")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error logging in", err)
		return
	}
	if !utils.CheckPassword(user.Password, password) {
		utils.Error(ctx, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(a.secret, user.ID, user.Email, user.Role, a.tokenTTL)
	if err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error logging in", err)
		return
	}

	utils.Success(ctx, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    userResponse(user),
	})
}

// Verify returns the account behind the bearer token.
func (a *AuthController) Verify(ctx *gin.Context) {
	var user models.User
	if err := a.db.First(&user, ctx.GetUint(middleware.ContextUserIDKey)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "User not found")
			return
		}
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error verifying token", err)
		return
	}
	utils.Success(ctx, gin.H{"user": userResponse(user)})
}

// Logout revokes the bearer token until it would have expired.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	expiresAt := time.Now().Add(a.tokenTTL)
	if v, ok := ctx.Get(middleware.ContextClaimsKey); ok {
		if claims, ok := v.(*utils.Claims); ok && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
	}
	utils.RevokeToken(token, expiresAt)
	utils.Message(ctx, http.StatusOK, "Logged out successfully")
}
