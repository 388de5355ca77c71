package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/mawlid1431/Arts/config"
	"github.com/mawlid1431/Arts/middleware"
	"github.com/mawlid1431/Arts/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewAuthHandler(cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, logger: logger}
}

// Login compares the submitted credentials against server-side configuration.
// Credentials never reach the client; the password is stored as a bcrypt hash.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if h.cfg.Admin.Email == "" || h.cfg.Admin.PasswordHash == "" {
		h.logger.Error("Admin credentials not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server configuration error"})
		return
	}

	emailMatch := subtle.ConstantTimeCompare([]byte(req.Email), []byte(h.cfg.Admin.Email)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword([]byte(h.cfg.Admin.PasswordHash), []byte(req.Password)) == nil

	if !emailMatch || !passwordMatch {
		middleware.RecordAdminLogin(false)
		h.logger.Warn("Failed admin login attempt", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": req.Email,
		"role":  "admin",
		"exp":   time.Now().Add(h.cfg.Session.MaxAge).Unix(),
	})
	tokenString, err := token.SignedString([]byte(h.cfg.Admin.JWTSecret))
	if err != nil {
		h.logger.Error("Failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server configuration error"})
		return
	}

	middleware.RecordAdminLogin(true)
	h.logger.Info("Admin logged in", zap.String("email", req.Email))
	c.JSON(http.StatusOK, models.LoginResponse{
		Success: true,
		User:    models.User{Email: req.Email, Name: "Admin User", Role: "admin"},
		Token:   tokenString,
	})
}
