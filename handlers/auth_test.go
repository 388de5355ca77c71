package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mawlid1431/Arts/config"
	"github.com/mawlid1431/Arts/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthTest(t *testing.T, adminEmail, adminPassword string) *gin.Engine {
	cfg := &config.Config{}
	cfg.Session = config.HardenedProfile
	cfg.Admin.Email = adminEmail
	cfg.Admin.JWTSecret = "test-secret"
	if adminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}
		cfg.Admin.PasswordHash = string(hash)
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	handler := NewAuthHandler(cfg, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/admin/auth", handler.Login)
	return router
}

func postLogin(router *gin.Engine, email, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(models.LoginRequest{Email: email, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Login_Success(t *testing.T) {
	router := setupAuthTest(t, "admin@nujuumarts.com", "correct-horse")

	w := postLogin(router, "admin@nujuumarts.com", "correct-horse")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp models.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success || resp.User.Role != "admin" || resp.Token == "" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	router := setupAuthTest(t, "admin@nujuumarts.com", "correct-horse")

	w := postLogin(router, "admin@nujuumarts.com", "wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["success"] != false || resp["error"] != "Invalid credentials" {
		t.Errorf("Unexpected response body: %v", resp)
	}
}

func TestAuthHandler_Login_WrongEmail(t *testing.T) {
	router := setupAuthTest(t, "admin@nujuumarts.com", "correct-horse")

	w := postLogin(router, "intruder@example.com", "correct-horse")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthHandler_Login_MissingServerConfig(t *testing.T) {
	router := setupAuthTest(t, "", "")

	w := postLogin(router, "admin@nujuumarts.com", "anything")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}
