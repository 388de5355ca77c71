package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mawlid1431/Arts/models"
)

// APIAuthenticator submits credentials to the admin auth endpoint. The server
// compares them against its own configuration; nothing secret lives here.
type APIAuthenticator struct {
	BaseURL string
	Client  *http.Client
}

func NewAPIAuthenticator(baseURL string) *APIAuthenticator {
	return &APIAuthenticator{BaseURL: baseURL, Client: http.DefaultClient}
}

func (a *APIAuthenticator) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	body, err := json.Marshal(models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return models.User{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/api/admin/auth", bytes.NewReader(body))
	if err != nil {
		return models.User{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return models.User{}, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Success bool        `json:"success"`
		Error   string      `json:"error"`
		User    models.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.User{}, fmt.Errorf("decode auth response: %w", err)
	}

	if !parsed.Success {
		msg := parsed.Error
		if msg == "" {
			msg = "Invalid credentials"
		}
		return models.User{}, &AuthError{Message: msg}
	}
	return parsed.User, nil
}
