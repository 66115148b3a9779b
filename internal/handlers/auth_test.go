package handlers_test

import (
	"net/http"
	"testing"
)

func TestRegisterLoginMe(t *testing.T) {
	r := setupServer(t)

	w := doRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Alice",
		"email":    "Alice@Example.com",
		"password": "password123",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}

	var registered struct {
		Token string `json:"token"`
		User  struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeBody(t, w, &registered)

	if registered.Token == "" {
		t.Fatal("register response has no token")
	}

	// Email is normalized to lowercase.
	if registered.User.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized lowercase", registered.User.Email)
	}

	// Same email again, different casing: still a duplicate.
	w = doRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"password": "password123",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register status = %d, want 400", w.Code)
	}

	w = doRequest(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}

	var loggedIn struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &loggedIn)

	w = doRequest(t, r, http.MethodGet, "/api/auth/me", loggedIn.Token, nil)

	if w.Code != http.StatusOK {
		t.Errorf("me status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := setupServer(t)
	createTestUser(t, "bob@example.com")

	tests := []struct {
		name  string
		email string
	}{
		{name: "wrong password", email: "bob@example.com"},
		{name: "unknown user", email: "nobody@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
				"email":    tt.email,
				"password": "wrongpassword",
			})

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestMeRequiresToken(t *testing.T) {
	r := setupServer(t)

	w := doRequest(t, r, http.MethodGet, "/api/auth/me", "", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
