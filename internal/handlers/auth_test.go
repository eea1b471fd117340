package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/urbanluxe/urbanluxe/internal/store/sqlstore"
)

func TestRegister(t *testing.T) {
	store, err := sqlstore.New("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}

	handler := &AuthHandler{Store: store}

	body, _ := json.Marshal(RegisterRequest{
		Username: "testuser",
		Email:    "testuser@example.com",
		Password: "password123",
	})

	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(handler.Register).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v",
			status, http.StatusCreated)
	}

	// Test duplicate user
	req = httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	rr = httptest.NewRecorder()
	http.HandlerFunc(handler.Register).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code for duplicate user: got %v want %v",
			status, http.StatusConflict)
	}
}

func TestRegisterValidation(t *testing.T) {
	store, _ := sqlstore.New("sqlite3", ":memory:")
	handler := &AuthHandler{Store: store}

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"short username", RegisterRequest{Username: "ab", Email: "a@example.com", Password: "password123"}},
		{"bad email", RegisterRequest{Username: "testuser", Email: "not-an-email", Password: "password123"}},
		{"short password", RegisterRequest{Username: "testuser", Email: "a@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.req)
			req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
			rr := httptest.NewRecorder()
			http.HandlerFunc(handler.Register).ServeHTTP(rr, req)

			if status := rr.Code; status != http.StatusBadRequest {
				t.Errorf("handler returned wrong status code: got %v want %v",
					status, http.StatusBadRequest)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	store, _ := sqlstore.New("sqlite3", ":memory:")
	handler := &AuthHandler{Store: store}

	// Register through the handler so the password is properly hashed.
	body, _ := json.Marshal(RegisterRequest{
		Username: "testuser",
		Email:    "testuser@example.com",
		Password: "password123",
	})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	http.HandlerFunc(handler.Register).ServeHTTP(httptest.NewRecorder(), req)

	body, _ = json.Marshal(Credentials{Username: "testuser", Password: "password123"})
	req = httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(handler.Login).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v",
			status, http.StatusOK)
	}

	var haveToken bool
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "token" && cookie.Value != "" {
			haveToken = true
		}
	}
	if !haveToken {
		t.Error("Expected token cookie to be set")
	}

	// Wrong password
	body, _ = json.Marshal(Credentials{Username: "testuser", Password: "wrong-password"})
	req = httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
	rr = httptest.NewRecorder()
	http.HandlerFunc(handler.Login).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusUnauthorized {
		t.Errorf("handler returned wrong status code for bad password: got %v want %v",
			status, http.StatusUnauthorized)
	}
}

func TestLogout(t *testing.T) {
	handler := &AuthHandler{}

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(handler.Logout).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v",
			status, http.StatusOK)
	}

	var cleared bool
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "token" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Expected token cookie to be cleared")
	}
}
