package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"interview-prep-service/internal/domain"
	"interview-prep-service/internal/logger"
)

func staticSigner(user domain.User) (string, error) {
	return "token-for-" + user.Email, nil
}

func userinfoServer(t *testing.T, status int, body map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-token" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestLoginStoresUserAndSignsToken(t *testing.T) {
	srv := userinfoServer(t, http.StatusOK, map[string]string{
		"name":    "Ada Lovelace",
		"email":   "ada@example.com",
		"picture": "https://example.com/ada.png",
	})
	defer srv.Close()

	store := newFakeStore()
	svc := NewAuthService(store, srv.URL, staticSigner, logger.NewNop())

	user, token, err := svc.LoginWithToken(context.Background(), "access-token")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Name != "Ada Lovelace" || user.Avatar != "https://example.com/ada.png" {
		t.Fatalf("unexpected user %+v", user)
	}
	if token != "token-for-ada@example.com" {
		t.Fatalf("unexpected token %q", token)
	}
	if !svc.IsAuthenticated() {
		t.Fatalf("expected authenticated session")
	}

	var persisted domain.User
	if err := json.Unmarshal(store.docs[UserDocumentKey], &persisted); err != nil {
		t.Fatalf("persisted user malformed: %v", err)
	}
	if persisted.Email != "ada@example.com" {
		t.Fatalf("persisted wrong user %+v", persisted)
	}
}

func TestLoginFallsBackToGeneratedAvatar(t *testing.T) {
	srv := userinfoServer(t, http.StatusOK, map[string]string{
		"name":  "Grace Hopper",
		"email": "grace@example.com",
	})
	defer srv.Close()

	svc := NewAuthService(newFakeStore(), srv.URL, staticSigner, logger.NewNop())
	user, _, err := svc.LoginWithToken(context.Background(), "access-token")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.HasPrefix(user.Avatar, "https://ui-avatars.com/api/?name=Grace+Hopper") {
		t.Fatalf("expected generated avatar, got %q", user.Avatar)
	}
}

func TestLoginRejectedByUserinfo(t *testing.T) {
	srv := userinfoServer(t, http.StatusUnauthorized, map[string]string{})
	defer srv.Close()

	svc := NewAuthService(newFakeStore(), srv.URL, staticSigner, logger.NewNop())
	if _, _, err := svc.LoginWithToken(context.Background(), "access-token"); err == nil {
		t.Fatalf("expected login failure")
	}
	if svc.IsAuthenticated() {
		t.Fatalf("failed login must leave session unauthenticated")
	}
}

func TestLogoutClearsMemoryAndStore(t *testing.T) {
	srv := userinfoServer(t, http.StatusOK, map[string]string{
		"name":    "Ada Lovelace",
		"email":   "ada@example.com",
		"picture": "https://example.com/ada.png",
	})
	defer srv.Close()

	store := newFakeStore()
	svc := NewAuthService(store, srv.URL, staticSigner, logger.NewNop())
	if _, _, err := svc.LoginWithToken(context.Background(), "access-token"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if svc.IsAuthenticated() {
		t.Fatalf("expected logged out session")
	}
	if _, ok := store.docs[UserDocumentKey]; ok {
		t.Fatalf("expected stored user record removed")
	}
}

func TestLoadClearsMalformedRecord(t *testing.T) {
	store := newFakeStore()
	store.docs[UserDocumentKey] = []byte("{broken")
	svc := NewAuthService(store, "http://unused", staticSigner, logger.NewNop())

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if svc.IsAuthenticated() {
		t.Fatalf("malformed record must not authenticate")
	}
	if _, ok := store.docs[UserDocumentKey]; ok {
		t.Fatalf("expected malformed record cleared from store")
	}
}

func TestLoadRestoresStoredUser(t *testing.T) {
	store := newFakeStore()
	data, _ := json.Marshal(domain.User{Name: "Ada", Email: "ada@example.com", Avatar: "a"})
	store.docs[UserDocumentKey] = data

	svc := NewAuthService(store, "http://unused", staticSigner, logger.NewNop())
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	user, ok := svc.CurrentUser()
	if !ok || user.Email != "ada@example.com" {
		t.Fatalf("expected restored user, got %+v ok=%v", user, ok)
	}
}
