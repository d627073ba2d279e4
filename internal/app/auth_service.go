package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"interview-prep-service/internal/domain"
	"interview-prep-service/internal/logger"
)

// TokenSigner mints an API session token for an authenticated user.
type TokenSigner func(user domain.User) (string, error)

// AuthService holds the identity session. The user is derived from an OAuth
// access token via the userinfo endpoint; every assignment is mirrored to the
// document store and every clearing removes the stored key.
type AuthService struct {
	store       DocumentStore
	httpClient  *http.Client
	userinfoURL string
	signToken   TokenSigner
	log         *logger.Logger

	mu   sync.RWMutex
	user *domain.User
}

func NewAuthService(store DocumentStore, userinfoURL string, signToken TokenSigner, log *logger.Logger) *AuthService {
	return &AuthService{
		store:       store,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		userinfoURL: userinfoURL,
		signToken:   signToken,
		log:         log.With("component", "auth"),
	}
}

// Load hydrates the session from the stored user record. A malformed record
// is logged, cleared from storage, and treated as logged out.
func (s *AuthService) Load(ctx context.Context) error {
	raw, err := s.store.Load(ctx, UserDocumentKey)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		s.log.Warn("stored user record malformed, clearing", "error", err.Error())
		_ = s.store.Delete(ctx, UserDocumentKey)
		return nil
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

type userinfoResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// LoginWithToken exchanges an OAuth access token for a profile, sets it as
// the current user, persists it, and returns an API session token. Any
// failure leaves the session unauthenticated with no partial state.
func (s *AuthService) LoginWithToken(ctx context.Context, accessToken string) (domain.User, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userinfoURL, nil)
	if err != nil {
		return domain.User{}, "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("userinfo fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.User{}, "", fmt.Errorf("userinfo fetch: status %d", resp.StatusCode)
	}

	var info userinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return domain.User{}, "", fmt.Errorf("userinfo decode: %w", err)
	}

	name := info.Name
	if name == "" {
		name = "User"
	}
	avatar := info.Picture
	if avatar == "" {
		s.log.Warn("no profile picture in userinfo response", "email", info.Email)
		avatar = fallbackAvatarURL(name)
	}
	user := domain.User{Name: name, Email: info.Email, Avatar: avatar}

	data, err := json.Marshal(user)
	if err != nil {
		return domain.User{}, "", err
	}
	if err := s.store.Save(ctx, UserDocumentKey, data); err != nil {
		return domain.User{}, "", fmt.Errorf("persist user: %w", err)
	}

	token, err := s.signToken(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("sign token: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return user, token, nil
}

// CurrentUser returns the session user, if any.
func (s *AuthService) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated is derived, never stored.
func (s *AuthService) IsAuthenticated() bool {
	_, ok := s.CurrentUser()
	return ok
}

// Logout clears both the in-memory user and the persisted record.
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	if err := s.store.Delete(ctx, UserDocumentKey); err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
		return fmt.Errorf("clear user record: %w", err)
	}
	return nil
}

func fallbackAvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=CB844E&color=fff&size=128"
}
