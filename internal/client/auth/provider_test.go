package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrijs2005/docchat/internal/logging"
)

type memCache struct {
	mu       sync.Mutex
	accounts []Account
	saves    int
	loadErr  error
}

func (m *memCache) Load(ctx context.Context) ([]Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]Account(nil), m.accounts...), nil
}

func (m *memCache) Save(ctx context.Context, accounts []Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = append([]Account(nil), accounts...)
	m.saves++
	return nil
}

func (m *memCache) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = nil
	return nil
}

func idToken(t *testing.T, name, email string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"name":  name,
		"email": email,
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

type authority struct {
	tokenStatus int
	tokenBody   map[string]any
	grants      []string
}

func (a *authority) server(t *testing.T) *httptest.Server {
	r := chi.NewRouter()
	r.Post("/devicecode", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "dev-code",
			"user_code":        "ABCD-EFGH",
			"verification_uri": "https://login.example.com/device",
			"expires_in":       60,
			"interval":         1,
		})
	})
	r.Post("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		a.grants = append(a.grants, r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		status := a.tokenStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(a.tokenBody)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newProvider(srv *httptest.Server, cache AccountCache) *Provider {
	return NewProvider(Config{
		ClientID:      "client-id",
		DeviceAuthURL: srv.URL + "/devicecode",
		TokenURL:      srv.URL + "/token",
		Scopes:        []string{"openid", "profile", "email"},
		HTTPClient:    srv.Client(),
	}, cache, logging.Nop())
}

func TestToken_NoAccount(t *testing.T) {
	srv := (&authority{}).server(t)
	p := newProvider(srv, &memCache{})

	_, err := p.Token(context.Background())
	require.ErrorIs(t, err, ErrNoAccount)
}

func TestToken_ValidTokenIsReturnedWithoutNetwork(t *testing.T) {
	a := &authority{}
	srv := a.server(t)
	cache := &memCache{accounts: []Account{{
		Token: &oauth2.Token{AccessToken: "at-1", Expiry: time.Now().Add(time.Hour)},
	}}}

	tok, err := newProvider(srv, cache).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at-1", tok)
	assert.Empty(t, a.grants)
}

func TestToken_ExpiredTokenIsRefreshedAndStored(t *testing.T) {
	a := &authority{tokenBody: map[string]any{
		"access_token": "at-2",
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     idToken(t, "Ann Lee", "ann@example.com"),
	}}
	srv := a.server(t)
	cache := &memCache{accounts: []Account{{
		Token: &oauth2.Token{AccessToken: "at-1", RefreshToken: "rt-1", Expiry: time.Now().Add(-time.Hour)},
	}}}
	p := newProvider(srv, cache)

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at-2", tok)
	assert.Equal(t, []string{"refresh_token"}, a.grants)

	require.Equal(t, 1, cache.saves)
	stored := cache.accounts[0]
	assert.Equal(t, "at-2", stored.Token.AccessToken)
	assert.Equal(t, "rt-1", stored.Token.RefreshToken, "refresh token kept when not rotated")
	assert.Equal(t, "Ann Lee", stored.Name)

	id, err := p.Identity(context.Background())
	require.NoError(t, err)
	assert.True(t, id.IsAuthenticated)
	assert.Equal(t, "ann@example.com", id.User.Email)
	assert.Equal(t, "at-2", id.AuthToken)
}

func TestToken_RefreshRejectedIsInteractionRequired(t *testing.T) {
	a := &authority{
		tokenStatus: http.StatusBadRequest,
		tokenBody:   map[string]any{"error": "invalid_grant"},
	}
	srv := a.server(t)
	cache := &memCache{accounts: []Account{{
		Token: &oauth2.Token{AccessToken: "old", RefreshToken: "rt", Expiry: time.Now().Add(-time.Hour)},
	}}}

	_, err := newProvider(srv, cache).Token(context.Background())
	require.ErrorIs(t, err, ErrInteractionRequired)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestToken_ExpiredWithoutRefreshTokenIsInteractionRequired(t *testing.T) {
	srv := (&authority{}).server(t)
	cache := &memCache{accounts: []Account{{
		Token: &oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Hour)},
	}}}

	_, err := newProvider(srv, cache).Token(context.Background())
	require.ErrorIs(t, err, ErrInteractionRequired)
}

func TestToken_TransportFailureIsAcquireError(t *testing.T) {
	srv := (&authority{}).server(t)
	p := newProvider(srv, &memCache{accounts: []Account{{
		Token: &oauth2.Token{AccessToken: "old", RefreshToken: "rt", Expiry: time.Now().Add(-time.Hour)},
	}}})
	srv.Close()

	_, err := p.Token(context.Background())
	var ae *AcquireError
	require.ErrorAs(t, err, &ae)
	assert.False(t, errors.Is(err, ErrInteractionRequired))
}

func TestToken_CacheFailureIsAcquireError(t *testing.T) {
	srv := (&authority{}).server(t)
	p := newProvider(srv, &memCache{loadErr: errors.New("disk gone")})

	_, err := p.Token(context.Background())
	var ae *AcquireError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestLogin_DeviceFlowStoresAccount(t *testing.T) {
	a := &authority{tokenBody: map[string]any{
		"access_token":  "at-login",
		"token_type":    "Bearer",
		"refresh_token": "rt-login",
		"expires_in":    3600,
		"id_token":      idToken(t, "Bob", "bob@example.com"),
	}}
	srv := a.server(t)
	cache := &memCache{}
	p := newProvider(srv, cache)

	var shown DeviceCode
	id, err := p.Login(context.Background(), func(dc DeviceCode) { shown = dc })
	require.NoError(t, err)

	assert.Equal(t, "ABCD-EFGH", shown.UserCode)
	assert.Equal(t, "https://login.example.com/device", shown.VerificationURI)
	assert.Equal(t, "Bob", id.User.Name)
	assert.Equal(t, "at-login", id.AuthToken)
	assert.NotEmpty(t, id.IDToken)

	ok, err := p.HasAccount(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, p.SignOut(context.Background()))
	_, err = p.Token(context.Background())
	require.ErrorIs(t, err, ErrNoAccount)
}

func TestDisplayClaims(t *testing.T) {
	name, email := displayClaims(idToken(t, "Zoe", "zoe@example.com"))
	assert.Equal(t, "Zoe", name)
	assert.Equal(t, "zoe@example.com", email)

	name, email = displayClaims("not-a-jwt")
	assert.Empty(t, name)
	assert.Empty(t, email)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"preferred_username": "upn@example.com",
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, email = displayClaims(tok)
	assert.Equal(t, "upn@example.com", email)
}
