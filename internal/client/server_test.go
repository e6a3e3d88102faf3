package client

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/cryptonaut/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

/*************
 * Fake DRACOON server
 *************/

type fakeDracoon struct {
	srv *httptest.Server

	mu sync.Mutex

	clientID     string
	clientSecret string
	refreshToken string
	tokenTTL     time.Duration

	// observed
	tokenCalls     int
	unauthorized   int
	accessToken    string
	userAgents     []string
	searchQueries  []url.Values
	missingQueries []url.Values
	keyPairCalls   int
	uploads        []models.UserFileKeySetBatchRequest

	// scripted
	rejectNext int
	failStatus map[string]int
	nodes      []models.Node
	keyPair    models.UserKeyPairContainer
	pages      []models.MissingKeys
}

func newFakeDracoon(t *testing.T) *fakeDracoon {
	t.Helper()

	f := &fakeDracoon{
		clientID:     "cryptonaut",
		clientSecret: "s3cr3t",
		refreshToken: "refresh-0",
		tokenTTL:     time.Hour,
		failStatus:   map[string]int{},
	}

	r := chi.NewRouter()
	r.Post("/oauth/token", f.handleToken)
	r.Group(func(api chi.Router) {
		api.Use(f.authenticate)
		api.Get("/api/v4/nodes/search", f.handleSearch)
		api.Get("/api/v4/settings/keypair", f.handleKeyPair)
		api.Get("/api/v4/nodes/missingFileKeys", f.handleMissing)
		api.Post("/api/v4/nodes/files/keys", f.handleUpload)
	})

	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeDracoon) connect(t *testing.T) *HTTPClient {
	t.Helper()
	c, err := Connect(context.Background(), Options{
		BaseURL:      f.srv.URL,
		ClientID:     f.clientID,
		ClientSecret: f.clientSecret,
		RefreshToken: "refresh-0",
		UserAgent:    "cryptonaut|test",
		Timeout:      5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeDracoon) handleToken(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.userAgents = append(f.userAgents, r.UserAgent())

	id, secret, ok := r.BasicAuth()
	if !ok || id != f.clientID || secret != f.clientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client", "error_description": "bad client credentials"})
		return
	}
	if r.PostFormValue("grant_type") != "refresh_token" || r.PostFormValue("refresh_token") != f.refreshToken {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}

	f.tokenCalls++
	claims := jwt.RegisteredClaims{
		ID:        fmt.Sprintf("access-%d", f.tokenCalls),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(f.tokenTTL)),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"code": 500, "message": err.Error()})
		return
	}

	f.accessToken = access
	f.refreshToken = fmt.Sprintf("refresh-%d", f.tokenCalls)

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: f.refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(f.tokenTTL / time.Second),
	})
}

func (f *fakeDracoon) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.userAgents = append(f.userAgents, r.UserAgent())
		reject := f.rejectNext > 0 || r.Header.Get("Authorization") != "Bearer "+f.accessToken
		if reject {
			if f.rejectNext > 0 {
				f.rejectNext--
			}
			f.unauthorized++
		}
		status := f.failStatus[r.URL.Path]
		f.mu.Unlock()

		if reject {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Unauthorized"})
			return
		}
		if status != 0 {
			writeJSON(w, status, map[string]any{"code": status, "message": "scripted failure", "debugInfo": "fake", "errorCode": -1})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeDracoon) handleSearch(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.searchQueries = append(f.searchQueries, r.URL.Query())
	writeJSON(w, http.StatusOK, models.NodeList{
		Range: models.Range{Total: uint64(len(f.nodes))},
		Items: f.nodes,
	})
}

func (f *fakeDracoon) handleKeyPair(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.keyPairCalls++
	writeJSON(w, http.StatusOK, f.keyPair)
}

func (f *fakeDracoon) handleMissing(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.missingQueries = append(f.missingQueries, r.URL.Query())

	page := models.MissingKeys{}
	if len(f.pages) > 0 {
		page = f.pages[0]
		f.pages = f.pages[1:]
	}
	writeJSON(w, http.StatusOK, page)
}

func (f *fakeDracoon) handleUpload(w http.ResponseWriter, r *http.Request) {
	var batch models.UserFileKeySetBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": 400, "message": err.Error()})
		return
	}

	f.mu.Lock()
	f.uploads = append(f.uploads, batch)
	f.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

/*************
 * Keys
 *************/

var (
	keysOnce  sync.Once
	rescueKey *rsa.PrivateKey
	userKey   *rsa.PrivateKey
	keysErr   error
)

// testKeys generates the rescue and user key pairs once per test binary.
func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keysOnce.Do(func() {
		if rescueKey, keysErr = rsa.GenerateKey(rand.Reader, 2048); keysErr != nil {
			return
		}
		userKey, keysErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	require.NoError(t, keysErr)
	return rescueKey, userKey
}

// locked runs fn while holding the server mutex, for scripting and inspecting
// state shared with handler goroutines.
func (f *fakeDracoon) locked(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}
