package server_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/calderas/storefront/server"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	require.NoError(t, server.CreateTables(context.Background(), db))

	srv := server.New(db, server.Config{
		SigningKey:      "test-signing-key",
		TokenExpiration: 1,
		Issuer:          "storefront-test",
		Audience:        []string{"storefront:app"},
	})
	t.Cleanup(func() { srv.Shutdown() })
	return srv
}

func postJSON(t *testing.T, srv *server.Server, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)

	decoded := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	resp.Body.Close()
	return resp, decoded
}

func signup(t *testing.T, srv *server.Server, email, password string) map[string]any {
	t.Helper()
	resp, body := postJSON(t, srv, "/signup", "", map[string]string{
		"email":    email,
		"password": password,
		"name":     "Pepe Rone",
		"phone":    "555-123-4567",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "signup: %v", body)
	return body
}

func TestSignupLoginValidateFlow(t *testing.T) {
	srv := newTestServer(t)

	created := signup(t, srv, "pepe.rone@example.com", "hunter2222")
	require.NotEmpty(t, created["id"])
	require.NotEmpty(t, created["token"])

	resp, body := postJSON(t, srv, "/login", "", map[string]string{
		"email":    "pepe.rone@example.com",
		"password": "hunter2222",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login: %v", body)
	assert.Equal(t, created["id"], body["id"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	resp, body = postJSON(t, srv, "/validate", "", map[string]string{"token": token})
	require.Equal(t, http.StatusOK, resp.StatusCode, "validate: %v", body)
	assert.Equal(t, "pepe.rone@example.com", body["email"])
	assert.Equal(t, "Pepe Rone", body["name"])
	assert.Equal(t, "+15551234567", body["phone"], "phone normalized to E.164 at signup")
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "pepe.rone@example.com", "hunter2222")

	resp, _ := postJSON(t, srv, "/login", "", map[string]string{
		"email":    "pepe.rone@example.com",
		"password": "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginUnknownAccount(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv, "/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever12",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "pepe.rone@example.com", "hunter2222")

	resp, _ := postJSON(t, srv, "/signup", "", map[string]string{
		"email":    "pepe.rone@example.com",
		"password": "hunter2222",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPayloadValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := map[string]map[string]string{
		"login missing password": {"email": "pepe.rone@example.com"},
		"login bad email":        {"email": "not-an-email", "password": "hunter2222"},
		"signup short password":  {"email": "pepe.rone@example.com", "password": "short"},
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			path := "/login"
			if name == "signup short password" {
				path = "/signup"
			}
			resp, _ := postJSON(t, srv, path, "", payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestValidateRejectsBadToken(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv, "/validate", "", map[string]string{"token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestResetPasswordNeverRevealsAccounts(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "pepe.rone@example.com", "hunter2222")

	for _, email := range []string{"pepe.rone@example.com", "nobody@example.com"} {
		resp, body := postJSON(t, srv, "/reset-password", "", map[string]string{"email": email})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["ok"], "identical response for %s", email)
	}
}

func TestUserDataUpdatesProfile(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "pepe.rone@example.com", "hunter2222")

	_, login := postJSON(t, srv, "/login", "", map[string]string{
		"email":    "pepe.rone@example.com",
		"password": "hunter2222",
	})
	token, _ := login["token"].(string)
	require.NotEmpty(t, token)

	resp, body := postJSON(t, srv, "/user-data", token, map[string]string{
		"name":  "Pepe R.",
		"phone": "(555) 987-6543",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "user-data: %v", body)
	assert.Equal(t, true, body["saved"])

	_, profile := postJSON(t, srv, "/validate", "", map[string]string{"token": token})
	assert.Equal(t, "Pepe R.", profile["name"])
	assert.Equal(t, "+15559876543", profile["phone"])
}

func TestUserDataRequiresBearer(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv, "/user-data", "", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRateLimited(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "pepe.rone@example.com", "hunter2222")

	// Burst past the per-email budget; the limiter answers before the
	// password check, so wrong passwords are fine here.
	limited := false
	for i := 0; i < 30; i++ {
		resp, _ := postJSON(t, srv, "/login", "", map[string]string{
			"email":    "pepe.rone@example.com",
			"password": "not-the-password",
		})
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "expected a 429 after exhausting the burst")
}
