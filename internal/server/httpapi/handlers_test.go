package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/logging"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/actors"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/hashing"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/models"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/pipeline"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/store"
)

var apiTestSecret = []byte("httpapi-test-secret")

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newTestServer wires the full stack over an in-memory store, optionally
// with auth enabled, and returns the HTTP test server plus the store.
func newTestServer(t *testing.T, withAuth bool) (*httptest.Server, *store.MemoryStore) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ms := store.NewMemoryStore()
	hasher := hashing.NewBcryptHasher(bcrypt.MinCost)
	logger := testLogger()

	accessor := actors.NewDataAccessor(ms, hasher, time.Second, logger)
	accessor.Start(ctx)

	responder := actors.NewResponseResolver(time.Second, logger)
	responder.Start(ctx)

	var resolver *actors.AuthResolver
	if withAuth {
		resolver = actors.NewAuthResolver(accessor, hasher, apiTestSecret, 24*time.Hour, time.Second, logger)
		resolver.Start(ctx)
	}

	p := pipeline.New(accessor, resolver, responder, logger)
	srv := httptest.NewServer(NewServer(":0", p, logger).Handler())
	t.Cleanup(srv.Close)

	return srv, ms
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAPI_InsertThenGet(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp := doJSON(t, http.MethodPost, srv.URL+"/user/add",
		models.User{UserName: "alice", Password: "pw1"}, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/user/alice", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"userName":"alice"}`, readBody(t, resp))
}

func TestAPI_GetMissing_404(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp := doJSON(t, http.MethodGet, srv.URL+"/user/nobody", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Resource not found"}`, readBody(t, resp))
}

func TestAPI_GetAll(t *testing.T) {
	srv, _ := newTestServer(t, false)

	for _, name := range []string{"bob", "alice"} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/user/add",
			models.User{UserName: name, Password: "pw"}, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/user", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"userName":"alice"},{"userName":"bob"}]`, readBody(t, resp))
}

func TestAPI_InsertDuplicate_400(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp := doJSON(t, http.MethodPost, srv.URL+"/user/add",
		models.User{UserName: "alice", Password: "pw1"}, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/user/add",
		models.User{UserName: "alice", Password: "pw2"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"User Already Exists. Double check your request"}`, readBody(t, resp))
}

func TestAPI_UpdateDelete(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp := doJSON(t, http.MethodPut, srv.URL+"/user/update",
		models.User{UserName: "ghost", Password: "pw"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/user/add",
		models.User{UserName: "alice", Password: "pw1"}, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, srv.URL+"/user/update",
		models.User{UserName: "alice", Password: "pw2"}, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/user/delete",
		models.User{UserName: "alice"}, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/user/alice", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_MalformedBody_400(t *testing.T) {
	srv, _ := newTestServer(t, false)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/user/add", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_LoginFlow(t *testing.T) {
	srv, ms := newTestServer(t, true)
	ctx := context.Background()

	hasher := hashing.NewBcryptHasher(bcrypt.MinCost)
	digest, err := hasher.Hash("pw1")
	require.NoError(t, err)
	require.NoError(t, ms.Insert(ctx, &models.StoredUser{UserName: "alice", CredentialDigest: digest}))

	// Wrong password.
	resp := doJSON(t, http.MethodPost, srv.URL+"/auth",
		models.User{UserName: "alice", Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Correct password yields a token.
	resp = doJSON(t, http.MethodPost, srv.URL+"/auth",
		models.User{UserName: "alice", Password: "pw1"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))
	require.NotEmpty(t, body.Token)

	// The token opens protected routes.
	resp = doJSON(t, http.MethodGet, srv.URL+"/user/alice", nil,
		map[string]string{"Authorization": "Bearer " + body.Token})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"userName":"alice"}`, readBody(t, resp))

	// Without it the same route is rejected.
	resp = doJSON(t, http.MethodGet, srv.URL+"/user/alice", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, readBody(t, resp))
}
