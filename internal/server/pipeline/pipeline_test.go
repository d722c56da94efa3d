package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/logging"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/actors"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/auth"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/hashing"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/messages"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/models"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/store"
)

var pipelineTestSecret = []byte("pipeline-test-secret")

// countingStore wraps a UserStore and counts calls, so tests can assert the
// accessor was never reached.
type countingStore struct {
	store.UserStore
	calls atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, userName string) (*models.StoredUser, error) {
	c.calls.Add(1)
	return c.UserStore.Get(ctx, userName)
}

func (c *countingStore) GetAll(ctx context.Context) ([]models.StoredUser, error) {
	c.calls.Add(1)
	return c.UserStore.GetAll(ctx)
}

func (c *countingStore) Insert(ctx context.Context, user *models.StoredUser) error {
	c.calls.Add(1)
	return c.UserStore.Insert(ctx, user)
}

func (c *countingStore) Update(ctx context.Context, user *models.StoredUser) error {
	c.calls.Add(1)
	return c.UserStore.Update(ctx, user)
}

func (c *countingStore) Delete(ctx context.Context, userName string) error {
	c.calls.Add(1)
	return c.UserStore.Delete(ctx, userName)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestPipeline(t *testing.T, withAuth bool) (*Pipeline, *actors.AuthResolver, *countingStore) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cs := &countingStore{UserStore: store.NewMemoryStore()}
	hasher := hashing.NewBcryptHasher(bcrypt.MinCost)
	logger := testLogger()

	accessor := actors.NewDataAccessor(cs, hasher, time.Second, logger)
	accessor.Start(ctx)

	responder := actors.NewResponseResolver(time.Second, logger)
	responder.Start(ctx)

	var resolver *actors.AuthResolver
	if withAuth {
		resolver = actors.NewAuthResolver(accessor, hasher, pipelineTestSecret, 24*time.Hour, time.Second, logger)
		resolver.Start(ctx)
	}

	return New(accessor, resolver, responder, logger), resolver, cs
}

func login(t *testing.T, p *Pipeline, name, password string) string {
	t.Helper()

	resp := p.Login(context.Background(), models.User{UserName: name, Password: password})
	require.Equal(t, http.StatusOK, resp.Status)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "well formed", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "empty header", header: "", want: ""},
		{name: "lowercase scheme", header: "bearer abc", want: ""},
		{name: "wrong scheme", header: "Basic abc", want: ""},
		{name: "missing token", header: "Bearer", want: ""},
		{name: "extra parts", header: "Bearer abc def", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractBearer(tc.header))
		})
	}
}

func TestPipeline_InsertThenGet(t *testing.T) {
	p, _, _ := newTestPipeline(t, false)
	ctx := context.Background()

	resp := p.Handle(ctx, "", messages.Insert{User: models.User{UserName: "alice", Password: "pw1"}})
	assert.Equal(t, http.StatusNoContent, resp.Status)

	resp = p.Handle(ctx, "", messages.GetOne{UserName: "alice"})
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"userName":"alice"}`, string(resp.Body))
}

func TestPipeline_GetMissing_NotFound(t *testing.T) {
	p, _, _ := newTestPipeline(t, false)

	resp := p.Handle(context.Background(), "", messages.GetOne{UserName: "nobody"})
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.JSONEq(t, `{"error":"Resource not found"}`, string(resp.Body))
}

func TestPipeline_Login_UnknownUser(t *testing.T) {
	p, _, _ := newTestPipeline(t, true)

	resp := p.Login(context.Background(), models.User{UserName: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

func TestPipeline_AuthorizedFlow(t *testing.T) {
	p, _, cs := newTestPipeline(t, true)
	ctx := context.Background()

	// Seed a user directly into the store, as the admin tool would.
	hasher := hashing.NewBcryptHasher(bcrypt.MinCost)
	digest, err := hasher.Hash("pw1")
	require.NoError(t, err)
	require.NoError(t, cs.UserStore.Insert(ctx, &models.StoredUser{
		UserName:         "alice",
		CredentialDigest: digest,
	}))

	// Login with wrong credentials fails.
	resp := p.Login(ctx, models.User{UserName: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.JSONEq(t, `{"error":"Username/Password is incorrect"}`, string(resp.Body))

	// Login with correct credentials yields a token.
	token := login(t, p, "alice", "pw1")

	// The token authorizes a protected operation.
	resp = p.Handle(ctx, "Bearer "+token, messages.GetOne{UserName: "alice"})
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"userName":"alice"}`, string(resp.Body))
}

func TestPipeline_NoToken_Unauthorized(t *testing.T) {
	p, _, cs := newTestPipeline(t, true)

	before := cs.calls.Load()
	resp := p.Handle(context.Background(), "", messages.GetAll{})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(resp.Body))
	assert.Equal(t, before, cs.calls.Load(), "accessor must not be reached")
}

func TestPipeline_ExpiredToken_ShortCircuits(t *testing.T) {
	p, _, cs := newTestPipeline(t, true)

	expired, err := auth.GenerateToken("alice", pipelineTestSecret, -1*time.Second)
	require.NoError(t, err)

	before := cs.calls.Load()
	resp := p.Handle(context.Background(), "Bearer "+expired,
		messages.Insert{User: models.User{UserName: "mallory", Password: "pw"}})

	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, before, cs.calls.Load(), "no store side effect on rejected auth")

	users, err := cs.UserStore.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestPipeline_Passthrough_AuthorizesEverything(t *testing.T) {
	p, _, _ := newTestPipeline(t, false)

	resp := p.Handle(context.Background(), "", messages.GetAll{})
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `[]`, string(resp.Body))
}

func TestPipeline_Passthrough_LoginAlwaysFails(t *testing.T) {
	p, _, _ := newTestPipeline(t, false)

	resp := p.Login(context.Background(), models.User{UserName: "alice", Password: "pw"})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}
