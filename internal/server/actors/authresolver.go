package actors

import (
	"context"
	"time"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/logging"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/auth"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/hashing"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/messages"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/models"
)

type authRequest interface {
	isAuthRequest()
}

type loginRequest struct {
	user  models.User
	reply chan<- messages.AuthOutcome
}

type validateRequest struct {
	token string
	reply chan<- bool
}

func (loginRequest) isAuthRequest()    {}
func (validateRequest) isAuthRequest() {}

// AuthResolver issues tokens on login and validates presented tokens. It
// holds no state between calls beyond the injected dependencies and the
// signing key, which is loaded once at startup and read-only thereafter.
type AuthResolver struct {
	inbox    chan authRequest
	accessor *DataAccessor
	hasher   hashing.Hasher
	secret   []byte
	tokenTTL time.Duration
	timeout  time.Duration
	logger   logging.Logger
}

func NewAuthResolver(accessor *DataAccessor, h hashing.Hasher, secret []byte, tokenTTL, timeout time.Duration, logger logging.Logger) *AuthResolver {
	return &AuthResolver{
		inbox:    make(chan authRequest, defaultMailboxSize),
		accessor: accessor,
		hasher:   h,
		secret:   secret,
		tokenTTL: tokenTTL,
		timeout:  timeout,
		logger:   logger.With("module", "auth_resolver"),
	}
}

func (r *AuthResolver) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case req := <-r.inbox:
				r.handle(ctx, req)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Login checks the supplied credentials against the store and, when they
// match, mints a signed token. An empty AuthOutcome means the login failed;
// the caller cannot tell a bad password from an unknown user.
func (r *AuthResolver) Login(ctx context.Context, user models.User) (messages.AuthOutcome, error) {
	return ask(ctx, r.timeout, r.inbox, func(reply chan<- messages.AuthOutcome) authRequest {
		return loginRequest{user: user, reply: reply}
	})
}

// Validate reports whether the token decodes with a valid signature and
// unexpired claims. Every decode failure collapses to false.
func (r *AuthResolver) Validate(ctx context.Context, token string) (bool, error) {
	return ask(ctx, r.timeout, r.inbox, func(reply chan<- bool) authRequest {
		return validateRequest{token: token, reply: reply}
	})
}

func (r *AuthResolver) handle(ctx context.Context, req authRequest) {
	switch v := req.(type) {
	case loginRequest:
		v.reply <- r.login(ctx, v.user)
	case validateRequest:
		v.reply <- r.validate(ctx, v.token)
	}
}

func (r *AuthResolver) login(ctx context.Context, user models.User) messages.AuthOutcome {
	outcome, err := r.accessor.Dispatch(ctx, messages.GetOne{UserName: user.UserName})
	if err != nil {
		r.logger.Warn(ctx, "login lookup failed", "user", user.UserName, "error", err)
		return messages.AuthOutcome{}
	}

	found, ok := outcome.(messages.GetOneOutcome)
	if !ok || found.Entity == nil {
		return messages.AuthOutcome{}
	}

	if !r.hasher.Verify(user.Password, found.Entity.CredentialDigest) {
		return messages.AuthOutcome{}
	}

	token, err := auth.GenerateToken(user.UserName, r.secret, r.tokenTTL)
	if err != nil {
		r.logger.Error(ctx, "token mint failed", "user", user.UserName, "error", err)
		return messages.AuthOutcome{}
	}

	return messages.AuthOutcome{Token: token}
}

func (r *AuthResolver) validate(ctx context.Context, token string) bool {
	if _, decErr := auth.Decode(token, r.secret); decErr != nil {
		// No partial validity: every decode failure looks the same to the
		// caller. The kind is only logged.
		r.logger.Debug(ctx, "token rejected", "reason", decErr.Kind.String())
		return false
	}
	return true
}
