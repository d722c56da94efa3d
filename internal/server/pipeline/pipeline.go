// Package pipeline composes one request's journey through the actors:
// extract token, validate it, dispatch the operation, resolve the response.
// Each step is a bounded ask; a failure or timeout at any step short-circuits
// to an error response.
package pipeline

import (
	"context"
	"net/http"
	"strings"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/logging"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/actors"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/messages"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/models"
)

// Pipeline wires the three actors together. Dependencies are injected once
// at startup; there is no global registry of live components.
type Pipeline struct {
	accessor  *actors.DataAccessor
	auth      *actors.AuthResolver
	responder *actors.ResponseResolver
	logger    logging.Logger
}

// New builds a pipeline. A nil auth resolver puts the pipeline in
// passthrough mode: every request is treated as authorized. That is the
// unauthenticated variant of the service, not a fallback.
func New(accessor *actors.DataAccessor, auth *actors.AuthResolver, responder *actors.ResponseResolver, logger logging.Logger) *Pipeline {
	return &Pipeline{
		accessor:  accessor,
		auth:      auth,
		responder: responder,
		logger:    logger.With("module", "pipeline"),
	}
}

// ExtractBearer pulls the token out of an Authorization header value. Only
// the exact form "Bearer <token>" yields a token; any other shape means no
// credential was supplied, which is not an error by itself.
func ExtractBearer(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Handle runs a protected operation. Validation fully completes before the
// dispatch begins; the two steps are chained asks, each suspending on its
// reply channel rather than spinning.
func (p *Pipeline) Handle(ctx context.Context, authorization string, op messages.Operation) messages.Response {
	token := ExtractBearer(authorization)

	if p.auth != nil {
		valid, err := p.auth.Validate(ctx, token)
		if err != nil {
			p.logger.Error(ctx, "token validation ask failed", "error", err)
			return internalError()
		}
		if !valid {
			return p.resolve(ctx, messages.Unauthorized{})
		}
	}

	outcome, err := p.accessor.Dispatch(ctx, op)
	if err != nil {
		p.logger.Error(ctx, "operation dispatch failed", "error", err)
		return internalError()
	}

	return p.resolve(ctx, outcome)
}

// Login runs the parallel unauthenticated path: you cannot require a token
// to obtain a token.
func (p *Pipeline) Login(ctx context.Context, user models.User) messages.Response {
	if p.auth == nil {
		return p.resolve(ctx, messages.AuthOutcome{})
	}

	outcome, err := p.auth.Login(ctx, user)
	if err != nil {
		p.logger.Error(ctx, "login ask failed", "error", err)
		return internalError()
	}

	return p.resolve(ctx, outcome)
}

func (p *Pipeline) resolve(ctx context.Context, result any) messages.Response {
	resp, err := p.responder.Resolve(ctx, result)
	if err != nil {
		p.logger.Error(ctx, "response resolution failed", "error", err)
		return internalError()
	}
	return resp
}

// A timeout or unexpected fault is retryless: the caller gets a bare 500
// and must re-issue the request if it chooses.
func internalError() messages.Response {
	return messages.Response{Status: http.StatusInternalServerError}
}
