package actors

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/logging"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/messages"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/models"
)

const contentTypeJSON = "application/json"

// Canned error bodies. The wording is part of the external contract.
const (
	msgResourceNotFound  = "Resource not found"
	msgUserAlreadyExists = "User Already Exists. Double check your request"
	msgBadRequest        = "Bad Request made. Double check your request"
	msgUserDoesNotExist  = "User does not Exist. Double check your request"
	msgBadCredentials    = "Username/Password is incorrect"
	msgUnauthorized      = "Unauthorized"
)

type errorBody struct {
	Error string `json:"error"`
}

type tokenBody struct {
	Token string `json:"token"`
}

type resolveRequest struct {
	result any
	reply  chan<- messages.Response
}

// ResponseResolver maps domain results to transport responses. The mapping
// is pure: aside from serialization it cannot fail, and it touches nothing
// but its input.
type ResponseResolver struct {
	inbox   chan resolveRequest
	timeout time.Duration
	logger  logging.Logger
}

func NewResponseResolver(timeout time.Duration, logger logging.Logger) *ResponseResolver {
	return &ResponseResolver{
		inbox:   make(chan resolveRequest, defaultMailboxSize),
		timeout: timeout,
		logger:  logger.With("module", "response_resolver"),
	}
}

func (r *ResponseResolver) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case req := <-r.inbox:
				req.reply <- r.resolve(ctx, req.result)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Resolve turns an Outcome, AuthOutcome or Unauthorized signal into the
// response to hand back to the caller.
func (r *ResponseResolver) Resolve(ctx context.Context, result any) (messages.Response, error) {
	return ask(ctx, r.timeout, r.inbox, func(reply chan<- messages.Response) resolveRequest {
		return resolveRequest{result: result, reply: reply}
	})
}

func (r *ResponseResolver) resolve(ctx context.Context, result any) messages.Response {
	switch v := result.(type) {
	case messages.GetAllOutcome:
		users := make([]models.User, 0, len(v.Entities))
		for _, entity := range v.Entities {
			users = append(users, entity.Public())
		}
		return r.jsonResponse(ctx, http.StatusOK, users)

	case messages.GetOneOutcome:
		if v.Entity == nil {
			return r.errorResponse(ctx, http.StatusNotFound, msgResourceNotFound)
		}
		return r.jsonResponse(ctx, http.StatusOK, v.Entity.Public())

	case messages.InsertOutcome:
		if v.Existing != nil {
			return r.errorResponse(ctx, http.StatusBadRequest, msgUserAlreadyExists)
		}
		if !v.Completed {
			return r.errorResponse(ctx, http.StatusBadRequest, msgBadRequest)
		}
		return messages.Response{Status: http.StatusNoContent}

	case messages.UpdateOutcome:
		if v.NotFound {
			return r.errorResponse(ctx, http.StatusNotFound, msgUserDoesNotExist)
		}
		if !v.Completed {
			return r.errorResponse(ctx, http.StatusBadRequest, msgBadRequest)
		}
		return messages.Response{Status: http.StatusNoContent}

	case messages.DeleteOutcome:
		if v.NotFound {
			return r.errorResponse(ctx, http.StatusNotFound, msgUserDoesNotExist)
		}
		if !v.Completed {
			return r.errorResponse(ctx, http.StatusBadRequest, msgBadRequest)
		}
		return messages.Response{Status: http.StatusNoContent}

	case messages.AuthOutcome:
		if v.Empty() {
			return r.errorResponse(ctx, http.StatusUnauthorized, msgBadCredentials)
		}
		return r.jsonResponse(ctx, http.StatusOK, tokenBody{Token: v.Token})

	case messages.Unauthorized:
		return r.errorResponse(ctx, http.StatusUnauthorized, msgUnauthorized)

	default:
		r.logger.Error(ctx, "unknown result type", "result", result)
		return messages.Response{Status: http.StatusInternalServerError}
	}
}

func (r *ResponseResolver) jsonResponse(ctx context.Context, status int, v any) messages.Response {
	body, err := json.Marshal(v)
	if err != nil {
		r.logger.Error(ctx, "response serialization failed", "error", err)
		return messages.Response{Status: http.StatusInternalServerError}
	}
	return messages.Response{Status: status, ContentType: contentTypeJSON, Body: body}
}

func (r *ResponseResolver) errorResponse(ctx context.Context, status int, msg string) messages.Response {
	return r.jsonResponse(ctx, status, errorBody{Error: msg})
}
