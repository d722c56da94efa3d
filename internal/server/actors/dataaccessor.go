package actors

import (
	"context"
	"errors"
	"time"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/common"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/logging"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/hashing"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/messages"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/models"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/store"
)

type accessorRequest struct {
	op    messages.Operation
	reply chan<- messages.Outcome
}

// DataAccessor owns all access to the user store. A single worker goroutine
// drains the inbox, so mutations issued through one accessor are totally
// ordered and the check-then-act around inserts cannot race in-process.
// Credential hashing runs inside this serialized path.
type DataAccessor struct {
	inbox   chan accessorRequest
	store   store.UserStore
	hasher  hashing.Hasher
	timeout time.Duration
	logger  logging.Logger
}

func NewDataAccessor(s store.UserStore, h hashing.Hasher, timeout time.Duration, logger logging.Logger) *DataAccessor {
	return &DataAccessor{
		inbox:   make(chan accessorRequest, defaultMailboxSize),
		store:   s,
		hasher:  h,
		timeout: timeout,
		logger:  logger.With("module", "data_accessor"),
	}
}

// Start launches the worker loop. The loop exits when ctx is cancelled;
// requests already queued are answered first.
func (a *DataAccessor) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case req := <-a.inbox:
				req.reply <- a.handle(ctx, req.op)
			case <-ctx.Done():
				a.drain(ctx)
				return
			}
		}
	}()
}

func (a *DataAccessor) drain(ctx context.Context) {
	for {
		select {
		case req := <-a.inbox:
			req.reply <- a.handle(ctx, req.op)
		default:
			return
		}
	}
}

// Dispatch delivers an operation to the worker and waits for its outcome,
// bounded by the accessor's ask timeout.
func (a *DataAccessor) Dispatch(ctx context.Context, op messages.Operation) (messages.Outcome, error) {
	return ask(ctx, a.timeout, a.inbox, func(reply chan<- messages.Outcome) accessorRequest {
		return accessorRequest{op: op, reply: reply}
	})
}

func (a *DataAccessor) handle(ctx context.Context, op messages.Operation) messages.Outcome {
	switch v := op.(type) {
	case messages.GetOne:
		return a.getOne(ctx, v)
	case messages.GetAll:
		return a.getAll(ctx)
	case messages.Insert:
		return a.insert(ctx, v)
	case messages.Update:
		return a.update(ctx, v)
	case messages.Delete:
		return a.delete(ctx, v)
	default:
		a.logger.Error(ctx, "unknown operation", "op", op)
		return messages.GetOneOutcome{}
	}
}

// getOne never fails: an absent user and a store fault both surface as an
// empty entity. Store faults are logged here and nowhere else.
func (a *DataAccessor) getOne(ctx context.Context, op messages.GetOne) messages.Outcome {
	user, err := a.store.Get(ctx, op.UserName)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			a.logger.Error(ctx, "get user failed", "user", op.UserName, "error", err)
		}
		return messages.GetOneOutcome{}
	}
	return messages.GetOneOutcome{Entity: user}
}

func (a *DataAccessor) getAll(ctx context.Context) messages.Outcome {
	users, err := a.store.GetAll(ctx)
	if err != nil {
		a.logger.Error(ctx, "get all users failed", "error", err)
		return messages.GetAllOutcome{Entities: []models.StoredUser{}}
	}
	return messages.GetAllOutcome{Entities: users}
}

func (a *DataAccessor) insert(ctx context.Context, op messages.Insert) messages.Outcome {
	if op.User.UserName == "" {
		return messages.InsertOutcome{}
	}

	// Re-check existence right before the insert. Serialized by the worker
	// loop; the table constraint backs this up across processes.
	existing, err := a.store.Get(ctx, op.User.UserName)
	if err == nil {
		return messages.InsertOutcome{Existing: existing}
	}
	if !errors.Is(err, common.ErrNotFound) {
		a.logger.Error(ctx, "insert existence check failed", "user", op.User.UserName, "error", err)
		return messages.InsertOutcome{}
	}

	if op.User.Password == "" {
		return messages.InsertOutcome{}
	}

	digest, err := a.hasher.Hash(op.User.Password)
	if err != nil {
		a.logger.Error(ctx, "credential hashing failed", "user", op.User.UserName, "error", err)
		return messages.InsertOutcome{}
	}

	err = a.store.Insert(ctx, &models.StoredUser{
		UserName:         op.User.UserName,
		CredentialDigest: digest,
	})
	if err != nil {
		a.logger.Error(ctx, "insert user failed", "user", op.User.UserName, "error", err)
		return messages.InsertOutcome{}
	}

	return messages.InsertOutcome{Completed: true}
}

func (a *DataAccessor) update(ctx context.Context, op messages.Update) messages.Outcome {
	if op.User.UserName == "" {
		return messages.UpdateOutcome{}
	}

	existing, err := a.store.Get(ctx, op.User.UserName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return messages.UpdateOutcome{NotFound: true}
		}
		a.logger.Error(ctx, "update existence check failed", "user", op.User.UserName, "error", err)
		return messages.UpdateOutcome{}
	}

	// No new plaintext supplied: carry the stored digest over unchanged.
	digest := existing.CredentialDigest
	if op.User.Password != "" {
		digest, err = a.hasher.Hash(op.User.Password)
		if err != nil {
			a.logger.Error(ctx, "credential hashing failed", "user", op.User.UserName, "error", err)
			return messages.UpdateOutcome{}
		}
	}

	err = a.store.Update(ctx, &models.StoredUser{
		UserName:         op.User.UserName,
		CredentialDigest: digest,
	})
	if err != nil {
		a.logger.Error(ctx, "update user failed", "user", op.User.UserName, "error", err)
		return messages.UpdateOutcome{}
	}

	return messages.UpdateOutcome{Completed: true}
}

func (a *DataAccessor) delete(ctx context.Context, op messages.Delete) messages.Outcome {
	if op.User.UserName == "" {
		return messages.DeleteOutcome{}
	}

	_, err := a.store.Get(ctx, op.User.UserName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return messages.DeleteOutcome{NotFound: true}
		}
		a.logger.Error(ctx, "delete existence check failed", "user", op.User.UserName, "error", err)
		return messages.DeleteOutcome{}
	}

	if err := a.store.Delete(ctx, op.User.UserName); err != nil {
		a.logger.Error(ctx, "delete user failed", "user", op.User.UserName, "error", err)
		return messages.DeleteOutcome{}
	}

	return messages.DeleteOutcome{Completed: true}
}
