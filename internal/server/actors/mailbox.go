// Package actors hosts the three concurrent units of the service: the
// DataAccessor, the AuthResolver and the ResponseResolver. Each unit owns a
// bounded inbound channel drained by a single goroutine; callers talk to a
// unit only through the ask pattern, never through shared state.
package actors

import (
	"context"
	"time"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/common"
)

// defaultMailboxSize bounds each actor's inbound queue.
const defaultMailboxSize = 64

// ask delivers a message to an inbox and waits for the correlated reply,
// giving the whole exchange the supplied deadline. The reply channel is
// buffered so a worker can answer after the caller has given up; such late
// replies are dropped, which is the accepted inconsistency window when a
// write succeeds but the reply races the timeout.
func ask[M any, R any](ctx context.Context, timeout time.Duration, inbox chan<- M, build func(reply chan<- R) M) (R, error) {
	var zero R

	reply := make(chan R, 1)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case inbox <- build(reply):
	case <-ctx.Done():
		return zero, common.ErrTimeout
	}

	select {
	case r := <-reply:
		return r, nil
	case <-ctx.Done():
		return zero, common.ErrTimeout
	}
}
