package core

import (
	"sync"

	"github.com/codesage/codesage/internal/apiclient"
	"github.com/codesage/codesage/schema"
)

// requestGuard tracks a panel's request lifecycle and allows one request in flight.
//
//	idle -> loading -> success | error -> loading ...
type requestGuard struct {
	mu      sync.Mutex
	state   schema.PanelState
	message string
}

// begin moves the panel to loading, or returns ErrBusy when it already is.
func (g *requestGuard) begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == schema.LoadingState {
		return ErrBusy
	}
	g.state = schema.LoadingState
	g.message = ""
	return nil
}

// finish records the outcome of the request started by begin.
func (g *requestGuard) finish(err error, fallback string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.state = schema.ErrorState
		g.message = apiclient.UserMessage(err, fallback)
		return
	}
	g.state = schema.SuccessState
	g.message = ""
}

// status returns the current state and the error message, if any.
func (g *requestGuard) status() (schema.PanelState, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == "" {
		return schema.IdleState, ""
	}
	return g.state, g.message
}

// clearError returns an errored panel to idle.
func (g *requestGuard) clearError() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == schema.ErrorState {
		g.state = schema.IdleState
		g.message = ""
	}
}
