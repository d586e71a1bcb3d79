package command

import (
	"context"
	"errors"
	"time"

	"fishbot/internal/core/domain"
)

// Handler runs a single command invocation. Handlers that need to wait on
// external work block on the context like any other call; the dispatcher
// waits for the handler to return before touching the cooldown ledger.
type Handler func(ctx context.Context, inv *Invocation, args string) error

// Hook is a callback run around handler execution for cross-cutting concerns.
// A pre-hook may cancel the dispatch by returning ErrCancelled; any other
// error is logged and otherwise ignored.
type Hook func(inv *Invocation, spec *Spec) error

// ErrCancelled is the explicit veto signal for pre-hooks. A hook returning it
// stops dispatch without a reply; the hook owns any messaging.
var ErrCancelled = errors.New("command cancelled by hook")

// Spec describes a registered command. It is registered once and only mutated
// by re-registration or removal.
type Spec struct {
	// Name is the canonical lowercase identifier.
	Name        string
	Aliases     []string
	Description string
	Usage       string
	Permission  domain.PermissionLevel
	// Module groups commands for listing and bulk unregistration.
	Module string
	// Hidden commands are skipped by listings but still dispatch.
	Hidden   bool
	Cooldown time.Duration
	Handler  Handler
}
