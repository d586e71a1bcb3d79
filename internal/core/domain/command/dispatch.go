package command

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	noPermissionReply = "You don't have permission to use this command."
	failureReply      = "Error executing command."
)

// Dispatch runs a parsed invocation through permission and cooldown checks,
// the pre-hooks, the handler, and the post-hooks. It returns false only when
// the typed name resolves to nothing, so the caller can try other
// interpretations of the same text. Every other outcome, including a handler
// fault, counts as handled.
//
// The cooldown is committed only after the handler returns without error; a
// faulting handler does not start the cooldown clock.
func (r *Registry) Dispatch(ctx context.Context, inv *Invocation) bool {
	spec, ok := r.Resolve(inv.Command)
	if !ok {
		return false
	}

	l := log.With().
		Str("invocation", inv.ID.String()).
		Str("command", spec.Name).
		Str("user", inv.User.Username).
		Logger()

	if !r.perms.Check(inv.User.Username, spec.Permission) {
		l.Debug().Stringer("required", spec.Permission).Msg("permission denied")
		r.reply(ctx, &l, inv, noPermissionReply)
		return true
	}

	if wait := r.cooldowns.Remaining(spec.Name, inv.User.Username, spec.Cooldown); wait > 0 {
		l.Debug().Int("wait", wait).Msg("command on cooldown")
		r.reply(ctx, &l, inv, fmt.Sprintf("Command on cooldown. Wait %ds.", wait))
		return true
	}

	if cancelled := r.runHooks(&l, r.snapshotHooks(true), inv, spec, true); cancelled {
		l.Debug().Msg("dispatch cancelled by pre-hook")
		return true
	}

	if err := r.execute(ctx, inv, spec); err != nil {
		l.Error().Err(err).Msg("command handler failed")
		r.reply(ctx, &l, inv, failureReply)
		return true
	}

	r.cooldowns.Commit(spec.Name, inv.User.Username, spec.Cooldown)

	r.runHooks(&l, r.snapshotHooks(false), inv, spec, false)

	l.Info().Msg("command handled")

	return true
}

// execute invokes the handler, converting a panic into an error so a
// misbehaving command never stops the bot from processing the next message.
func (r *Registry) execute(ctx context.Context, inv *Invocation, spec *Spec) (err error) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().
				Str("invocation", inv.ID.String()).
				Str("command", spec.Name).
				Str("stack", string(debug.Stack())).
				Msg("command handler panicked")
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()

	return spec.Handler(ctx, inv, inv.Args)
}

func (r *Registry) snapshotHooks(pre bool) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if pre {
		return append([]Hook(nil), r.preHooks...)
	}
	return append([]Hook(nil), r.postHooks...)
}

// runHooks runs hooks in registration order. Only a pre-hook returning
// ErrCancelled stops the dispatch; a hook fault is logged and treated as if
// the hook had no opinion.
func (r *Registry) runHooks(l *zerolog.Logger, hooks []Hook, inv *Invocation, spec *Spec, pre bool) (cancelled bool) {
	stage := "post"
	if pre {
		stage = "pre"
	}

	for _, h := range hooks {
		err := runHook(h, inv, spec)
		switch {
		case err == nil:
		case pre && errors.Is(err, ErrCancelled):
			return true
		default:
			l.Error().Err(err).Str("stage", stage).Msg("command hook failed")
		}
	}

	return false
}

func runHook(h Hook, inv *Invocation, spec *Spec) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("hook panic: %v", p)
		}
	}()

	return h(inv, spec)
}

func (r *Registry) reply(ctx context.Context, l *zerolog.Logger, inv *Invocation, text string) {
	if err := inv.Reply(ctx, text); err != nil {
		l.Warn().Err(err).Msg("failed to send dispatch reply")
	}
}
