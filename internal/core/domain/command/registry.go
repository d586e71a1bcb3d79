package command

import (
	"sort"
	"strings"
	"sync"

	"fishbot/internal/core/domain"
	"fishbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Registry is the single source of truth for what commands exist and how they
// are invoked. It also owns the hook lists and drives dispatch (dispatch.go).
//
// All methods are safe for concurrent use; the websocket reader may hand
// messages to Dispatch from its own goroutine while a module reloads.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]*Spec
	aliases   map[string]string // alias -> canonical name
	modules   map[string][]string
	preHooks  []Hook
	postHooks []Hook

	perms     port.Permissions
	cooldowns port.Cooldowns
}

func NewRegistry(perms port.Permissions, cooldowns port.Cooldowns) *Registry {
	return &Registry{
		commands:  make(map[string]*Spec),
		aliases:   make(map[string]string),
		modules:   make(map[string][]string),
		perms:     perms,
		cooldowns: cooldowns,
	}
}

// Register inserts or overwrites the command keyed by spec.Name. Last write
// wins, which allows hot-reloading a module's commands. Aliases overwrite any
// prior owner silently.
func (r *Registry) Register(spec Spec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	spec.Name = strings.ToLower(spec.Name)
	for i, a := range spec.Aliases {
		spec.Aliases[i] = strings.ToLower(a)
	}

	if old, ok := r.commands[spec.Name]; ok {
		r.dropLocked(old)
	}

	log.Info().Str("command", spec.Name).Str("module", spec.Module).Msg("adding command handler to registry")

	r.commands[spec.Name] = &spec
	for _, a := range spec.Aliases {
		if owner, ok := r.aliases[a]; ok && owner != spec.Name {
			log.Warn().Str("alias", a).Str("previous", owner).Str("command", spec.Name).
				Msg("alias already registered, overwriting")
		}
		r.aliases[a] = spec.Name
	}

	if spec.Module != "" {
		r.modules[spec.Module] = append(r.modules[spec.Module], spec.Name)
	}
}

// Unregister removes a canonical command, all aliases pointing to it, and its
// module membership. Returns false when name is not a canonical command.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	spec, ok := r.commands[strings.ToLower(name)]
	if !ok {
		return false
	}

	r.dropLocked(spec)
	delete(r.commands, spec.Name)

	return true
}

// dropLocked removes a spec's aliases and module membership, leaving the
// canonical entry to the caller. Callers hold r.mu.
func (r *Registry) dropLocked(spec *Spec) {
	for _, a := range spec.Aliases {
		if r.aliases[a] == spec.Name {
			delete(r.aliases, a)
		}
	}

	if spec.Module == "" {
		return
	}

	members := r.modules[spec.Module]
	for i, m := range members {
		if m == spec.Name {
			r.modules[spec.Module] = append(members[:i], members[i+1:]...)
			break
		}
	}
}

// Resolve returns the command registered under the given name or alias.
// Lookups are case-insensitive and never partial-match.
func (r *Registry) Resolve(name string) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.ToLower(name)

	if spec, ok := r.commands[name]; ok {
		return spec, true
	}
	if canonical, ok := r.aliases[name]; ok {
		return r.commands[canonical], true
	}

	return nil, false
}

// ListCommands returns every spec passing all three filters, sorted by
// canonical name. An empty module matches everything; a spec passes the
// permission filter when its level does not exceed maxLevel.
func (r *Registry) ListCommands(module string, includeHidden bool, maxLevel domain.PermissionLevel) []*Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var specs []*Spec
	for _, spec := range r.commands {
		if module != "" && spec.Module != module {
			continue
		}
		if spec.Hidden && !includeHidden {
			continue
		}
		if spec.Permission > maxLevel {
			continue
		}
		specs = append(specs, spec)
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })

	return specs
}

// ModuleCommands returns the canonical names registered under a module, for
// bulk unregistration on module unload.
func (r *Registry) ModuleCommands(module string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.modules[module]...)
}

func (r *Registry) AddPreHook(h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preHooks = append(r.preHooks, h)
}

func (r *Registry) AddPostHook(h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.postHooks = append(r.postHooks, h)
}
