package custom

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"fishbot/internal/adapters/store"
	"fishbot/internal/core/domain"
	"fishbot/internal/core/domain/command"

	"github.com/rs/zerolog/log"
)

const (
	maxNameLen     = 32
	maxResponseLen = 1500
)

// Entry is one user-defined command in the table.
type Entry struct {
	Response string    `json:"response"`
	Creator  string    `json:"creator"`
	Created  time.Time `json:"created"`
}

// Table holds the user-defined commands, persisted as a single JSON file.
type Table struct {
	mu      sync.RWMutex
	path    string
	entries map[string]*Entry
}

func NewTable(path string) (*Table, error) {
	t := &Table{path: path, entries: make(map[string]*Entry)}

	if err := store.LoadJSON(path, &t.entries); err != nil {
		return nil, err
	}
	if t.entries == nil {
		t.entries = make(map[string]*Entry)
	}

	return t, nil
}

func (t *Table) get(name string) (*Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[strings.ToLower(name)]
	return e, ok
}

func (t *Table) put(name string, e *Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[strings.ToLower(name)] = e
	return store.SaveJSON(t.path, t.entries)
}

func (t *Table) delete(name string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	name = strings.ToLower(name)
	if _, ok := t.entries[name]; !ok {
		return false, nil
	}
	delete(t.entries, name)
	return true, store.SaveJSON(t.path, t.entries)
}

func (t *Table) names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.entries))
	for n := range t.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Module manages the user-defined command table and serves it as a dispatch
// fallback: when the registry does not know a command, the table gets a
// shot at it.
type Module struct {
	table    *Table
	registry *command.Registry
}

func Register(r *command.Registry, table *Table) *Module {
	m := &Module{table: table, registry: r}

	r.Register(command.Spec{
		Name:        "addcmd",
		Aliases:     []string{"newcmd", "createcmd"},
		Description: "Create a custom command",
		Usage:       "!addcmd <name> <response>",
		Module:      "custom",
		Handler:     m.add,
	})
	r.Register(command.Spec{
		Name:        "delcmd",
		Aliases:     []string{"removecmd", "rmcmd"},
		Description: "Delete a custom command",
		Usage:       "!delcmd <name>",
		Permission:  domain.Admin,
		Module:      "custom",
		Handler:     m.del,
	})
	r.Register(command.Spec{
		Name:        "editcmd",
		Description: "Replace a custom command's response",
		Usage:       "!editcmd <name> <response>",
		Permission:  domain.Admin,
		Module:      "custom",
		Handler:     m.edit,
	})
	r.Register(command.Spec{
		Name:        "cmdinfo",
		Description: "Show who created a custom command and when",
		Usage:       "!cmdinfo <name>",
		Module:      "custom",
		Handler:     m.info,
	})
	r.Register(command.Spec{
		Name:        "randcmd",
		Description: "Run a random custom command",
		Usage:       "!randcmd",
		Module:      "custom",
		Handler:     m.random,
	})

	return m
}

// Fallback serves table entries for command names the registry rejected.
func (m *Module) Fallback(ctx context.Context, inv *command.Invocation) bool {
	e, ok := m.table.get(inv.Command)
	if !ok {
		return false
	}

	if err := inv.Reply(ctx, e.Response); err != nil {
		log.Error().Err(err).Str("command", inv.Command).Msg("custom command reply failed")
	}
	return true
}

func (m *Module) add(ctx context.Context, inv *command.Invocation, args string) error {
	name, response, ok := strings.Cut(strings.TrimSpace(args), " ")
	if !ok || strings.TrimSpace(response) == "" {
		return inv.Reply(ctx, "Usage: !addcmd <name> <response>")
	}

	name = strings.ToLower(strings.TrimPrefix(name, "!"))
	response = strings.TrimSpace(response)

	if len(name) > maxNameLen {
		return inv.Reply(ctx, fmt.Sprintf("Command name too long! Max %d characters.", maxNameLen))
	}
	if len(response) > maxResponseLen {
		return inv.Reply(ctx, fmt.Sprintf("Response too long! Max %d characters.", maxResponseLen))
	}

	if _, builtin := m.registry.Resolve(name); builtin {
		return inv.Reply(ctx, fmt.Sprintf("!%s is a built-in command!", name))
	}
	if _, exists := m.table.get(name); exists {
		return inv.Reply(ctx, fmt.Sprintf("!%s already exists! Use !editcmd to change it.", name))
	}

	e := &Entry{Response: response, Creator: strings.ToLower(inv.User.Username), Created: time.Now()}
	if err := m.table.put(name, e); err != nil {
		return fmt.Errorf("saving custom command: %w", err)
	}

	log.Info().Str("command", name).Str("creator", e.Creator).Msg("custom command created")

	return inv.Reply(ctx, fmt.Sprintf("Created !%s", name))
}

func (m *Module) del(ctx context.Context, inv *command.Invocation, args string) error {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(args), "!"))
	if name == "" {
		return inv.Reply(ctx, "Usage: !delcmd <name>")
	}

	deleted, err := m.table.delete(name)
	if err != nil {
		return fmt.Errorf("deleting custom command: %w", err)
	}
	if !deleted {
		return inv.Reply(ctx, fmt.Sprintf("No custom command !%s", name))
	}

	return inv.Reply(ctx, fmt.Sprintf("Deleted !%s", name))
}

func (m *Module) edit(ctx context.Context, inv *command.Invocation, args string) error {
	name, response, ok := strings.Cut(strings.TrimSpace(args), " ")
	if !ok || strings.TrimSpace(response) == "" {
		return inv.Reply(ctx, "Usage: !editcmd <name> <response>")
	}

	name = strings.ToLower(strings.TrimPrefix(name, "!"))
	response = strings.TrimSpace(response)

	if len(response) > maxResponseLen {
		return inv.Reply(ctx, fmt.Sprintf("Response too long! Max %d characters.", maxResponseLen))
	}

	e, exists := m.table.get(name)
	if !exists {
		return inv.Reply(ctx, fmt.Sprintf("No custom command !%s", name))
	}

	updated := &Entry{Response: response, Creator: e.Creator, Created: e.Created}
	if err := m.table.put(name, updated); err != nil {
		return fmt.Errorf("saving custom command: %w", err)
	}

	return inv.Reply(ctx, fmt.Sprintf("Updated !%s", name))
}

func (m *Module) info(ctx context.Context, inv *command.Invocation, args string) error {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(args), "!"))
	if name == "" {
		return inv.Reply(ctx, "Usage: !cmdinfo <name>")
	}

	e, ok := m.table.get(name)
	if !ok {
		return inv.Reply(ctx, fmt.Sprintf("No custom command !%s", name))
	}

	return inv.Reply(ctx, fmt.Sprintf("!%s was created by %s on %s",
		name, e.Creator, e.Created.Format("2006-01-02")))
}

func (m *Module) random(ctx context.Context, inv *command.Invocation, _ string) error {
	names := m.table.names()
	if len(names) == 0 {
		return inv.Reply(ctx, "No custom commands yet! Create one with !addcmd")
	}

	name := names[rand.Intn(len(names))]
	e, _ := m.table.get(name)

	return inv.Reply(ctx, fmt.Sprintf("!%s: %s", name, e.Response))
}
