package protocol

import (
	"sort"
	"strings"
)

// CommandSet is the catalog of commands supported by one protocol
// revision. Later revisions are derived by Extend and contain a superset
// of their base's names; sets are immutable once built.
type CommandSet struct {
	label    string
	base     *CommandSet
	commands map[string]Command
}

// NewCommandSet builds a root catalog. Duplicate names are a
// DefinitionConflictError.
func NewCommandSet(label string, cmds ...Command) (*CommandSet, error) {
	if strings.TrimSpace(label) == "" {
		return nil, ErrNoCatalogLabel
	}
	table := make(map[string]Command, len(cmds))
	for _, cmd := range cmds {
		if cmd.name == "" {
			return nil, ErrNoCommandName
		}
		if _, ok := table[cmd.name]; ok {
			return nil, DefinitionConflictError{Label: label, Command: cmd.name, Reason: "duplicate definition"}
		}
		table[cmd.name] = cmd
	}
	return &CommandSet{label: label, commands: table}, nil
}

// MustCommandSet is NewCommandSet for static catalog tables; conflicts
// panic at package initialization.
func MustCommandSet(label string, cmds ...Command) *CommandSet {
	set, err := NewCommandSet(label, cmds...)
	if err != nil {
		panic(err)
	}
	return set
}

// Extend derives a new catalog from s. Overrides replace same-named base
// definitions and must name commands the base actually defines; additions
// insert new names and must collide with nothing. Every violation is a
// DefinitionConflictError at construction time, never a silent merge.
func (s *CommandSet) Extend(label string, additions []Command, overrides []Command) (*CommandSet, error) {
	if strings.TrimSpace(label) == "" {
		return nil, ErrNoCatalogLabel
	}
	table := make(map[string]Command, len(s.commands)+len(additions))
	for name, cmd := range s.commands {
		table[name] = cmd
	}

	overridden := make(map[string]struct{}, len(overrides))
	for _, cmd := range overrides {
		if cmd.name == "" {
			return nil, ErrNoCommandName
		}
		if _, ok := s.commands[cmd.name]; !ok {
			return nil, DefinitionConflictError{
				Label:   label,
				Command: cmd.name,
				Reason:  "override of a command absent from " + s.label,
			}
		}
		if _, dup := overridden[cmd.name]; dup {
			return nil, DefinitionConflictError{Label: label, Command: cmd.name, Reason: "duplicate override"}
		}
		overridden[cmd.name] = struct{}{}
		table[cmd.name] = cmd
	}

	for _, cmd := range additions {
		if cmd.name == "" {
			return nil, ErrNoCommandName
		}
		if _, ok := overridden[cmd.name]; ok {
			return nil, DefinitionConflictError{
				Label:   label,
				Command: cmd.name,
				Reason:  "listed as both addition and override",
			}
		}
		if _, ok := s.commands[cmd.name]; ok {
			return nil, DefinitionConflictError{
				Label:   label,
				Command: cmd.name,
				Reason:  "already defined by " + s.label + " and not declared an override",
			}
		}
		if _, ok := table[cmd.name]; ok {
			return nil, DefinitionConflictError{Label: label, Command: cmd.name, Reason: "duplicate addition"}
		}
		table[cmd.name] = cmd
	}

	return &CommandSet{label: label, base: s, commands: table}, nil
}

// MustExtend is Extend for static catalog tables; conflicts panic at
// package initialization.
func (s *CommandSet) MustExtend(label string, additions []Command, overrides []Command) *CommandSet {
	set, err := s.Extend(label, additions, overrides)
	if err != nil {
		panic(err)
	}
	return set
}

// Lookup returns the named command, or UnsupportedCommandError when this
// revision does not define it.
func (s *CommandSet) Lookup(name string) (Command, error) {
	cmd, ok := s.commands[name]
	if !ok {
		return Command{}, UnsupportedCommandError{Label: s.label, Command: name}
	}
	return cmd, nil
}

// Supports reports whether this revision defines name.
func (s *CommandSet) Supports(name string) bool {
	_, ok := s.commands[name]
	return ok
}

// Label returns the revision label.
func (s *CommandSet) Label() string { return s.label }

// Base returns the revision this catalog extends, nil for a root.
func (s *CommandSet) Base() *CommandSet { return s.base }

// Len returns the number of defined commands.
func (s *CommandSet) Len() int { return len(s.commands) }

// Names returns the defined command names in sorted order.
func (s *CommandSet) Names() []string {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
