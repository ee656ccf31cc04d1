// Package scenario runs TOML-scripted ownership scenarios against a store.
//
// A scenario is a named list of operations:
//
//	name = "move then use"
//
//	[[op]]
//	kind = "allocate"
//	binding = "b1"
//	data = "hello"
//
//	[[op]]
//	kind = "move"
//	from = "b1"
//	binding = "b2"
//
//	[[op]]
//	kind = "access"
//	binding = "b1"   # fails with use_after_move
//
// The runner executes operations in order, recording every lifecycle event,
// and keeps going past failed steps so a script can demonstrate errors on
// purpose.
package scenario

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tessalab/own-runtime/errors"
)

// Op is a single scripted operation.
type Op struct {
	Kind    string `toml:"kind"`
	Binding string `toml:"binding"`
	From    string `toml:"from"`
	Data    string `toml:"data"`
	Scope   string `toml:"scope"`
}

// Scenario is an ordered list of operations.
type Scenario struct {
	Name string `toml:"name"`
	Ops  []Op   `toml:"op"`
}

var opKinds = map[string]struct{}{
	"allocate":  {},
	"move":      {},
	"duplicate": {},
	"access":    {},
	"append":    {},
	"borrow":    {},
	"return":    {},
	"release":   {},
	"enter":     {},
	"close":     {},
}

// Load reads and validates a scenario from a TOML file.
func Load(path string) (*Scenario, error) {
	var scn Scenario
	if _, err := toml.DecodeFile(path, &scn); err != nil {
		return nil, errors.ParseFailed("scenario file", err)
	}
	if err := scn.Validate(); err != nil {
		return nil, err
	}
	return &scn, nil
}

// Parse decodes and validates a scenario from TOML text.
func Parse(data string) (*Scenario, error) {
	var scn Scenario
	if _, err := toml.Decode(data, &scn); err != nil {
		return nil, errors.ParseFailed("scenario", err)
	}
	if err := scn.Validate(); err != nil {
		return nil, err
	}
	return &scn, nil
}

// Validate checks that every operation has a known kind and the fields that
// kind requires, and that no operation reuses an existing binding name or
// scope label. Each binding name refers to one binding for the whole script,
// so shadowing would orphan the original.
func (s *Scenario) Validate() error {
	if len(s.Ops) == 0 {
		return errors.InvalidData(errors.PhaseParse, "scenario has no operations")
	}

	bindings := make(map[string]int)
	scopes := make(map[string]int)

	for i, op := range s.Ops {
		kind := strings.TrimSpace(op.Kind)
		if _, ok := opKinds[kind]; !ok {
			return errors.InvalidData(errors.PhaseParse,
				fmt.Sprintf("op %d: unknown kind %q", i, op.Kind))
		}

		switch kind {
		case "allocate":
			if op.Binding == "" {
				return missingField(i, kind, "binding")
			}
			if err := defineBinding(bindings, i, kind, op.Binding); err != nil {
				return err
			}
		case "move", "duplicate":
			if op.From == "" {
				return missingField(i, kind, "from")
			}
			if op.Binding == "" {
				return missingField(i, kind, "binding")
			}
			if err := defineBinding(bindings, i, kind, op.Binding); err != nil {
				return err
			}
		case "access", "append", "borrow", "return", "release":
			if op.Binding == "" {
				return missingField(i, kind, "binding")
			}
		case "enter":
			if op.Scope == "" {
				return missingField(i, kind, "scope")
			}
			if prev, dup := scopes[op.Scope]; dup {
				return errors.InvalidData(errors.PhaseParse,
					fmt.Sprintf("op %d (enter): scope %q already entered at op %d", i, op.Scope, prev))
			}
			scopes[op.Scope] = i
		case "close":
			if op.Scope == "" {
				return missingField(i, kind, "scope")
			}
		}
	}
	return nil
}

func defineBinding(bindings map[string]int, i int, kind, name string) error {
	if prev, dup := bindings[name]; dup {
		return errors.InvalidData(errors.PhaseParse,
			fmt.Sprintf("op %d (%s): binding %q already defined at op %d", i, kind, name, prev))
	}
	bindings[name] = i
	return nil
}

func missingField(i int, kind, field string) error {
	return errors.InvalidData(errors.PhaseParse,
		fmt.Sprintf("op %d (%s): missing %q", i, kind, field))
}
