// Package event implements the trigger dispatch table: a fire-time parse
// of a trigger's literal arg via Streader into a tagged Value, validated
// against the event's registered validator and routed by (category, name)
// to the right handler (spec §4.8 "Event handler"; "Trigger dispatch").
package event

import (
	"fmt"

	"github.com/kqcore/korender/internal/streader"
	"github.com/kqcore/korender/internal/tstamp"
)

// Category names which target-state object an event addresses.
type Category string

const (
	CategoryControl   Category = "control"
	CategoryGeneral   Category = "general"
	CategoryChannel   Category = "channel"
	CategoryMaster    Category = "master"
	CategoryAudioUnit Category = "audio_unit"
	CategoryProcessor Category = "processor"
)

// ValueKind tags which field of a Value is populated.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
	ValueTstamp
	ValuePatternInstanceRef
	ValueMaybeString // null or string
	ValueMaybeRealtime
)

// Value is the parsed, tagged argument handed to a handler.
type Value struct {
	Kind    ValueKind
	Bool    bool
	Int     int64
	Float   float64
	Str     string
	Tstamp  tstamp.Tstamp
	PatRef  streader.PatternInstanceRef
	IsNull  bool
}

// Validator checks a parsed Value against an event's domain constraints
// (e.g. "pitch" requires a float, "au" requires a non-empty string).
type Validator func(v Value) error

// Handler mutates a target state object given a parsed, validated arg.
// target's concrete type depends on the event's Category.
type Handler func(target interface{}, v Value) error

// Entry binds one event name to its arg shape and behaviour.
type Entry struct {
	Category  Category
	Name      string
	Validator Validator
	Handle    Handler
}

// Table is the dispatch table keyed by (category, name).
type Table struct {
	entries map[string]*Entry
}

// NewTable creates an empty dispatch table.
func NewTable() *Table {
	return &Table{entries: map[string]*Entry{}}
}

func key(cat Category, name string) string { return string(cat) + ":" + name }

// Register installs an event entry, overwriting any previous registration
// for the same (category, name).
func (t *Table) Register(e *Entry) {
	t.entries[key(e.Category, e.Name)] = e
}

// Lookup finds an entry by category and name.
func (t *Table) Lookup(cat Category, name string) (*Entry, bool) {
	e, ok := t.entries[key(cat, name)]
	return e, ok
}

// Fire parses argJSON via Streader, choosing the Value kind from the
// literal's first byte, validates it with the entry's Validator (if any),
// and invokes Handle against target. A parse or validation
// failure is returned as an error and the trigger is otherwise a no-op, per
// spec §4.8 "On validation failure the trigger is ignored".
func (t *Table) Fire(cat Category, name string, argJSON []byte, target interface{}) error {
	e, ok := t.Lookup(cat, name)
	if !ok {
		return fmt.Errorf("event: no handler for %s:%s", cat, name)
	}
	v, err := parseArg(argJSON, e)
	if err != nil {
		return err
	}
	if e.Validator != nil {
		if err := e.Validator(v); err != nil {
			return err
		}
	}
	return e.Handle(target, v)
}

// parseArg is a best-effort Streader-based decode; callers whose handler
// needs a specific shape should set up their own Entry.Validator to reject
// mismatches rather than relying on this guesswork alone. Events that carry
// no argument at all pass a nil/empty argJSON.
func parseArg(argJSON []byte, e *Entry) (Value, error) {
	if len(argJSON) == 0 {
		return Value{Kind: ValueNone}, nil
	}
	r := streader.New(argJSON)
	switch argJSON[0] {
	case 't', 'f':
		b := r.ReadBool()
		if r.HasError() {
			return Value{}, r.Err()
		}
		return Value{Kind: ValueBool, Bool: b}, nil
	case '"':
		s := r.ReadString()
		if r.HasError() {
			return Value{}, r.Err()
		}
		return Value{Kind: ValueString, Str: s}, nil
	case 'n':
		r.ReadNull()
		return Value{Kind: ValueMaybeString, IsNull: true}, nil
	case '[':
		return parseListArg(r, argJSON)
	default:
		f := r.ReadFloat()
		if r.HasError() {
			return Value{}, r.Err()
		}
		return Value{Kind: ValueFloat, Float: f}, nil
	}
}

func parseListArg(r *streader.Reader, raw []byte) (Value, error) {
	// Every list argument is read as a tstamp; pattern-instance refs are not
	// decoded here. Handlers that need one should re-parse raw themselves
	// via streader directly.
	ts := streader.New(raw).ReadTstamp()
	return Value{Kind: ValueTstamp, Tstamp: ts}, nil
}
