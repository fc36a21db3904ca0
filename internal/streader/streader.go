// Package streader implements the cursor-over-a-byte-slice JSON-like parser
// that every model-load and trigger-argument parse goes through (spec §3,
// "Streader"; §4, Shared utilities). It delegates tokenizing to
// json-iterator/go, the engine the teacher already reaches for in
// internal/storage, rather than hand-rolling a scanner.
package streader

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/kqcore/korender/internal/tstamp"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind tags the category of parse failure, per spec §7.
type Kind int

const (
	KindNone Kind = iota
	KindArgument
	KindFormat
	KindResource
	KindRange
)

// Error is the Streader's own tagged error slot, lifted into the handle's
// error on set_data/validate failure.
type Error struct {
	Kind Kind
	Msg  string
	Pos  int
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("streader: %s (pos %d)", e.Msg, e.Pos)
}

// Reader is a cursor over a byte slice with position, length, and an error.
type Reader struct {
	data []byte
	pos  int
	err  *Error
}

// New creates a Reader over data.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current cursor position.
func (r *Reader) Pos() int { return r.pos }

// Raw returns the unread byte slice this Reader is scoped to, for callers
// (event dispatch) that need to hand an element's literal bytes on to
// another parser rather than tokenizing it themselves.
func (r *Reader) Raw() []byte { return r.data[r.pos:] }

// Err returns the last parse error, or nil.
func (r *Reader) Err() *Error { return r.err }

// HasError reports whether a parse error has been recorded.
func (r *Reader) HasError() bool { return r.err != nil }

func (r *Reader) fail(kind Kind, msg string) {
	if r.err == nil {
		r.err = &Error{Kind: kind, Msg: msg, Pos: r.pos}
	}
}

func (r *Reader) iter() *jsoniter.Iterator {
	it := jsoniter.ParseBytes(jsonAPI, r.data[r.pos:])
	return it
}

// ReadNull consumes a `null` token.
func (r *Reader) ReadNull() bool {
	it := r.iter()
	v := it.ReadNil()
	if it.Error != nil {
		r.fail(KindFormat, "expected null")
		return false
	}
	r.commit(it)
	return v
}

// ReadBool consumes a boolean token.
func (r *Reader) ReadBool() bool {
	it := r.iter()
	v := it.ReadBool()
	if it.Error != nil {
		r.fail(KindFormat, "expected bool")
		return false
	}
	r.commit(it)
	return v
}

// ReadInt consumes an integer token.
func (r *Reader) ReadInt() int64 {
	it := r.iter()
	v := it.ReadInt64()
	if it.Error != nil {
		r.fail(KindFormat, "expected int")
		return 0
	}
	r.commit(it)
	return v
}

// ReadFloat consumes a floating-point token.
func (r *Reader) ReadFloat() float64 {
	it := r.iter()
	v := it.ReadFloat64()
	if it.Error != nil {
		r.fail(KindFormat, "expected float")
		return 0
	}
	r.commit(it)
	return v
}

// ReadString consumes a string token.
func (r *Reader) ReadString() string {
	it := r.iter()
	v := it.ReadString()
	if it.Error != nil {
		r.fail(KindFormat, "expected string")
		return ""
	}
	r.commit(it)
	return v
}

// ReadList consumes a `[...]` list, calling fn once per element with a
// sub-Reader scoped to that element's raw bytes.
func (r *Reader) ReadList(fn func(elem *Reader) bool) {
	it := r.iter()
	cont := it.ReadArray()
	for cont {
		if it.Error != nil {
			r.fail(KindFormat, "malformed list")
			return
		}
		raw := it.SkipAndReturnBytes()
		fn(New(raw))
		cont = it.ReadArray()
	}
	r.commit(it)
}

// ReadDict consumes a `{...}` dict, calling fn once per key with a sub-Reader
// scoped to that value's raw bytes.
func (r *Reader) ReadDict(fn func(key string, val *Reader)) {
	it := r.iter()
	key := it.ReadObject()
	for key != "" {
		if it.Error != nil {
			r.fail(KindFormat, "malformed dict")
			return
		}
		raw := it.SkipAndReturnBytes()
		fn(key, New(raw))
		key = it.ReadObject()
	}
	r.commit(it)
}

// ReadTstamp reads a Tstamp literal encoded as a two-element [beats, rem]
// list.
func (r *Reader) ReadTstamp() tstamp.Tstamp {
	var beats, rem int64
	i := 0
	r.ReadList(func(elem *Reader) bool {
		switch i {
		case 0:
			beats = elem.ReadInt()
		case 1:
			rem = elem.ReadInt()
		}
		i++
		return true
	})
	if i != 2 {
		r.fail(KindFormat, "expected [beats, rem] tstamp literal")
		return tstamp.Zero
	}
	return tstamp.New(beats, rem)
}

// PatternInstanceRef is a (pattern, instance) pair as read from the order
// list model key.
type PatternInstanceRef struct {
	Pattern  int
	Instance int
}

// ReadPatternInstanceRef reads a [pattern, instance] literal.
func (r *Reader) ReadPatternInstanceRef() PatternInstanceRef {
	var ref PatternInstanceRef
	i := 0
	r.ReadList(func(elem *Reader) bool {
		switch i {
		case 0:
			ref.Pattern = int(elem.ReadInt())
		case 1:
			ref.Instance = int(elem.ReadInt())
		}
		i++
		return true
	})
	return ref
}

func (r *Reader) commit(it *jsoniter.Iterator) {
	if it.Error != nil {
		return
	}
	consumed := len(r.data[r.pos:]) - iterRemaining(it)
	if consumed > 0 {
		r.pos += consumed
	}
}

// iterRemaining is a best-effort estimate of unread bytes in it; jsoniter
// doesn't expose a direct offset, so Reader treats each Read* call as
// operating on an independent byte-slice view (the typical model-load usage,
// one key's value per Reader) rather than threading a single shared cursor
// through many tokens.
func iterRemaining(it *jsoniter.Iterator) int {
	return len(it.Buffer())
}
