package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kqcore/korender/internal/channel"
)

func TestFireDispatchesToHandler(t *testing.T) {
	table := NewTable()
	RegisterChannelEvents(table)
	c := channel.New(0)

	err := table.Fire(CategoryChannel, "slide_force", []byte("-6.0"), c)
	assert.NoError(t, err)
	assert.Equal(t, -6.0, c.ForceSlide.Step()) // zero-length slide jumps immediately
}

func TestFireRejectsInvalidArg(t *testing.T) {
	table := NewTable()
	RegisterChannelEvents(table)
	c := channel.New(0)

	err := table.Fire(CategoryChannel, "set_arpeggio_speed", []byte("-1.0"), c)
	assert.Error(t, err)
}

func TestFireUnknownEventErrors(t *testing.T) {
	table := NewTable()
	err := table.Fire(CategoryChannel, "nonexistent", []byte("1"), nil)
	assert.Error(t, err)
}

func TestArpeggioLifecycle(t *testing.T) {
	table := NewTable()
	RegisterChannelEvents(table)
	c := channel.New(0)

	assert.NoError(t, table.Fire(CategoryChannel, "arpeggio_on", nil, c))
	assert.True(t, c.ArpOn)
	assert.NoError(t, table.Fire(CategoryChannel, "arpeggio_off", nil, c))
	assert.False(t, c.ArpOn)
}

func TestFireRejectsOutOfRangeArpIndex(t *testing.T) {
	table := NewTable()
	RegisterChannelEvents(table)
	c := channel.New(0)

	assert.Error(t, table.Fire(CategoryChannel, "set_arpeggio_index", []byte("32"), c))
	assert.NoError(t, table.Fire(CategoryChannel, "set_arpeggio_index", []byte("31"), c))
	assert.Equal(t, 31, c.ArpIndex)
}

func TestFireRejectsNegativeVibratoDepth(t *testing.T) {
	table := NewTable()
	RegisterChannelEvents(table)
	c := channel.New(0)

	assert.Error(t, table.Fire(CategoryChannel, "vibrato_depth", []byte("-1.0"), c))
	assert.NoError(t, table.Fire(CategoryChannel, "vibrato_depth", []byte("50.0"), c))
}
