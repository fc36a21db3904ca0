package event

import (
	"fmt"

	"github.com/kqcore/korender/internal/channel"
)

// RegisterChannelEvents installs the channel-category handlers from spec
// §4.8 ("Channel controls") into t. Handlers take target.(*channel.Channel);
// note_on/note_off additionally need the voice pool, which is out of this
// package's scope and handled by the player's own note_on/note_off glue
// that calls these only for the slide/LFO/arpeggio/carry side effects.
func RegisterChannelEvents(t *Table) {
	t.Register(&Entry{Category: CategoryChannel, Name: "slide_pitch", Validator: ValidatePitch, Handle: func(target interface{}, v Value) error {
		c := target.(*channel.Channel)
		c.PitchSlide.ChangeTarget(v.Float, 0)
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "slide_pitch_length", Handle: func(target interface{}, v Value) error {
		if v.Kind != ValueTstamp {
			return fmt.Errorf("event: slide_pitch_length expects a tstamp arg")
		}
		return nil // only the arg's shape is checked; no slide length is stored
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "slide_force", Validator: ValidateForce, Handle: func(target interface{}, v Value) error {
		c := target.(*channel.Channel)
		c.ForceSlide.ChangeTarget(v.Float, 0)
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "vibrato_speed", Validator: ValidateNonNegFloat, Handle: func(target interface{}, v Value) error {
		c := target.(*channel.Channel)
		c.PitchLFO.Speed.ChangeTarget(v.Float, 0)
		c.PitchLFO.Enable()
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "vibrato_depth", Validator: ValidateNonNegFloat, Handle: func(target interface{}, v Value) error {
		c := target.(*channel.Channel)
		c.PitchLFO.Depth.ChangeTarget(v.Float, 0)
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "arpeggio_on", Handle: func(target interface{}, v Value) error {
		target.(*channel.Channel).ArpOn = true
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "arpeggio_off", Handle: func(target interface{}, v Value) error {
		target.(*channel.Channel).ArpOn = false
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "set_arpeggio_index", Validator: ValidateArpIndex, Handle: func(target interface{}, v Value) error {
		idx := v.Int
		if v.Kind == ValueFloat {
			idx = int64(v.Float)
		}
		target.(*channel.Channel).ArpIndex = int(idx)
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "set_arpeggio_speed", Validator: ValidateArpSpeed, Handle: func(target interface{}, v Value) error {
		target.(*channel.Channel).ArpSpeedHz = v.Float
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "reset_arpeggio", Handle: func(target interface{}, v Value) error {
		target.(*channel.Channel).ResetArpeggio()
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "carry_force_on", Handle: func(target interface{}, v Value) error {
		target.(*channel.Channel).CarryForce = true
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "carry_force_off", Handle: func(target interface{}, v Value) error {
		target.(*channel.Channel).CarryForce = false
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "carry_pitch_on", Handle: func(target interface{}, v Value) error {
		target.(*channel.Channel).CarryPitch = true
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "carry_pitch_off", Handle: func(target interface{}, v Value) error {
		target.(*channel.Channel).CarryPitch = false
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "carry_note_expression_on", Handle: func(target interface{}, v Value) error {
		target.(*channel.Channel).CarryExpr = true
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "carry_note_expression_off", Handle: func(target interface{}, v Value) error {
		target.(*channel.Channel).CarryExpr = false
		return nil
	}})
	t.Register(&Entry{Category: CategoryChannel, Name: "set_stream_value", Handle: func(target interface{}, v Value) error {
		return fmt.Errorf("event: set_stream_value takes a (name, x) pair, handled by the player's stream resolver")
	}})
}
