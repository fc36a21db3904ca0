package kmath

import (
	"fmt"
	"math"
	"strings"
)

var noteNames = []string{"c", "c#", "d", "d#", "e", "f", "f#", "g", "g#", "a", "a#", "b"}

// CentsToNoteName renders a pitch expressed in cents relative to refFreq
// (0 cents = concert A4, MIDI note 69) as a display name like "a-4" or
// "c#5", rounding to the nearest semitone. Kept to exactly 3 characters:
// natural notes use a "-" separator to fill the slot sharps already occupy
// with "#". Out-of-range results fall back to "---".
func CentsToNoteName(cents float64) string {
	midiNote := int(math.Round(cents/100.0)) + 69
	if midiNote < 0 || midiNote > 127 {
		return "---"
	}

	octave := (midiNote / 12) - 1
	name := noteNames[midiNote%12]

	if strings.Contains(name, "#") {
		if octave < 0 {
			return fmt.Sprintf("%s%d", name, -octave)
		}
		return fmt.Sprintf("%s%d", name, octave)
	}
	if octave < 0 {
		return fmt.Sprintf("%s-%d", name, -octave)
	}
	return fmt.Sprintf("%s-%d", name, octave)
}
