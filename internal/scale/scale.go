// Package scale quantizes cents-valued pitches to the nearest degree of a
// named musical scale, for the arpeggio tone table's optional "snap to
// scale" behaviour (spec §4.8 "set_arpeggio_note" admits any cents value;
// a caller wanting scale-locked arpeggios quantizes before calling it).
package scale

// Scale names a set of semitone offsets within an octave.
type Scale struct {
	Name  string
	Notes []int // semitone offsets within an octave, 0-11
}

// Scales holds the built-in named scales.
var Scales = map[string]Scale{
	"all":        {Name: "All Notes", Notes: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
	"major":      {Name: "Major", Notes: []int{0, 2, 4, 5, 7, 9, 11}},
	"minor":      {Name: "Minor", Notes: []int{0, 2, 3, 5, 7, 8, 10}},
	"dorian":     {Name: "Dorian", Notes: []int{0, 2, 3, 5, 7, 9, 10}},
	"mixolydian": {Name: "Mixolydian", Notes: []int{0, 2, 4, 5, 7, 9, 10}},
	"pentatonic": {Name: "Pentatonic", Notes: []int{0, 2, 4, 7, 9}},
	"blues":      {Name: "Blues", Notes: []int{0, 3, 5, 6, 7, 10}},
	"chromatic":  {Name: "Chromatic", Notes: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
}

// Names lists the built-in scale names.
func Names() []string {
	names := make([]string, 0, len(Scales))
	for name := range Scales {
		names = append(names, name)
	}
	return names
}

const centsPerSemitone = 100.0

// QuantizeCents snaps a cents value to the nearest semitone in the named
// scale, rooted at rootSemitone (0 = C, 11 = B). Unknown scale names pass
// the input through unchanged.
func QuantizeCents(cents float64, scaleName string, rootSemitone int) float64 {
	sc, ok := Scales[scaleName]
	if !ok {
		return cents
	}

	semitones := int(cents / centsPerSemitone)
	frac := cents - float64(semitones)*centsPerSemitone

	// Round to nearest semitone before quantizing to the scale; carry the
	// sub-semitone remainder back in afterward so fine slide state isn't lost.
	if frac >= centsPerSemitone/2 {
		semitones++
		frac -= centsPerSemitone
	} else if frac < -centsPerSemitone/2 {
		semitones--
		frac += centsPerSemitone
	}

	octave, noteInOctave := divmod12(semitones)
	transposed := mod12(noteInOctave - rootSemitone)

	closest := transposed
	minDistance := 12
	for _, n := range sc.Notes {
		d := abs(transposed - n)
		if d < minDistance {
			minDistance = d
			closest = n
		}
	}

	finalNote := mod12(closest + rootSemitone)
	return float64(octave*12+finalNote)*centsPerSemitone + frac
}

// divmod12 splits semitones into (octave, noteInOctave) with noteInOctave
// always in [0, 12), matching Euclidean division for negative inputs.
func divmod12(semitones int) (octave, noteInOctave int) {
	octave = semitones / 12
	noteInOctave = semitones % 12
	if noteInOctave < 0 {
		noteInOctave += 12
		octave--
	}
	return octave, noteInOctave
}

func mod12(n int) int {
	n %= 12
	if n < 0 {
		n += 12
	}
	return n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
