// Package wbuf implements the fixed-size work buffer that carries audio and
// control signal between devices, with validity, final, and constant-region
// metadata (spec §4.1).
package wbuf

// pad is the number of extra slots kept before index 0 and after size-1 so
// that SIMD-style readers can look one sample either side of the valid
// range without bounds checks.
const pad = 1

// Buffer is a fixed-size float slot carrier between devices.
type Buffer struct {
	contents   []float64 // len == size+2*pad; contents[pad:pad+size] is the visible range
	size       int
	valid      bool
	final      bool
	constStart int // index into the visible range from which every value repeats contents[constStart]
}

// New allocates a Buffer of size visible slots.
func New(size int) *Buffer {
	return &Buffer{
		contents:   make([]float64, size+2*pad),
		size:       size,
		constStart: size,
	}
}

// Size returns the number of visible slots.
func (b *Buffer) Size() int { return b.size }

// GetContents returns the visible slice (read-only by convention).
func (b *Buffer) GetContents() []float64 {
	return b.contents[pad : pad+b.size]
}

// GetContentsMut returns the visible slice for in-place writes.
func (b *Buffer) GetContentsMut() []float64 {
	return b.contents[pad : pad+b.size]
}

// AtExtended reads index i in [-1, size], allowing the one-sample guard band
// on either side.
func (b *Buffer) AtExtended(i int) float64 {
	return b.contents[pad+i]
}

// Clear zeroes the half-open range [start, stop).
func (b *Buffer) Clear(start, stop int) {
	c := b.GetContentsMut()
	for i := start; i < stop; i++ {
		c[i] = 0
	}
	if start <= 0 && stop >= b.size {
		b.constStart = 0
	}
}

// Copy does dst[i] = src[i] for i in [start, stop).
func Copy(dst, src *Buffer, start, stop int) {
	d := dst.GetContentsMut()
	s := src.GetContents()
	copy(d[start:stop], s[start:stop])
	dst.constStart = propagateConstStart(src, dst, start, stop)
}

// Mix does dst[i] += src[i] for i in [start, stop).
func Mix(dst, src *Buffer, start, stop int) {
	d := dst.GetContentsMut()
	s := src.GetContents()
	for i := start; i < stop; i++ {
		d[i] += s[i]
	}
	// A mix can only stay constant past the point where both operands were
	// already constant; conservatively fall back to "not constant" if either
	// side had non-constant content in range.
	cs := src.constStart
	if cs < start {
		cs = start
	}
	if dst.constStart < cs {
		dst.constStart = stop
	}
}

func propagateConstStart(src, dst *Buffer, start, stop int) int {
	if src.constStart <= start {
		return src.constStart
	}
	if src.constStart < stop {
		return src.constStart
	}
	return stop
}

// SetConstStart declares that contents[idx:] is constant (== contents[idx]).
func (b *Buffer) SetConstStart(idx int) { b.constStart = idx }

// GetConstStart returns the current constant-region marker.
func (b *Buffer) GetConstStart() int { return b.constStart }

// SetFinal declares whether this buffer's contents will not change again
// until the next render cycle (used to short-circuit decayed voices).
func (b *Buffer) SetFinal(flag bool) { b.final = flag }

// IsFinal reports the final-region flag.
func (b *Buffer) IsFinal() bool { return b.final }

// SetValid marks whether a producer has written meaningful data this cycle.
func (b *Buffer) SetValid(flag bool) { b.valid = flag }

// IsValid reports false if buf is nil or has not been written this cycle.
func IsValid(buf *Buffer) bool {
	return buf != nil && buf.valid
}

// FillConst sets every visible slot to v and marks the whole buffer constant.
func (b *Buffer) FillConst(v float64) {
	c := b.GetContentsMut()
	for i := range c {
		c[i] = v
	}
	b.constStart = 0
	b.valid = true
}
