package waveshape

import "fmt"

// Shaper applies a transfer table per sample with linear interpolation
// between adjacent entries. Input outside [-1, 1] is clamped to the table
// edges before lookup.
type Shaper struct {
	table []float64
}

// NewShaper wraps a transfer table. The table must have at least two
// entries.
func NewShaper(table []float64) (*Shaper, error) {
	if len(table) < 2 {
		return nil, fmt.Errorf("waveshape: table must have >= 2 entries: %d", len(table))
	}
	return &Shaper{table: table}, nil
}

// ProcessSample maps one sample through the transfer table.
func (s *Shaper) ProcessSample(x float64) float64 {
	n := len(s.table)

	pos := (x + 1) / 2 * float64(n-1)
	if pos <= 0 {
		return s.table[0]
	}
	if pos >= float64(n-1) {
		return s.table[n-1]
	}

	i := int(pos)
	t := pos - float64(i)
	return s.table[i]*(1-t) + s.table[i+1]*t
}

// ProcessInPlace applies the transfer table to buf in place.
func (s *Shaper) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = s.ProcessSample(buf[i])
	}
}
