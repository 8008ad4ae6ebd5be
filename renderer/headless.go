package renderer

// StampOp records one brush stamp for headless runs and tests.
type StampOp struct {
	X, Y     float32
	Radius   float32
	Alpha    float32
	Mode     BlendMode
	Variant  Variant
	Material Material
	Color    RGB
}

// RecordingSurface is a Surface that records stamps instead of rasterizing.
// It backs headless mode and every engine test.
type RecordingSurface struct {
	w, h   int
	Stamps []StampOp
}

// NewRecordingSurface creates a recording surface of the given size.
func NewRecordingSurface(w, h int) *RecordingSurface {
	return &RecordingSurface{w: w, h: h}
}

// StampBrush records the stamp.
func (s *RecordingSurface) StampBrush(b *Brush, x, y, radius, alpha float32, mode BlendMode) {
	s.Stamps = append(s.Stamps, StampOp{
		X:        x,
		Y:        y,
		Radius:   radius,
		Alpha:    alpha,
		Mode:     mode,
		Variant:  b.Key.Variant,
		Material: b.Key.Material,
		Color:    b.Key.Color,
	})
}

// Size returns the surface dimensions.
func (s *RecordingSurface) Size() (int, int) {
	return s.w, s.h
}

// Reset drops all recorded stamps.
func (s *RecordingSurface) Reset() {
	s.Stamps = s.Stamps[:0]
}

// CountIn returns the number of stamps whose center lies in [x0,x1)x[y0,y1).
func (s *RecordingSurface) CountIn(x0, y0, x1, y1 float32) int {
	n := 0
	for i := range s.Stamps {
		op := &s.Stamps[i]
		if op.X >= x0 && op.X < x1 && op.Y >= y0 && op.Y < y1 {
			n++
		}
	}
	return n
}

// CountVariant returns the number of stamps drawn with the given brush variant.
func (s *RecordingSurface) CountVariant(v Variant) int {
	n := 0
	for i := range s.Stamps {
		if s.Stamps[i].Variant == v {
			n++
		}
	}
	return n
}
