// Package renderer provides brush sprite generation, the bounded brush cache,
// and the raster surfaces spray stamps land on.
package renderer

// BlendMode selects the compositing rule for a stamp.
type BlendMode uint8

const (
	// BlendSourceOver is plain alpha compositing.
	BlendSourceOver BlendMode = iota
	// BlendMultiply darkens; repeated passes accumulate like wet paint.
	BlendMultiply
	// BlendScreen lightens; used for highlight passes.
	BlendScreen
)

// Surface is a 2D raster sink. The engine draws exclusively through it, so a
// headless recording surface and the raylib canvas are interchangeable.
type Surface interface {
	// StampBrush composites the brush centered at (x, y), scaled so its
	// rendered radius is radius px, with the given extra alpha and blend mode.
	StampBrush(b *Brush, x, y, radius, alpha float32, mode BlendMode)

	// Size returns the surface dimensions in pixels.
	Size() (int, int)
}
