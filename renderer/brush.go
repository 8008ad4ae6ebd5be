package renderer

import (
	"image"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// RGB is a plain 8-bit color.
type RGB struct {
	R, G, B uint8
}

// ParseHex parses "#rrggbb" (the leading # optional). Returns false on malformed input.
func ParseHex(s string) (RGB, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// Hex returns the color as "#rrggbb".
func (c RGB) Hex() string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range [3]uint8{c.R, c.G, c.B} {
		b[1+i*2] = digits[v>>4]
		b[2+i*2] = digits[v&0xf]
	}
	return string(b)
}

// Material classifies how a color renders. Decided once when the color is
// set; render paths never compare hex strings.
type Material uint8

const (
	// MaterialMatte is ordinary paint: gradient body, multiply-composited drips.
	MaterialMatte Material = iota
	// MaterialMetallic gets a warm body with specular bands and
	// non-darkening drip compositing.
	MaterialMetallic
)

// Variant selects the brush recipe.
type Variant uint8

const (
	// VariantSpray is the soft, grainy airbrush dot.
	VariantSpray Variant = iota
	// VariantDrip is the harder-edged running-paint blob.
	VariantDrip
)

// BrushKey identifies one cached brush sprite.
type BrushKey struct {
	Radius   int   // bucketed radius, px
	Density  uint8 // pixel density multiplier
	Color    RGB
	Softness uint8 // percent
	Variant  Variant
	Material Material
}

// Brush is an immutable pre-rendered sprite. Built once, then only read.
type Brush struct {
	Key    BrushKey
	Radius float32 // rendered radius at scale 1, px
	Img    *image.RGBA
}

// buildBrush renders the sprite for a key. noiseAmount adds per-pixel alpha
// grain to the spray recipe so stamps do not tile visibly.
func buildBrush(key BrushKey, noiseAmount float64, rng *rand.Rand) *Brush {
	r := float64(key.Radius) * float64(key.Density)
	size := int(2*r) + 2
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	soft := float64(key.Softness) / 100
	// Fraction of the radius that stays solid before falloff begins.
	hard := 1 - soft
	if key.Variant == VariantDrip {
		hard = 0.7
	}

	cx := float64(size) / 2
	cy := cx

	for py := 0; py < size; py++ {
		for px := 0; px < size; px++ {
			dx := float64(px) + 0.5 - cx
			dy := float64(py) + 0.5 - cy
			d := math.Sqrt(dx*dx+dy*dy) / r
			if d >= 1 {
				continue
			}

			var alpha float64
			if d <= hard {
				alpha = 1
			} else {
				t := (d - hard) / (1 - hard)
				switch key.Variant {
				case VariantDrip:
					alpha = math.Pow(1-t, 1.2)
				default:
					alpha = (1 - t) * (1 - t)
				}
			}

			cr, cg, cb := float64(key.Color.R), float64(key.Color.G), float64(key.Color.B)

			if key.Material == MaterialMetallic {
				// Warm body: pull toward a pale gold near the center.
				w := (1 - d) * 0.45
				cr += (255 - cr) * w
				cg += (240 - cg) * w
				cb += (176 - cb) * w

				// Faint horizontal specular bands.
				band := math.Sin(float64(py) / float64(size) * math.Pi * 5)
				if band > 0 {
					s := 0.12 * band * band * band
					cr += (255 - cr) * s
					cg += (255 - cg) * s
					cb += (255 - cb) * s
				}
			}

			if key.Variant == VariantSpray && noiseAmount > 0 {
				alpha *= 1 - noiseAmount*rng.Float64()
			}

			a := uint8(alpha * 255)
			i := img.PixOffset(px, py)
			img.Pix[i+0] = uint8(cr)
			img.Pix[i+1] = uint8(cg)
			img.Pix[i+2] = uint8(cb)
			img.Pix[i+3] = a
		}
	}

	return &Brush{Key: key, Radius: float32(key.Radius), Img: img}
}
