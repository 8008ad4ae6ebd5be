package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// RaylibSurface is the on-screen canvas: a render texture the engine stamps
// into, blitted to the window once per frame. Must be created after the
// raylib window exists.
type RaylibSurface struct {
	target   rl.RenderTexture2D
	textures map[BrushKey]rl.Texture2D
	w, h     int
}

// NewRaylibSurface creates the canvas render texture and clears it to white.
func NewRaylibSurface(w, h int) *RaylibSurface {
	s := &RaylibSurface{
		target:   rl.LoadRenderTexture(int32(w), int32(h)),
		textures: make(map[BrushKey]rl.Texture2D),
		w:        w,
		h:        h,
	}
	rl.BeginTextureMode(s.target)
	rl.ClearBackground(rl.White)
	rl.EndTextureMode()
	return s
}

// StampBrush composites the brush into the canvas.
func (s *RaylibSurface) StampBrush(b *Brush, x, y, radius, alpha float32, mode BlendMode) {
	tex := s.texture(b)

	var blend rl.BlendMode
	switch mode {
	case BlendMultiply:
		blend = rl.BlendMultiplied
	case BlendScreen:
		// raylib has no native screen blend; additive is the closest
		// non-darkening mode.
		blend = rl.BlendAdditive
	default:
		blend = rl.BlendAlpha
	}

	src := rl.NewRectangle(0, 0, float32(tex.Width), float32(tex.Height))
	dst := rl.NewRectangle(x-radius, y-radius, radius*2, radius*2)

	rl.BeginTextureMode(s.target)
	rl.BeginBlendMode(blend)
	rl.DrawTexturePro(tex, src, dst, rl.NewVector2(0, 0), 0, rl.Fade(rl.White, alpha))
	rl.EndBlendMode()
	rl.EndTextureMode()
}

// Size returns the canvas dimensions.
func (s *RaylibSurface) Size() (int, int) {
	return s.w, s.h
}

// Present draws the canvas to the window. Render textures are stored
// bottom-up, hence the negative source height.
func (s *RaylibSurface) Present() {
	src := rl.NewRectangle(0, 0, float32(s.w), -float32(s.h))
	rl.DrawTextureRec(s.target.Texture, src, rl.NewVector2(0, 0), rl.White)
}

// Clear wipes the canvas back to white.
func (s *RaylibSurface) Clear() {
	rl.BeginTextureMode(s.target)
	rl.ClearBackground(rl.White)
	rl.EndTextureMode()
}

// Unload releases GPU resources.
func (s *RaylibSurface) Unload() {
	for _, tex := range s.textures {
		rl.UnloadTexture(tex)
	}
	rl.UnloadRenderTexture(s.target)
}

// texture uploads the brush sprite on first use.
func (s *RaylibSurface) texture(b *Brush) rl.Texture2D {
	if tex, ok := s.textures[b.Key]; ok {
		return tex
	}
	img := rl.NewImageFromImage(b.Img)
	tex := rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	rl.UnloadImage(img)
	s.textures[b.Key] = tex
	return tex
}
