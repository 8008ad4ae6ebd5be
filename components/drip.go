// Package components defines the ECS components for drip particles.
package components

// Position is a drip's current canvas position.
type Position struct {
	X, Y float32
}

// Motion holds a drip's integration state.
type Motion struct {
	PrevX, PrevY float32 // position at the previous tick
	OriginX      float32 // spawn x; lateral offsets are relative to it
	VelY         float32 // vertical velocity, px/s
	Travel       float32 // accumulated vertical travel, px
}

// Volume is a drip's remaining paint mass and footprint.
type Volume struct {
	V          float32 // remaining mass; non-increasing over the lifetime
	BaseRadius float32 // px
}

// Profile fixes a drip's randomized character at spawn. Immutable afterwards.
type Profile struct {
	WobbleFreq   float32 // rad per px of travel
	WobbleAmp    float32 // px
	WobblePhase  float32
	HookDir      float32 // -1 or +1
	HookStrength float32 // lateral curvature per px^2 of travel
	WidenRate    float32 // radius growth per px of travel
	NoiseSeed    float32 // offset into the trail noise field
	TaperFrac    float32 // taper target as fraction of head radius
	GravityScale float32 // small per-drip gravity randomization
	Bead         bool    // terminal bead dot
	PoolStamp    bool    // may leave a wider stamp near the trail start
}
