package engine

import (
	"testing"

	"github.com/pthm-cable/aerosol/config"
	"github.com/pthm-cable/aerosol/renderer"
	"github.com/pthm-cable/aerosol/telemetry"
)

// wetnessAround sums field wetness over the cells surrounding a canvas point.
// Grain deposits scatter within the spray footprint, so a single cell may
// stay dry even when the stamp landed.
func wetnessAround(e *Engine, x, y float64) float64 {
	var sum float64
	for dy := -12.0; dy <= 12; dy += 4 {
		for dx := -12.0; dx <= 12; dx += 4 {
			sum += e.Wetness(x+dx, y+dy)
		}
	}
	return sum
}

func TestSingleStampDepositsGrainsAndWetness(t *testing.T) {
	e, surf, _ := newTestEngine(256, 256)
	e.SetNozzleSize(25)
	e.SetPressure(1.0)

	e.Stamp(100, 100)

	if surf.CountVariant(renderer.VariantSpray) == 0 {
		t.Fatal("expected grain stamps on the surface")
	}
	if surf.CountIn(75, 75, 125, 125) == 0 {
		t.Error("expected grains clustered around the stamp point")
	}

	wet := wetnessAround(e, 100, 100)
	if wet <= 0 {
		t.Error("expected positive wetness near the stamp point")
	}
	wetCap := config.Cfg().Wetness.Cap
	for dy := -12.0; dy <= 12; dy += 4 {
		for dx := -12.0; dx <= 12; dx += 4 {
			if w := e.Wetness(100+dx, 100+dy); w > wetCap+1e-6 {
				t.Fatalf("cell wetness %f exceeds cap %f", w, wetCap)
			}
		}
	}
}

func TestWetnessDepositLinearInGrainCount(t *testing.T) {
	// Total pooled paint from identical stamp patterns, as a function of
	// the scatter amount multiplier (which scales the grain count).
	total := func(amountPct float64) float64 {
		surf := renderer.NewRecordingSurface(512, 512)
		e := New(512, 512, Options{Seed: 5, Surface: surf})
		e.SetPressure(1.0)
		e.SetScatterAmount(amountPct)

		for i := 0; i < 16; i++ {
			x := 40.0 + float64(i%4)*110
			y := 40.0 + float64(i/4)*110
			e.Stamp(x, y)
		}

		var sum float64
		for ys := 0.0; ys < 512; ys += 4 {
			for xs := 0.0; xs < 512; xs += 4 {
				sum += e.Wetness(xs, ys)
			}
		}
		return sum
	}

	low := total(100)
	high := total(400)
	if low <= 0 || high <= 0 {
		t.Fatalf("expected deposits at both settings, got %f and %f", low, high)
	}

	// 4x the grains must deposit roughly 4x the paint, not 16x.
	ratio := high / low
	if ratio > 8 {
		t.Errorf("deposit grew superlinearly with grain count, ratio %f", ratio)
	}
	if ratio < 2 {
		t.Errorf("expected more deposit from more grains, ratio %f", ratio)
	}
}

func TestTickZeroIsNoOp(t *testing.T) {
	e, surf, _ := newTestEngine(256, 256)
	e.Stamp(100, 100)

	snap := e.Snapshot()
	wet := wetnessAround(e, 100, 100)
	n := len(surf.Stamps)

	e.Tick(0)
	e.Tick(-0.5)

	after := e.Snapshot()
	if after.SimTime != snap.SimTime {
		t.Errorf("expected sim time unchanged, %f -> %f", snap.SimTime, after.SimTime)
	}
	if got := wetnessAround(e, 100, 100); got != wet {
		t.Errorf("expected wetness unchanged, %f -> %f", wet, got)
	}
	if len(surf.Stamps) != n {
		t.Errorf("expected no new stamps, %d -> %d", n, len(surf.Stamps))
	}
}

func TestTickEvaporatesWetness(t *testing.T) {
	e, _, _ := newTestEngine(256, 256)
	e.StartDrawing(100, 100, 1.0)
	e.StopDrawing()

	before := wetnessAround(e, 100, 100)
	if before <= 0 {
		t.Fatal("expected wetness from the initial stamp")
	}
	for i := 0; i < 120; i++ {
		e.Tick(1.0 / 60)
	}
	after := wetnessAround(e, 100, 100)
	if after >= before {
		t.Errorf("expected wetness to evaporate over time, %f -> %f", before, after)
	}
}

func TestDwellSpawnsAndRetiresDrips(t *testing.T) {
	surf := renderer.NewRecordingSurface(320, 240)
	var spawned, retired int
	e := New(320, 240, Options{
		Seed:    11,
		Surface: surf,
		OnStats: func(s telemetry.WindowStats) {
			spawned += s.DripSpawns
			retired += s.DripRetired
		},
	})
	e.SetDripThreshold(0.05)

	maxDrips := config.Cfg().Drip.MaxDrips

	// Dwell near the top edge so spawned drips have room to run out.
	e.StartDrawing(160, 60, 0.9)
	for i := 0; i < 600; i++ {
		e.Tick(1.0 / 60)
		if d := e.DripCount(); d > maxDrips {
			t.Fatalf("live drips %d exceed the cap %d", d, maxDrips)
		}
	}
	e.StopDrawing()

	// Let the live drips finish after release.
	for i := 0; i < 300; i++ {
		e.Tick(1.0 / 60)
	}

	if spawned == 0 {
		t.Error("expected at least one drip spawn during a long dwell")
	}
	if retired == 0 {
		t.Error("expected at least one drip retirement")
	}
	if surf.CountVariant(renderer.VariantDrip) == 0 {
		t.Error("expected drip trail stamps on the surface")
	}
}

func TestFastSweepSpawnsNoDrips(t *testing.T) {
	e, _, _ := newTestEngine(1280, 720)

	// 600 px/s sweep for two seconds.
	e.StartDrawing(10, 360, 1.0)
	x := 10.0
	for i := 0; i < 120; i++ {
		e.Tick(1.0 / 60)
		x += 10
		e.Draw(x, 360, 1.0)
		if e.DripCount() != 0 {
			t.Fatalf("drip spawned during a fast sweep at tick %d", i)
		}
	}
	e.StopDrawing()

	if e.Snapshot().LiveDrips != 0 {
		t.Errorf("expected no live drips after the sweep, got %d", e.Snapshot().LiveDrips)
	}
}

func TestResetClearsState(t *testing.T) {
	e, _, _ := newTestEngine(256, 256)
	e.StartDrawing(100, 100, 1.0)
	for i := 0; i < 30; i++ {
		e.Tick(1.0 / 60)
	}

	e.Reset()

	if e.stroke.drawing {
		t.Error("expected stroke cleared by reset")
	}
	if e.Snapshot().WetPeak != 0 {
		t.Errorf("expected dry field after reset, peak %f", e.Snapshot().WetPeak)
	}
	if e.DripCount() != 0 {
		t.Errorf("expected no drips after reset, got %d", e.DripCount())
	}
}

func TestResizeKeepsRunning(t *testing.T) {
	e, surf, _ := newTestEngine(256, 256)
	e.Stamp(100, 100)

	e.Resize(512, 512)
	if e.Snapshot().WetPeak != 0 {
		t.Error("expected pooled paint dropped on resize")
	}

	n := len(surf.Stamps)
	e.Stamp(400, 400)
	if len(surf.Stamps) == n {
		t.Error("expected stamping to work after resize")
	}
	if e.Wetness(400, 400) < 0 {
		t.Error("expected valid wetness reads after resize")
	}
}

func TestSnapshotCounts(t *testing.T) {
	e, _, _ := newTestEngine(256, 256)

	snap := e.Snapshot()
	if snap.SimTime != 0 || snap.LiveDrips != 0 || snap.WetPeak != 0 {
		t.Errorf("expected zero snapshot from a fresh engine, got %+v", snap)
	}

	e.Stamp(100, 100)
	e.Tick(0.25)

	snap = e.Snapshot()
	if snap.SimTime != 0.25 {
		t.Errorf("expected sim time 0.25, got %f", snap.SimTime)
	}
	if snap.CachedBrushes == 0 {
		t.Error("expected brushes cached after a stamp")
	}
	if snap.WetPeak <= 0 {
		t.Error("expected wet peak after a stamp")
	}
}
