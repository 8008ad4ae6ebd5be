package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/aerosol/config"
	"github.com/pthm-cable/aerosol/engine"
	"github.com/pthm-cable/aerosol/renderer"
	"github.com/pthm-cable/aerosol/telemetry"
)

const panelWidth = 260

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run a scripted stroke without graphics")
	seed := flag.Int64("seed", 0, "RNG seed (0 = 1)")
	maxTicks := flag.Int("max-ticks", 600, "Headless: stop after N ticks")
	outputDir := flag.String("output-dir", "", "Output directory for CSV stats and config snapshot")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *headless {
		runHeadless(cfg, *seed, *maxTicks, *outputDir)
		return
	}
	runWindow(cfg, *seed, *outputDir)
}

// runHeadless plays a scripted stroke onto a recording surface: a sweep, a
// dwell, release, then free ticks so drips run out. Useful for tuning from
// CSV output without a window.
func runHeadless(cfg *config.Config, seed int64, maxTicks int, outputDir string) {
	om, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	surf := renderer.NewRecordingSurface(cfg.Screen.Width, cfg.Screen.Height)
	eng := engine.New(cfg.Screen.Width, cfg.Screen.Height, engine.Options{
		Seed:    seed,
		Surface: surf,
		Diag:    &telemetry.SlogDiag{},
		OnStats: func(stats telemetry.WindowStats) {
			if err := om.WriteStats(stats); err != nil {
				slog.Error("failed to write stats", "error", err)
			}
		},
	})

	slog.Info("starting headless run", "seed", seed, "max_ticks", maxTicks)

	const dt = 1.0 / 60.0
	w := float64(cfg.Screen.Width)
	h := float64(cfg.Screen.Height)

	sweepTicks := maxTicks / 3
	dwellTicks := maxTicks / 3

	eng.StartDrawing(w*0.15, h*0.3, 0.9)
	for tick := 0; tick < maxTicks; tick++ {
		switch {
		case tick < sweepTicks:
			t := float64(tick) / float64(sweepTicks)
			eng.Draw(w*(0.15+0.5*t), h*(0.3+0.15*t), 0.9)
		case tick == sweepTicks+dwellTicks:
			eng.StopDrawing()
		}
		eng.Tick(dt)
	}

	snap := eng.Snapshot()
	slog.Info("headless run finished",
		"stamps", len(surf.Stamps),
		"live_drips", snap.LiveDrips,
		"wet_peak", snap.WetPeak,
		"sim_time", snap.SimTime,
	)
}

// panelState mirrors the slider values so raygui only pushes changes through
// the engine setters when the user moves something.
type panelState struct {
	nozzle    float32
	pressure  float32
	distance  float32
	flow      float32
	opacity   float32
	softness  float32
	overspray float32

	threshold   float32
	gravity     float32
	viscosity   float32
	evaporation float32

	dripsOn bool
	visible bool
}

func runWindow(cfg *config.Config, seed int64, outputDir string) {
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Aerosol")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	om, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer om.Close()

	surf := renderer.NewRaylibSurface(cfg.Screen.Width, cfg.Screen.Height)
	defer surf.Unload()

	eng := engine.New(cfg.Screen.Width, cfg.Screen.Height, engine.Options{
		Seed:    seed,
		Surface: surf,
		Diag:    &telemetry.SlogDiag{},
		OnStats: func(stats telemetry.WindowStats) {
			if err := om.WriteStats(stats); err != nil {
				slog.Error("failed to write stats", "error", err)
			}
		},
	})

	ps := panelState{
		nozzle:      float32(cfg.Spray.NozzleSize),
		pressure:    float32(cfg.Spray.Pressure),
		distance:    float32(cfg.Spray.Distance),
		flow:        float32(cfg.Spray.Flow * 100),
		opacity:     float32(cfg.Spray.Opacity * 100),
		softness:    float32(cfg.Spray.Softness * 100),
		overspray:   float32(cfg.Spray.Overspray * 100),
		threshold:   float32(cfg.Drip.Threshold),
		gravity:     float32(cfg.Drip.Gravity),
		viscosity:   float32(cfg.Drip.Viscosity),
		evaporation: float32(cfg.Drip.Evaporation),
		dripsOn:     cfg.Drip.Enabled,
		visible:     true,
	}

	drawing := false

	for !rl.WindowShouldClose() {
		// Keyboard shortcuts
		if rl.IsKeyPressed(rl.KeyTab) {
			ps.visible = !ps.visible
		}
		if rl.IsKeyPressed(rl.KeyD) {
			ps.dripsOn = eng.ToggleDrips()
		}
		if rl.IsKeyPressed(rl.KeyC) {
			surf.Clear()
			eng.Reset()
			drawing = false
		}

		// Pointer -> stroke lifecycle. The panel owns the right edge.
		mouse := rl.GetMousePosition()
		overPanel := ps.visible && mouse.X > float32(cfg.Screen.Width-panelWidth)

		switch {
		case rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !overPanel:
			eng.StartDrawing(float64(mouse.X), float64(mouse.Y), float64(ps.pressure))
			drawing = true
		case rl.IsMouseButtonDown(rl.MouseButtonLeft) && drawing:
			eng.Draw(float64(mouse.X), float64(mouse.Y), float64(ps.pressure))
		case rl.IsMouseButtonReleased(rl.MouseButtonLeft) && drawing:
			eng.StopDrawing()
			drawing = false
		}

		eng.Tick(float64(rl.GetFrameTime()))

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)
		surf.Present()
		if ps.visible {
			drawPanel(eng, &ps, cfg)
		}
		drawHUD(eng, cfg)
		rl.EndDrawing()
	}
}

// drawPanel renders the parameter sliders and pushes changes into the engine.
func drawPanel(eng *engine.Engine, ps *panelState, cfg *config.Config) {
	x := float32(cfg.Screen.Width - panelWidth + 10)
	y := float32(10)
	w := float32(panelWidth - 70)

	rl.DrawRectangle(int32(cfg.Screen.Width-panelWidth), 0, panelWidth, int32(cfg.Screen.Height), rl.Fade(rl.LightGray, 0.85))
	rl.DrawText("Spray", int32(x), int32(y), 16, rl.DarkGray)
	y += 26

	slider := func(label string, v float32, lo, hi float32, apply func(float64)) float32 {
		rl.DrawText(label, int32(x), int32(y), 12, rl.Gray)
		y += 16
		nv := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: w, Height: 18}, "", "", v, lo, hi)
		y += 26
		if nv != v {
			apply(float64(nv))
		}
		return nv
	}

	ps.nozzle = slider("Nozzle (px)", ps.nozzle, 2, 120, eng.SetNozzleSize)
	ps.pressure = slider("Pressure", ps.pressure, 0, 1, eng.SetPressure)
	ps.distance = slider("Distance (px)", ps.distance, 2, 200, eng.SetDistance)
	ps.flow = slider("Flow (%)", ps.flow, 80, 120, eng.SetFlow)
	ps.opacity = slider("Opacity (%)", ps.opacity, 80, 100, eng.SetOpacity)
	ps.softness = slider("Softness (%)", ps.softness, 70, 95, eng.SetSoftness)
	ps.overspray = slider("Overspray (%)", ps.overspray, 0, 100, eng.SetOverspray)

	y += 8
	rl.DrawText("Drips", int32(x), int32(y), 16, rl.DarkGray)
	y += 26

	ps.threshold = slider("Threshold", ps.threshold, 0.05, 1.5, eng.SetDripThreshold)
	ps.gravity = slider("Gravity", ps.gravity, 50, 600, eng.SetDripGravity)
	ps.viscosity = slider("Viscosity", ps.viscosity, 0.2, 6, eng.SetDripViscosity)
	ps.evaporation = slider("Evaporation", ps.evaporation, 0.005, 0.5, eng.SetDripEvaporation)

	label := "Drips: off (D)"
	if ps.dripsOn {
		label = "Drips: on (D)"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: 24}, label) {
		ps.dripsOn = eng.ToggleDrips()
	}
	y += 32

	rl.DrawText("Color", int32(x), int32(y), 16, rl.DarkGray)
	y += 22

	swatches := []struct {
		hex string
		col rl.Color
	}{
		{"#1c1c1e", rl.NewColor(28, 28, 30, 255)},
		{"#b3261e", rl.NewColor(179, 38, 30, 255)},
		{"#1f4fa3", rl.NewColor(31, 79, 163, 255)},
		{"#2e7d32", rl.NewColor(46, 125, 50, 255)},
		{cfg.Spray.MetallicHex, rl.NewColor(201, 162, 39, 255)},
	}
	sx := x
	for _, sw := range swatches {
		rl.DrawRectangle(int32(sx), int32(y), 28, 28, sw.col)
		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
			m := rl.GetMousePosition()
			if m.X >= sx && m.X < sx+28 && m.Y >= y && m.Y < y+28 {
				eng.SetColorHex(sw.hex)
			}
		}
		sx += 34
	}
}

// drawHUD shows live counts in the corner.
func drawHUD(eng *engine.Engine, cfg *config.Config) {
	snap := eng.Snapshot()
	rl.DrawText(
		fmt.Sprintf("drips: %d  brushes: %d", snap.LiveDrips, snap.CachedBrushes),
		10, int32(cfg.Screen.Height-24), 14, rl.DarkGray)
	rl.DrawFPS(10, 10)
}
