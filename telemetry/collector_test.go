package telemetry

import "testing"

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(2.0)

	c.RecordStamp()
	c.RecordStamp()
	c.RecordGrains(30)
	c.RecordOverspray(3)
	c.RecordDripSpawn()
	c.RecordDripRetired(2)
	c.RecordClamp()
	c.ObserveWetPeak(0.4)
	c.ObserveWetPeak(0.9)
	c.ObserveWetPeak(0.6)

	if c.ShouldFlush(1.5) {
		t.Error("expected no flush before the window elapses")
	}
	if !c.ShouldFlush(2.0) {
		t.Error("expected flush once the window elapses")
	}

	stats := c.Flush(2.0, 5)
	if stats.WindowStart != 0 || stats.WindowEnd != 2.0 {
		t.Errorf("unexpected window bounds: %f..%f", stats.WindowStart, stats.WindowEnd)
	}
	if stats.Stamps != 2 || stats.Grains != 30 || stats.OversprayBlobs != 3 {
		t.Errorf("unexpected paint counters: %+v", stats)
	}
	if stats.DripSpawns != 1 || stats.DripRetired != 2 || stats.LiveDrips != 5 {
		t.Errorf("unexpected drip counters: %+v", stats)
	}
	if stats.ClampEvents != 1 {
		t.Errorf("expected 1 clamp event, got %d", stats.ClampEvents)
	}
	if stats.WetPeak != 0.9 {
		t.Errorf("expected wet peak 0.9, got %f", stats.WetPeak)
	}

	// Flush starts a fresh window.
	if c.ShouldFlush(3.0) {
		t.Error("expected new window not yet elapsed at t=3.0")
	}
	next := c.Flush(4.0, 0)
	if next.WindowStart != 2.0 || next.Stamps != 0 || next.WetPeak != 0 {
		t.Errorf("expected counters reset after flush, got %+v", next)
	}
}

func TestCollectorZeroWindow(t *testing.T) {
	c := NewCollector(0)
	if !c.ShouldFlush(1.0) {
		t.Error("expected a degenerate window to fall back to one second")
	}
	if c.ShouldFlush(0.5) {
		t.Error("expected half a second to stay inside the fallback window")
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}

	if r.Count(DiagClampedParam) != 0 {
		t.Error("expected empty recorder")
	}
	if ev := r.Last(); ev.Kind != "" {
		t.Errorf("expected zero event from empty recorder, got %+v", ev)
	}

	r.Report(DiagEvent{Kind: DiagClampedParam, Name: "nozzle_size", Original: 999, Corrected: 120})
	r.Report(DiagEvent{Kind: DiagSanitizedRadius, Name: "brush_radius", Original: -3, Corrected: 1})
	r.Report(DiagEvent{Kind: DiagClampedParam, Name: "opacity", Original: -5, Corrected: 80})

	if r.Count(DiagClampedParam) != 2 {
		t.Errorf("expected 2 clamp events, got %d", r.Count(DiagClampedParam))
	}
	if last := r.Last(); last.Name != "opacity" || last.Corrected != 80 {
		t.Errorf("unexpected last event: %+v", last)
	}
}
