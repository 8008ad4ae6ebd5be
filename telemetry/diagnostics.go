package telemetry

import "log/slog"

// DiagKind classifies a correction event.
type DiagKind string

const (
	// DiagClampedParam reports a setter input clamped into its documented range.
	DiagClampedParam DiagKind = "clamped_param"
	// DiagSanitizedRadius reports a non-finite or oversized brush radius corrected in place.
	DiagSanitizedRadius DiagKind = "sanitized_radius"
	// DiagTrailRadiusCapped reports a drip trail radius forced under its ceiling.
	DiagTrailRadiusCapped DiagKind = "trail_radius_capped"
)

// DiagEvent describes a single non-fatal correction applied by the engine.
type DiagEvent struct {
	Kind      DiagKind
	Name      string  // parameter or value name
	Original  float64 // value as supplied
	Corrected float64 // value after correction
}

// Diag receives correction diagnostics. Implementations must be cheap;
// events fire from hot rendering paths.
type Diag interface {
	Report(ev DiagEvent)
}

// SlogDiag logs diagnostics through slog at Warn level.
type SlogDiag struct {
	Logger *slog.Logger
}

// Report logs the event.
func (d *SlogDiag) Report(ev DiagEvent) {
	l := d.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Warn("value corrected",
		"kind", string(ev.Kind),
		"name", ev.Name,
		"original", ev.Original,
		"corrected", ev.Corrected,
	)
}

// Recorder captures diagnostics for assertions in tests.
type Recorder struct {
	Events []DiagEvent
}

// Report appends the event.
func (r *Recorder) Report(ev DiagEvent) {
	r.Events = append(r.Events, ev)
}

// Count returns the number of recorded events of the given kind.
func (r *Recorder) Count(kind DiagKind) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// Last returns the most recent event, or a zero event if none were recorded.
func (r *Recorder) Last() DiagEvent {
	if len(r.Events) == 0 {
		return DiagEvent{}
	}
	return r.Events[len(r.Events)-1]
}

type nopDiag struct{}

func (nopDiag) Report(DiagEvent) {}

// Discard returns a sink that drops all events.
func Discard() Diag {
	return nopDiag{}
}
