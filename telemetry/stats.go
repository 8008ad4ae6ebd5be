package telemetry

// WindowStats summarizes engine activity over one stats window.
type WindowStats struct {
	WindowStart float64 `csv:"-"`
	WindowEnd   float64 `csv:"window_end"`

	Stamps         int     `csv:"stamps"`
	Grains         int     `csv:"grains"`
	OversprayBlobs int     `csv:"overspray_blobs"`
	DripSpawns     int     `csv:"drip_spawns"`
	DripRetired    int     `csv:"drip_retired"`
	ClampEvents    int     `csv:"clamp_events"`
	WetPeak        float64 `csv:"wet_peak"`
	LiveDrips      int     `csv:"live_drips"`
}
