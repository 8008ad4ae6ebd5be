// Package config provides configuration loading and access for the paint engine.
//
// Every empirically tuned constant of the simulation lives here so the engine
// can be retuned without code changes. Values the user drives at runtime
// (nozzle, pressure, drip knobs) only take their defaults from this package;
// the live copies sit behind the engine's clamped setter surface.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Spray     SprayConfig     `yaml:"spray"`
	Grain     GrainConfig     `yaml:"grain"`
	Overspray OversprayConfig `yaml:"overspray"`
	Stroke    StrokeConfig    `yaml:"stroke"`
	Wetness   WetnessConfig   `yaml:"wetness"`
	Drip      DripConfig      `yaml:"drip"`
	Brush     BrushConfig     `yaml:"brush"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the demo app.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SprayConfig holds defaults for the user-tunable parameter surface.
// Runtime values are clamped copies owned by the engine.
type SprayConfig struct {
	ColorHex      string  `yaml:"color_hex"`      // initial paint color
	MetallicHex   string  `yaml:"metallic_hex"`   // hex that selects the metallic material
	NozzleSize    float64 `yaml:"nozzle_size"`    // px, clamped [2,120]
	Softness      float64 `yaml:"softness"`       // [0.70,0.95]
	Opacity       float64 `yaml:"opacity"`        // [0.80,1.00]
	Flow          float64 `yaml:"flow"`           // [0.80,1.20]
	ScatterRadius float64 `yaml:"scatter_radius"` // multiplier, percentage setter
	ScatterAmount float64 `yaml:"scatter_amount"` // multiplier
	ScatterSize   float64 `yaml:"scatter_size"`   // multiplier
	Overspray     float64 `yaml:"overspray"`      // [0,1]
	Distance      float64 `yaml:"distance"`       // simulated px, >= 2
	Pressure      float64 `yaml:"pressure"`       // [0,1]
}

// GrainConfig tunes the grain cloud and the speed->thickness response.
type GrainConfig struct {
	ReferenceNozzle float64 `yaml:"reference_nozzle"` // nozzle diameter all ratios are relative to
	ReferenceDist   float64 `yaml:"reference_dist"`   // distance at which alpha scale is nominal
	ConeBase        float64 `yaml:"cone_base"`        // log coefficient of the cone half-angle
	ConePressure    float64 `yaml:"cone_pressure"`    // pressure contribution to cone half-angle
	SigmaScale      float64 `yaml:"sigma_scale"`      // grain sigma per unit distance ratio
	SigmaFloor      float64 `yaml:"sigma_floor"`      // px, minimum grain sigma
	AlphaScaleMax   float64 `yaml:"alpha_scale_max"`
	MaxDots         int     `yaml:"max_dots"`        // hard per-stamp grain cap
	DotDensity      float64 `yaml:"dot_density"`     // dots per (area ratio * display radius)
	LogNormalSigma  float64 `yaml:"lognormal_sigma"` // sigma of the grain radius draw
	OutlierChance   float64 `yaml:"outlier_chance"`  // fat-grain probability
	OutlierScale    float64 `yaml:"outlier_scale"`
	MaxGrainRatio   float64 `yaml:"max_grain_ratio"` // grain radius cap as ratio of base grain
	SlowSpeed       float64 `yaml:"slow_speed"`      // px/s, dwell end of thickness response
	FastSpeed       float64 `yaml:"fast_speed"`      // px/s, sweep end of thickness response
	ThickMax        float64 `yaml:"thick_max"`       // multiplier at zero speed
	ThinMin         float64 `yaml:"thin_min"`        // multiplier at fast speed
	ThicknessEase   float64 `yaml:"thickness_ease"`  // ease-in exponent
	DepositScale    float64 `yaml:"deposit_scale"`   // wetness per depositing grain
	DepositEvery    int     `yaml:"deposit_every"`   // grains per wetness deposit
}

// OversprayConfig tunes the sparse halo pass.
type OversprayConfig struct {
	RadiusScale   float64 `yaml:"radius_scale"`   // halo radius as multiple of display radius
	Spacing       float64 `yaml:"spacing"`        // px travelled between halo emissions
	DwellInterval float64 `yaml:"dwell_interval"` // s between halo emissions while stationary
	MaxBlobs      int     `yaml:"max_blobs"`      // clusters per emission
	Elongation    float64 `yaml:"elongation"`     // stretch along the motion direction
	CenterBias    float64 `yaml:"center_bias"`    // radial bias exponent for size/opacity
	DepositScale  float64 `yaml:"deposit_scale"`
}

// StrokeConfig tunes path sampling and the speed estimator.
type StrokeConfig struct {
	SpacingFraction   float64 `yaml:"spacing_fraction"`   // stamp spacing as fraction of nozzle
	JitterFraction    float64 `yaml:"jitter_fraction"`    // per-stamp positional jitter
	PressureSmoothing float64 `yaml:"pressure_smoothing"` // exponential factor per sample
	SpeedTau          float64 `yaml:"speed_tau"`          // s, EMA time constant
	StationarySpeed   float64 `yaml:"stationary_speed"`   // px/s, below this is a dwell
	SampleHz          float64 `yaml:"sample_hz"`          // hold-sampler cadence
	DwellDeposit      float64 `yaml:"dwell_deposit"`      // extra centered wetness per dwell emission
}

// WetnessConfig tunes the pooled-paint grid.
type WetnessConfig struct {
	Downsample    int     `yaml:"downsample"`     // canvas px per field cell
	Cap           float64 `yaml:"cap"`            // per-cell ceiling
	Evaporation   float64 `yaml:"evaporation"`    // default 1/s decay, runtime-settable
	NeighborShare float64 `yaml:"neighbor_share"` // deposit fraction bled to orthogonal neighbors
	NormalSpeed   float64 `yaml:"normal_speed"`   // px/s at which neighbor bleed vanishes
}

// DripConfig tunes spawning and drip physics. Threshold, gravity, viscosity
// and evaporation are defaults for runtime setters; the rest is fixed tuning.
type DripConfig struct {
	Enabled          bool    `yaml:"enabled"`
	Threshold        float64 `yaml:"threshold"`          // center wetness needed, [0.05,1.5]
	Gravity          float64 `yaml:"gravity"`            // px/s^2, [50,600]
	Viscosity        float64 `yaml:"viscosity"`          // 1/s damping, [0.2,6.0]
	Evaporation      float64 `yaml:"evaporation"`        // field decay 1/s, [0.005,0.5]
	MaxDrips         int     `yaml:"max_drips"`
	CooldownFrames   int     `yaml:"cooldown_frames"`    // per-cell frames before re-spawn
	MinSpawnInterval float64 `yaml:"min_spawn_interval"` // s, per-neighborhood
	FastCutoffFactor float64 `yaml:"fast_cutoff_factor"` // x slow_speed; no spawns above
	PassiveDecay     float64 `yaml:"passive_decay"`      // local decay applied instead, fast case
	PoolFactor       float64 `yaml:"pool_factor"`        // 3x3 need as multiple of center need
	CenterWeight     float64 `yaml:"center_weight"`      // trigger share of the center term
	TriggerKnee      float64 `yaml:"trigger_knee"`
	TriggerMax       float64 `yaml:"trigger_max"`
	ProbPower        float64 `yaml:"prob_power"`        // onset exponent above the knee
	SearchBias       float64 `yaml:"search_bias"`       // downward site-search bias
	VolumeScale      float64 `yaml:"volume_scale"`      // pool excess -> volume
	VolumeMin        float64 `yaml:"volume_min"`
	VolumeMax        float64 `yaml:"volume_max"`
	VolumeFloor      float64 `yaml:"volume_floor"`      // retire below this
	DrainFraction    float64 `yaml:"drain_fraction"`    // neighborhood drain on spawn
	MaxTravel        float64 `yaml:"max_travel"`        // px, retire beyond this
	TrailStep        float64 `yaml:"trail_step"`        // px between trail stamps
	TrailNoiseScale  float64 `yaml:"trail_noise_scale"`
	WidenRate        float64 `yaml:"widen_rate"`        // radius growth per px travelled
	RadiusHardCap    float64 `yaml:"radius_hard_cap"`   // px, global trail radius ceiling
	DepositPerPixel  float64 `yaml:"deposit_per_pixel"` // volume lost per px travelled
	EvapLossPerSec   float64 `yaml:"evap_loss_per_sec"` // volume lost per second
	FollowOnDeposit  float64 `yaml:"follow_on_deposit"` // wetness given back per trail point
	LateralClamp     float64 `yaml:"lateral_clamp"`     // max lateral drift as fraction of travel
	WobbleFreqMin    float64 `yaml:"wobble_freq_min"`
	WobbleFreqMax    float64 `yaml:"wobble_freq_max"`
	WobbleAmpMax     float64 `yaml:"wobble_amp_max"`
	HookMax          float64 `yaml:"hook_max"`
	TaperMin         float64 `yaml:"taper_min"` // taper target fraction range
	TaperMax         float64 `yaml:"taper_max"`
	BeadChance       float64 `yaml:"bead_chance"`
	PoolStampChance  float64 `yaml:"pool_stamp_chance"`
}

// BrushConfig tunes the brush sprite cache.
type BrushConfig struct {
	CacheMax     int     `yaml:"cache_max"`     // entries before eviction
	RadiusMax    float64 `yaml:"radius_max"`    // sanitized radius ceiling, px
	RadiusBucket float64 `yaml:"radius_bucket"` // px per cache bucket
	NoiseAmount  float64 `yaml:"noise_amount"`  // per-pixel alpha grain in brush sprites
}

// TelemetryConfig holds telemetry settings.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds per stats window
}

// DerivedConfig holds values derived from loaded config.
type DerivedConfig struct {
	ScreenW32       float32 // Screen.Width as float32
	ScreenH32       float32
	ReferenceNozzle float32
	SlowSpeed       float32
	SamplePeriod    float64 // 1 / Stroke.SampleHz
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.ReferenceNozzle = float32(c.Grain.ReferenceNozzle)
	c.Derived.SlowSpeed = float32(c.Grain.SlowSpeed)
	if c.Stroke.SampleHz > 0 {
		c.Derived.SamplePeriod = 1.0 / c.Stroke.SampleHz
	} else {
		c.Derived.SamplePeriod = 1.0 / 60.0
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
