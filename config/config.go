// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Physics    PhysicsConfig    `yaml:"physics"`
	World      WorldConfig      `yaml:"world"`
	Zombie     ZombieConfig     `yaml:"zombie"`
	Perception PerceptionConfig `yaml:"perception"`
	Noise      NoiseConfig      `yaml:"noise"`
	Light      LightConfig      `yaml:"light"`
	Memory     MemoryConfig     `yaml:"memory"`
	Decision   DecisionConfig   `yaml:"decision"`
	Player     PlayerConfig     `yaml:"player"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Range is a closed interval sampled uniformly.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// PhysicsConfig holds tick parameters.
type PhysicsConfig struct {
	DT    float64 `yaml:"dt"`     // Fixed step used by headless runs
	MaxDT float64 `yaml:"max_dt"` // Upper clamp applied to every Step
}

// WorldConfig holds level dimensions.
type WorldConfig struct {
	Size         int     `yaml:"size"`          // Tiles per side
	TileSize     float64 `yaml:"tile_size"`     // World units per tile
	EdgeMargin   float64 `yaml:"edge_margin"`   // Clamp inset from the edge
	Walls        int     `yaml:"walls"`         // Generated wall count for sandbox levels
	SpawnSpread  float64 `yaml:"spawn_spread"`  // Fraction of size used for random spawns
	AgentHeight  float64 `yaml:"agent_height"`  // Y coordinate for agents and players
	EyeHeight    float64 `yaml:"eye_height"`    // Ray origin offset for line of sight
	AgentExtent  float64 `yaml:"agent_extent"`  // Collision half-size of agents
	PlayerExtent float64 `yaml:"player_extent"` // Collision half-size of the player
}

// ZombieConfig holds per-agent movement and attack defaults for aggressive agents.
type ZombieConfig struct {
	WanderSpeed      float64 `yaml:"wander_speed"`
	InvestigateSpeed float64 `yaml:"investigate_speed"`
	ChaseSpeed       float64 `yaml:"chase_speed"`
	DetectRange      float64 `yaml:"detect_range"`
	AttackRadius     float64 `yaml:"attack_radius"`
	DamageRate       float64 `yaml:"damage_rate"` // Damage per second of contact
	InitialDecision  Range   `yaml:"initial_decision"`
}

// PerceptionConfig holds arbitration scoring parameters.
type PerceptionConfig struct {
	LightWeight     float64 `yaml:"light_weight"`
	StimulusFalloff float64 `yaml:"stimulus_falloff"`
	SourceFalloff   float64 `yaml:"source_falloff"`
	Flicker         Range   `yaml:"flicker"`
	LoseSightFactor float64 `yaml:"lose_sight_factor"` // Chasing gives up beyond detect_range * this
}

// NoiseConfig holds noise ring and recall parameters.
type NoiseConfig struct {
	RippleSpeedMultiplier float64             `yaml:"ripple_speed_multiplier"`
	RecallCooldown        float64             `yaml:"recall_cooldown"` // Seconds a heard emitter stays suppressed
	StaleAfter            float64             `yaml:"stale_after"`     // Seconds before an unheard entry is forgotten
	ExpireStrength        float64             `yaml:"expire_strength"` // Stimuli at or below this strength are removed
	MinFadeTTL            float64             `yaml:"min_fade_ttl"`
	MinRippleSpeed        float64             `yaml:"min_ripple_speed"`
	Click                 NoiseClickConfig    `yaml:"click"`
	Footstep              FootstepNoiseConfig `yaml:"footstep"`
}

// NoiseClickConfig describes the sandbox click noise.
type NoiseClickConfig struct {
	Strength     float64 `yaml:"strength"`
	Radius       float64 `yaml:"radius"`
	TTL          float64 `yaml:"ttl"`
	VisualRadius float64 `yaml:"visual_radius"`
}

// FootstepNoiseConfig describes noises emitted by a moving player.
type FootstepNoiseConfig struct {
	CellSize       float64 `yaml:"cell_size"` // Emitter id grid so nearby steps share habituation
	Strength       float64 `yaml:"strength"`
	RadiusBase     float64 `yaml:"radius_base"`
	RadiusPerLevel float64 `yaml:"radius_per_level"`
	TTL            float64 `yaml:"ttl"`
	SprintLevel    float64 `yaml:"sprint_level"`
	WalkInterval   float64 `yaml:"walk_interval"`
	SprintInterval float64 `yaml:"sprint_interval"`
}

// LightConfig holds light source defaults.
type LightConfig struct {
	StrengthPerIntensity float64          `yaml:"strength_per_intensity"`
	DynamicTTL           float64          `yaml:"dynamic_ttl"`
	DynamicIntensity     float64          `yaml:"dynamic_intensity"`
	DynamicRadius        float64          `yaml:"dynamic_radius"`
	Click                LightClickConfig `yaml:"click"`
}

// LightClickConfig describes the sandbox click light.
type LightClickConfig struct {
	TTL       float64 `yaml:"ttl"`
	Intensity float64 `yaml:"intensity"`
	Radius    float64 `yaml:"radius"`
}

// MemoryConfig holds habituation parameters for both ledgers.
type MemoryConfig struct {
	DefaultReturnChance float64 `yaml:"default_return_chance"`

	PursueCooldown Range   `yaml:"pursue_cooldown"`
	PursueDecay    float64 `yaml:"pursue_decay"`
	PursueFloor    float64 `yaml:"pursue_floor"`

	DeclineCooldown Range   `yaml:"decline_cooldown"`
	DeclineDecay    float64 `yaml:"decline_decay"`
	DeclineFloor    float64 `yaml:"decline_floor"`

	PeekFactor   float64 `yaml:"peek_factor"`
	PeekCap      float64 `yaml:"peek_cap"`
	PeekCooldown float64 `yaml:"peek_cooldown"`
	PeekDecay    float64 `yaml:"peek_decay"`
	PeekFloor    float64 `yaml:"peek_floor"`

	ReachedCooldown float64 `yaml:"reached_cooldown"`
	ReachedDecay    float64 `yaml:"reached_decay"`
	GaveUpCooldown  float64 `yaml:"gave_up_cooldown"`
	GaveUpDecay     float64 `yaml:"gave_up_decay"`
	OutcomeFloor    float64 `yaml:"outcome_floor"`
	OutcomeFallback float64 `yaml:"outcome_fallback"` // Return chance assumed when an entry carries none

	LightStaleAfter float64 `yaml:"light_stale_after"`
}

// DecisionConfig holds state machine timers and thresholds.
type DecisionConfig struct {
	ChaseEntry       Range   `yaml:"chase_entry"` // Decision timer reset on entering chase
	LostSightLinger  Range   `yaml:"lost_sight_linger"`
	LightLinger      Range   `yaml:"light_linger"`
	NoiseLinger      Range   `yaml:"noise_linger"`
	DefaultLinger    Range   `yaml:"default_linger"`    // Investigation timer when none is given
	InvestigateEntry Range   `yaml:"investigate_entry"` // Decision timer reset on entering investigation
	NoPlayerIdle     Range   `yaml:"no_player_idle"`
	ExpiredIdle      Range   `yaml:"expired_idle"`
	CompleteIdle     Range   `yaml:"complete_idle"`
	ArrivalLinger    Range   `yaml:"arrival_linger"`
	WanderRetarget   Range   `yaml:"wander_retarget"`
	IdleToWander     Range   `yaml:"idle_to_wander"`
	DefaultIdle      Range   `yaml:"default_idle"`
	WanderRadius     float64 `yaml:"wander_radius"`
	RetargetDistance float64 `yaml:"retarget_distance"`
	ArriveDistance   float64 `yaml:"arrive_distance"`
	WanderArrive     float64 `yaml:"wander_arrive"`
	MinSteerDistance float64 `yaml:"min_steer_distance"` // Below this the agent does not steer

	// ChaseNoiseOverrideChance lets a noise interrupt a chase. It is a tuning
	// knob and carries no behavioural guarantee.
	ChaseNoiseOverrideChance float64 `yaml:"chase_noise_override_chance"`
	FeedGuardFactor          float64 `yaml:"feed_guard_factor"` // Noise may interrupt when player is beyond attack_radius * this
}

// PlayerConfig holds defaults for the built-in player collaborator.
type PlayerConfig struct {
	Speed          float64 `yaml:"speed"`
	SprintFactor   float64 `yaml:"sprint_factor"`
	Health         float64 `yaml:"health"`
	MinMoveForStep float64 `yaml:"min_move_for_step"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldHalf float64 // Size * TileSize / 2
	ClampHalf float64 // WorldHalf - EdgeMargin
	RoamHalf  float64 // Half extent for whole-world random points, (Size - 4) / 2
	SpawnHalf float64 // Half extent for random spawns, Size * SpawnSpread / 2
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

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

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

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy. Config holds no reference types, so a value copy suffices.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// Validate reports every out-of-range parameter as one joined error.
func (c *Config) Validate() error {
	var errs []error

	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", name, v))
		}
	}
	probability := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, v))
		}
	}
	ordered := func(name string, r Range) {
		if r.Min > r.Max {
			errs = append(errs, fmt.Errorf("%s: min %v exceeds max %v", name, r.Min, r.Max))
		}
	}

	positive("physics.dt", c.Physics.DT)
	positive("physics.max_dt", c.Physics.MaxDT)
	if c.World.Size <= 0 {
		errs = append(errs, fmt.Errorf("world.size must be > 0, got %d", c.World.Size))
	}
	positive("world.tile_size", c.World.TileSize)
	positive("noise.ripple_speed_multiplier", c.Noise.RippleSpeedMultiplier)
	positive("memory.light_stale_after", c.Memory.LightStaleAfter)
	positive("noise.stale_after", c.Noise.StaleAfter)

	probability("memory.default_return_chance", c.Memory.DefaultReturnChance)
	probability("memory.pursue_floor", c.Memory.PursueFloor)
	probability("memory.decline_floor", c.Memory.DeclineFloor)
	probability("memory.peek_cap", c.Memory.PeekCap)
	probability("memory.peek_floor", c.Memory.PeekFloor)
	probability("memory.outcome_floor", c.Memory.OutcomeFloor)
	probability("decision.chase_noise_override_chance", c.Decision.ChaseNoiseOverrideChance)

	ordered("zombie.initial_decision", c.Zombie.InitialDecision)
	ordered("perception.flicker", c.Perception.Flicker)
	ordered("memory.pursue_cooldown", c.Memory.PursueCooldown)
	ordered("memory.decline_cooldown", c.Memory.DeclineCooldown)
	for name, r := range map[string]Range{
		"decision.chase_entry":       c.Decision.ChaseEntry,
		"decision.lost_sight_linger": c.Decision.LostSightLinger,
		"decision.light_linger":      c.Decision.LightLinger,
		"decision.noise_linger":      c.Decision.NoiseLinger,
		"decision.default_linger":    c.Decision.DefaultLinger,
		"decision.investigate_entry": c.Decision.InvestigateEntry,
		"decision.no_player_idle":    c.Decision.NoPlayerIdle,
		"decision.expired_idle":      c.Decision.ExpiredIdle,
		"decision.complete_idle":     c.Decision.CompleteIdle,
		"decision.arrival_linger":    c.Decision.ArrivalLinger,
		"decision.wander_retarget":   c.Decision.WanderRetarget,
		"decision.idle_to_wander":    c.Decision.IdleToWander,
		"decision.default_idle":      c.Decision.DefaultIdle,
	} {
		ordered(name, r)
	}

	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.WorldHalf = float64(c.World.Size) * c.World.TileSize / 2
	c.Derived.ClampHalf = c.Derived.WorldHalf - c.World.EdgeMargin
	if c.Derived.ClampHalf < 0 {
		c.Derived.ClampHalf = 0
	}
	// Measured in tiles, not world units, so roaming stays near the centre.
	c.Derived.RoamHalf = math.Max(0, float64(c.World.Size)-4) / 2
	c.Derived.SpawnHalf = float64(c.World.Size) * c.World.SpawnSpread / 2
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
