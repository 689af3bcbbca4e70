package components

import "github.com/pthm-cable/lurch/config"

// Capabilities holds the movement and attack knobs of one agent.
type Capabilities struct {
	WanderSpeed      float64
	InvestigateSpeed float64
	ChaseSpeed       float64
	DetectRange      float64
	AttackRadius     float64
	DamageRate       float64 // damage per second of contact
}

// CapabilitiesFor returns capabilities for the given behavior class.
// Docile agents get all-zero capabilities: they never move, sense or attack.
func CapabilitiesFor(b Behavior, cfg config.ZombieConfig) Capabilities {
	if b == Docile {
		return Capabilities{}
	}
	return Capabilities{
		WanderSpeed:      cfg.WanderSpeed,
		InvestigateSpeed: cfg.InvestigateSpeed,
		ChaseSpeed:       cfg.ChaseSpeed,
		DetectRange:      cfg.DetectRange,
		AttackRadius:     cfg.AttackRadius,
		DamageRate:       cfg.DamageRate,
	}
}
