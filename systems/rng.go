package systems

import "github.com/pthm-cable/lurch/config"

// Rand is the random source every probabilistic rule draws from.
// *rand.Rand satisfies it; tests inject a seeded one.
type Rand interface {
	Float64() float64
}

// Uniform draws from [r.Min, r.Max).
func Uniform(rng Rand, r config.Range) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Spread draws from [-half, half).
func Spread(rng Rand, half float64) float64 {
	return (rng.Float64()*2 - 1) * half
}

// Chance reports whether a draw falls below p.
func Chance(rng Rand, p float64) bool {
	return rng.Float64() < p
}
