package grid

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// ElevationConfig controls cosmetic elevation generation.
type ElevationConfig struct {
	// Seed selects the noise field. The same seed always yields the same map.
	Seed int64
	// MaxElevation is the elevation assigned at the noise peak.
	MaxElevation int
	// Octaves is the number of noise layers summed.
	Octaves int
	// Frequency is the base sampling frequency per hex.
	Frequency float64
	// Persistence scales each octave's amplitude relative to the previous
	// one. Values outside (0, 1] fall back to 0.5.
	Persistence float64
}

// DefaultElevationConfig returns settings that produce gentle rolling hills.
func DefaultElevationConfig(seed int64) ElevationConfig {
	return ElevationConfig{
		Seed:         seed,
		MaxElevation: 10,
		Octaves:      4,
		Frequency:    0.08,
		Persistence:  0.5,
	}
}

// GenerateElevation assigns every existing tile an elevation in
// [0, cfg.MaxElevation] sampled from layered simplex noise. Biomes and trails
// are untouched.
//
// Postcondition: Elevation is deterministic for a given seed and coordinate set.
func (g *Grid) GenerateElevation(cfg ElevationConfig) {
	if cfg.Octaves <= 0 {
		cfg.Octaves = 1
	}
	if cfg.Frequency <= 0 {
		cfg.Frequency = 0.08
	}
	if cfg.Persistence <= 0 || cfg.Persistence > 1 {
		cfg.Persistence = 0.5
	}
	noise := opensimplex.NewNormalized(cfg.Seed)
	for c, t := range g.tiles {
		// Axial to cartesian so the noise field is isotropic on the hex lattice.
		x := float64(c.Q) + float64(c.R)*0.5
		y := float64(c.R) * math.Sqrt(3.0) / 2.0
		v := octaveNoise(noise, x, y, cfg.Octaves, cfg.Frequency, cfg.Persistence)
		t.Elevation = int(math.Round(v * float64(cfg.MaxElevation)))
	}
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
