package schedule

import "math/rand"

// Rand yields uniform draws in [0,1). Injected so schedule construction
// is reproducible: production wires SystemRand, tests wire a fixed-seed
// or scripted source. Implementations used by concurrent executions
// must be safe for concurrent use.
type Rand interface {
	Float64() float64
}

type systemRand struct{}

func (systemRand) Float64() float64 {
	return rand.Float64()
}

// SystemRand draws from the process-wide random source.
var SystemRand Rand = systemRand{}
