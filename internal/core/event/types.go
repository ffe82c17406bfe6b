package event

import "github.com/circuitrace/server/internal/track"

// Circuit lifecycle events emitted by circuit.Builder.

type CircuitBuilt struct {
	Room     string
	Seed     uint64
	Preset   string
	Attempts int
	Rounds   int
	Stats    track.LoopStats
}

type GenerationFailed struct {
	Room  string
	Seed  uint64
	Round int // 0 = first try with the requested tuning
	Err   error
	Final bool // no relaxation follows
}

type TuningRelaxed struct {
	Room   string
	Seed   uint64
	Round  int
	Tuning track.Tuning
}
