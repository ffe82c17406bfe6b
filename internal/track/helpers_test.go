package track

import "math/rand/v2"

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func baseTuning() Tuning {
	return Tuning{
		NormCenter:  0.6,
		PCount:      6,
		MinD:        0.3,
		MaxTries:    50,
		MaxCross:    2,
		MaxStraight: 4,
		Randomness:  0,
	}
}
