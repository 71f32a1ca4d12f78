package physics

import (
	"encoding/binary"
	"math/rand"

	"github.com/zeebo/xxh3"
)

// NewRand returns the generator for the seq-th contact of a world seeded with
// seed. The same pair always yields the same stream.
func NewRand(seed int64, seq uint64) *rand.Rand {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:], seq)
	return rand.New(rand.NewSource(int64(xxh3.Hash(buf[:]))))
}

// RollQuality grades a touch. Higher accuracy shifts mass toward perfect;
// difficulty in [0, 1] (fast or awkward incoming balls) shifts it toward
// error.
func RollQuality(rng Rand, accuracy, difficulty float64) Quality {
	if accuracy < 0 {
		accuracy = 0
	}
	if accuracy > 1 {
		accuracy = 1
	}
	if difficulty < 0 {
		difficulty = 0
	}
	if difficulty > 1 {
		difficulty = 1
	}

	errorChance := 0.02 + (1-accuracy)*0.12 + difficulty*0.08
	poorChance := 0.10 + (1-accuracy)*0.25 + difficulty*0.15
	perfectChance := accuracy * 0.45 * (1 - difficulty*0.5)

	r := rng.Float64()
	switch {
	case r < errorChance:
		return Error
	case r < errorChance+poorChance:
		return Poor
	case r >= 1-perfectChance:
		return Perfect
	default:
		return Good
	}
}

// Block contest weights: the best blocker against a powerless attack stops
// blockCeiling of attempts, and full attack power removes attackPowerShare
// of that.
const (
	blockCeiling     = 0.55
	attackPowerShare = 0.5
)

// BlockChance is the probability that a block with skill block stops an
// attack hit with skill attack.
func BlockChance(block, attack Skill) float64 {
	unit := func(v float64) float64 { return min(max(v, 0), 1) }
	return blockCeiling * unit(block.Accuracy) * (1 - attackPowerShare*unit(attack.Power))
}

// ContestBlock rolls one block attempt.
func ContestBlock(rng Rand, block, attack Skill) bool {
	return rng.Float64() < BlockChance(block, attack)
}
