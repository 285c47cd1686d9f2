package math

const (
	RANDOM_MULTIPLIER uint32 = 214013
	RANDOM_INCREMENT  uint32 = 2531011
	RANDOM_MAX        int32  = 0x7FFF
)

/**
 * @brief A linear congruential generator producing 15-bit values. Not safe
 * for concurrent use. The zero value is not seeded; use NewRandom.
 */
type Random struct {
	state uint32
}

/**
 * @brief Creates a generator with the default seed of 1.
 */
func NewRandom() *Random {
	return &Random{state: 1}
}

func NewRandomWithSeed(seed uint32) *Random {
	return &Random{state: seed}
}

func (r *Random) SetSeed(seed uint32) {
	r.state = seed
}

func (r *Random) Seed() uint32 {
	return r.state
}

/**
 * @brief Advances the state and returns a value in [0, RANDOM_MAX].
 */
func (r *Random) Next() int32 {
	r.state = r.state*RANDOM_MULTIPLIER + RANDOM_INCREMENT
	return int32(r.state>>16) & RANDOM_MAX
}
