package board

import "math/rand/v2"

// Operand bounds, inclusive.
const (
	MinOperand = 1
	MaxOperand = 10
)

// OperandSource draws the two factors for a new challenge.
type OperandSource interface {
	Operands() (a, b int)
}

// RandomOperands draws both operands uniformly from [MinOperand, MaxOperand].
type RandomOperands struct {
	r *rand.Rand
}

// NewRandomOperands creates a source seeded with seed. A zero seed draws
// from the runtime's random source instead.
func NewRandomOperands(seed uint64) *RandomOperands {
	if seed == 0 {
		return &RandomOperands{}
	}
	return &RandomOperands{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Operands returns two uniformly drawn operands.
func (s *RandomOperands) Operands() (int, int) {
	return s.intn(), s.intn()
}

func (s *RandomOperands) intn() int {
	span := MaxOperand - MinOperand + 1
	if s.r == nil {
		return rand.IntN(span) + MinOperand
	}
	return s.r.IntN(span) + MinOperand
}
