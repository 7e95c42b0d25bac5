package testutil

import "sync"

// Operands is a scripted operand source.
//
// It returns its pairs in order and then cycles back to the first, so a
// scenario can name the exact problems it expects to see.
// If no pairs are given every challenge is 3 x 4.
//
// Thread-safety: all methods are safe for concurrent use.
type Operands struct {
	mu    sync.Mutex
	pairs [][2]int
	next  int
}

// NewOperands creates a scripted source from (a, b) pairs.
//
//	src := testutil.NewOperands([2]int{3, 4}, [2]int{7, 8})
func NewOperands(pairs ...[2]int) *Operands {
	if len(pairs) == 0 {
		pairs = [][2]int{{3, 4}}
	}
	cp := make([][2]int, len(pairs))
	copy(cp, pairs)
	return &Operands{pairs: cp}
}

// Operands returns the next scripted pair.
//
// Implements board.OperandSource.
func (o *Operands) Operands() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := o.pairs[o.next%len(o.pairs)]
	o.next++
	return p[0], p[1]
}

// Drawn returns how many pairs have been handed out.
func (o *Operands) Drawn() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.next
}

// Reset rewinds the script to its first pair.
func (o *Operands) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next = 0
}
