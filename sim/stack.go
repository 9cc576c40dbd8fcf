package sim

import (
	"iter"

	"github.com/jamesjuett/lobster-sub011/construct"
)

const (
	STACK_LIMIT = 10000 // Maximum instance stack depth
)

// Stack of executing instances; the top is the one that steps next.
type Stack struct {
	Data []*construct.Instance
}

func (s *Stack) Push(inst *construct.Instance) (err error) {
	if s.Full() {
		err = ErrStackFull
		return
	}
	s.Data = append(s.Data, inst)
	return
}

func (s *Stack) Pop() (inst *construct.Instance, ok bool) {
	inst, ok = s.Peek()
	if ok {
		s.Data[len(s.Data)-1] = nil
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Full() bool {
	return len(s.Data) == STACK_LIMIT
}

func (s *Stack) Depth() int {
	return len(s.Data)
}

func (s *Stack) Peek() (inst *construct.Instance, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

// All iterates from the top of the stack down.
func (s *Stack) All() iter.Seq[*construct.Instance] {
	return func(yield func(*construct.Instance) bool) {
		for n := len(s.Data) - 1; n >= 0; n-- {
			if !yield(s.Data[n]) {
				return
			}
		}
	}
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		clear(s.Data)
		s.Data = s.Data[:0]
	}
}
