package memory

import (
	"iter"
	"slices"

	"github.com/jamesjuett/lobster-sub011/types"
)

// THIS_KEY is the local key of a member function's receiver pointer.
const THIS_KEY = -1

// Local describes one automatic object or reference materialized per call.
type Local struct {
	Key       int
	Name      string
	Type      *types.Type
	Reference bool // References occupy no frame storage.
}

// Frame is the storage for one function call.
type Frame struct {
	Function string
	Start    int64
	Size     int64

	objects    map[int]*Object
	references map[int]*Object
	order      []*Object
}

// Object returns the automatic object for a local key.
func (frame *Frame) Object(key int) (obj *Object, ok bool) {
	obj, ok = frame.objects[key]
	return
}

// Reference returns the object a reference local is bound to.
func (frame *Frame) Reference(key int) (obj *Object, ok bool) {
	obj, ok = frame.references[key]
	return
}

// BindReference binds a reference local to obj.
func (frame *Frame) BindReference(key int, obj *Object) {
	frame.references[key] = obj
}

// This returns the receiver pointer object of a member function frame.
func (frame *Frame) This() (obj *Object, ok bool) {
	return frame.Object(THIS_KEY)
}

// Objects iterates over the frame's objects in address order.
func (frame *Frame) Objects() iter.Seq[*Object] {
	return slices.Values(frame.order)
}

// Stack is the call stack region. Frames are pushed at the top and grow
// toward the heap.
type Stack struct {
	Start int64
	End   int64

	mem    *Memory
	top    int64
	frames []*Frame
}

func (s *Stack) reset() {
	s.top = s.Start
	s.frames = s.frames[:0]
}

// Top is the first free stack address.
func (s *Stack) Top() int64 {
	return s.top
}

// Depth is the number of frames pushed.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Empty reports whether no frames are pushed.
func (s *Stack) Empty() bool {
	return len(s.frames) == 0
}

// Peek returns the most recently pushed frame.
func (s *Stack) Peek() (frame *Frame, ok bool) {
	if s.Empty() {
		return
	}
	return s.frames[len(s.frames)-1], true
}

// Frames iterates from the outermost frame to the innermost.
func (s *Stack) Frames() iter.Seq[*Frame] {
	return slices.Values(s.frames)
}

// PushFrame allocates one object per non-reference local, contiguously at
// the stack top. Running past the stack region is a collision.
func (s *Stack) PushFrame(function string, locals []Local) (frame *Frame, err error) {
	frame = &Frame{
		Function:   function,
		Start:      s.top,
		objects:    map[int]*Object{},
		references: map[int]*Object{},
	}

	for _, local := range locals {
		if !local.Reference {
			frame.Size += local.Type.Size()
		}
	}

	if s.top+frame.Size > s.End {
		err = &ErrCollision{Region: "stack", Address: s.top, Size: frame.Size}
		frame = nil
		return
	}

	address := s.top
	for _, local := range locals {
		if local.Reference {
			continue
		}
		obj := NewObject(AUTO, local.Name, local.Type)
		s.mem.AllocateObject(obj, address)
		obj.Invalidate()
		address += obj.Size()
		frame.objects[local.Key] = obj
		frame.order = append(frame.order, obj)
	}

	s.top += frame.Size
	s.frames = append(s.frames, frame)

	if s.mem.Hooks.FramePushed != nil {
		s.mem.Hooks.FramePushed(frame)
	}

	return
}

// PopFrame ends the lifetime of every object in the innermost frame and
// retracts the stack top by the frame's size.
func (s *Stack) PopFrame() (frame *Frame, err error) {
	frame, ok := s.Peek()
	if !ok {
		err = ErrFrameEmpty
		return
	}

	for _, obj := range frame.order {
		s.mem.DeallocateObject(obj.Address)
	}
	clear(frame.references)

	s.frames = s.frames[:len(s.frames)-1]
	s.top -= frame.Size

	if s.mem.Hooks.FramePopped != nil {
		s.mem.Hooks.FramePopped(frame)
	}

	return
}
