// Package memory models the simulated address space.
//
// A single byte array is partitioned into four regions, in address order:
// static (globals and string literals), stack (frames, growing upward),
// heap (dynamic objects, bump-allocated downward from the top) and, past a
// small gap, the temporary region for expression temporaries.
//
// Objects are registered by address while alive. Reading or writing a
// scalar object goes through the byte array; composite objects recurse
// into their subobjects.
package memory

import (
	"iter"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/jamesjuett/lobster-sub011/types"
	"github.com/jamesjuett/lobster-sub011/value"
)

const (
	DEFAULT_CAPACITY           = 10000 // Bytes of static + stack + heap.
	DEFAULT_TEMPORARY_CAPACITY = 10000 // Bytes of temporary region.
	TEMPORARY_GAP              = 100   // Unused bytes between heap and temporaries.
	NULL_GUARD                 = 4     // Static bytes reserved so no object lives at 0.
)

// Layout sizes the regions.
type Layout struct {
	Capacity          int64  `yaml:"capacity"`
	TemporaryCapacity int64  `yaml:"temporary_capacity"`
	Seed              uint64 `yaml:"seed"` // Seed for the initial garbage in memory.
}

// DefaultLayout is the standard region sizing.
func DefaultLayout() Layout {
	return Layout{
		Capacity:          DEFAULT_CAPACITY,
		TemporaryCapacity: DEFAULT_TEMPORARY_CAPACITY,
	}
}

// Hooks observe memory activity. Any of them may be nil.
type Hooks struct {
	ObjectAllocated   func(obj *Object)
	ObjectDeallocated func(obj *Object)
	BytesRead         func(address int64, data []byte)
	BytesWritten      func(address int64, data []byte)
	ValueRead         func(obj *Object, v value.Value)
	ValueWritten      func(obj *Object, v value.Value)
	FramePushed       func(frame *Frame)
	FramePopped       func(frame *Frame)
}

func (h *Hooks) objectAllocated(obj *Object) {
	if h.ObjectAllocated != nil {
		h.ObjectAllocated(obj)
	}
}

func (h *Hooks) objectDeallocated(obj *Object) {
	if h.ObjectDeallocated != nil {
		h.ObjectDeallocated(obj)
	}
}

func (h *Hooks) valueRead(obj *Object, v value.Value) {
	if h.ValueRead != nil {
		h.ValueRead(obj, v)
	}
}

func (h *Hooks) valueWritten(obj *Object, v value.Value) {
	if h.ValueWritten != nil {
		h.ValueWritten(obj, v)
	}
}

// Memory is the simulated address space.
type Memory struct {
	Layout
	Hooks Hooks

	Stack *Stack
	Heap  *Heap

	StaticStart    int64
	StaticEnd      int64
	TemporaryStart int64
	TemporaryEnd   int64

	bytes           []byte
	objects         map[int64]*Object
	staticTop       int64
	temporaryBottom int64
	temporaries     []*Object // Live temporaries in address order.
	stringLiterals  map[string]*Object
}

// New creates and resets a memory with the given layout.
func New(layout Layout) (mem *Memory) {
	if layout.Capacity <= 0 {
		layout.Capacity = DEFAULT_CAPACITY
	}
	if layout.TemporaryCapacity <= 0 {
		layout.TemporaryCapacity = DEFAULT_TEMPORARY_CAPACITY
	}

	staticSize := layout.Capacity / 10
	stackSize := (layout.Capacity - staticSize) / 2

	mem = &Memory{
		Layout:      layout,
		StaticStart: 0,
		StaticEnd:   staticSize,
	}
	mem.Stack = &Stack{mem: mem, Start: staticSize, End: staticSize + stackSize}
	mem.Heap = &Heap{mem: mem, Start: staticSize + stackSize, End: layout.Capacity}
	mem.TemporaryStart = layout.Capacity + TEMPORARY_GAP
	mem.TemporaryEnd = mem.TemporaryStart + layout.TemporaryCapacity

	mem.Reset()

	return
}

// Reset discards every object and refills memory with seeded garbage.
func (mem *Memory) Reset() {
	mem.bytes = make([]byte, mem.TemporaryEnd)
	rng := rand.New(rand.NewPCG(mem.Seed, mem.Seed^0x4c6f6273746572))
	for n := range mem.bytes {
		mem.bytes[n] = byte(rng.Uint32())
	}

	mem.objects = map[int64]*Object{}
	mem.stringLiterals = map[string]*Object{}
	mem.staticTop = mem.StaticStart + NULL_GUARD
	mem.temporaryBottom = mem.TemporaryStart
	mem.temporaries = nil

	mem.Stack.reset()
	mem.Heap.reset()
}

// InBounds reports whether n bytes at address are addressable.
func (mem *Memory) InBounds(address, n int64) bool {
	return address >= 0 && n >= 0 && address+n <= int64(len(mem.bytes))
}

// GetBytes returns a copy of n bytes at address. Bytes outside memory
// read as zero.
func (mem *Memory) GetBytes(address, n int64) (data []byte) {
	data = make([]byte, n)
	for i := range n {
		if mem.InBounds(address+i, 1) {
			data[i] = mem.bytes[address+i]
		}
	}
	return
}

// ReadBytes is GetBytes, notifying the BytesRead hook.
func (mem *Memory) ReadBytes(address, n int64) (data []byte) {
	data = mem.GetBytes(address, n)
	if mem.Hooks.BytesRead != nil {
		mem.Hooks.BytesRead(address, data)
	}
	return
}

// SetBytes stores data at address. Bytes outside memory are dropped.
func (mem *Memory) SetBytes(address int64, data []byte) {
	for i, b := range data {
		at := address + int64(i)
		if mem.InBounds(at, 1) {
			mem.bytes[at] = b
		}
	}
}

// WriteBytes is SetBytes, notifying the BytesWritten hook.
func (mem *Memory) WriteBytes(address int64, data []byte) {
	mem.SetBytes(address, data)
	if mem.Hooks.BytesWritten != nil {
		mem.Hooks.BytesWritten(address, data)
	}
}

// AllocateObject places obj at address and begins its lifetime.
func (mem *Memory) AllocateObject(obj *Object, address int64) {
	obj.place(mem, address)
	obj.alive = true
	mem.objects[address] = obj
	mem.Hooks.objectAllocated(obj)
}

// DeallocateObject ends the lifetime of the object registered at address.
func (mem *Memory) DeallocateObject(address int64) (obj *Object, ok bool) {
	obj, ok = mem.objects[address]
	if !ok {
		return
	}
	delete(mem.objects, address)
	obj.alive = false
	mem.Hooks.objectDeallocated(obj)
	return
}

// ObjectAt returns the live top-level object registered at address.
func (mem *Memory) ObjectAt(address int64) (obj *Object, ok bool) {
	obj, ok = mem.objects[address]
	return
}

// Objects iterates over live top-level objects in address order.
func (mem *Memory) Objects() iter.Seq[*Object] {
	return func(yield func(*Object) bool) {
		for _, address := range slices.Sorted(maps.Keys(mem.objects)) {
			if !yield(mem.objects[address]) {
				return
			}
		}
	}
}

// containing returns the live top-level object whose storage covers address.
func (mem *Memory) containing(address int64) (obj *Object, ok bool) {
	if obj, ok = mem.objects[address]; ok {
		return
	}
	for _, candidate := range mem.objects {
		if address >= candidate.Address && address < candidate.Address+candidate.Size() {
			return candidate, true
		}
	}
	return
}

// Dereference returns the live object or subobject of type t at address.
// When there is none, an anonymous object of type t is synthesized there.
func (mem *Memory) Dereference(address int64, t *types.Type) (obj *Object) {
	if top, ok := mem.containing(address); ok {
		if obj = top.find(address, t); obj != nil {
			return
		}
	}

	obj = NewObject(ANONYMOUS, "", t)
	obj.place(mem, address)
	obj.alive = true
	obj.setValidAll(true)
	return
}

// AllocateStatic places obj in the static region, zero-initialized.
func (mem *Memory) AllocateStatic(obj *Object) (err error) {
	size := obj.Size()
	if mem.staticTop+size > mem.StaticEnd {
		err = ErrStaticFull
		return
	}

	address := mem.staticTop
	mem.staticTop += size

	mem.SetBytes(address, make([]byte, size))
	mem.AllocateObject(obj, address)
	obj.setValidAll(true)
	return
}

// AllocateStringLiteral returns the static character array holding text,
// allocating it on first use.
func (mem *Memory) AllocateStringLiteral(text string) (obj *Object, err error) {
	if obj, ok := mem.stringLiterals[text]; ok {
		return obj, nil
	}

	t := types.ArrayOf(types.Char.Qualified(true, false), len(text)+1)
	obj = NewObject(STRING_LITERAL, "\""+text+"\"", t)
	err = mem.AllocateStatic(obj)
	if err != nil {
		return
	}
	mem.SetBytes(obj.Address, append([]byte(text), 0))
	mem.stringLiterals[text] = obj
	return
}

// AllocateTemporaryObject places obj in the temporary region.
func (mem *Memory) AllocateTemporaryObject(obj *Object) (err error) {
	size := obj.Size()
	if mem.temporaryBottom+size > mem.TemporaryEnd {
		err = ErrTemporaryFull
		return
	}

	address := mem.temporaryBottom
	mem.temporaryBottom += size
	mem.AllocateObject(obj, address)
	mem.temporaries = append(mem.temporaries, obj)
	return
}

// DeallocateTemporaryObject ends the lifetime of a temporary. The free
// space above the highest live temporary is reclaimed.
func (mem *Memory) DeallocateTemporaryObject(obj *Object) {
	n := slices.Index(mem.temporaries, obj)
	if n < 0 {
		return
	}
	mem.temporaries = slices.Delete(mem.temporaries, n, n+1)
	mem.DeallocateObject(obj.Address)

	mem.temporaryBottom = mem.TemporaryStart
	if top := len(mem.temporaries); top > 0 {
		last := mem.temporaries[top-1]
		mem.temporaryBottom = last.Address + last.Size()
	}
}

// TemporaryBottom is the next free temporary address.
func (mem *Memory) TemporaryBottom() int64 {
	return mem.temporaryBottom
}

// StaticTop is the next free static address.
func (mem *Memory) StaticTop() int64 {
	return mem.staticTop
}
