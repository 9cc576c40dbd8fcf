package memory

import (
	"iter"
	"maps"
	"slices"
)

// Heap is the dynamic region. Allocation bumps the bottom pointer down
// from the top of memory; freed storage is not reused.
type Heap struct {
	Start int64
	End   int64

	mem     *Memory
	bottom  int64
	objects map[int64]*Object
}

func (h *Heap) reset() {
	h.bottom = h.End
	h.objects = map[int64]*Object{}
}

// Bottom is the lowest address handed out so far.
func (h *Heap) Bottom() int64 {
	return h.bottom
}

// Available is the number of bytes left between the bottom and the
// start of the heap region.
func (h *Heap) Available() int64 {
	return h.bottom - h.Start
}

// Reserve checks that size bytes fit below the current bottom, without
// allocating them. Running past the heap region into the stack is a
// collision, reported at the current bottom.
func (h *Heap) Reserve(size int64) (err error) {
	if size < 0 || size > h.Available() {
		err = &ErrCollision{Region: "heap", Address: h.bottom, Size: size}
	}
	return
}

// AllocateNewObject places obj below the current bottom.
func (h *Heap) AllocateNewObject(obj *Object) (err error) {
	size := obj.Size()
	if err = h.Reserve(size); err != nil {
		return
	}

	h.bottom -= size
	h.mem.AllocateObject(obj, h.bottom)
	obj.Invalidate()
	h.objects[obj.Address] = obj
	return
}

// ObjectAt returns the live heap object allocated at address.
func (h *Heap) ObjectAt(address int64) (obj *Object, ok bool) {
	obj, ok = h.objects[address]
	return
}

// DeleteObject ends the lifetime of the heap object at address. An
// address the heap never handed out, or already freed, is a no-op.
func (h *Heap) DeleteObject(address int64) (obj *Object, ok bool) {
	obj, ok = h.objects[address]
	if !ok {
		return
	}
	delete(h.objects, address)
	h.mem.DeallocateObject(address)
	return
}

// Objects iterates over live heap objects in address order.
func (h *Heap) Objects() iter.Seq[*Object] {
	return func(yield func(*Object) bool) {
		for _, address := range slices.Sorted(maps.Keys(h.objects)) {
			if !yield(h.objects[address]) {
				return
			}
		}
	}
}

// Len is the number of live heap objects.
func (h *Heap) Len() int {
	return len(h.objects)
}
