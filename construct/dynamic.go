package construct

import (
	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/types"
	"github.com/jamesjuett/lobster-sub011/value"
)

// newExpr creates a heap object and yields a pointer to it. An array
// length, when present, is the first operand; initializer values follow.
type newExpr struct {
	expr
	elem   *types.Type
	array  bool
	list   bool // Initializer values fill the array and the rest is zeroed.
	zero   bool // `new T()`.
	length Expression
	subs   []Expression
}

func (n *newExpr) UpNext(rt Runtime, inst *Instance) (err error) {
	_, err = pushNext(rt, inst, n.subs)
	return
}

func (n *newExpr) StepForward(rt Runtime, inst *Instance) (err error) {
	inits := inst.Children

	t := n.elem
	if n.array {
		length := inits[0].Value.Int()
		inits = inits[1:]
		if length < 0 || length < int64(len(inits)) {
			report(rt, UNDEFINED_BEHAVIOR, n, "new[] with invalid length %d", length)
			length = int64(len(inits))
		}
		t = types.ArrayOf(n.elem, int(length))
		if err = rt.Memory().Heap.Reserve(t.Size()); err != nil {
			return
		}
	}

	obj := memory.NewObject(memory.DYNAMIC, "", t)
	obj.ArrayNew = n.array
	if err = rt.Memory().Heap.AllocateNewObject(obj); err != nil {
		return
	}

	switch {
	case n.array && (n.list || n.zero):
		elems := make([]value.Value, t.Length)
		for i := range elems {
			if i < len(inits) {
				elems[i] = inits[i].Value
			} else {
				elems[i] = zeroValue(n.elem)
			}
		}
		obj.WriteValue(value.Composite(t, elems))
	case len(inits) == 1:
		obj.WriteValue(inits[0].Value)
	case n.zero:
		obj.WriteValue(zeroValue(t))
	}

	inst.Value = value.ArrayPointer(n.typ, obj.Address, value.Bounds{Start: obj.Address, End: obj.Address + obj.Size()})
	inst.finish(rt)
	return
}

// deleteExpr ends the lifetime of a heap object.
type deleteExpr struct {
	expr
	array bool
	subs  []Expression
}

func (d *deleteExpr) UpNext(rt Runtime, inst *Instance) (err error) {
	_, err = pushNext(rt, inst, d.subs)
	return
}

func (d *deleteExpr) StepForward(rt Runtime, inst *Instance) error {
	p := operand(inst).Value
	address := p.Int()
	heap := rt.Memory().Heap

	switch obj, ok := heap.ObjectAt(address); {
	case !p.IsValid():
		report(rt, UNDEFINED_BEHAVIOR, d, "delete through an uninitialized pointer")
	case address == 0:
	case !ok:
		report(rt, UNDEFINED_BEHAVIOR, d, "delete of 0x%x, which is not a live object created by new", address)
	case obj.ArrayNew != d.array:
		if d.array {
			report(rt, UNDEFINED_BEHAVIOR, d, "delete[] of %v, which was not created by new[]", obj.Describe())
		} else {
			report(rt, UNDEFINED_BEHAVIOR, d, "delete of %v, which was created by new[]", obj.Describe())
		}
		heap.DeleteObject(address)
	default:
		heap.DeleteObject(address)
	}

	inst.finish(rt)
	return nil
}
