package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesjuett/lobster-sub011/types"
	"github.com/jamesjuett/lobster-sub011/value"
)

func testDerived() (base, derived *types.Class) {
	base = types.NewClass("B")
	base.Members = []types.Member{{Name: "b", Type: types.Int}}
	base.Complete = true

	derived = types.NewClass("D")
	derived.Base = base
	derived.Members = []types.Member{{Name: "x", Type: types.Int}, {Name: "y", Type: types.Int}}
	derived.Complete = true
	return
}

func TestMemory_Layout(t *testing.T) {
	assert := assert.New(t)

	mem := New(DefaultLayout())

	assert.Equal(int64(0), mem.StaticStart)
	assert.Equal(int64(1000), mem.StaticEnd)
	assert.Equal(mem.StaticEnd, mem.Stack.Start)
	assert.Equal(int64(5500), mem.Stack.End)
	assert.Equal(mem.Stack.End, mem.Heap.Start)
	assert.Equal(int64(10000), mem.Heap.End)
	assert.Equal(int64(10100), mem.TemporaryStart)
	assert.Equal(int64(20100), mem.TemporaryEnd)
	assert.Equal(mem.Heap.End, mem.Heap.Bottom())
	assert.Equal(mem.Stack.Start, mem.Stack.Top())
}

func TestMemory_Seeded(t *testing.T) {
	assert := assert.New(t)

	a := New(Layout{Seed: 7})
	b := New(Layout{Seed: 7})
	assert.Equal(a.GetBytes(0, 64), b.GetBytes(0, 64))

	a.SetBytes(10, []byte{1, 2, 3})
	a.Reset()
	assert.Equal(a.GetBytes(0, 64), b.GetBytes(0, 64))
}

func TestMemory_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	mem := New(DefaultLayout())

	table := []value.Value{
		value.New(types.Bool, int64(1)),
		value.New(types.Char, int64('z')),
		value.New(types.Int, int64(-123456)),
		value.New(types.Float, 2.5),
		value.New(types.Double, -1.0/7.0),
		value.Pointer(types.PointerTo(types.Int), 4321),
	}

	for n, v := range table {
		obj := NewObject(STATIC, "v", v.Type)
		assert.NoError(mem.AllocateStatic(obj), n)
		obj.WriteValue(v)
		got := obj.ReadValue()
		assert.True(v.Equal(got), "%v != %v", v, got)
	}
}

func TestObject_SubobjectAddressing(t *testing.T) {
	assert := assert.New(t)

	_, derived := testDerived()
	mem := New(DefaultLayout())

	for _, address := range []int64{100, 2000, 9000} {
		obj := NewObject(AUTO, "d", types.ClassType(derived))
		mem.AllocateObject(obj, address)

		x, ok := obj.MemberNamed("x")
		assert.True(ok)
		y, ok := obj.MemberNamed("y")
		assert.True(ok)
		b, ok := obj.MemberNamed("b")
		assert.True(ok)

		assert.Equal(address+4, x.Address)
		assert.Equal(address+8, y.Address)
		assert.Equal(address, b.Address)
		assert.Equal("d.x", x.Name)

		base, ok := obj.Base()
		assert.True(ok)
		assert.Same(obj, base.Complete())

		mem.DeallocateObject(address)
		assert.False(x.IsAlive())
	}
}

func TestObject_Composite(t *testing.T) {
	assert := assert.New(t)

	mem := New(DefaultLayout())
	arr := NewObject(STATIC, "a", types.ArrayOf(types.Int, 3))
	assert.NoError(mem.AllocateStatic(arr))

	// Statics start zero-initialized.
	assert.True(arr.IsValid())
	assert.Equal("{0, 0, 0}", arr.Value().String())

	arr.WriteValue(value.Composite(arr.Type, []value.Value{
		value.New(types.Int, int64(1)),
		value.New(types.Int, int64(2)),
		value.New(types.Int, int64(3)),
	}))
	assert.Equal(int64(2), arr.Element(1).Value().Int())
	assert.Equal(arr.Address+8, arr.Element(2).Address)

	out := arr.Element(3)
	assert.Equal(ANONYMOUS, out.Kind)
	assert.Equal(arr.Address+12, out.Address)
	assert.Equal("a[3]", out.Name)
}

func TestStack_FrameSymmetry(t *testing.T) {
	assert := assert.New(t)

	mem := New(DefaultLayout())
	locals := []Local{
		{Key: 0, Name: "a", Type: types.Int},
		{Key: 1, Name: "r", Type: types.ReferenceTo(types.Int), Reference: true},
		{Key: 2, Name: "d", Type: types.Double},
	}

	var tops []int64
	var frames []*Frame
	for range 3 {
		tops = append(tops, mem.Stack.Top())
		frame, err := mem.Stack.PushFrame("f", locals)
		require.NoError(t, err)
		assert.Equal(int64(12), frame.Size)
		frames = append(frames, frame)
	}
	assert.Equal(3, mem.Stack.Depth())

	a, ok := frames[2].Object(0)
	assert.True(ok)
	assert.False(a.IsValid())
	_, ok = frames[2].Object(1)
	assert.False(ok)

	for n := 2; n >= 0; n-- {
		frame, err := mem.Stack.PopFrame()
		assert.NoError(err)
		assert.Same(frames[n], frame)
		assert.Equal(tops[n], mem.Stack.Top())
		for obj := range frame.Objects() {
			assert.False(obj.IsAlive())
		}
	}

	_, err := mem.Stack.PopFrame()
	assert.ErrorIs(err, ErrFrameEmpty)
}

func TestStack_EmptyClassLocals(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	empty := types.NewClass("E")
	empty.Complete = true
	et := types.ClassType(empty)

	mem := New(DefaultLayout())
	top := mem.Stack.Top()
	frame, err := mem.Stack.PushFrame("f", []Local{
		{Key: 0, Name: "a", Type: et},
		{Key: 1, Name: "b", Type: et},
	})
	require.NoError(err)
	assert.Equal(int64(2), frame.Size)

	a, _ := frame.Object(0)
	b, _ := frame.Object(1)
	assert.NotEqual(a.Address, b.Address)

	_, err = mem.Stack.PopFrame()
	require.NoError(err)
	assert.False(a.IsAlive())
	assert.False(b.IsAlive())
	assert.Equal(top, mem.Stack.Top())

	// Separate heap objects keep separate addresses too.
	x := NewObject(DYNAMIC, "", et)
	y := NewObject(DYNAMIC, "", et)
	require.NoError(mem.Heap.AllocateNewObject(x))
	require.NoError(mem.Heap.AllocateNewObject(y))
	assert.Equal(2, mem.Heap.Len())
}

func TestStack_Collision(t *testing.T) {
	assert := assert.New(t)

	mem := New(Layout{Capacity: 100})
	big := []Local{{Key: 0, Name: "big", Type: types.ArrayOf(types.Int, 100)}}

	frame, err := mem.Stack.PushFrame("f", big)
	assert.Nil(frame)
	assert.ErrorIs(err, ErrMemoryCollision)

	var collision *ErrCollision
	assert.True(errors.As(err, &collision))
	assert.Equal("stack", collision.Region)
	assert.Equal(mem.Stack.Start, mem.Stack.Top())
}

func TestHeap(t *testing.T) {
	assert := assert.New(t)

	mem := New(DefaultLayout())

	a := NewObject(DYNAMIC, "", types.Int)
	assert.NoError(mem.Heap.AllocateNewObject(a))
	assert.Equal(mem.Heap.End-4, a.Address)
	assert.False(a.IsValid())

	b := NewObject(DYNAMIC, "", types.ArrayOf(types.Double, 2))
	assert.NoError(mem.Heap.AllocateNewObject(b))
	assert.Equal(a.Address-16, b.Address)
	assert.Equal(2, mem.Heap.Len())

	got, ok := mem.Heap.DeleteObject(a.Address)
	assert.True(ok)
	assert.Same(a, got)
	assert.False(a.IsAlive())

	_, ok = mem.Heap.DeleteObject(a.Address)
	assert.False(ok)
	_, ok = mem.Heap.DeleteObject(12345)
	assert.False(ok)

	var live []*Object
	for obj := range mem.Heap.Objects() {
		live = append(live, obj)
	}
	assert.Equal([]*Object{b}, live)

	huge := NewObject(DYNAMIC, "", types.ArrayOf(types.Int, 100000))
	assert.ErrorIs(mem.Heap.AllocateNewObject(huge), ErrMemoryCollision)
}

func TestHeap_Reserve(t *testing.T) {
	assert := assert.New(t)

	mem := New(DefaultLayout())
	bottom := mem.Heap.Bottom()

	assert.NoError(mem.Heap.Reserve(mem.Heap.Available()))
	assert.Equal(bottom, mem.Heap.Bottom())

	err := mem.Heap.Reserve(types.ArrayOf(types.Int, 1000000000).Size())
	assert.ErrorIs(err, ErrMemoryCollision)

	var collision *ErrCollision
	if assert.True(errors.As(err, &collision)) {
		assert.Equal("heap", collision.Region)
		assert.Equal(bottom, collision.Address)
		assert.GreaterOrEqual(collision.Address, mem.Heap.Start)
		assert.NotContains(collision.Error(), "-")
	}
	assert.ErrorIs(mem.Heap.Reserve(-1), ErrMemoryCollision)
}

func TestMemory_Dereference(t *testing.T) {
	assert := assert.New(t)

	base, derived := testDerived()
	mem := New(DefaultLayout())

	d := NewObject(STATIC, "d", types.ClassType(derived))
	assert.NoError(mem.AllocateStatic(d))

	assert.Same(d, mem.Dereference(d.Address, types.ClassType(derived)))

	asBase := mem.Dereference(d.Address, types.ClassType(base))
	assert.True(asBase.IsBase)
	assert.Same(d, asBase.Complete())

	y, _ := d.MemberNamed("y")
	assert.Same(y, mem.Dereference(d.Address+8, types.Int.Qualified(true, false)))

	anon := mem.Dereference(d.Address+8, types.Double)
	assert.Equal(ANONYMOUS, anon.Kind)
	assert.Equal(d.Address+8, anon.Address)

	mem.DeallocateObject(d.Address)
	dangling := mem.Dereference(d.Address, types.ClassType(derived))
	assert.Equal(ANONYMOUS, dangling.Kind)
}

func TestMemory_StringLiteral(t *testing.T) {
	assert := assert.New(t)

	mem := New(DefaultLayout())

	hi, err := mem.AllocateStringLiteral("hi")
	assert.NoError(err)
	again, err := mem.AllocateStringLiteral("hi")
	assert.NoError(err)
	assert.Same(hi, again)

	assert.Equal(STRING_LITERAL, hi.Kind)
	assert.Equal(3, hi.Type.Length)
	assert.Equal([]byte{'h', 'i', 0}, mem.GetBytes(hi.Address, 3))
	assert.Equal(int64(NULL_GUARD), hi.Address)
}

func TestMemory_Temporary(t *testing.T) {
	assert := assert.New(t)

	mem := New(Layout{TemporaryCapacity: 8})

	a := NewObject(TEMPORARY, "", types.Int)
	assert.NoError(mem.AllocateTemporaryObject(a))
	assert.Equal(mem.TemporaryStart, a.Address)

	b := NewObject(TEMPORARY, "", types.Double)
	assert.ErrorIs(mem.AllocateTemporaryObject(b), ErrTemporaryFull)

	mem.DeallocateTemporaryObject(a)
	assert.False(a.IsAlive())
	assert.Equal(mem.TemporaryStart, mem.TemporaryBottom())
	assert.NoError(mem.AllocateTemporaryObject(b))
	assert.Equal(mem.TemporaryStart, b.Address)
}

func TestMemory_TemporaryReuse(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	mem := New(Layout{TemporaryCapacity: 12})

	// Far more temporaries than fit at once, each freed in turn.
	for range 5000 {
		obj := NewObject(TEMPORARY, "", types.Int)
		require.NoError(mem.AllocateTemporaryObject(obj))
		mem.DeallocateTemporaryObject(obj)
	}
	assert.Equal(mem.TemporaryStart, mem.TemporaryBottom())

	// Freeing below a live temporary keeps the space under it in use.
	a := NewObject(TEMPORARY, "", types.Int)
	b := NewObject(TEMPORARY, "", types.Int)
	c := NewObject(TEMPORARY, "", types.Int)
	require.NoError(mem.AllocateTemporaryObject(a))
	require.NoError(mem.AllocateTemporaryObject(b))
	require.NoError(mem.AllocateTemporaryObject(c))
	mem.DeallocateTemporaryObject(b)
	assert.Equal(mem.TemporaryStart+12, mem.TemporaryBottom())
	mem.DeallocateTemporaryObject(c)
	assert.Equal(mem.TemporaryStart+4, mem.TemporaryBottom())
	mem.DeallocateTemporaryObject(c)
	assert.Equal(mem.TemporaryStart+4, mem.TemporaryBottom())
	mem.DeallocateTemporaryObject(a)
	assert.Equal(mem.TemporaryStart, mem.TemporaryBottom())
}

func TestMemory_Hooks(t *testing.T) {
	assert := assert.New(t)

	mem := New(DefaultLayout())

	var allocated, deallocated, reads, writes, pushed, popped int
	mem.Hooks = Hooks{
		ObjectAllocated:   func(*Object) { allocated++ },
		ObjectDeallocated: func(*Object) { deallocated++ },
		ValueRead:         func(*Object, value.Value) { reads++ },
		ValueWritten:      func(*Object, value.Value) { writes++ },
		FramePushed:       func(*Frame) { pushed++ },
		FramePopped:       func(*Frame) { popped++ },
	}

	frame, err := mem.Stack.PushFrame("main", []Local{{Key: 0, Name: "x", Type: types.Int}})
	assert.NoError(err)
	x, _ := frame.Object(0)
	x.WriteValue(value.New(types.Int, int64(5)))
	x.ReadValue()
	x.Value()
	x.SetValue(value.New(types.Int, int64(6)))
	_, err = mem.Stack.PopFrame()
	assert.NoError(err)

	assert.Equal(1, allocated)
	assert.Equal(1, deallocated)
	assert.Equal(1, reads)
	assert.Equal(1, writes)
	assert.Equal(1, pushed)
	assert.Equal(1, popped)
}

func TestObject_PointerBounds(t *testing.T) {
	assert := assert.New(t)

	mem := New(DefaultLayout())
	p := NewObject(STATIC, "p", types.PointerTo(types.Int))
	assert.NoError(mem.AllocateStatic(p))

	p.WriteValue(value.ArrayPointer(p.Type, 200, value.Bounds{Start: 200, End: 212}))
	bounds, ok := p.ReadValue().Bounds()
	assert.True(ok)
	assert.Equal(int64(212), bounds.End)

	p.WriteValue(value.Pointer(p.Type, 300))
	_, ok = p.ReadValue().Bounds()
	assert.False(ok)
}
