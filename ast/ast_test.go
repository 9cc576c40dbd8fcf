package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSpan(t *testing.T) {
	assert := assert.New(t)

	s := Span{File: "main.cpp", Line: 3, Column: 7}
	assert.Equal("main.cpp:3:7", s.String())
	assert.Equal(s, s.Pos())

	var n Node = &IntLit{Span: s, Value: 1}
	assert.Equal(3, n.Pos().Line)

	assert.Equal("4:1", Span{Line: 4, Column: 1}.String())
}

func TestBuild(t *testing.T) {
	assert := assert.New(t)

	spec := Spec("const std::string")
	assert.True(spec.Const)
	assert.Equal("string", spec.Name)
	assert.Equal([]string{"std"}, spec.Qualified)

	assert.Nil(Spec("int").Qualified)

	id := Id("A::B::x")
	assert.Equal("x", id.Name)
	assert.Equal([]string{"A", "B"}, id.Qualified)

	fn := Fn("void", "A::f", nil)
	assert.Equal("f", fn.Declarator.Name)
	assert.Equal([]string{"A"}, fn.Declarator.Qualified)
	assert.Equal(FUNCTION, fn.Declarator.Ops[0].Kind)

	arr := Arr(-1)
	assert.Nil(arr.Length)

	got := Print(Int(1), Str("x"))
	want := &ExprStmt{X: &Binary{
		Op: "<<",
		X: &Binary{
			Op: "<<",
			X:  &Ident{Name: "cout", Qualified: []string{"std"}},
			Y:  &IntLit{Value: 1},
		},
		Y: &StringLit{Value: "x"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Print mismatch (-want +got):\n%s", diff)
	}
}

func TestOpKind_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("array", ARRAY.String())
	assert.Equal("OpKind(9)", OpKind(9).String())
}
