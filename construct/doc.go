// Package construct compiles translation units into constructs and
// defines how their instances execute.
//
// Compile checks a program and reports Notes; it never stops at the
// first error. Each Construct is immutable; a run creates an Instance
// per execution, which a Runtime pushes and pops on its instance stack.
package construct
