// Package sim drives a compiled program one step at a time.
//
// A Simulation owns the memory and the instance stack of one run. Each
// StepForward settles the stack with UpNext, performs one StepForward on
// the top instance and settles again. StepBackward resets and replays,
// which is deterministic because memory garbage is seeded.
package sim
