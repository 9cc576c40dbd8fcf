package memory

import (
	"errors"

	"github.com/jamesjuett/lobster-sub011/translate"
)

var f = translate.From

var (
	ErrMemoryCollision = errors.New(f("stack and heap collided"))
	ErrStaticFull      = errors.New(f("static region full"))
	ErrTemporaryFull   = errors.New(f("temporary region full"))
	ErrFrameEmpty      = errors.New(f("no frame to pop"))
)

// ErrCollision reports which region ran out of room, and the address
// its free space ended at.
type ErrCollision struct {
	Region  string
	Address int64
	Size    int64
}

func (err *ErrCollision) Error() string {
	return f("%v: %d bytes at 0x%x", ErrMemoryCollision, err.Size, err.Address)
}

func (err *ErrCollision) Unwrap() error {
	return ErrMemoryCollision
}
