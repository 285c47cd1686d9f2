package core

import (
	"errors"
	"fmt"
)

var (
	// ErrCopyPassSpent is returned when work is queued on a copy pass that
	// has already been submitted or closed.
	ErrCopyPassSpent = errors.New("copy pass already submitted or closed")
	// ErrSwapchainUnavailable is returned by a device that has no swapchain
	// image to hand out this frame (for example a minimised window).
	ErrSwapchainUnavailable = errors.New("swapchain texture unavailable")
	ErrUnknown              = errors.New("unknown")
)

// DeviceError reports a failed call into the GPU device or the platform
// layer. Op names the failing operation.
type DeviceError struct {
	Op  string
	Err error
}

func NewDeviceError(op string, err error) *DeviceError {
	if err == nil {
		err = ErrUnknown
	}
	return &DeviceError{Op: op, Err: err}
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// IOError reports a failed read of a resource file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io: %s: %s", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FatalError is an invariant violation such as an unsupported format or a
// malformed resource.
type FatalError struct {
	Msg string
}

func Fatalf(format string, args ...interface{}) *FatalError {
	return &FatalError{Msg: fmt.Sprintf(format, args...)}
}

func (e *FatalError) Error() string { return e.Msg }

// FailedOp returns the operation name carried by the first DeviceError in
// err's chain, or "" if there is none.
func FailedOp(err error) string {
	var de *DeviceError
	if errors.As(err, &de) {
		return de.Op
	}
	return ""
}
