//go:build linux

package serial

import (
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux flush queue selectors (TCFLSH argument).
const (
	tcQueueIn   = 0 // TCIFLUSH
	tcQueueOut  = 1 // TCOFLUSH
	tcQueueBoth = 2 // TCIOFLUSH
)

// Linux flow actions (TCXONC argument).
const (
	tcFlowOutputOff = 0 // TCOOFF
	tcFlowOutputOn  = 1 // TCOON
)

func ioctlInt(fd int, req uintptr, arg uintptr) syscall.Errno {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, arg)
	return errno
}

func ioctlPtr(fd int, req uintptr, p unsafe.Pointer) syscall.Errno {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(p))
	return errno
}

// tcFlush discards queued-but-untransferred bytes in the selected direction.
func tcFlush(fd int, p *Profile, dir FlushDirection) error {
	arg := uintptr(tcQueueBoth)
	switch dir {
	case FlushInput:
		arg = tcQueueIn
	case FlushOutput:
		arg = tcQueueOut
	}
	if errno := ioctlInt(fd, p.ReqFlush, arg); errno != 0 {
		return sysErr("tcflush", errno)
	}
	return nil
}

// tcDrain blocks until pending output has been transmitted. This is the one
// bridge call that may block on hardware.
func tcDrain(fd int, p *Profile) error {
	// tcdrain(3) is TCSBRK with a nonzero argument.
	if errno := ioctlInt(fd, p.ReqDrain, 1); errno != 0 {
		return sysErr("tcdrain", errno)
	}
	return nil
}

// tcSendBreak transmits zero bits for the given duration; zero means the
// kernel default break (roughly a quarter second).
func tcSendBreak(fd int, p *Profile, d time.Duration) error {
	// TCSBRKP takes the period in deciseconds.
	arg := uintptr(d / (100 * time.Millisecond))
	if errno := ioctlInt(fd, p.ReqBreak, arg); errno != 0 {
		return sysErr("tcsendbreak", errno)
	}
	return nil
}

// tcFlowOutput suspends or resumes output transmission.
func tcFlowOutput(fd int, p *Profile, resume bool) error {
	arg := uintptr(tcFlowOutputOff)
	if resume {
		arg = tcFlowOutputOn
	}
	if errno := ioctlInt(fd, p.ReqFlow, arg); errno != 0 {
		return sysErr("tcflow", errno)
	}
	return nil
}
