//go:build darwin

package serial

import (
	"syscall"
	"time"
	"unsafe"
)

// Darwin-only request codes with no Linux counterpart in the profile.
const (
	tiocstop  = 0x2000746F // suspend output
	tiocstart = 0x2000746E // restart output
)

// TIOCFLUSH takes the FREAD/FWRITE set by pointer.
const (
	fread  = 0x1
	fwrite = 0x2
)

func ioctlInt(fd int, req uintptr, arg uintptr) syscall.Errno {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), req, arg)
	return errno
}

func ioctlPtr(fd int, req uintptr, p unsafe.Pointer) syscall.Errno {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), req, uintptr(p))
	return errno
}

// tcFlush discards queued-but-untransferred bytes in the selected direction.
func tcFlush(fd int, p *Profile, dir FlushDirection) error {
	var com int32 = fread | fwrite
	switch dir {
	case FlushInput:
		com = fread
	case FlushOutput:
		com = fwrite
	}
	if errno := ioctlPtr(fd, p.ReqFlush, unsafe.Pointer(&com)); errno != 0 {
		return sysErr("tcflush", errno)
	}
	return nil
}

// tcDrain blocks until pending output has been transmitted. This is the one
// bridge call that may block on hardware.
func tcDrain(fd int, p *Profile) error {
	if errno := ioctlInt(fd, p.ReqDrain, 0); errno != 0 {
		return sysErr("tcdrain", errno)
	}
	return nil
}

// tcSendBreak transmits zero bits for the given duration; zero means a
// quarter-second default. Darwin has no timed break ioctl, so the line is
// held in break state explicitly between TIOCSBRK and TIOCCBRK.
func tcSendBreak(fd int, p *Profile, d time.Duration) error {
	if d <= 0 {
		d = 250 * time.Millisecond
	}
	if errno := ioctlInt(fd, p.ReqBreakOn, 0); errno != 0 {
		return sysErr("tcsendbreak", errno)
	}
	time.Sleep(d)
	if errno := ioctlInt(fd, p.ReqBreakOff, 0); errno != 0 {
		return sysErr("tcsendbreak", errno)
	}
	return nil
}

// tcFlowOutput suspends or resumes output transmission.
func tcFlowOutput(fd int, p *Profile, resume bool) error {
	req := uintptr(tiocstop)
	if resume {
		req = tiocstart
	}
	if errno := ioctlInt(fd, req, 0); errno != 0 {
		return sysErr("tcflow", errno)
	}
	return nil
}
