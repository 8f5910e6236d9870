//go:build linux || darwin

package serial

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// The bridge is a faithful 1:1 mapping onto the kernel: every wrapper issues
// exactly one syscall and performs no retries. Retry-on-would-block is a
// session policy, not a bridge policy.

func asErrno(err error) syscall.Errno {
	if errno, ok := err.(syscall.Errno); ok {
		return errno
	}
	return syscall.EIO
}

// openPort opens the device non-blocking and without becoming its
// controlling terminal.
func openPort(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return -1, sysErr("open", asErrno(err))
	}
	return fd, nil
}

func closeFd(fd int) error {
	if err := unix.Close(fd); err != nil {
		return sysErr("close", asErrno(err))
	}
	return nil
}

// readFd performs one non-blocking read. A would-block result is not an
// error: it means zero bytes are available right now and is reported as
// (0, nil). EINTR is likewise treated as zero progress.
func readFd(fd int, buf []byte) (int, error) {
	n, err := unix.Read(fd, buf)
	if n < 0 {
		n = 0
	}
	if err != nil {
		errno := asErrno(err)
		switch errno {
		case unix.EAGAIN, unix.EINTR:
			return 0, nil
		}
		return n, sysErr("read", errno)
	}
	return n, nil
}

// writeFd performs one non-blocking write; a would-block result is (0, nil),
// meaning the kernel accepted nothing right now.
func writeFd(fd int, buf []byte) (int, error) {
	n, err := unix.Write(fd, buf)
	if n < 0 {
		n = 0
	}
	if err != nil {
		errno := asErrno(err)
		switch errno {
		case unix.EAGAIN, unix.EINTR:
			return 0, nil
		}
		return n, sysErr("write", errno)
	}
	return n, nil
}

// tcGetAttr fetches the raw kernel attribute buffer for fd. The returned
// slice has exactly p.TermiosSize bytes and is the image encodeTermios must
// later write into, so unmodeled bytes survive the round trip.
func tcGetAttr(fd int, p *Profile) ([]byte, error) {
	buf := make([]byte, p.TermiosSize)
	if errno := ioctlPtr(fd, p.ReqGetAttr, unsafe.Pointer(&buf[0])); errno != 0 {
		return nil, sysErr("tcgetattr", errno)
	}
	return buf, nil
}

// tcSetAttr applies a raw attribute buffer to fd. when selects immediate
// application, after-drain or after-flush semantics.
func tcSetAttr(fd int, p *Profile, when setAttrWhen, buf []byte) error {
	if len(buf) != p.TermiosSize {
		return configErr("termios buffer size mismatch")
	}
	req := p.ReqSetAttrNow
	switch when {
	case setAttrDrain:
		req = p.ReqSetAttrDrain
	case setAttrFlush:
		req = p.ReqSetAttrFlush
	}
	if errno := ioctlPtr(fd, req, unsafe.Pointer(&buf[0])); errno != 0 {
		return sysErr("tcsetattr", errno)
	}
	return nil
}

func setExclusiveLock(fd int, p *Profile) error {
	if errno := ioctlInt(fd, p.ReqExclusiveLock, 0); errno != 0 {
		return sysErr("ioctl TIOCEXCL", errno)
	}
	return nil
}

func clearExclusiveLock(fd int, p *Profile) error {
	if errno := ioctlInt(fd, p.ReqExclusiveUnlock, 0); errno != 0 {
		return sysErr("ioctl TIOCNXCL", errno)
	}
	return nil
}

// modemErr translates the errnos a modem-control ioctl yields on devices
// without control lines (PTYs, many USB adapters) into an explicit
// unsupported-operation failure instead of an opaque system error.
func modemErr(op string, errno syscall.Errno) error {
	switch errno {
	case unix.ENOTTY, unix.ENODEV:
		return &PortError{Kind: OperationNotSupported, Op: op, Errno: errno}
	}
	return sysErr(op, errno)
}

// modemGet reads the current modem control line bits.
func modemGet(fd int, p *Profile) (uint64, error) {
	var bits int32
	if errno := ioctlPtr(fd, p.ReqModemGet, unsafe.Pointer(&bits)); errno != 0 {
		return 0, modemErr("ioctl TIOCMGET", errno)
	}
	return uint64(uint32(bits)), nil
}

// modemSet writes the full modem control line bit set.
func modemSet(fd int, p *Profile, bits uint64) error {
	v := int32(uint32(bits))
	if errno := ioctlPtr(fd, p.ReqModemSet, unsafe.Pointer(&v)); errno != 0 {
		return modemErr("ioctl TIOCMSET", errno)
	}
	return nil
}
