package serial

import (
	"fmt"
	"syscall"
)

// ErrorKind classifies a port failure so callers can react without matching
// on errno values or message strings.
type ErrorKind int

const (
	SystemError ErrorKind = iota
	PortNotFound
	AccessDenied
	InvalidBaudRate
	InvalidConfiguration
	PortClosed
	OperationNotSupported
)

func (k ErrorKind) String() string {
	switch k {
	case PortNotFound:
		return "port not found"
	case AccessDenied:
		return "access denied"
	case InvalidBaudRate:
		return "invalid baud rate"
	case InvalidConfiguration:
		return "invalid configuration"
	case PortClosed:
		return "port not open"
	case OperationNotSupported:
		return "operation not supported"
	default:
		return "system error"
	}
}

// PortError is the structured failure returned by every operation in this
// package. Op names the failing syscall when the error came out of the
// bridge; Errno carries the raw kernel error number when there was one.
type PortError struct {
	Kind  ErrorKind
	Op    string
	Errno syscall.Errno
	Msg   string
}

func (e *PortError) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Op != "" {
		s = fmt.Sprintf("%s (%s", s, e.Op)
		if e.Errno != 0 {
			s += fmt.Sprintf(": errno %d", int(e.Errno))
		}
		s += ")"
	}
	return s
}

// Unwrap exposes the raw errno so errors.Is(err, unix.ENOTTY) style checks
// keep working on bridge failures.
func (e *PortError) Unwrap() error {
	if e.Errno != 0 {
		return e.Errno
	}
	return nil
}

// errPortClosed reports an operation attempted on a session that is not in
// the open state. Such calls never reach the syscall bridge.
func errPortClosed(op string) error {
	return &PortError{Kind: PortClosed, Op: op}
}

func configErr(msg string) error {
	return &PortError{Kind: InvalidConfiguration, Msg: msg}
}

// sysErr maps a kernel error number from the named syscall to a structured
// failure. Open-time path errors get their own kinds; everything else is a
// generic system error carrying the errno.
func sysErr(op string, errno syscall.Errno) error {
	kind := SystemError
	switch errno {
	case syscall.ENOENT:
		kind = PortNotFound
	case syscall.EACCES, syscall.EPERM, syscall.EBUSY:
		// EBUSY is what the kernel reports when another descriptor holds
		// the TIOCEXCL lock on the path.
		kind = AccessDenied
	}
	return &PortError{Kind: kind, Op: op, Errno: errno}
}
