package serial

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Parity selects the parity bit generation and checking mode.
type Parity byte

const (
	ParityNone  Parity = 'N'
	ParityEven  Parity = 'E'
	ParityOdd   Parity = 'O'
	ParityMark  Parity = 'M' // Linux only
	ParitySpace Parity = 'S' // Linux only
)

// Config holds configuration parameters for opening a serial port.
//
// The zero values of DataBits, StopBits, Parity and HighWaterMark are
// normalized to the defaults (8, 1, none, 64 KiB). HUPCL and Lock default
// to false in a zero-value Config; use DefaultConfig to get the canonical
// defaults where both are enabled.
type Config struct {
	Path     string
	BaudRate int

	DataBits int    // 5, 6, 7 or 8
	StopBits int    // 1 or 2
	Parity   Parity // 'N', 'E', 'O', 'M', 'S'

	// Hardware (RTS/CTS) flow control.
	RTSCTS bool

	// Software flow control. Enabling either XOn or XOff enables both the
	// input and output sides; XAny additionally lets any character restart
	// suspended output.
	XOn, XOff, XAny bool

	// Hang up (drop DTR) when the last descriptor is closed.
	HUPCL bool

	// Acquire the kernel exclusive lock (TIOCEXCL) on open, so no other
	// process can open the device path while this session holds it.
	Lock bool

	// Upper bound for a single Read, in bytes.
	HighWaterMark int

	// Logger receives best-effort failures that Close swallows by contract.
	// Nil means the package default logger.
	Logger *log.Logger
}

// DefaultConfig returns the canonical configuration for a device path:
// 8 data bits, 1 stop bit, no parity, no flow control, hang-up-on-close
// and exclusive locking enabled, 64 KiB read high-water mark.
func DefaultConfig(path string, baudRate int) Config {
	return Config{
		Path:          path,
		BaudRate:      baudRate,
		DataBits:      8,
		StopBits:      1,
		Parity:        ParityNone,
		HUPCL:         true,
		Lock:          true,
		HighWaterMark: 65536,
	}
}

// normalize fills zero values with defaults without touching explicit
// settings.
func (c *Config) normalize() {
	if c.DataBits == 0 {
		c.DataBits = 8
	}
	if c.StopBits == 0 {
		c.StopBits = 1
	}
	if c.Parity == 0 {
		c.Parity = ParityNone
	}
	if c.HighWaterMark <= 0 {
		c.HighWaterMark = 65536
	}
}

// validate rejects configurations the platform cannot express. It runs
// before any syscall is issued, so an invalid config never leaves a
// half-configured descriptor behind.
func (c *Config) validate(p *Profile) error {
	if c.Path == "" {
		return configErr("device path is empty")
	}
	if _, err := p.EncodeBaud(c.BaudRate); err != nil {
		return err
	}
	switch c.DataBits {
	case 5, 6, 7, 8:
	default:
		return configErr(fmt.Sprintf("invalid data bits: %d", c.DataBits))
	}
	switch c.StopBits {
	case 1, 2:
	default:
		return configErr(fmt.Sprintf("invalid stop bits: %d", c.StopBits))
	}
	switch c.Parity {
	case ParityNone, ParityEven, ParityOdd:
	case ParityMark, ParitySpace:
		if !p.SupportsMarkSpaceParity {
			return configErr("mark/space parity is not supported on " + p.OS)
		}
	default:
		return configErr(fmt.Sprintf("invalid parity: %q", byte(c.Parity)))
	}
	return nil
}

func (c *Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}
