package serial

// Profile describes one supported kernel variant: the byte layout of its
// terminal-attributes structure, its flag bit positions, its control
// character indices, its ioctl request codes and its baud rate encoding.
//
// Both profiles are plain data and compile on every platform so that the
// codec and the raw-mode configurator can be exercised for either layout
// from a single host. The values are literals rather than unix.* constants
// for the same reason: golang.org/x/sys only exposes the host's set.
//
// A Profile is resolved once per process and never mutated. All flag
// consumers go through the profile; nothing outside this file assumes a
// fixed bit position.
type Profile struct {
	OS string

	// Attribute structure geometry.
	TermiosSize int  // encoded byte size: 60 on Linux, 72 on Darwin
	NumCC       int  // control-character slots: 19 on Linux, 20 on Darwin
	HasLine     bool // Linux keeps a line-discipline byte at offset 16

	// Input flag bits (c_iflag).
	IGNBRK, BRKINT, IGNPAR, PARMRK, INPCK, ISTRIP uint64
	INLCR, IGNCR, ICRNL, IXON, IXANY, IXOFF       uint64

	// Output flag bits (c_oflag).
	OPOST uint64

	// Local flag bits (c_lflag).
	ISIG, ICANON, ECHO, ECHOE, ECHOK, ECHONL, IEXTEN uint64

	// Control flag bits (c_cflag). CBAUD and CMSPAR are zero on Darwin,
	// which has neither a baud mask nor mark/space parity.
	CSIZE, CS5, CS6, CS7, CS8      uint64
	CSTOPB, CREAD, PARENB, PARODD  uint64
	HUPCL, CLOCAL, CRTSCTS, CMSPAR uint64
	CBAUD                          uint64

	// Control character indices (c_cc).
	VEOF, VEOL, VERASE, VINTR, VKILL, VQUIT    int
	VSTART, VSTOP, VSUSP, VMIN, VTIME, VDSUSP int

	// ioctl request codes.
	ReqGetAttr, ReqSetAttrNow, ReqSetAttrDrain, ReqSetAttrFlush uintptr
	ReqExclusiveLock, ReqExclusiveUnlock                        uintptr
	ReqModemGet, ReqModemSet                                    uintptr
	ReqFlush, ReqDrain, ReqFlow                                 uintptr
	ReqBreak, ReqBreakOn, ReqBreakOff                           uintptr

	// Modem control line bits, as read/written through ReqModemGet/Set.
	ModemDTR, ModemRTS, ModemCTS, ModemDSR, ModemDCD, ModemRING uint64

	// Capability gates.
	SupportsMarkSpaceParity bool
	SupportsModemSignals    bool

	// Baud encoding. On Linux codes are CBAUD bit patterns; on Darwin the
	// table holds the canonical rates and any other positive literal rate
	// is accepted as-is by the kernel.
	baudCodes    map[int]uint64
	literalBauds bool
}

// Flush queue selectors for Port.Flush.
type FlushDirection int

const (
	FlushInput FlushDirection = iota
	FlushOutput
	FlushBoth
)

// tcsetattr timing selectors used by the bridge.
type setAttrWhen int

const (
	setAttrNow setAttrWhen = iota
	setAttrDrain
	setAttrFlush
)

var linuxProfile = &Profile{
	OS: "linux",

	TermiosSize: 60,
	NumCC:       19,
	HasLine:     true,

	IGNBRK: 0x0001, BRKINT: 0x0002, IGNPAR: 0x0004, PARMRK: 0x0008,
	INPCK: 0x0010, ISTRIP: 0x0020, INLCR: 0x0040, IGNCR: 0x0080,
	ICRNL: 0x0100, IXON: 0x0400, IXANY: 0x0800, IXOFF: 0x1000,

	OPOST: 0x0001,

	ISIG: 0x0001, ICANON: 0x0002, ECHO: 0x0008, ECHOE: 0x0010,
	ECHOK: 0x0020, ECHONL: 0x0040, IEXTEN: 0x8000,

	CSIZE: 0x0030, CS5: 0x0000, CS6: 0x0010, CS7: 0x0020, CS8: 0x0030,
	CSTOPB: 0x0040, CREAD: 0x0080, PARENB: 0x0100, PARODD: 0x0200,
	HUPCL: 0x0400, CLOCAL: 0x0800,
	CRTSCTS: 0x80000000, CMSPAR: 0x40000000,
	CBAUD: 0x100F,

	VINTR: 0, VQUIT: 1, VERASE: 2, VKILL: 3, VEOF: 4,
	VTIME: 5, VMIN: 6, VSTART: 8, VSTOP: 9, VSUSP: 10,
	VEOL: 11, VDSUSP: -1,

	ReqGetAttr:      0x5401, // TCGETS
	ReqSetAttrNow:   0x5402, // TCSETS
	ReqSetAttrDrain: 0x5403, // TCSETSW
	ReqSetAttrFlush: 0x5404, // TCSETSF

	ReqExclusiveLock:   0x540C, // TIOCEXCL
	ReqExclusiveUnlock: 0x540D, // TIOCNXCL

	ReqModemGet: 0x5415, // TIOCMGET
	ReqModemSet: 0x5418, // TIOCMSET

	ReqFlush: 0x540B, // TCFLSH
	ReqDrain: 0x5409, // TCSBRK, arg 1
	ReqFlow:  0x540A, // TCXONC
	ReqBreak: 0x5425, // TCSBRKP, arg in deciseconds

	ModemDTR: 0x002, ModemRTS: 0x004, ModemCTS: 0x020,
	ModemDCD: 0x040, ModemRING: 0x080, ModemDSR: 0x100,

	SupportsMarkSpaceParity: true,
	SupportsModemSignals:    true,

	baudCodes: map[int]uint64{
		0:       0x0000,
		50:      0x0001,
		75:      0x0002,
		110:     0x0003,
		134:     0x0004,
		150:     0x0005,
		200:     0x0006,
		300:     0x0007,
		600:     0x0008,
		1200:    0x0009,
		1800:    0x000A,
		2400:    0x000B,
		4800:    0x000C,
		9600:    0x000D,
		19200:   0x000E,
		38400:   0x000F,
		57600:   0x1001,
		115200:  0x1002,
		230400:  0x1003,
		460800:  0x1004,
		500000:  0x1005,
		576000:  0x1006,
		921600:  0x1007,
		1000000: 0x1008,
		1152000: 0x1009,
		1500000: 0x100A,
		2000000: 0x100B,
		2500000: 0x100C,
		3000000: 0x100D,
		3500000: 0x100E,
		4000000: 0x100F,
	},
}

var darwinProfile = &Profile{
	OS: "darwin",

	TermiosSize: 72,
	NumCC:       20,
	HasLine:     false,

	IGNBRK: 0x0001, BRKINT: 0x0002, IGNPAR: 0x0004, PARMRK: 0x0008,
	INPCK: 0x0010, ISTRIP: 0x0020, INLCR: 0x0040, IGNCR: 0x0080,
	ICRNL: 0x0100, IXON: 0x0200, IXOFF: 0x0400, IXANY: 0x0800,

	OPOST: 0x0001,

	ECHOE: 0x0002, ECHOK: 0x0004, ECHO: 0x0008, ECHONL: 0x0010,
	ISIG: 0x0080, ICANON: 0x0100, IEXTEN: 0x0400,

	CSIZE: 0x0300, CS5: 0x0000, CS6: 0x0100, CS7: 0x0200, CS8: 0x0300,
	CSTOPB: 0x0400, CREAD: 0x0800, PARENB: 0x1000, PARODD: 0x2000,
	HUPCL: 0x4000, CLOCAL: 0x8000,
	CRTSCTS: 0x10000 | 0x20000, // CCTS_OFLOW | CRTS_IFLOW
	CMSPAR:  0,
	CBAUD:   0,

	VEOF: 0, VEOL: 1, VERASE: 3, VKILL: 5, VINTR: 8, VQUIT: 9,
	VSUSP: 10, VDSUSP: 11, VSTART: 12, VSTOP: 13, VMIN: 16, VTIME: 17,

	ReqGetAttr:      0x40487413, // TIOCGETA
	ReqSetAttrNow:   0x80487414, // TIOCSETA
	ReqSetAttrDrain: 0x80487415, // TIOCSETAW
	ReqSetAttrFlush: 0x80487416, // TIOCSETAF

	ReqExclusiveLock:   0x2000740D, // TIOCEXCL
	ReqExclusiveUnlock: 0x2000740E, // TIOCNXCL

	ReqModemGet: 0x4004746A, // TIOCMGET
	ReqModemSet: 0x8004746D, // TIOCMSET

	ReqFlush:    0x80047410, // TIOCFLUSH, takes FREAD/FWRITE by pointer
	ReqDrain:    0x2000745E, // TIOCDRAIN
	ReqBreakOn:  0x2000747B, // TIOCSBRK
	ReqBreakOff: 0x2000747A, // TIOCCBRK

	ModemDTR: 0x002, ModemRTS: 0x004, ModemCTS: 0x020,
	ModemDCD: 0x040, ModemRING: 0x080, ModemDSR: 0x100,

	SupportsMarkSpaceParity: false,
	// The modem-control ioctls exist on Darwin, but the historical contract
	// of this layer is best-effort degradation there: reads report all lines
	// low and writes are ignored, so portable callers that only toggle
	// DTR/RTS opportunistically keep working unchanged.
	SupportsModemSignals: false,

	baudCodes: map[int]uint64{
		0: 0, 50: 50, 75: 75, 110: 110, 134: 134, 150: 150, 200: 200,
		300: 300, 600: 600, 1200: 1200, 1800: 1800, 2400: 2400,
		4800: 4800, 9600: 9600, 19200: 19200, 38400: 38400,
		57600: 57600, 115200: 115200, 230400: 230400,
	},
	literalBauds: true,
}

// EncodeBaud translates a portable baud rate into the platform's encoding.
// On Linux unknown rates are rejected; Darwin takes literal values, so any
// positive rate passes through.
func (p *Profile) EncodeBaud(rate int) (uint64, error) {
	if code, ok := p.baudCodes[rate]; ok {
		return code, nil
	}
	if p.literalBauds && rate > 0 {
		return uint64(rate), nil
	}
	return 0, &PortError{Kind: InvalidBaudRate, Msg: "unsupported baud rate"}
}

// rateFromTermios recovers the configured output baud rate from decoded
// attributes, for diagnostics and round-trip tests.
func (p *Profile) rateFromTermios(t Termios) (int, bool) {
	if p.literalBauds {
		return int(t.Ospeed), true
	}
	code := t.Cflag & p.CBAUD
	for rate, c := range p.baudCodes {
		if c == code {
			return rate, true
		}
	}
	return 0, false
}
