package serial

import "encoding/binary"

// maxNumCC is the widest control-character array of any supported profile.
const maxNumCC = 20

// Termios is the decoded, platform-neutral form of the kernel terminal
// attributes structure. Mode fields are held as uint64 so that both the
// 32-bit Linux words and the 64-bit Darwin words fit; the codec narrows on
// encode. Only the first Profile.NumCC entries of CC are meaningful, and
// Line is meaningful only where Profile.HasLine is set.
type Termios struct {
	Iflag  uint64
	Oflag  uint64
	Cflag  uint64
	Lflag  uint64
	Line   byte
	CC     [maxNumCC]byte
	Ispeed uint64
	Ospeed uint64
}

// Linux layout (60 bytes): four LE32 mode words at 0/4/8/12, the line
// discipline byte at 16, 19 cc bytes at 17, LE32 speed words at 36/40.
// Bytes 44..59 are reserved and not modeled.
const (
	linuxOffIflag  = 0
	linuxOffOflag  = 4
	linuxOffCflag  = 8
	linuxOffLflag  = 12
	linuxOffLine   = 16
	linuxOffCC     = 17
	linuxOffIspeed = 36
	linuxOffOspeed = 40
)

// Darwin 64-bit layout (72 bytes): four LE64 mode words at 0/8/16/24, 20 cc
// bytes at 32, 4 bytes of alignment padding at 52..55 (not modeled), LE64
// speed words at 56/64.
const (
	darwinOffIflag  = 0
	darwinOffOflag  = 8
	darwinOffCflag  = 16
	darwinOffLflag  = 24
	darwinOffCC     = 32
	darwinOffIspeed = 56
	darwinOffOspeed = 64
)

// decodeTermios decodes a raw kernel attribute buffer. The buffer length
// must match the profile's structure size exactly; offset arithmetic is
// never performed against an unvalidated buffer.
func decodeTermios(p *Profile, buf []byte) (Termios, error) {
	var t Termios
	if len(buf) != p.TermiosSize {
		return t, &PortError{
			Kind: InvalidConfiguration,
			Msg:  "termios buffer size mismatch",
		}
	}
	le := binary.LittleEndian
	switch p.OS {
	case "linux":
		t.Iflag = uint64(le.Uint32(buf[linuxOffIflag:]))
		t.Oflag = uint64(le.Uint32(buf[linuxOffOflag:]))
		t.Cflag = uint64(le.Uint32(buf[linuxOffCflag:]))
		t.Lflag = uint64(le.Uint32(buf[linuxOffLflag:]))
		t.Line = buf[linuxOffLine]
		copy(t.CC[:p.NumCC], buf[linuxOffCC:linuxOffCC+p.NumCC])
		t.Ispeed = uint64(le.Uint32(buf[linuxOffIspeed:]))
		t.Ospeed = uint64(le.Uint32(buf[linuxOffOspeed:]))
	case "darwin":
		t.Iflag = le.Uint64(buf[darwinOffIflag:])
		t.Oflag = le.Uint64(buf[darwinOffOflag:])
		t.Cflag = le.Uint64(buf[darwinOffCflag:])
		t.Lflag = le.Uint64(buf[darwinOffLflag:])
		copy(t.CC[:p.NumCC], buf[darwinOffCC:darwinOffCC+p.NumCC])
		t.Ispeed = le.Uint64(buf[darwinOffIspeed:])
		t.Ospeed = le.Uint64(buf[darwinOffOspeed:])
	default:
		return t, &PortError{Kind: InvalidConfiguration, Msg: "unsupported platform " + p.OS}
	}
	return t, nil
}

// encodeTermios writes t into buf, which must be the attribute buffer most
// recently fetched from the kernel and must have exactly the profile's
// structure size. Only modeled regions are touched: reserved bytes (the
// Linux tail, the Darwin alignment padding) keep whatever the kernel put
// there. Encoding into a zeroed buffer would silently clear those regions
// on the next tcsetattr, so callers always round-trip through tcgetattr.
func encodeTermios(p *Profile, t Termios, buf []byte) error {
	if len(buf) != p.TermiosSize {
		return &PortError{
			Kind: InvalidConfiguration,
			Msg:  "termios buffer size mismatch",
		}
	}
	le := binary.LittleEndian
	switch p.OS {
	case "linux":
		le.PutUint32(buf[linuxOffIflag:], uint32(t.Iflag))
		le.PutUint32(buf[linuxOffOflag:], uint32(t.Oflag))
		le.PutUint32(buf[linuxOffCflag:], uint32(t.Cflag))
		le.PutUint32(buf[linuxOffLflag:], uint32(t.Lflag))
		buf[linuxOffLine] = t.Line
		copy(buf[linuxOffCC:linuxOffCC+p.NumCC], t.CC[:p.NumCC])
		le.PutUint32(buf[linuxOffIspeed:], uint32(t.Ispeed))
		le.PutUint32(buf[linuxOffOspeed:], uint32(t.Ospeed))
	case "darwin":
		le.PutUint64(buf[darwinOffIflag:], t.Iflag)
		le.PutUint64(buf[darwinOffOflag:], t.Oflag)
		le.PutUint64(buf[darwinOffCflag:], t.Cflag)
		le.PutUint64(buf[darwinOffLflag:], t.Lflag)
		copy(buf[darwinOffCC:darwinOffCC+p.NumCC], t.CC[:p.NumCC])
		le.PutUint64(buf[darwinOffIspeed:], t.Ispeed)
		le.PutUint64(buf[darwinOffOspeed:], t.Ospeed)
	default:
		return &PortError{Kind: InvalidConfiguration, Msg: "unsupported platform " + p.OS}
	}
	return nil
}
