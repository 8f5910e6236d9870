package serial

// makeRaw returns a copy of t with all line-editing, echo and translation
// processing disabled: bytes pass through unmodified in both directions and
// reads return immediately with whatever is available (VMIN=0, VTIME=0).
// It is idempotent and is always applied before the user configuration so
// every session starts from the same clean baseline regardless of what the
// previous owner of the device left behind.
func makeRaw(p *Profile, t Termios) Termios {
	t.Iflag &^= p.IGNBRK | p.BRKINT | p.PARMRK | p.ISTRIP |
		p.INLCR | p.IGNCR | p.ICRNL | p.IXON
	t.Oflag &^= p.OPOST
	t.Lflag &^= p.ECHO | p.ECHONL | p.ICANON | p.ISIG | p.IEXTEN
	t.Cflag &^= p.CSIZE | p.PARENB
	t.Cflag |= p.CS8
	t.CC[p.VMIN] = 0
	t.CC[p.VTIME] = 0
	return t
}

// applyTermiosConfig layers the requested line parameters on top of a
// raw-mode baseline. Stale bits from a previous configuration are cleared
// before the new ones are set; in particular the baud mask must be cleared
// before the new code is ORed in, and parity bits before being re-set.
func applyTermiosConfig(p *Profile, t Termios, cfg *Config) (Termios, error) {
	// Baud rate. Linux encodes the rate as CBAUD bits mirrored into the
	// speed words; Darwin stores the literal rate in the speed words only.
	code, err := p.EncodeBaud(cfg.BaudRate)
	if err != nil {
		return t, err
	}
	if p.literalBauds {
		t.Ispeed = uint64(cfg.BaudRate)
		t.Ospeed = uint64(cfg.BaudRate)
	} else {
		t.Cflag &^= p.CBAUD
		t.Cflag |= code
		t.Ispeed = code
		t.Ospeed = code
	}

	// Character size.
	t.Cflag &^= p.CSIZE
	switch cfg.DataBits {
	case 5:
		t.Cflag |= p.CS5
	case 6:
		t.Cflag |= p.CS6
	case 7:
		t.Cflag |= p.CS7
	case 8:
		t.Cflag |= p.CS8
	default:
		return t, configErr("invalid data bits")
	}

	// Stop bits.
	if cfg.StopBits == 2 {
		t.Cflag |= p.CSTOPB
	} else {
		t.Cflag &^= p.CSTOPB
	}

	// Parity.
	t.Cflag &^= p.PARENB | p.PARODD | p.CMSPAR
	switch cfg.Parity {
	case ParityNone:
	case ParityEven:
		t.Cflag |= p.PARENB
	case ParityOdd:
		t.Cflag |= p.PARENB | p.PARODD
	case ParityMark:
		if !p.SupportsMarkSpaceParity {
			return t, configErr("mark parity is not supported on " + p.OS)
		}
		t.Cflag |= p.PARENB | p.PARODD | p.CMSPAR
	case ParitySpace:
		if !p.SupportsMarkSpaceParity {
			return t, configErr("space parity is not supported on " + p.OS)
		}
		t.Cflag |= p.PARENB | p.CMSPAR
	default:
		return t, configErr("invalid parity")
	}

	// Hardware flow control.
	if cfg.RTSCTS {
		t.Cflag |= p.CRTSCTS
	} else {
		t.Cflag &^= p.CRTSCTS
	}

	// Software flow control is enabled as a group: requesting either
	// direction turns on both IXON and IXOFF.
	t.Iflag &^= p.IXON | p.IXOFF | p.IXANY
	if cfg.XOn || cfg.XOff {
		t.Iflag |= p.IXON | p.IXOFF
	}
	if cfg.XAny {
		t.Iflag |= p.IXANY
	}

	// Receiver on, modem control lines ignored (local connection).
	t.Cflag |= p.CREAD | p.CLOCAL

	if cfg.HUPCL {
		t.Cflag |= p.HUPCL
	} else {
		t.Cflag &^= p.HUPCL
	}

	return t, nil
}
