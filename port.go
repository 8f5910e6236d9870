//go:build linux || darwin

package serial

import (
	"sync"
	"time"
)

const (
	// Upper bound for a single write syscall. Large writes are cut into
	// chunks so backpressure surfaces between syscalls rather than inside
	// one giant buffer handoff.
	writeChunkSize = 16384

	// Fixed busy-poll interval while the kernel output queue is full.
	writeRetryDelay = 5 * time.Millisecond
)

// ModemSignals is a snapshot of the readable modem control lines. It is
// recomputed from the hardware on every Signals call, never cached.
type ModemSignals struct {
	CTS  bool // Clear To Send
	DSR  bool // Data Set Ready
	DCD  bool // Data Carrier Detect
	RING bool // Ring Indicator
}

// SignalRequest is a partial update of the writable modem control lines.
// Nil fields are left at their current hardware state; the update is a
// read-modify-write merge, so unrelated control bits are preserved.
type SignalRequest struct {
	DTR *bool
	RTS *bool
}

// Port is an open serial port session. It owns exactly one file descriptor
// from Open until Close and the saved attribute snapshot used to restore
// the device on Close.
//
// Operations on a Port are sequential from the caller's perspective: the
// package provides no internal serialization of overlapping Read or Write
// calls. Close may be called from another goroutine and is idempotent.
type Port struct {
	mu      sync.Mutex
	fd      int
	opened  bool
	locked  bool
	profile *Profile
	cfg     Config

	// Raw kernel attribute image captured before this session configured
	// the device, restored best-effort on Close.
	saved []byte

	closeOnce sync.Once
}

// Open opens and configures a serial port. The configuration is validated
// before any syscall; a failure at any later step fully unwinds (lock
// released, descriptor closed), so an error never leaks a half-open port.
//
// Opening a path that another session holds under Lock fails with
// AccessDenied. A Port cannot be re-opened; open a new session instead.
func Open(cfg Config) (*Port, error) {
	profile := hostProfile()
	cfg.normalize()
	if err := cfg.validate(profile); err != nil {
		return nil, err
	}

	fd, err := openPort(cfg.Path)
	if err != nil {
		return nil, err
	}

	p := &Port{fd: fd, opened: true, profile: profile, cfg: cfg}

	if cfg.Lock {
		if err := setExclusiveLock(fd, profile); err != nil {
			closeFd(fd)
			return nil, err
		}
		p.locked = true
	}

	if err := p.configure(&cfg, setAttrNow); err != nil {
		p.unwind()
		return nil, err
	}

	// Discard whatever was buffered before this process owned the line.
	if err := tcFlush(fd, profile, FlushBoth); err != nil {
		p.unwind()
		return nil, err
	}

	return p, nil
}

// configure round-trips the kernel attributes: fetch, decode, rewrite,
// encode back into the fetched image, apply. Encoding into the image the
// kernel just produced is what keeps unmodeled bytes intact.
func (p *Port) configure(cfg *Config, when setAttrWhen) error {
	buf, err := tcGetAttr(p.fd, p.profile)
	if err != nil {
		return err
	}
	if p.saved == nil {
		p.saved = append([]byte(nil), buf...)
	}

	t, err := decodeTermios(p.profile, buf)
	if err != nil {
		return err
	}
	t = makeRaw(p.profile, t)
	t, err = applyTermiosConfig(p.profile, t, cfg)
	if err != nil {
		return err
	}
	if err := encodeTermios(p.profile, t, buf); err != nil {
		return err
	}
	return tcSetAttr(p.fd, p.profile, when, buf)
}

// unwind releases everything acquired during a failed Open.
func (p *Port) unwind() {
	if p.locked {
		clearExclusiveLock(p.fd, p.profile)
	}
	closeFd(p.fd)
	p.fd = -1
	p.opened = false
}

// handle returns the descriptor if the session is open, or PortClosed.
// Every public operation goes through it, so calls on a closed session
// never reach the syscall bridge.
func (p *Port) handle(op string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.opened {
		return -1, errPortClosed(op)
	}
	return p.fd, nil
}

// Path returns the device path this session was opened with.
func (p *Port) Path() string { return p.cfg.Path }

// Config returns a copy of the session configuration.
func (p *Port) Config() Config { return p.cfg }

// Read performs a single non-blocking read. It returns (0, nil) when no
// bytes are pending, which is a normal and frequent outcome on an idle
// line: Read never blocks, never polls internally and never returns io.EOF
// for an idle port. Callers needing blocking semantics loop with their own
// delay. Reads are capped at the configured high-water mark.
func (p *Port) Read(buf []byte) (int, error) {
	fd, err := p.handle("read")
	if err != nil {
		return 0, err
	}
	if len(buf) > p.cfg.HighWaterMark {
		buf = buf[:p.cfg.HighWaterMark]
	}
	return readFd(fd, buf)
}

// Write writes all of data, cutting it into bounded chunks. When the kernel
// queue is full it sleeps a fixed short interval and retries, so Write is a
// long-lived cooperative operation that returns only once every byte has
// been accepted or a hard error occurs. There is no internal cancellation;
// a caller that must abort should Close the port from another goroutine,
// which makes the next write fail.
func (p *Port) Write(data []byte) (int, error) {
	fd, err := p.handle("write")
	if err != nil {
		return 0, err
	}
	written := 0
	for written < len(data) {
		chunk := data[written:]
		if len(chunk) > writeChunkSize {
			chunk = chunk[:writeChunkSize]
		}
		n, err := writeFd(fd, chunk)
		if err != nil {
			return written, err
		}
		written += n
		if n == 0 {
			time.Sleep(writeRetryDelay)
		}
	}
	return written, nil
}

// Flush discards unread input, untransmitted output, or both.
func (p *Port) Flush(dir FlushDirection) error {
	fd, err := p.handle("tcflush")
	if err != nil {
		return err
	}
	return tcFlush(fd, p.profile, dir)
}

// Drain blocks until all queued output has been transmitted to the device.
func (p *Port) Drain() error {
	fd, err := p.handle("tcdrain")
	if err != nil {
		return err
	}
	return tcDrain(fd, p.profile)
}

// SendBreak holds the transmit line in break state for the given duration;
// zero selects the platform default of roughly a quarter second.
func (p *Port) SendBreak(d time.Duration) error {
	fd, err := p.handle("tcsendbreak")
	if err != nil {
		return err
	}
	return tcSendBreak(fd, p.profile, d)
}

// SuspendOutput pauses transmission, as if an XOFF had been received.
func (p *Port) SuspendOutput() error {
	fd, err := p.handle("tcflow")
	if err != nil {
		return err
	}
	return tcFlowOutput(fd, p.profile, false)
}

// ResumeOutput restarts transmission suspended by SuspendOutput.
func (p *Port) ResumeOutput() error {
	fd, err := p.handle("tcflow")
	if err != nil {
		return err
	}
	return tcFlowOutput(fd, p.profile, true)
}

// Signals reads the current state of the modem control lines.
//
// On Darwin this layer does not drive the modem-control ioctls; the call
// reports every line low rather than failing, so portable code that only
// samples CTS/DSR opportunistically behaves the same on both platforms. On
// devices without control lines (PTYs, many USB adapters) the error kind is
// OperationNotSupported.
func (p *Port) Signals() (ModemSignals, error) {
	var s ModemSignals
	fd, err := p.handle("ioctl TIOCMGET")
	if err != nil {
		return s, err
	}
	if !p.profile.SupportsModemSignals {
		return s, nil
	}
	bits, err := modemGet(fd, p.profile)
	if err != nil {
		return s, err
	}
	s.CTS = bits&p.profile.ModemCTS != 0
	s.DSR = bits&p.profile.ModemDSR != 0
	s.DCD = bits&p.profile.ModemDCD != 0
	s.RING = bits&p.profile.ModemRING != 0
	return s, nil
}

// SetSignals updates DTR and/or RTS. Only the fields present in the request
// change; all other control-line bits are carried over from the current
// hardware state. On Darwin the call is a silent no-op, mirroring Signals.
func (p *Port) SetSignals(req SignalRequest) error {
	fd, err := p.handle("ioctl TIOCMSET")
	if err != nil {
		return err
	}
	if !p.profile.SupportsModemSignals {
		return nil
	}
	if req.DTR == nil && req.RTS == nil {
		return nil
	}
	bits, err := modemGet(fd, p.profile)
	if err != nil {
		return err
	}
	if req.DTR != nil {
		if *req.DTR {
			bits |= p.profile.ModemDTR
		} else {
			bits &^= p.profile.ModemDTR
		}
	}
	if req.RTS != nil {
		if *req.RTS {
			bits |= p.profile.ModemRTS
		} else {
			bits &^= p.profile.ModemRTS
		}
	}
	return modemSet(fd, p.profile, bits)
}

// Reconfigure re-applies line parameters on the open descriptor, waiting
// for pending output to drain first. Path, Lock and HighWaterMark are fixed
// at Open and keep their original values.
func (p *Port) Reconfigure(cfg Config) error {
	if _, err := p.handle("tcsetattr"); err != nil {
		return err
	}
	cfg.Path = p.cfg.Path
	cfg.Lock = p.cfg.Lock
	cfg.HighWaterMark = p.cfg.HighWaterMark
	cfg.normalize()
	if err := cfg.validate(p.profile); err != nil {
		return err
	}
	if err := p.configure(&cfg, setAttrDrain); err != nil {
		return err
	}
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
	return nil
}

// Close restores the attribute state captured at Open, releases the
// exclusive lock and closes the descriptor. The restore and unlock steps
// are best-effort: their failures are logged, never returned, because Close
// must always complete and leave the session in the closed state. Safe to
// call multiple times; subsequent calls are no-ops.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		fd := p.fd
		p.opened = false
		p.fd = -1
		p.mu.Unlock()

		if p.saved != nil {
			if rerr := tcSetAttr(fd, p.profile, setAttrNow, p.saved); rerr != nil {
				p.cfg.logger().Warn("failed to restore terminal attributes",
					"path", p.cfg.Path, "err", rerr)
			}
		}
		if p.locked {
			if uerr := clearExclusiveLock(fd, p.profile); uerr != nil {
				p.cfg.logger().Warn("failed to release exclusive lock",
					"path", p.cfg.Path, "err", uerr)
			}
		}
		err = closeFd(fd)
	})
	return err
}
