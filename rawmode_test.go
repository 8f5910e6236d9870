package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	var pe *PortError
	require.ErrorAs(t, err, &pe)
	return pe.Kind
}

// dirtyTermios simulates attributes left behind by a canonical-mode owner.
func dirtyTermios(p *Profile) Termios {
	var t Termios
	t.Iflag = p.ICRNL | p.IXON | p.ISTRIP | p.BRKINT | p.PARMRK
	t.Oflag = p.OPOST
	t.Lflag = p.ECHO | p.ECHONL | p.ICANON | p.ISIG | p.IEXTEN
	t.Cflag = p.CS7 | p.PARENB
	t.CC[p.VMIN] = 1
	t.CC[p.VTIME] = 5
	return t
}

func TestMakeRawClearsProcessing(t *testing.T) {
	for _, p := range []*Profile{linuxProfile, darwinProfile} {
		t.Run(p.OS, func(t *testing.T) {
			raw := makeRaw(p, dirtyTermios(p))
			require.Zero(t, raw.Iflag&(p.ICRNL|p.IXON|p.ISTRIP|p.BRKINT|p.PARMRK))
			require.Zero(t, raw.Oflag&p.OPOST)
			require.Zero(t, raw.Lflag&(p.ECHO|p.ECHONL|p.ICANON|p.ISIG|p.IEXTEN))
			require.Equal(t, p.CS8, raw.Cflag&p.CSIZE)
			require.Zero(t, raw.Cflag&p.PARENB)
			require.Equal(t, byte(0), raw.CC[p.VMIN])
			require.Equal(t, byte(0), raw.CC[p.VTIME])
		})
	}
}

func TestMakeRawIdempotent(t *testing.T) {
	for _, p := range []*Profile{linuxProfile, darwinProfile} {
		t.Run(p.OS, func(t *testing.T) {
			once := makeRaw(p, dirtyTermios(p))
			twice := makeRaw(p, once)
			require.Equal(t, once, twice)
		})
	}
}

// Every rate in the platform table must survive encoding into the control
// flag / speed fields and decoding back out.
func TestBaudRoundTrip(t *testing.T) {
	for _, p := range []*Profile{linuxProfile, darwinProfile} {
		t.Run(p.OS, func(t *testing.T) {
			for rate := range p.baudCodes {
				if rate == 0 {
					continue // B0 means hang up, not a line speed
				}
				cfg := DefaultConfig("/dev/null", rate)
				tio, err := applyTermiosConfig(p, makeRaw(p, Termios{}), &cfg)
				require.NoErrorf(t, err, "rate %d", rate)
				got, ok := p.rateFromTermios(tio)
				require.Truef(t, ok, "rate %d not recoverable", rate)
				require.Equal(t, rate, got)
			}
		})
	}
}

func TestBaudEncoding(t *testing.T) {
	// Linux rejects rates outside its table.
	_, err := linuxProfile.EncodeBaud(12345)
	require.Error(t, err)
	require.Equal(t, InvalidBaudRate, kindOf(t, err))

	code, err := linuxProfile.EncodeBaud(115200)
	require.NoError(t, err)
	require.Equal(t, uint64(0x1002), code)

	// Darwin takes arbitrary positive literals.
	code, err = darwinProfile.EncodeBaud(12345)
	require.NoError(t, err)
	require.Equal(t, uint64(12345), code)

	_, err = darwinProfile.EncodeBaud(-1)
	require.Error(t, err)
}

func TestLinuxBaudMirroredIntoSpeedFields(t *testing.T) {
	cfg := DefaultConfig("/dev/null", 115200)
	tio, err := applyTermiosConfig(linuxProfile, Termios{}, &cfg)
	require.NoError(t, err)
	require.Equal(t, uint64(0x1002), tio.Cflag&linuxProfile.CBAUD)
	require.Equal(t, uint64(0x1002), tio.Ispeed)
	require.Equal(t, uint64(0x1002), tio.Ospeed)
}

func TestDarwinBaudIsLiteral(t *testing.T) {
	cfg := DefaultConfig("/dev/null", 115200)
	tio, err := applyTermiosConfig(darwinProfile, Termios{}, &cfg)
	require.NoError(t, err)
	require.Equal(t, uint64(115200), tio.Ispeed)
	require.Equal(t, uint64(115200), tio.Ospeed)
}

func TestApplyConfigParity(t *testing.T) {
	p := linuxProfile
	base := makeRaw(p, Termios{})

	cases := []struct {
		parity Parity
		want   uint64
	}{
		{ParityNone, 0},
		{ParityEven, p.PARENB},
		{ParityOdd, p.PARENB | p.PARODD},
		{ParityMark, p.PARENB | p.PARODD | p.CMSPAR},
		{ParitySpace, p.PARENB | p.CMSPAR},
	}
	for _, c := range cases {
		cfg := DefaultConfig("/dev/null", 9600)
		cfg.Parity = c.parity
		tio, err := applyTermiosConfig(p, base, &cfg)
		require.NoErrorf(t, err, "parity %q", byte(c.parity))
		got := tio.Cflag & (p.PARENB | p.PARODD | p.CMSPAR)
		require.Equalf(t, c.want, got, "parity %q", byte(c.parity))
	}
}

// Mark/space parity requires CMSPAR, which Darwin does not have. The
// rejection happens in validation, before any syscall would be issued.
func TestMarkSpaceParityPlatformGating(t *testing.T) {
	for _, parity := range []Parity{ParityMark, ParitySpace} {
		cfg := DefaultConfig("/dev/null", 9600)
		cfg.Parity = parity

		require.NoError(t, cfg.validate(linuxProfile))

		err := cfg.validate(darwinProfile)
		require.Error(t, err)
		require.Equal(t, InvalidConfiguration, kindOf(t, err))

		_, err = applyTermiosConfig(darwinProfile, Termios{}, &cfg)
		require.Error(t, err)
	}
}

// Reconfiguring must not leave residual bits from the previous settings.
func TestApplyConfigClearsResidualBits(t *testing.T) {
	for _, p := range []*Profile{linuxProfile, darwinProfile} {
		t.Run(p.OS, func(t *testing.T) {
			loud := DefaultConfig("/dev/null", 9600)
			loud.Parity = ParityOdd
			loud.StopBits = 2
			loud.RTSCTS = true
			loud.XOn = true
			loud.XAny = true

			tio, err := applyTermiosConfig(p, makeRaw(p, Termios{}), &loud)
			require.NoError(t, err)

			quiet := DefaultConfig("/dev/null", 9600)
			tio, err = applyTermiosConfig(p, tio, &quiet)
			require.NoError(t, err)

			require.Zero(t, tio.Cflag&(p.PARENB|p.PARODD|p.CMSPAR|p.CSTOPB|p.CRTSCTS))
			require.Zero(t, tio.Iflag&(p.IXON|p.IXOFF|p.IXANY))
		})
	}
}

func TestApplyConfigAlwaysSetsLocalReceiver(t *testing.T) {
	for _, p := range []*Profile{linuxProfile, darwinProfile} {
		cfg := DefaultConfig("/dev/null", 9600)
		tio, err := applyTermiosConfig(p, Termios{}, &cfg)
		require.NoError(t, err)
		require.Equal(t, p.CREAD|p.CLOCAL, tio.Cflag&(p.CREAD|p.CLOCAL))
	}
}

func TestApplyConfigSoftwareFlowGroup(t *testing.T) {
	p := linuxProfile
	for _, cfgMut := range []func(*Config){
		func(c *Config) { c.XOn = true },
		func(c *Config) { c.XOff = true },
	} {
		cfg := DefaultConfig("/dev/null", 9600)
		cfgMut(&cfg)
		tio, err := applyTermiosConfig(p, Termios{}, &cfg)
		require.NoError(t, err)
		// Either direction enables both sides.
		require.Equal(t, p.IXON|p.IXOFF, tio.Iflag&(p.IXON|p.IXOFF))
		require.Zero(t, tio.Iflag&p.IXANY)
	}
}

func TestApplyConfigHUPCL(t *testing.T) {
	p := linuxProfile
	cfg := DefaultConfig("/dev/null", 9600)
	tio, err := applyTermiosConfig(p, Termios{}, &cfg)
	require.NoError(t, err)
	require.NotZero(t, tio.Cflag&p.HUPCL)

	cfg.HUPCL = false
	tio, err = applyTermiosConfig(p, tio, &cfg)
	require.NoError(t, err)
	require.Zero(t, tio.Cflag&p.HUPCL)
}

func TestApplyConfigDataBits(t *testing.T) {
	p := darwinProfile
	want := map[int]uint64{5: p.CS5, 6: p.CS6, 7: p.CS7, 8: p.CS8}
	for bits, mask := range want {
		cfg := DefaultConfig("/dev/null", 9600)
		cfg.DataBits = bits
		tio, err := applyTermiosConfig(p, makeRaw(p, Termios{}), &cfg)
		require.NoError(t, err)
		require.Equalf(t, mask, tio.Cflag&p.CSIZE, "data bits %d", bits)
	}
}
