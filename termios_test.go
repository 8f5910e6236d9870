package serial

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomTermios(r *rand.Rand, p *Profile) Termios {
	mask := ^uint64(0)
	if p.OS == "linux" {
		mask = 0xFFFFFFFF // Linux mode words are 32-bit
	}
	var t Termios
	t.Iflag = r.Uint64() & mask
	t.Oflag = r.Uint64() & mask
	t.Cflag = r.Uint64() & mask
	t.Lflag = r.Uint64() & mask
	t.Ispeed = r.Uint64() & mask
	t.Ospeed = r.Uint64() & mask
	if p.HasLine {
		t.Line = byte(r.Intn(256))
	}
	for i := 0; i < p.NumCC; i++ {
		t.CC[i] = byte(r.Intn(256))
	}
	return t
}

func TestTermiosRoundTrip(t *testing.T) {
	for _, p := range []*Profile{linuxProfile, darwinProfile} {
		t.Run(p.OS, func(t *testing.T) {
			r := rand.New(rand.NewSource(42))
			for i := 0; i < 200; i++ {
				orig := randomTermios(r, p)
				buf := make([]byte, p.TermiosSize)
				require.NoError(t, encodeTermios(p, orig, buf))
				got, err := decodeTermios(p, buf)
				require.NoError(t, err)
				require.Equal(t, orig, got)
			}
		})
	}
}

// Unmodeled regions (the Linux tail, the Darwin alignment padding) must
// survive a decode/encode cycle byte for byte. The buffer stands in for a
// capture of live kernel state: every byte is a sentinel, and a full
// round trip must leave the image untouched.
func TestTermiosPreservesUnmodeledBytes(t *testing.T) {
	for _, p := range []*Profile{linuxProfile, darwinProfile} {
		t.Run(p.OS, func(t *testing.T) {
			buf := make([]byte, p.TermiosSize)
			for i := range buf {
				buf[i] = 0xA5
			}
			decoded, err := decodeTermios(p, buf)
			require.NoError(t, err)
			require.NoError(t, encodeTermios(p, decoded, buf))
			for i, b := range buf {
				require.Equalf(t, byte(0xA5), b, "byte %d modified", i)
			}
		})
	}
}

func TestTermiosBufferSizeValidation(t *testing.T) {
	for _, p := range []*Profile{linuxProfile, darwinProfile} {
		t.Run(p.OS, func(t *testing.T) {
			short := make([]byte, p.TermiosSize-1)
			_, err := decodeTermios(p, short)
			require.Error(t, err)
			require.Equal(t, InvalidConfiguration, kindOf(t, err))

			err = encodeTermios(p, Termios{}, short)
			require.Error(t, err)
			require.Equal(t, InvalidConfiguration, kindOf(t, err))
		})
	}
}

func TestTermiosLayoutGeometry(t *testing.T) {
	require.Equal(t, 60, linuxProfile.TermiosSize)
	require.Equal(t, 19, linuxProfile.NumCC)
	require.True(t, linuxProfile.HasLine)
	require.Equal(t, 72, darwinProfile.TermiosSize)
	require.Equal(t, 20, darwinProfile.NumCC)
	require.False(t, darwinProfile.HasLine)
}

// Spot-check absolute offsets against hand-built buffers so a refactor of
// the codec cannot silently shift a field.
func TestTermiosAbsoluteOffsets(t *testing.T) {
	t.Run("linux", func(t *testing.T) {
		p := linuxProfile
		buf := make([]byte, p.TermiosSize)
		tio := Termios{Cflag: 0x11223344, Line: 7, Ospeed: 0x0000100F}
		tio.CC[p.VMIN] = 99
		require.NoError(t, encodeTermios(p, tio, buf))
		require.Equal(t, byte(0x44), buf[8])
		require.Equal(t, byte(0x11), buf[11])
		require.Equal(t, byte(7), buf[16])
		require.Equal(t, byte(99), buf[17+p.VMIN])
		require.Equal(t, byte(0x0F), buf[40])
		require.Equal(t, byte(0x10), buf[41])
	})
	t.Run("darwin", func(t *testing.T) {
		p := darwinProfile
		buf := make([]byte, p.TermiosSize)
		tio := Termios{Cflag: 0x1122334455667788, Ospeed: 115200}
		tio.CC[p.VMIN] = 99
		require.NoError(t, encodeTermios(p, tio, buf))
		require.Equal(t, byte(0x88), buf[16])
		require.Equal(t, byte(0x11), buf[23])
		require.Equal(t, byte(99), buf[32+p.VMIN])
		require.Equal(t, byte(0x00), buf[64]) // 115200 = 0x01C200
		require.Equal(t, byte(0xC2), buf[65])
		require.Equal(t, byte(0x01), buf[66])
	})
}
