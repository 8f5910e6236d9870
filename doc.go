// Package serial provides low-level serial (UART) port access on Linux and
// macOS through direct terminal I/O syscalls, with no cgo and no dependency
// on a higher-level serial library.
//
// The package talks to the kernel's terminal-attributes structure directly:
// it fetches the raw attribute buffer with tcgetattr, decodes it with a
// byte-exact per-platform codec, rewrites the bits for the requested line
// parameters, and writes the buffer back. Bytes the codec does not model
// (reserved padding) are preserved verbatim across the round trip, so the
// live kernel state is never corrupted.
//
// Features:
//   - Raw syscall-based serial I/O, no buffering delays
//   - Byte-exact termios codecs for the Linux (60-byte) and Darwin (72-byte)
//     attribute layouts
//   - Full line configuration: baud rate, data bits, stop bits, parity
//     (including mark/space on Linux), RTS/CTS and XON/XOFF flow control
//   - Kernel exclusive locking (TIOCEXCL) and modem control lines (DTR/RTS
//     out, CTS/DSR/DCD/RING in)
//   - Non-blocking reads and backpressure-tolerant writes
//   - Streaming frame parsers (delimiter, line, fixed length) in the parser
//     subpackage
//   - PTY-based tests for reliability
//
// This package does **not** support Windows.
//
// Example usage:
//
//	cfg := serial.DefaultConfig("/dev/ttyUSB0", 115200)
//	port, err := serial.Open(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	if _, err := port.Write([]byte("C,START\r\n")); err != nil {
//	    log.Println("Write failed:", err)
//	}
//
//	buf := make([]byte, 4096)
//	for {
//	    n, err := port.Read(buf)
//	    if err != nil {
//	        log.Println("Read error:", err)
//	        break
//	    }
//	    if n == 0 {
//	        time.Sleep(5 * time.Millisecond) // no data pending
//	        continue
//	    }
//	    fmt.Printf("%s", buf[:n])
//	}
package serial
