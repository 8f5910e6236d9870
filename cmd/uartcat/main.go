// Command uartcat lists serial ports and streams data from one to stdout.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	serial "github.com/luhtfiimanal/go-posix-serial"
	"github.com/luhtfiimanal/go-posix-serial/parser"
)

var (
	baudRate  int
	dataBits  int
	stopBits  int
	parity    string
	rtscts    bool
	noLock    bool
	delimiter string
)

func main() {
	root := &cobra.Command{
		Use:   "uartcat",
		Short: "Read from and inspect serial ports",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List available serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := serial.ListPorts()
			if err != nil {
				return err
			}
			for _, p := range ports {
				line := p.Path
				if p.Manufacturer != "" {
					line += "\t" + p.Manufacturer
				}
				if p.SerialNumber != "" {
					line += "\t" + p.SerialNumber
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cat := &cobra.Command{
		Use:   "cat <path>",
		Short: "Stream bytes from a serial port to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  runCat,
	}
	cat.Flags().IntVarP(&baudRate, "baud", "b", 115200, "baud rate")
	cat.Flags().IntVar(&dataBits, "data-bits", 8, "data bits (5-8)")
	cat.Flags().IntVar(&stopBits, "stop-bits", 1, "stop bits (1 or 2)")
	cat.Flags().StringVarP(&parity, "parity", "p", "N", "parity: N, E, O, M or S")
	cat.Flags().BoolVar(&rtscts, "rtscts", false, "enable RTS/CTS flow control")
	cat.Flags().BoolVar(&noLock, "no-lock", false, "skip the kernel exclusive lock")
	cat.Flags().StringVarP(&delimiter, "delimiter", "d", "", "frame on this delimiter instead of raw streaming")

	root.AddCommand(list, cat)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCat(cmd *cobra.Command, args []string) error {
	cfg := serial.DefaultConfig(args[0], baudRate)
	cfg.DataBits = dataBits
	cfg.StopBits = stopBits
	if len(parity) == 1 {
		cfg.Parity = serial.Parity(parity[0])
	}
	cfg.RTSCTS = rtscts
	cfg.Lock = !noLock

	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Info("port open", "path", port.Path(), "baud", baudRate)

	var frames *parser.Lines
	if delimiter != "" {
		frames, err = parser.NewLines(parser.LinesConfig{Delimiter: delimiter})
		if err != nil {
			return err
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	buf := make([]byte, 4096)
	for {
		select {
		case <-stop:
			log.Info("interrupted, closing port")
			return nil
		default:
		}
		n, err := port.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if frames == nil {
			os.Stdout.Write(buf[:n])
			continue
		}
		lines, perr := frames.Push(buf[:n])
		for _, line := range lines {
			fmt.Println(line)
		}
		if perr != nil {
			return perr
		}
	}
}
