//go:build darwin

package serial

import (
	"os"
	"path/filepath"
)

// PortInfo describes a discovered serial device. On Darwin only the device
// path is available without an IOKit query, so metadata fields stay empty.
type PortInfo struct {
	Path         string
	Manufacturer string
	SerialNumber string
	PnPID        string
	VendorID     string
	ProductID    string
}

// ListPorts enumerates callout devices. The cu.* nodes are preferred over
// their tty.* siblings because they do not block on carrier detect.
func ListPorts() ([]PortInfo, error) {
	matches, err := filepath.Glob("/dev/cu.*")
	if err != nil {
		return nil, err
	}
	ports := make([]PortInfo, 0, len(matches))
	for _, path := range matches {
		ports = append(ports, PortInfo{Path: path})
	}
	return ports, nil
}

// PortExists reports whether path names an existing device node.
func PortExists(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeDevice != 0
}
