//go:build linux

package serial

import (
	"os"
	"path/filepath"
	"strings"
)

// PortInfo describes a discovered serial device. Metadata fields are empty
// when the kernel does not expose them (built-in UARTs, PTYs).
type PortInfo struct {
	Path         string
	Manufacturer string
	SerialNumber string
	PnPID        string
	VendorID     string
	ProductID    string
}

const sysTTY = "/sys/class/tty"

// ListPorts enumerates serial devices from /sys/class/tty, keeping only
// entries backed by a real device node. USB metadata is read from the
// parent USB device's sysfs attributes when present.
func ListPorts() ([]PortInfo, error) {
	entries, err := os.ReadDir(sysTTY)
	if err != nil {
		return nil, err
	}
	var ports []PortInfo
	for _, e := range entries {
		name := e.Name()
		// Entries without a device link are virtual consoles, not ports.
		devLink := filepath.Join(sysTTY, name, "device")
		if _, err := os.Stat(devLink); err != nil {
			continue
		}
		path := "/dev/" + name
		if !PortExists(path) {
			continue
		}
		info := PortInfo{Path: path}
		fillUSBInfo(&info, devLink)
		ports = append(ports, info)
	}
	return ports, nil
}

// fillUSBInfo walks up from the tty's device link looking for the USB
// device directory that carries idVendor/idProduct.
func fillUSBInfo(info *PortInfo, devLink string) {
	dir, err := filepath.EvalSymlinks(devLink)
	if err != nil {
		return
	}
	for i := 0; i < 4; i++ {
		if _, err := os.Stat(filepath.Join(dir, "idVendor")); err == nil {
			info.VendorID = sysAttr(dir, "idVendor")
			info.ProductID = sysAttr(dir, "idProduct")
			info.Manufacturer = sysAttr(dir, "manufacturer")
			info.SerialNumber = sysAttr(dir, "serial")
			if info.VendorID != "" && info.ProductID != "" {
				info.PnPID = "usb-" + info.VendorID + "_" + info.ProductID
			}
			return
		}
		dir = filepath.Dir(dir)
	}
}

func sysAttr(dir, name string) string {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// PortExists reports whether path names an existing device node.
func PortExists(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeDevice != 0
}
