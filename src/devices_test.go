package fusex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsKnownDongle(t *testing.T) {
	assert.True(t, isKnownDongle(0x0bda, 0x2838))
	assert.True(t, isKnownDongle(0x0bda, 0x2832))
	assert.False(t, isKnownDongle(0x0bda, 0x0001))
	assert.False(t, isKnownDongle(0x0d8c, 0x000c)) // C-Media sound card
}

func TestPrintDevicesNone(t *testing.T) {
	var sb strings.Builder

	PrintDevices(&sb, nil)

	assert.Equal(t, "No supported devices found.\n", sb.String())
}

func TestPrintDevices(t *testing.T) {
	var sb strings.Builder

	PrintDevices(&sb, []Device{
		{
			Index:        0,
			Name:         "Generic RTL2832U OEM",
			Manufacturer: "Realtek",
			Product:      "RTL2838UHIDIR",
			Serial:       "00000001",
			VID:          0x0bda,
			PID:          0x2838,
			Devnode:      "/dev/bus/usb/001/004",
			Syspath:      "/sys/devices/pci0000:00/usb1/1-1",
		},
		{
			Index:        -1,
			Name:         "Generic RTL2832U",
			Manufacturer: "Realtek",
			Product:      "RTL2832U",
			Serial:       "",
			VID:          0x0bda,
			PID:          0x2832,
			Devnode:      "/dev/bus/usb/001/005",
			Syspath:      "/sys/devices/pci0000:00/usb1/1-2",
		},
	})

	var out = sb.String()

	assert.Contains(t, out, "Found 2 device(s):\n")
	assert.Contains(t, out, "   0:  Realtek, RTL2838UHIDIR, SN: 00000001\n")
	assert.Contains(t, out, "0bda:2838  /dev/bus/usb/001/004  Generic RTL2832U OEM\n")
	assert.Contains(t, out, "   -:  Realtek, RTL2832U, SN: \n")
	assert.Equal(t, 1, strings.Count(out, "Not usable by librtlsdr"))
}
