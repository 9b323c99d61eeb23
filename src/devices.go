package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Take inventory of attached RTL2832U dongles.
 *
 * Description:	Two views of the same hardware.  librtlsdr tells us
 *		which index to pass to -d, udev tells us which USB
 *		device node it is and whether something else (like the
 *		DVB kernel driver) might be holding it.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jochenvg/go-udev"
	rtlsdr "github.com/jpoirier/gortlsdr"
)

// RTL2832U based products, vendor and product ID.
var knownDongles = map[[2]uint16]string{
	{0x0bda, 0x2832}: "Generic RTL2832U",
	{0x0bda, 0x2838}: "Generic RTL2832U OEM",
	{0x0413, 0x6680}: "DigitalNow Quad DVB-T PCI-E card",
	{0x0413, 0x6f0f}: "Leadtek WinFast DTV Dongle mini D",
	{0x0458, 0x707f}: "Genius TVGo DVB-T03 USB dongle (Ver. B)",
	{0x0ccd, 0x00a9}: "Terratec Cinergy T Stick Black (rev 1)",
	{0x0ccd, 0x00b3}: "Terratec NOXON DAB/DAB+ USB dongle (rev 1)",
	{0x1d19, 0x1101}: "Dexatek DK DVB-T Dongle (Logilink VG0002A)",
	{0x1f4d, 0xb803}: "GTek T803",
	{0x185b, 0x0620}: "Compro Videomate U620F",
}

func isKnownDongle(vid, pid uint16) bool {
	var _, ok = knownDongles[[2]uint16{vid, pid}]
	return ok
}

type Device struct {
	Index        int // For librtlsdr, -1 if it only showed up in udev.
	Name         string
	Manufacturer string
	Product      string
	Serial       string
	VID          uint16
	PID          uint16
	Devnode      string
	Syspath      string
}

// ListDevices merges what librtlsdr and udev know.  Either may come up empty.
func ListDevices() ([]Device, error) {
	var devices []Device

	var count = rtlsdr.GetDeviceCount()
	for i := range count {
		var manufact, product, serial, _ = rtlsdr.GetDeviceUsbStrings(i)

		devices = append(devices, Device{ //nolint:exhaustruct
			Index:        i,
			Name:         rtlsdr.GetDeviceName(i),
			Manufacturer: manufact,
			Product:      product,
			Serial:       serial,
		})
	}

	var usb, udevErr = udevDongles()
	if udevErr != nil {
		return devices, udevErr
	}

	// librtlsdr enumerates in USB bus order as does udev, so match them up in turn.
	var next = 0

	for _, u := range usb {
		if next < len(devices) {
			devices[next].VID = u.VID
			devices[next].PID = u.PID
			devices[next].Devnode = u.Devnode
			devices[next].Syspath = u.Syspath

			if devices[next].Serial == "" {
				devices[next].Serial = u.Serial
			}

			next++

			continue
		}

		devices = append(devices, u)
	}

	return devices, nil
}

func udevDongles() ([]Device, error) {
	var u = udev.Udev{}
	var e = u.NewEnumerate()

	var matchErr = e.AddMatchSubsystem("usb")
	if matchErr != nil {
		return nil, fmt.Errorf("udev: %w", matchErr)
	}

	matchErr = e.AddMatchProperty("DEVTYPE", "usb_device")
	if matchErr != nil {
		return nil, fmt.Errorf("udev: %w", matchErr)
	}

	var all, listErr = e.Devices()
	if listErr != nil {
		return nil, fmt.Errorf("udev: %w", listErr)
	}

	var found []Device

	for _, d := range all {
		var vid, vidErr = strconv.ParseUint(d.SysattrValue("idVendor"), 16, 16)
		var pid, pidErr = strconv.ParseUint(d.SysattrValue("idProduct"), 16, 16)

		if vidErr != nil || pidErr != nil || !isKnownDongle(uint16(vid), uint16(pid)) {
			continue
		}

		found = append(found, Device{
			Index:        -1,
			Name:         knownDongles[[2]uint16{uint16(vid), uint16(pid)}],
			Manufacturer: d.SysattrValue("manufacturer"),
			Product:      d.SysattrValue("product"),
			Serial:       d.SysattrValue("serial"),
			VID:          uint16(vid),
			PID:          uint16(pid),
			Devnode:      d.Devnode(),
			Syspath:      d.Syspath(),
		})
	}

	return found, nil
}

// PrintDevices writes the inventory table, as shown by fusex_devices and at receiver start up.
func PrintDevices(w io.Writer, devices []Device) {
	if len(devices) == 0 {
		fmt.Fprintf(w, "No supported devices found.\n")
		return
	}

	fmt.Fprintf(w, "Found %d device(s):\n", len(devices))

	for _, d := range devices {
		var index = "-"
		if d.Index >= 0 {
			index = strconv.Itoa(d.Index)
		}

		fmt.Fprintf(w, "  %2s:  %s, %s, SN: %s\n", index, d.Manufacturer, d.Product, d.Serial)

		if d.VID != 0 {
			fmt.Fprintf(w, "       %04x:%04x  %s  %s\n", d.VID, d.PID, d.Devnode, d.Name)
		}

		if d.Index < 0 {
			fmt.Fprintf(w, "       Not usable by librtlsdr.  Is the DVB kernel driver loaded?\n")
		}
	}
}

func DevicesMain() {
	var devices, err = ListDevices()

	PrintDevices(os.Stdout, devices)

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
