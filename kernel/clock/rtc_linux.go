//go:build linux

package clock

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// LinuxRTCSource is a Source backed by the real Linux /dev/rtc
// RTC_RD_TIME ioctl — the hosted analog of reading CMOS ports
// 0x70/0x71 directly, since a process on a hosted kernel cannot issue
// raw x86 port I/O itself.
type LinuxRTCSource struct {
	// Device defaults to /dev/rtc0 if empty.
	Device string
}

func (s LinuxRTCSource) Now() (int64, error) {
	dev := s.Device
	if dev == "" {
		dev = "/dev/rtc0"
	}
	f, err := os.Open(dev)
	if err != nil {
		return 0, fmt.Errorf("clock: open %s: %w", dev, err)
	}
	defer f.Close()

	rt, err := unix.IoctlGetRTCTime(int(f.Fd()))
	if err != nil {
		return 0, fmt.Errorf("clock: RTC_RD_TIME: %w", err)
	}

	// struct rtc_time already reports decimal, 0-indexed month, and a
	// year offset from 1900 — unlike the raw BCD CMOS registers, the
	// kernel driver has done the decode for us. Apply the same
	// post-1969 correction rule for consistency with the CMOS path.
	year := int(rt.Year)
	if year <= 69 {
		year += 69
	}
	year += 1900

	return timeToUnixMicros(year, int(rt.Mon)+1, int(rt.Mday), int(rt.Hour), int(rt.Min), int(rt.Sec)), nil
}

func newSystemSource() Source {
	return LinuxRTCSource{}
}
