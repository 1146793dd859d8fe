//go:build !linux

package clock

import "time"

// hostClockSource is the non-Linux fallback: there is no portable
// /dev/rtc ioctl, so System() falls back to the host's own clock.
// The CMOS decode path (CMOSSource, FakeCMOS) is still fully exercised
// by this package's tests regardless of platform.
type hostClockSource struct{}

func (hostClockSource) Now() (int64, error) {
	return time.Now().UnixMicro(), nil
}

func newSystemSource() Source {
	return hostClockSource{}
}
