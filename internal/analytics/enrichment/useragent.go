package enrichment

import (
	"strings"

	"linkgate/internal/domain"

	ua "github.com/mileusna/useragent"
)

// UserAgentInfo is the parsed form of a User-Agent header. Nil means unknown.
type UserAgentInfo struct {
	Device     domain.DeviceType
	DeviceName *string
	Browser    *string
	OS         *string
}

// DeviceDetector parses User-Agent strings.
type DeviceDetector struct{}

// NewDeviceDetector creates a new DeviceDetector.
func NewDeviceDetector() *DeviceDetector {
	return &DeviceDetector{}
}

// Parse classifies the device and extracts browser and OS. Desktop is assumed
// when a browser is recognized without a mobile or tablet signal.
func (d *DeviceDetector) Parse(uaString string) UserAgentInfo {
	if strings.TrimSpace(uaString) == "" {
		return UserAgentInfo{Device: domain.DeviceUnknown}
	}

	parsed := ua.Parse(uaString)

	info := UserAgentInfo{
		Device:     domain.DeviceUnknown,
		DeviceName: nonEmpty(parsed.Device),
		Browser:    nonEmpty(parsed.Name),
		OS:         nonEmpty(strings.TrimSpace(parsed.OS + " " + parsed.OSVersion)),
	}

	switch {
	case parsed.Tablet:
		info.Device = domain.DeviceTablet
	case parsed.Mobile:
		info.Device = domain.DeviceMobile
	case info.Browser != nil:
		info.Device = domain.DeviceDesktop
	}
	return info
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
