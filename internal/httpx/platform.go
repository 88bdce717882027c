package httpx

import (
	"net"
	"net/http"
	"strings"
	"unicode/utf8"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformMac     Platform = "mac"
	PlatformWindows Platform = "win"
	PlatformLinux   Platform = "linux"
	PlatformWeb     Platform = "web"
)

type DeviceMeta struct {
	DeviceID   string   `header:"X-Device-Id"      validate:"omitempty,min=8,max=128"` // allow UUID/ULID/custom
	DeviceName string   `header:"X-Device-Name"    validate:"omitempty,min=1,max=64"`  // human label
	Platform   Platform `header:"X-Client-Platform" validate:"omitempty,oneof=ios android mac win linux web"`
	UserAgent  string   `header:"-"                validate:"omitempty,max=256"` // from r.UserAgent()
	IP         string   `header:"-"                validate:"omitempty,max=64"`  // RemoteAddr, rewritten by middleware.RealIP
}

// ReadDeviceMeta collects client metadata from r. Values that fail validation
// are dropped rather than rejecting the request.
func ReadDeviceMeta(r *http.Request) DeviceMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	meta := DeviceMeta{
		DeviceID:   strings.TrimSpace(r.Header.Get("X-Device-Id")),
		DeviceName: strings.TrimSpace(r.Header.Get("X-Device-Name")),
		Platform:   Platform(strings.ToLower(strings.TrimSpace(r.Header.Get("X-Client-Platform")))),
		UserAgent:  strings.ToValidUTF8(r.UserAgent(), ""),
		IP:         ip,
	}
	if err := validate.Struct(meta); err != nil {
		return DeviceMeta{IP: truncate(ip, 64), UserAgent: truncate(meta.UserAgent, 256)}
	}
	return meta
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
