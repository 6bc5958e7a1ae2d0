package scheduler

import (
	"net"
	"net/url"
	"time"
)

// NetworkMonitor answers whether the device currently has connectivity.
// The host platform provides the real implementation; DialMonitor is the
// daemon's own probe.
type NetworkMonitor interface {
	Connected() bool
}

// PowerMonitor answers whether the battery is low enough to defer
// background sync.
type PowerMonitor interface {
	BatteryLow() bool
}

// DialMonitor probes connectivity with a short TCP dial to the remote host.
type DialMonitor struct {
	host    string
	timeout time.Duration
}

// NewDialMonitor derives the probe target from the remote base URL.
func NewDialMonitor(baseURL string, timeout time.Duration) *DialMonitor {
	host := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host
		if u.Port() == "" {
			switch u.Scheme {
			case "https":
				host += ":443"
			default:
				host += ":80"
			}
		}
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &DialMonitor{host: host, timeout: timeout}
}

func (m *DialMonitor) Connected() bool {
	conn, err := net.DialTimeout("tcp", m.host, m.timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// StaticMonitor is a fixed-answer monitor for platforms without battery
// state and for tests.
type StaticMonitor struct {
	Online bool
	LowBat bool
}

func (m StaticMonitor) Connected() bool  { return m.Online }
func (m StaticMonitor) BatteryLow() bool { return m.LowBat }
