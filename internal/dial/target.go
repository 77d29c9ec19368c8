package dial

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/rileyhilliard/adbdial/internal/errors"
)

// Target is the device address being dialed.
type Target struct {
	Host string
	Port int
}

// ParseTarget accepts "host", "host:port", "[v6]:port" or a bare IPv6 address.
// defaultPort fills in a missing port.
func ParseTarget(s string, defaultPort int) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, errors.New(errors.ErrConfig,
			"No device address given",
			"Enter the device IP shown under Settings > About phone > Status, e.g. 192.168.1.23")
	}

	host, portStr, err := net.SplitHostPort(s)
	switch {
	case err == nil:
	case strings.Count(s, ":") > 1 && !strings.HasPrefix(s, "["):
		// bare IPv6 without a port
		host, portStr = s, ""
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		host, portStr = strings.Trim(s, "[]"), ""
	case !strings.Contains(s, ":"):
		host, portStr = s, ""
	default:
		return Target{}, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't parse device address %q", s),
			"Use host or host:port, e.g. 192.168.1.23:5555")
	}

	if host == "" {
		return Target{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Device address %q has no host", s),
			"Use host or host:port, e.g. 192.168.1.23:5555")
	}

	port := defaultPort
	if portStr != "" {
		port, err = strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return Target{}, errors.New(errors.ErrConfig,
				fmt.Sprintf("Invalid port %q in %q", portStr, s),
				"Use a TCP port between 1 and 65535")
		}
	}

	return Target{Host: host, Port: port}, nil
}

// Endpoint returns the "host:port" form passed to `adb connect`.
func (t Target) Endpoint() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

func (t Target) String() string {
	return t.Endpoint()
}
