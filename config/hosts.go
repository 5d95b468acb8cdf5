package config

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
)

// Host is one OLT from the host list.
type Host struct {
	Address string
	// Port is 0 when the line carried no port
	Port int
}

func (h Host) String() string {
	if h.Port == 0 {
		return h.Address
	}
	return net.JoinHostPort(h.Address, strconv.Itoa(h.Port))
}

// LoadHosts reads a host list file.
func LoadHosts(path string) ([]Host, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open host list %s: %w", path, err)
	}
	defer f.Close()

	hosts, err := ParseHosts(f)
	if err != nil {
		return nil, fmt.Errorf("host list %s: %w", path, err)
	}
	return hosts, nil
}

// ParseHosts reads one address per line. Blank lines and text after "#" are
// ignored. A line is "host", "host:port", "[v6]:port" or a bare IPv6 address.
// Duplicates are dropped.
func ParseHosts(r io.Reader) ([]Host, error) {
	var hosts []Host
	seen := make(map[Host]bool)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		host, err := parseHost(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if seen[host] {
			continue
		}
		seen[host] = true
		hosts = append(hosts, host)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return hosts, nil
}

func parseHost(s string) (Host, error) {
	// bare IPv6
	if strings.Count(s, ":") > 1 && !strings.HasPrefix(s, "[") {
		if net.ParseIP(s) == nil {
			return Host{}, fmt.Errorf("invalid address %q", s)
		}
		return Host{Address: s}, nil
	}

	if !strings.Contains(s, ":") {
		return Host{Address: s}, nil
	}

	addr, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Host{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Host{}, fmt.Errorf("invalid port in %q", s)
	}
	if addr == "" {
		return Host{}, fmt.Errorf("missing host in %q", s)
	}
	return Host{Address: addr, Port: port}, nil
}
