package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Endpoint is a parsed Ice endpoint, optionally carrying the identity of
// the object it points at.
type Endpoint struct {
	Identity string
	Protocol string
	Host     string
	Port     int
	Timeout  time.Duration
}

// Address returns host:port. An empty host listens on all interfaces.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// URL returns the HTTP base URL of the endpoint. A missing host resolves
// to localhost.
func (e Endpoint) URL() string {
	host := e.Host
	if host == "" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(e.Port))
}

// ParseProxy parses a stringified proxy such as
// "imagebasedgesturerecognition:tcp -h localhost -p 10005".
func ParseProxy(s string) (Endpoint, error) {
	identity, rest, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: proxy %q has no endpoint", ErrInvalidProperty, s)
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return Endpoint{}, fmt.Errorf("%w: proxy %q has no identity", ErrInvalidProperty, s)
	}

	ep, err := ParseEndpoint(rest)
	if err != nil {
		return Endpoint{}, err
	}
	ep.Identity = identity
	return ep, nil
}

// ParseEndpoint parses an endpoint such as "tcp -h 127.0.0.1 -p 10005 -t 30000".
// When several endpoints are separated by ':' the first one is used.
func ParseEndpoint(s string) (Endpoint, error) {
	first, _, _ := strings.Cut(strings.TrimSpace(s), ":")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return Endpoint{}, fmt.Errorf("%w: empty endpoint", ErrInvalidProperty)
	}

	ep := Endpoint{Protocol: fields[0]}
	switch ep.Protocol {
	case "tcp", "default":
	default:
		return Endpoint{}, fmt.Errorf("%w: unsupported protocol %q", ErrInvalidProperty, ep.Protocol)
	}

	for i := 1; i < len(fields); i++ {
		opt := fields[i]
		if opt == "-z" {
			continue
		}
		if i+1 >= len(fields) || strings.HasPrefix(fields[i+1], "-") {
			return Endpoint{}, fmt.Errorf("%w: option %s has no value in %q", ErrInvalidProperty, opt, s)
		}
		i++
		val := fields[i]

		switch opt {
		case "-h":
			if val != "*" && val != "0.0.0.0" {
				ep.Host = val
			}
		case "-p":
			port, err := strconv.Atoi(val)
			if err != nil || port <= 0 || port > 65535 {
				return Endpoint{}, fmt.Errorf("%w: port %q", ErrInvalidProperty, val)
			}
			ep.Port = port
		case "-t":
			if val == "infinite" {
				continue
			}
			ms, err := strconv.Atoi(val)
			if err != nil {
				return Endpoint{}, fmt.Errorf("%w: timeout %q", ErrInvalidProperty, val)
			}
			if ms > 0 {
				ep.Timeout = time.Duration(ms) * time.Millisecond
			}
		}
	}

	if ep.Port == 0 {
		return Endpoint{}, fmt.Errorf("%w: endpoint %q has no port", ErrInvalidProperty, s)
	}
	return ep, nil
}
