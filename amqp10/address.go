package amqp10

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mbroadst/go-amqp10/internal/protocol"
)

// Address is a parsed AMQP 1.0 address
//
//	amqp://host:port/name
//	amqps://host:port/name
//
// Name is the terminus name carried in Attach source/target fields.
type Address struct {
	Host string
	Port int
	TLS  bool
	Name string
}

// ParseAddress parses an AMQP address string
func ParseAddress(address string) (*Address, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	var useTLS bool
	switch u.Scheme {
	case "amqp":
		useTLS = false
	case "amqps":
		useTLS = true
	case "":
		return nil, errors.New("missing address scheme (amqp:// or amqps://)")
	default:
		return nil, fmt.Errorf("unsupported address scheme: %s (use amqp:// or amqps://)", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := protocol.DefaultPort
	if useTLS {
		port = protocol.DefaultTLSPort
	}
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid port: %s", u.Port())
		}
		port = p
	}

	name := strings.TrimPrefix(u.Path, "/")
	if name != "" {
		name, err = url.PathUnescape(name)
		if err != nil {
			return nil, fmt.Errorf("invalid terminus name: %w", err)
		}
	}

	return &Address{
		Host: host,
		Port: port,
		TLS:  useTLS,
		Name: name,
	}, nil
}

// resolveTerminus maps an option-supplied address to the terminus name
// placed in an Attach frame. Bare names pass through; full amqp://
// addresses resolve to their path component.
func resolveTerminus(address string) string {
	if !strings.Contains(address, "://") {
		return address
	}
	parsed, err := ParseAddress(address)
	if err != nil {
		return address
	}
	return parsed.Name
}
