package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Probe modes accepted by NewProber.
const (
	ModeICMP = "icmp"
	ModeTCP  = "tcp"
)

// DefaultProbeTimeout bounds a single reachability check.
const DefaultProbeTimeout = 2 * time.Second

// Prober decides whether a host currently responds on the network.
// A nil error means the host is reachable.
type Prober interface {
	Probe(ctx context.Context, address string) error
}

// ProberConfig selects and tunes the reachability prober.
type ProberConfig struct {
	Mode       string
	Timeout    time.Duration
	Port       int
	Privileged bool
}

// NewProber builds the prober for cfg.Mode.
func NewProber(cfg ProberConfig) (Prober, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProbeTimeout
	}
	switch strings.ToLower(cfg.Mode) {
	case "", ModeICMP:
		return &ICMPProber{Timeout: cfg.Timeout, Privileged: cfg.Privileged}, nil
	case ModeTCP:
		if cfg.Port <= 0 || cfg.Port > 65535 {
			return nil, fmt.Errorf("invalid tcp probe port: %d", cfg.Port)
		}
		return &TCPProber{Timeout: cfg.Timeout, Port: cfg.Port}, nil
	default:
		return nil, fmt.Errorf("unknown probe mode %q (want %s or %s)", cfg.Mode, ModeICMP, ModeTCP)
	}
}

// FailReason categorizes why a probe failed.
type FailReason int

const (
	FailUnknown FailReason = iota
	FailTimeout
	FailRefused
	FailUnreachable
	FailResolve
	FailNoReply
)

// String returns a human-readable description of the failure reason.
func (r FailReason) String() string {
	switch r {
	case FailTimeout:
		return "timed out"
	case FailRefused:
		return "connection refused"
	case FailUnreachable:
		return "host unreachable"
	case FailResolve:
		return "address could not be resolved"
	case FailNoReply:
		return "no echo reply"
	default:
		return "unknown error"
	}
}

// Error is a failed reachability probe with a categorized reason.
type Error struct {
	Address string
	Reason  FailReason
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("probe %s failed: %s (%v)", e.Address, e.Reason, e.Cause)
	}
	return fmt.Sprintf("probe %s failed: %s", e.Address, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ICMPProber sends a single echo request and waits up to Timeout for the reply.
// Unprivileged mode uses UDP ping sockets, which on Linux requires
// net.ipv4.ping_group_range to include the process group.
type ICMPProber struct {
	Timeout    time.Duration
	Privileged bool

	// Resolver looks up hostname addresses (default: net.DefaultResolver).
	// The lookup shares Timeout with the echo request.
	Resolver *net.Resolver
}

// Probe implements Prober.
func (p *ICMPProber) Probe(ctx context.Context, address string) error {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	ipAddr, err := p.resolve(ctx, address)
	if err != nil {
		return &Error{Address: address, Reason: FailResolve, Cause: err}
	}

	pinger := probing.New(address)
	pinger.SetIPAddr(ipAddr)
	pinger.Count = 1
	pinger.Timeout = p.Timeout
	pinger.SetPrivileged(p.Privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		return categorize(address, err)
	}
	if pinger.Statistics().PacketsRecv == 0 {
		return &Error{Address: address, Reason: FailNoReply}
	}
	return nil
}

func (p *ICMPProber) resolve(ctx context.Context, address string) (*net.IPAddr, error) {
	if ip := net.ParseIP(address); ip != nil {
		return &net.IPAddr{IP: ip}, nil
	}

	resolver := p.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupIPAddr(ctx, address)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, &net.DNSError{Err: "no addresses found", Name: address, IsNotFound: true}
	}
	return &addrs[0], nil
}

// TCPProber treats a host as reachable when it answers a TCP connection
// attempt on Port. An explicit refusal still proves the host is up.
type TCPProber struct {
	Timeout time.Duration
	Port    int
}

// Probe implements Prober.
func (p *TCPProber) Probe(ctx context.Context, address string) error {
	dialer := net.Dialer{Timeout: p.Timeout}
	target := net.JoinHostPort(address, strconv.Itoa(p.Port))

	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		perr := categorize(address, err)
		if perr.Reason == FailRefused {
			return nil
		}
		return perr
	}
	_ = conn.Close()
	return nil
}

// LoopbackAddress is the target of SelfCheck.
const LoopbackAddress = "127.0.0.1"

// SelfCheck probes the loopback address once. A failure means the prober
// cannot work on this machine at all, typically because unprivileged ICMP
// sockets are not permitted for the process.
func SelfCheck(ctx context.Context, prober Prober) error {
	return prober.Probe(ctx, LoopbackAddress)
}

// categorize converts a dial or ping error into an *Error.
func categorize(address string, err error) *Error {
	perr := &Error{Address: address, Reason: FailUnknown, Cause: err}

	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &dnsErr):
		perr.Reason = FailResolve
		return perr
	case errors.Is(err, context.DeadlineExceeded):
		perr.Reason = FailTimeout
		return perr
	case errors.Is(err, syscall.ECONNREFUSED):
		perr.Reason = FailRefused
		return perr
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		perr.Reason = FailUnreachable
		return perr
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		perr.Reason = FailTimeout
		return perr
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout"):
		perr.Reason = FailTimeout
	case strings.Contains(errStr, "connection refused"):
		perr.Reason = FailRefused
	case strings.Contains(errStr, "no route to host"),
		strings.Contains(errStr, "network is unreachable"),
		strings.Contains(errStr, "host is down"):
		perr.Reason = FailUnreachable
	}
	return perr
}
