// Package udpsock is the shared UDP transport both SPL protocol clients
// (internal/gamecontroller, internal/teammsg) open sockets through. The
// teacher used golang.org/x/net for its in-game websocket transport
// (golang.org/x/net/websocket); here the same dependency is repurposed for
// its ipv4 subpackage, since both GameController and team-message traffic
// are broadcast/multicast UDP datagrams that need TTL and interface control
// x/net/ipv4 exposes and net.UDPConn alone does not (DESIGN.md "Dropped
// teacher dependencies").
package udpsock

import (
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// Socket wraps a UDP conn plus its ipv4.PacketConn control handle, with its
// outgoing multicast interface set when one is named (multi-homed robots with
// a wired debug NIC and a wireless team NIC, §6). The socket itself listens
// on all interfaces.
type Socket struct {
	conn *net.UDPConn
	pc   *ipv4.PacketConn
}

// Options configures how a Socket is opened.
type Options struct {
	// ListenPort is the local UDP port to bind.
	ListenPort int
	// Interface selects the NIC for outgoing multicast datagrams; receiving
	// is not restricted. A zero value lets the kernel choose.
	Interface string
	// TTL is the IP TTL for outgoing broadcast/multicast datagrams.
	TTL int
}

// Open binds a UDP socket for opts.ListenPort and wraps it for
// broadcast/TTL control.
func Open(opts Options) (*Socket, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: opts.ListenPort})
	if err != nil {
		return nil, fmt.Errorf("udpsock: listen on port %d: %w", opts.ListenPort, err)
	}

	pc := ipv4.NewPacketConn(conn)

	if opts.Interface != "" {
		iface, ifErr := net.InterfaceByName(opts.Interface)
		if ifErr != nil {
			conn.Close()
			return nil, fmt.Errorf("udpsock: interface %q: %w", opts.Interface, ifErr)
		}
		if err := pc.SetMulticastInterface(iface); err != nil {
			conn.Close()
			return nil, fmt.Errorf("udpsock: set multicast interface %q: %w", opts.Interface, err)
		}
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 1
	}
	if err := pc.SetMulticastTTL(ttl); err != nil {
		conn.Close()
		return nil, fmt.Errorf("udpsock: set multicast ttl: %w", err)
	}

	return &Socket{conn: conn, pc: pc}, nil
}

// ReadFrom reads one datagram into buf, returning the sender address.
func (s *Socket) ReadFrom(buf []byte) (int, net.Addr, error) {
	return s.conn.ReadFrom(buf)
}

// WriteTo broadcasts buf to addr (typically a subnet broadcast or team
// multicast address).
func (s *Socket) WriteTo(buf []byte, addr *net.UDPAddr) (int, error) {
	return s.conn.WriteTo(buf, addr)
}

// SetBroadcast toggles SO_BROADCAST on the underlying socket so datagrams
// can target a subnet broadcast address (GameController discovery, §4.2).
// Linux refuses sends to a broadcast address without this set, regardless
// of TTL, so it is a raw syscall rather than anything ipv4.PacketConn
// exposes directly.
func (s *Socket) SetBroadcast(enabled bool) error {
	raw, err := s.conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("udpsock: syscall conn: %w", err)
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, boolToInt(enabled))
	}); err != nil {
		return fmt.Errorf("udpsock: control: %w", err)
	}
	return sockErr
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// LocalPort reports the bound local port, for logging.
func (s *Socket) LocalPort() int {
	return s.conn.LocalAddr().(*net.UDPAddr).Port
}

// Close releases the underlying socket.
func (s *Socket) Close() error {
	return s.conn.Close()
}
