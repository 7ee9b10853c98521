package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ngrigoriev/zonewarden/internal/pool"
	"github.com/ngrigoriev/zonewarden/internal/wire"
)

// readTimeout bounds each blocking read so the loop revisits ctx.Done()
// at least once a second, the non-blocking readiness discipline spec.md
// §4.5 asks for in place of a raw volatile shutdown flag.
const readTimeout = time.Second

// bufferPool reduces allocations for incoming UDP packets.
var bufferPool = pool.New(func() *[]byte {
	buf := make([]byte, wire.MaxIncomingMessageSize)
	return &buf
})

// UDPServer owns the single non-blocking UDP socket that answers DNS
// queries. One goroutine runs Run's loop; there is no worker pool — each
// datagram is decoded, resolved, and answered in turn, matching the
// single-threaded read/process/send cycle of spec.md §4.5.
type UDPServer struct {
	Logger  *slog.Logger
	Handler *QueryHandler
}

// Run binds addr and services queries until ctx is cancelled, then closes
// the socket and returns nil.
func (s *UDPServer) Run(ctx context.Context, addr string) error {
	conn, err := listenUDPReusePort(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		bufPtr := bufferPool.Get()
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		n, peer, err := conn.ReadFromUDP(*bufPtr)
		if err != nil {
			bufferPool.Put(bufPtr)
			if ctx.Err() != nil {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if s.Logger != nil {
				s.Logger.Warn("udp read error", "err", err)
			}
			continue
		}

		payload := append([]byte(nil), (*bufPtr)[:n]...)
		bufferPool.Put(bufPtr)

		resp := s.Handler.Handle(payload)
		if len(resp) == 0 {
			continue
		}
		if _, err := conn.WriteToUDP(resp, peer); err != nil && s.Logger != nil {
			s.Logger.Warn("udp write error", "err", err, "peer", peer)
		}
	}
}

// listenUDPReusePort binds a UDP socket with SO_REUSEPORT set. zonewarden
// only ever runs one query-server instance, but setting the option costs
// nothing and means a second instance (blue/green restart, a manual probe
// during an incident) can bind alongside it instead of failing outright.
func listenUDPReusePort(addr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp", udpAddr.String())
	if err != nil {
		return nil, err
	}
	return pc.(*net.UDPConn), nil
}
