package server

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ngrigoriev/zonewarden/internal/store"
	"github.com/ngrigoriev/zonewarden/internal/zoneconfig"
)

// managementConnTimeout bounds how long a single control-plane exchange may
// take before the connection is dropped.
const managementConnTimeout = 10 * time.Second

// ManagementServer is the authenticated, line-oriented control plane
// described in spec.md §4.6. Unlike the query server it accepts one
// connection at a time and serves exactly one command per connection,
// then closes it — there is no pipelining and no concurrency to reason
// about inside a single exchange.
type ManagementServer struct {
	Logger       *slog.Logger
	Store        *store.Store
	AuthToken    string
	MappingsPath string
}

// Run listens on addr and serves control-plane connections until ctx is
// cancelled.
func (s *ManagementServer) Run(ctx context.Context, addr string) error {
	ln, err := listenTCPReusePort(addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if s.Logger != nil {
				s.Logger.Warn("management accept error", "err", err)
			}
			continue
		}
		s.handleConnection(conn)
	}
}

// handleConnection reads a single line, dispatches it, writes a single
// reply, and closes the connection. zonewarden never pipelines
// control-plane commands: one connection, one command, one reply.
func (s *ManagementServer) handleConnection(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(managementConnTimeout))

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return
	}
	line := scanner.Text()

	// Split the whole line into fields exactly once and dispatch from
	// that slice. Handlers never re-tokenize the remainder themselves.
	fields := strings.Fields(line)
	if len(fields) == 0 {
		s.reply(conn, "ERROR: empty command")
		return
	}

	token, fields := fields[0], fields[1:]
	if token != s.AuthToken {
		s.reply(conn, "ERROR: Authentication failed")
		return
	}
	if len(fields) == 0 {
		s.reply(conn, "ERROR: missing command")
		return
	}

	command, args := strings.ToUpper(fields[0]), fields[1:]
	switch command {
	case "ADD":
		s.handleAdd(conn, args)
	case "DELETE":
		s.handleDelete(conn, args)
	case "LIST":
		s.handleList(conn)
	case "RELOAD":
		s.handleReload(conn)
	default:
		s.reply(conn, fmt.Sprintf("ERROR: unknown command %q", command))
	}
}

// handleAdd implements "ADD <domain> <type> <scope> <value...>". Every
// token after scope belongs to the value and is rejoined with a single
// space, so multi-token MX/SRV values survive the split.
func (s *ManagementServer) handleAdd(conn net.Conn, args []string) {
	if len(args) < 4 {
		s.reply(conn, "ERROR: ADD requires domain, type, scope and value")
		return
	}
	domain, typeTok, scopeTok := args[0], args[1], args[2]
	value := strings.Join(args[3:], " ")

	typ, err := store.ParseRecordType(typeTok)
	if err != nil {
		s.reply(conn, fmt.Sprintf("ERROR: %v", err))
		return
	}
	scope, err := store.ParseScope(scopeTok)
	if err != nil {
		s.reply(conn, fmt.Sprintf("ERROR: %v", err))
		return
	}

	key := store.NewKey(scope, domain, typ)
	if err := s.Store.Put(key, []string{value}); err != nil {
		s.reply(conn, fmt.Sprintf("ERROR: %v", err))
		return
	}
	s.reply(conn, "SUCCESS: record added")
}

// handleDelete implements "DELETE <domain> <type> <scope>".
func (s *ManagementServer) handleDelete(conn net.Conn, args []string) {
	if len(args) != 3 {
		s.reply(conn, "ERROR: DELETE requires domain, type and scope")
		return
	}
	domain, typeTok, scopeTok := args[0], args[1], args[2]

	typ, err := store.ParseRecordType(typeTok)
	if err != nil {
		s.reply(conn, fmt.Sprintf("ERROR: %v", err))
		return
	}
	scope, err := store.ParseScope(scopeTok)
	if err != nil {
		s.reply(conn, fmt.Sprintf("ERROR: %v", err))
		return
	}

	key := store.NewKey(scope, domain, typ)
	if err := s.Store.Delete(key); err != nil {
		s.reply(conn, fmt.Sprintf("ERROR: %v", err))
		return
	}
	s.reply(conn, "SUCCESS: record deleted")
}

// handleList streams one line per record in the store, in the store's
// stable snapshot order, terminated by a SUCCESS line.
func (s *ManagementServer) handleList(conn net.Conn) {
	for _, rec := range s.Store.Snapshot() {
		line := fmt.Sprintf("%s %s %s %s\n", rec.Key.Domain, rec.Key.Type, rec.Key.Scope, strings.Join(rec.Values, ","))
		if _, err := conn.Write([]byte(line)); err != nil {
			return
		}
	}
	s.reply(conn, "SUCCESS: end of list")
}

// handleReload rebuilds the store from the configured zone file.
// Store.ReplaceAll already performs the "build outside the lock, swap
// under the lock" replacement atomically, so a concurrent LIST only ever
// observes the pre-reload or post-reload snapshot, never a mix of the two
// (or, after a failed reload, the emptied store). Clear is
// reserved for the failure branch: only when the load or swap fails is the
// store deliberately left empty, per spec.md §4.6.
func (s *ManagementServer) handleReload(conn net.Conn) {
	batch, err := zoneconfig.LoadFile(s.MappingsPath)
	if err != nil {
		s.Store.Clear()
		s.reply(conn, fmt.Sprintf("ERROR: %v", err))
		return
	}
	if err := s.Store.ReplaceAll(batch); err != nil {
		s.Store.Clear()
		s.reply(conn, fmt.Sprintf("ERROR: %v", err))
		return
	}
	s.reply(conn, "SUCCESS: reload complete")
}

func (s *ManagementServer) reply(conn net.Conn, msg string) {
	if _, err := conn.Write([]byte(msg + "\n")); err != nil && s.Logger != nil {
		s.Logger.Warn("management write error", "err", err)
	}
}

// listenTCPReusePort creates a TCP listener with SO_REUSEPORT enabled, so
// a restarting instance can bind alongside one still draining connections.
func listenTCPReusePort(addr string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
		},
	}
	return lc.Listen(context.Background(), "tcp", addr)
}
