// Package control exposes a player.Controller on a local socket using a
// line protocol, one reply line per request line.
//
//	music 440:4,0:4   -> ok | error EINVAL: ...
//	beat 90           -> ok | error EINVAL: ...
//	read              -> beat=90 | eof
//	press             -> ok
//	status            -> state=playing cursor=1 notes=2 beat=90
//
// Every connection is one open of the device, so "read" answers once per
// connection.
package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/chase3718/buzzer/internal/player"
)

// maxLine bounds a request line. Longer lines than player.MaxWrite still
// reach the controller so it can reject them. Lines over maxLine are
// answered with EINVAL and skipped.
const maxLine = 4 * player.MaxWrite

// Listen opens a listener, removing a stale unix socket first.
func Listen(network, address string) (net.Listener, error) {
	if network == "unix" {
		if err := os.Remove(address); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("control: remove stale socket: %w", err)
		}
	}
	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, fmt.Errorf("control: listen %s %s: %w", network, address, err)
	}
	return ln, nil
}

// Server answers control connections for one controller.
type Server struct {
	c   *player.Controller
	log *slog.Logger

	wg sync.WaitGroup
}

func NewServer(c *player.Controller, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{c: c, log: log}
}

// Serve accepts connections on ln until ctx is done. It closes ln and
// every open connection before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info("control: listening", "addr", ln.Addr().String())
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer s.wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("control: accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	log := s.log.With("remote", conn.RemoteAddr().String())
	log.Debug("control: open")
	h := s.c.Open()

	defer log.Debug("control: close")

	r := bufio.NewReaderSize(conn, maxLine)
	w := bufio.NewWriter(conn)
	for {
		line, err := readLine(r)
		var reply string
		switch {
		case errors.Is(err, player.ErrInvalidArgument):
			reply = errorReply(err)
		case err != nil:
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				log.Warn("control: read failed", "err", err)
			}
			return
		case strings.TrimSpace(line) == "":
			continue
		default:
			reply = s.handle(h, line)
		}
		log.Debug("control: request", "line", line, "reply", reply)
		if _, err := w.WriteString(reply + "\n"); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

// readLine returns the next line without its line ending. A final line
// without a newline is returned before io.EOF. A line longer than the
// buffer is discarded up to its newline and reported as an
// ErrInvalidArgument.
func readLine(r *bufio.Reader) (string, error) {
	b, err := r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = r.ReadSlice('\n')
		}
		if err != nil {
			return "", err
		}
		return "", fault.Wrap(player.ErrInvalidArgument,
			fmsg.With(fmt.Sprintf("line longer than %d bytes", r.Size())),
			ftag.With(ftag.InvalidArgument))
	}
	if err != nil && (len(b) == 0 || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func (s *Server) handle(h *player.Handle, line string) string {
	switch verb, _, _ := strings.Cut(strings.TrimSpace(line), " "); verb {
	case "read":
		buf := make([]byte, 64)
		n, err := h.Read(buf)
		if errors.Is(err, io.EOF) {
			return "eof"
		}
		if err != nil {
			return errorReply(err)
		}
		return strings.TrimSuffix(string(buf[:n]), "\n")
	case "press":
		s.c.ButtonEdge()
		return "ok"
	case "status":
		return s.c.Status().String()
	}
	if _, err := h.Write([]byte(line)); err != nil {
		return errorReply(err)
	}
	return "ok"
}

func errorReply(err error) string {
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	return fmt.Sprintf("error %s: %s", player.Errno(err), msg)
}
