package control

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/chase3718/buzzer/internal/player"
)

const dialTimeout = 3 * time.Second

// RemoteError is an error reply from the server. It unwraps to the
// player sentinel for its errno, so errors.Is works across the socket.
type RemoteError struct {
	Errno string
	Msg   string
}

func (e *RemoteError) Error() string { return e.Errno + ": " + e.Msg }

func (e *RemoteError) Unwrap() error { return player.FromErrno(e.Errno) }

// Client is one open of a remote controller.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

func Dial(network, address string) (*Client, error) {
	conn, err := net.DialTimeout(network, address, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("control: dial %s %s: %w", network, address, err)
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Do sends one request line and returns the reply line. Error replies are
// returned as *RemoteError. A "read" after the first one yields io.EOF.
func (c *Client) Do(line string) (string, error) {
	line = strings.TrimSpace(line)
	if strings.ContainsAny(line, "\r\n") {
		return "", fmt.Errorf("control: request spans lines")
	}
	if _, err := io.WriteString(c.conn, line+"\n"); err != nil {
		return "", fmt.Errorf("control: send: %w", err)
	}
	reply, err := c.r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("control: receive: %w", err)
	}
	reply = strings.TrimSuffix(reply, "\n")

	if rest, ok := strings.CutPrefix(reply, "error "); ok {
		errno, msg, _ := strings.Cut(rest, ": ")
		return "", &RemoteError{Errno: errno, Msg: msg}
	}
	if reply == "eof" && line == "read" {
		return "", io.EOF
	}
	return reply, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
