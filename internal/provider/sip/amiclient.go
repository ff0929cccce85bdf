package sip

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/faxbot/faxbot/internal/logger"
)

// Event is a single AMI-style key:value block, correlated back to the
// originating action via its ActionID field.
type Event struct {
	Fields map[string]string
}

func (e Event) Get(key string) string { return e.Fields[key] }

const (
	backoffBase = 1 * time.Second
	backoffMax  = 30 * time.Second

	// originateTimeout bounds how long Originate waits for Asterisk to
	// answer a submitted action before giving up.
	originateTimeout = 60 * time.Second
)

// Client owns a single persistent TCP connection to an Asterisk AMI
// endpoint, reconnecting with exponential backoff and jitter on
// failure. Every originated action is correlated to its eventual
// response/completion event through a per-action subscription channel.
type Client struct {
	host, port, user, password string

	connMu sync.Mutex
	conn   net.Conn

	subMu sync.Mutex
	subs  map[string]chan Event

	closed chan struct{}
}

func NewClient(host string, port int, user, password string) *Client {
	return &Client{
		host:     host,
		port:     strconv.Itoa(port),
		user:     user,
		password: password,
		subs:     make(map[string]chan Event),
		closed:   make(chan struct{}),
	}
}

// Run maintains the connection until ctx is cancelled, reconnecting
// and re-logging-in on every failure.
func (c *Client) Run(ctx context.Context) {
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.connectAndServe(ctx); err != nil {
			logger.LogProviderEvent(ctx, "sip", "", "ami_connect", false, err.Error())
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		delay := backoffDelay(attempt)
		attempt++
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func backoffDelay(attempt int) time.Duration {
	d := backoffBase * time.Duration(1<<uint(minInt(attempt, 5)))
	if d > backoffMax {
		d = backoffMax
	}
	jitterMax := int64(d / 4)
	if jitterMax <= 0 {
		return d
	}
	n, err := rand.Int(rand.Reader, big.NewInt(jitterMax))
	if err != nil {
		return d
	}
	return d + time.Duration(n.Int64())
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// connectAndServe opens one connection, logs in, and reads events
// (half-duplex: one read loop, writes happen from Originate) until the
// connection breaks or ctx is cancelled.
func (c *Client) connectAndServe(ctx context.Context) error {
	dialer := net.Dialer{Timeout: 15 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(c.host, c.port))
	if err != nil {
		return fmt.Errorf("ami: dial failed: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	defer func() {
		conn.Close()
		c.connMu.Lock()
		c.conn = nil
		c.connMu.Unlock()
	}()

	if err := c.login(); err != nil {
		return fmt.Errorf("ami: login failed: %w", err)
	}

	logger.LogProviderEvent(ctx, "sip", "", "ami_connected", true, "")

	reader := bufio.NewReader(conn)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		block, err := readBlock(reader)
		if err != nil {
			return fmt.Errorf("ami: connection read failed: %w", err)
		}
		if len(block) == 0 {
			continue
		}

		c.dispatch(Event{Fields: block})
	}
}

func (c *Client) login() error {
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn == nil {
		return fmt.Errorf("ami: no active connection")
	}

	action := map[string]string{
		"Action":   "Login",
		"Username": c.user,
		"Secret":   c.password,
	}
	return writeAction(conn, action)
}

// Originate submits an Originate action and blocks until the
// correlated completion event arrives, the context is cancelled, or
// the default command timeout elapses.
func (c *Client) Originate(ctx context.Context, fields map[string]string) (Event, error) {
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn == nil {
		return Event{}, fmt.Errorf("ami: no active connection")
	}

	actionID := newActionID()
	fields["Action"] = "Originate"
	fields["ActionID"] = actionID

	ch := make(chan Event, 1)
	c.subMu.Lock()
	c.subs[actionID] = ch
	c.subMu.Unlock()
	defer func() {
		c.subMu.Lock()
		delete(c.subs, actionID)
		c.subMu.Unlock()
	}()

	if err := writeAction(conn, fields); err != nil {
		return Event{}, fmt.Errorf("ami: failed to submit originate: %w", err)
	}

	timer := time.NewTimer(originateTimeout)
	defer timer.Stop()

	select {
	case ev := <-ch:
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case <-timer.C:
		return Event{}, fmt.Errorf("ami: no response from AMI after %s", originateTimeout)
	}
}

func (c *Client) dispatch(ev Event) {
	actionID := ev.Get("ActionID")
	if actionID == "" {
		return
	}

	c.subMu.Lock()
	ch, ok := c.subs[actionID]
	c.subMu.Unlock()
	if !ok {
		return
	}

	select {
	case ch <- ev:
	default:
	}
}

func writeAction(conn net.Conn, fields map[string]string) error {
	var b strings.Builder
	for k, v := range fields {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")

	if err := conn.SetWriteDeadline(time.Now().Add(15 * time.Second)); err != nil {
		return err
	}
	_, err := conn.Write([]byte(b.String()))
	return err
}

// readBlock reads one CRLF-terminated key:value block up to the
// blank-line terminator, the AMI wire framing.
func readBlock(reader *bufio.Reader) (map[string]string, error) {
	fields := make(map[string]string)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if len(fields) == 0 {
				continue
			}
			return fields, nil
		}

		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		fields[key] = val
	}
}

func newActionID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("faxbot-%d", binary.BigEndian.Uint64(b[:]))
}
