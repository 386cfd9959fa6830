package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/tasteparadise/pos/internal/ws"
)

// Subscribe opens the API's event stream and calls handle for every event
// until ctx is cancelled or the connection drops. It returns nil after
// cancellation and a *TransportError otherwise. The room (floor or kitchen)
// follows the role of the logged-in staff member.
func (c *Client) Subscribe(ctx context.Context, handle func(ws.Event)) error {
	endpoint, err := c.streamURL()
	if err != nil {
		return &TransportError{Op: "subscribe", Err: err}
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		te := &TransportError{Op: "subscribe", Err: err}
		if resp != nil {
			te.StatusCode = resp.StatusCode
		}
		return te
	}
	defer conn.Close()

	// Unblock ReadMessage on cancellation.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &TransportError{Op: "subscribe", Err: err}
		}
		// The hub batches queued events into one frame, newline-separated.
		for _, raw := range bytes.Split(message, []byte{'\n'}) {
			if len(raw) == 0 {
				continue
			}
			var ev ws.Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				log.Printf("WARNING: skip malformed event: %v", err)
				continue
			}
			handle(ev)
		}
	}
}

// streamURL maps the API base URL to its websocket endpoint.
func (c *Client) streamURL() (string, error) {
	token := c.bearer()
	if token == "" {
		return "", errors.New("not logged in")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}
