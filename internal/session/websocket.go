package session

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Subprotocol is the websockify framing used by VNC-over-WebSocket
// servers.
const Subprotocol = "binary"

const (
	defaultHandshakeTimeout = 10 * time.Second
	closeWriteTimeout       = time.Second
)

// WebSocketDialer dials remote displays with gorilla/websocket. Frames
// received from the server are copied to Sink when it is set and are
// otherwise discarded; they are never interpreted.
type WebSocketDialer struct {
	InsecureSkipVerify bool
	HandshakeTimeout   time.Duration
	Sink               io.Writer
	Log                *zap.Logger
}

func (d *WebSocketDialer) Dial(ctx context.Context, endpoint string) (Transport, error) {
	timeout := d.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: timeout,
		Subprotocols:     []string{Subprotocol},
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: d.InsecureSkipVerify}, //nolint:gosec // opt-in for self-signed workspace certs
	}

	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &wsTransport{conn: conn, sink: d.Sink, log: log.With(zap.String("endpoint", endpoint))}, nil
}

type wsTransport struct {
	conn *websocket.Conn
	sink io.Writer
	log  *zap.Logger

	connect    emitter[struct{}]
	disconnect emitter[struct{}]
	errs       emitter[error]

	startOnce sync.Once
	closeOnce sync.Once
	closing   atomic.Bool
}

func (t *wsTransport) OnConnect(fn func()) Disposable {
	return t.connect.On(func(struct{}) { fn() })
}

func (t *wsTransport) OnDisconnect(fn func()) Disposable {
	return t.disconnect.On(func(struct{}) { fn() })
}

func (t *wsTransport) OnError(fn func(error)) Disposable {
	return t.errs.On(fn)
}

// Start reports the completed handshake and begins reading frames.
func (t *wsTransport) Start() {
	t.startOnce.Do(func() {
		go t.readLoop()
	})
}

func (t *wsTransport) readLoop() {
	t.connect.Emit(struct{}{})
	for {
		mt, data, err := t.conn.ReadMessage()
		if err != nil {
			if !t.closing.Load() && !isNormalClose(err) {
				t.log.Debug("session read failed", zap.Error(err))
				t.errs.Emit(err)
			}
			t.disconnect.Emit(struct{}{})
			return
		}
		if t.sink == nil || (mt != websocket.BinaryMessage && mt != websocket.TextMessage) {
			continue
		}
		if _, err := t.sink.Write(data); err != nil {
			t.log.Debug("session sink write failed", zap.Error(err))
		}
	}
}

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.closing.Store(true)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
		err = t.conn.Close()
	})
	return err
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
