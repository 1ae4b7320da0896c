/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package gatecore

import (
	"context"
	"net"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

const gatewayVersion = "10"

// Frame is one decoded, decompressed text message ready for the Codec.
type Frame struct {
	Data []byte
}

// Transport is the Gateway WebSocket boundary: dial, frame I/O, and
// close-frame surfacing. It is the only blocking collaborator in the
// core, and a fake implementation drives the Protocol Engine in tests.
type Transport interface {
	// Send writes one already-encoded frame, awaited to completion so
	// outbound messages on a connection never interleave.
	Send(data []byte) error
	// Recv blocks for the next complete message. A close frame is
	// surfaced as a *CloseError, never as a zero Frame with a nil error.
	Recv() (Frame, error)
	// Close performs a graceful close; safe to call on a half-broken
	// connection or more than once.
	Close() error
}

// wsTransport is the gobwas/ws-backed Transport used outside tests.
// Compression state, when enabled, is owned exclusively by one
// wsTransport value and never survives a reconnect.
type wsTransport struct {
	conn         net.Conn
	decompressor streamDecompressor
}

var _ Transport = (*wsTransport)(nil)

// dial opens a new wsTransport to url?v=10[&compress=...].
func dial(ctx context.Context, baseURL string, compression CompressionMode) (*wsTransport, error) {
	url := baseURL + "?v=" + gatewayVersion + compression.queryParam()

	dialer := ws.Dialer{}
	conn, _, _, err := dialer.Dial(ctx, url)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}

	t := &wsTransport{conn: conn}
	switch compression {
	case CompressionZlibStream:
		t.decompressor = newZlibStreamDecompressor()
	case CompressionZstdStream:
		t.decompressor = newZstdStreamDecompressor()
	}
	return t, nil
}

func (t *wsTransport) Send(data []byte) error {
	if err := wsutil.WriteClientMessage(t.conn, ws.OpText, data); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

func (t *wsTransport) Recv() (Frame, error) {
	for {
		data, op, err := wsutil.ReadServerData(t.conn)
		if err != nil {
			if closeErr, ok := err.(wsutil.ClosedError); ok {
				return Frame{}, &CloseError{Code: uint16(closeErr.Code), Reason: closeErr.Reason}
			}
			return Frame{}, &TransportError{Op: "recv", Err: err}
		}

		switch op {
		case ws.OpText:
			return Frame{Data: data}, nil
		case ws.OpBinary:
			if t.decompressor == nil {
				return Frame{Data: data}, nil
			}
			msg, derr := t.decompressor.decompress(data)
			if derr != nil {
				return Frame{}, &TransportError{Op: "decompress", Err: derr}
			}
			if msg == nil {
				// Partial message; keep reading frames.
				continue
			}
			return Frame{Data: msg}, nil
		case ws.OpClose:
			return Frame{}, &CloseError{Code: 0, Reason: "connection closed"}
		default:
			continue
		}
	}
}

func (t *wsTransport) Close() error {
	if t.decompressor != nil {
		t.decompressor.close()
		t.decompressor = nil
	}
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
