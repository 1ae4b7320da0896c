/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package gatecore

import (
	"bytes"
	"compress/zlib"
	"io"
	"sync"
)

// CompressionMode selects the Transport compression scheme, appended as
// a query parameter on connect.
type CompressionMode int

const (
	// CompressionNone sends and receives plain JSON frames.
	CompressionNone CompressionMode = iota
	// CompressionZlibStream negotiates a zlib stream compressed across
	// every frame of the connection ("compress=zlib-stream").
	CompressionZlibStream
	// CompressionZstdStream negotiates a zstd stream compressed across
	// every frame of the connection ("compress=zstd-stream").
	CompressionZstdStream
)

// queryParam returns the gateway connect URL query fragment for this mode.
func (c CompressionMode) queryParam() string {
	switch c {
	case CompressionZlibStream:
		return "&compress=zlib-stream"
	case CompressionZstdStream:
		return "&compress=zstd-stream"
	default:
		return ""
	}
}

// streamDecompressor is the Transport's private per-connection
// decompressor contract. Its state spans frames within a single
// connection and it is never reused across a reconnect — a Transport
// constructs a fresh one on connect and discards it on Close.
type streamDecompressor interface {
	// decompress feeds one raw frame and returns the decompressed
	// message, or nil if the frame is an incomplete fragment of a
	// still-accumulating message.
	decompress(data []byte) ([]byte, error)
	close()
}

/***********************
 *   zlib-stream        *
 ***********************/

// zlibSuffix is the flush suffix Discord appends to mark the end of a
// complete zlib-compressed message.
var zlibSuffix = []byte{0x00, 0x00, 0xff, 0xff}

type zlibReaderWrapper struct {
	reader io.ReadCloser
	buf    bytes.Buffer
}

// zlibReaderPool recycles the underlying zlib.Reader across connections
// to avoid an allocation per reconnect; the accumulation buffer is
// always reset on acquire so no state leaks between connections.
var zlibReaderPool = sync.Pool{
	New: func() any {
		return &zlibReaderWrapper{}
	},
}

func newZlibStreamDecompressor() streamDecompressor {
	w := zlibReaderPool.Get().(*zlibReaderWrapper)
	w.buf.Reset()
	return w
}

// decompress accumulates data until a complete zlib-stream message (one
// ending in zlibSuffix) is seen, then inflates it.
func (w *zlibReaderWrapper) decompress(data []byte) ([]byte, error) {
	w.buf.Write(data)

	if !bytes.HasSuffix(w.buf.Bytes(), zlibSuffix) {
		return nil, nil
	}

	if w.reader == nil {
		reader, err := zlib.NewReader(&w.buf)
		if err != nil {
			return nil, err
		}
		w.reader = reader
	} else if resetter, ok := w.reader.(zlib.Resetter); ok {
		if err := resetter.Reset(&w.buf, nil); err != nil {
			return nil, err
		}
	}

	decompressed, err := io.ReadAll(w.reader)
	// A sync-flushed message ends mid-stream, so running out of input
	// surfaces as io.ErrUnexpectedEOF once the message is fully inflated.
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}

	w.buf.Reset()
	return decompressed, nil
}

func (w *zlibReaderWrapper) close() {
	if w.reader != nil {
		w.reader.Close()
	}
	w.buf.Reset()
	zlibReaderPool.Put(w)
}

// DecompressOneShot decompresses a single complete zlib message. Used by
// tests; the gateway connection itself always goes through the pooled
// streaming decompressor above.
func DecompressOneShot(data []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// IsZlibCompressed reports whether data begins with a zlib header.
func IsZlibCompressed(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return data[0] == 0x78 && (data[1] == 0x01 || data[1] == 0x9c || data[1] == 0xda)
}

// HasZlibSuffix reports whether data ends with the gateway's zlib flush
// suffix, i.e. a complete message has accumulated.
func HasZlibSuffix(data []byte) bool {
	return bytes.HasSuffix(data, zlibSuffix)
}
