/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package gatecore

import (
	"io"

	"github.com/valyala/gozstd"
)

// zstdStreamDecompressor implements streamDecompressor for
// compress=zstd-stream. Discord flushes the zstd stream at each message
// boundary, so each WriteTo delivery below corresponds to one complete
// JSON frame; the decompressor still spans the whole connection's
// stream state, matching zlib-stream's contract.
type zstdStreamDecompressor struct {
	pw    *io.PipeWriter
	ch    chan []byte
	errCh chan error
}

func newZstdStreamDecompressor() streamDecompressor {
	pr, pw := io.Pipe()
	ch := make(chan []byte, 1)
	errCh := make(chan error, 1)
	reader := gozstd.NewReader(pr)
	go func() {
		_, err := reader.WriteTo(&chanWriter{ch})
		errCh <- err
	}()
	return &zstdStreamDecompressor{pw: pw, ch: ch, errCh: errCh}
}

// chanWriter forwards every Write to a channel, used to pull fully
// decompressed messages out of gozstd's streaming Reader.
type chanWriter struct {
	ch chan []byte
}

func (w *chanWriter) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)
	w.ch <- buf
	return len(p), nil
}

// decompress blocks until the background reader goroutine has actually
// decoded and delivered the frame this Write completed, rather than
// polling z.ch with a non-blocking select: pw.Write only waits for
// gozstd's Reader to finish its Read call, which returns before the
// decoder pushes the decoded message through chanWriter — a
// non-blocking check here would race and could return (nil, nil) for a
// frame that had, in fact, just completed.
func (z *zstdStreamDecompressor) decompress(data []byte) ([]byte, error) {
	if _, err := z.pw.Write(data); err != nil {
		return nil, err
	}
	select {
	case msg := <-z.ch:
		return msg, nil
	case err := <-z.errCh:
		return nil, err
	}
}

func (z *zstdStreamDecompressor) close() {
	z.pw.Close()
}
