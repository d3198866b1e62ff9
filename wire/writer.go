// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package wire

import (
	"io"
)

// Encode writes one frame containing payload to w and returns the
// number of bytes written (HeaderSize + len(payload) + TrailerSize).
// The whole frame is assembled in scratch and written with a single
// Write call. scratch is reused only if its capacity covers the whole
// frame (header, payload and trailer); otherwise a new buffer is
// allocated.
func Encode(w io.Writer, payload []byte, scratch []byte) (n int, err error) {
	need := HeaderSize + len(payload) + TrailerSize
	if cap(scratch) < need {
		scratch = make([]byte, need)
	} else {
		scratch = scratch[:need]
	}
	byteOrder.PutUint32(scratch[:HeaderSize], uint32(len(payload)))
	copy(scratch[HeaderSize:], payload)
	byteOrder.PutUint32(scratch[HeaderSize+len(payload):], checksum(payload))
	return w.Write(scratch)
}
