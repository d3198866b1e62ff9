// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package wire

import (
	"io"
)

// Decode reads one frame from r. It returns the frame's payload and
// the exact number of bytes consumed from r (HeaderSize + len(payload)
// + TrailerSize), so that a caller needing byte-precise cursors (see
// package diskrun) can track its position without re-deriving it from
// the payload length alone.
//
// Decode returns io.EOF if r is exhausted before any byte of a new
// frame is read. It returns io.ErrUnexpectedEOF if r is exhausted in
// the middle of a frame, and ErrCorrupted if the checksum does not
// match.
func Decode(r io.Reader) (payload []byte, n int, err error) {
	var header [HeaderSize]byte
	if _, err = io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		return nil, 0, io.ErrUnexpectedEOF
	}
	n = HeaderSize
	length := int(byteOrder.Uint32(header[:]))

	payload = make([]byte, length)
	if _, err = io.ReadFull(r, payload); err != nil {
		return nil, n, io.ErrUnexpectedEOF
	}
	n += length

	var trailer [TrailerSize]byte
	if _, err = io.ReadFull(r, trailer[:]); err != nil {
		return nil, n, io.ErrUnexpectedEOF
	}
	n += TrailerSize

	if byteOrder.Uint32(trailer[:]) != checksum(payload) {
		return nil, n, ErrCorrupted
	}
	return payload, n, nil
}
