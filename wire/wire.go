// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package wire implements the self-delimiting, checksummed record
// framing shared by the output stream (package output) and on-disk
// spill runs (package diskrun). It is adapted from
// github.com/grailbio/base/logio, simplified: logio's format exists
// to survive truncated writes and mid-block corruption by re-syncing
// on 32kB block boundaries, which this system does not need since
// spill files are ephemeral and never read back after a crash. What's
// kept is logio's core idea: a length prefix and an xxhash checksum
// trailer, framing an opaque blob so
// that a reader can recover the exact byte length of what it just
// read without re-parsing the payload.
//
// Wire format
//
//	frame := length(4) payload(length) checksum(4)
//
// length and checksum are little-endian uint32s. checksum is the
// xxhash64 digest of payload, folded into 32 bits exactly as
// logio.checksum does.
package wire

import (
	"encoding/binary"
	"errors"

	xxhash "github.com/cespare/xxhash/v2"
)

// HeaderSize is the length, in bytes, of a frame's length prefix.
const HeaderSize = 4

// TrailerSize is the length, in bytes, of a frame's checksum trailer.
const TrailerSize = 4

var byteOrder = binary.LittleEndian

// ErrCorrupted is returned by Decode when a frame's checksum does not
// match its payload.
var ErrCorrupted = errors.New("wire: corrupted record")

func checksum(data []byte) uint32 {
	h := xxhash.Sum64(data)
	return uint32(h>>32) ^ uint32(h)
}

// FrameSize returns the total on-disk size of a frame carrying a
// payload of the given length.
func FrameSize(payloadLen int) int {
	return HeaderSize + payloadLen + TrailerSize
}
