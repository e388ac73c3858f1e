package utils

import (
	"crypto/rand"
	"strconv"
	"time"
)

const (
	// RoomCodeLength is the fixed length of a canonical room code.
	RoomCodeLength = 8

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewRoomCode returns a random fixed-length uppercase alphanumeric room code.
func NewRoomCode() string {
	buf := make([]byte, RoomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		// Fallback to timestamp digits if crypto/rand is unavailable.
		ts := strconv.FormatInt(time.Now().UnixNano(), 10)
		return ts[len(ts)-RoomCodeLength:]
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
