package room

import (
	"crypto/rand"
)

const idAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0/O/1/I to reduce transcription errors
const idLength = 6

// NewID mints a short, human-shareable, uppercase-alphanumeric room token.
func NewID() string {
	buf := make([]byte, idLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively unrecoverable on any real
		// platform; fall back to a fixed-but-distinct pattern rather than
		// panicking the caller's goroutine.
		for i := range buf {
			buf[i] = byte(i)
		}
	}
	id := make([]byte, idLength)
	for i, b := range buf {
		id[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(id)
}
