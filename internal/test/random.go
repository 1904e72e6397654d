package test

import (
	"math/rand"
	"sync"
	"time"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomASCIIString returns an upper case alphanumeric string within the provided bounds,
// shaped like gateway request ids and receipt numbers.
func RandomASCIIString(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	rngMu.Lock()
	defer rngMu.Unlock()

	length := minLen
	if maxLen > minLen {
		length += rng.Intn(maxLen - minLen + 1)
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = idAlphabet[rng.Intn(len(idAlphabet))]
	}
	return string(buf)
}
