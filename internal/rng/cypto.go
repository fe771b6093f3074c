package rng

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
)

// Crypto wraps the crypto/rand library
type Crypto struct{}

// Intn returns a random number from 0 < n
func (c Crypto) Intn(n int) int {
	b, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(b.Int64())
}

// Uint64 returns a random non-zero 64-bit number
func (c Crypto) Uint64() uint64 {
	var b [8]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			panic(err)
		}

		if v := binary.BigEndian.Uint64(b[:]); v != 0 {
			return v
		}
	}
}
