package obfstore

import (
	"hash/maphash"
	"math/rand"
)

// keystream is the deterministic byte generator behind the file layout.
// It is an obfuscation aid only and has no cryptographic strength.
type keystream struct {
	r *rand.Rand
}

func newKeystream(seed int64) keystream {
	return keystream{r: rand.New(rand.NewSource(seed))}
}

// next returns the generator's next output modulo 256.
func (k keystream) next() byte {
	return byte(k.r.Intn(256))
}

func (k keystream) intn(n int) int {
	return k.r.Intn(n)
}

func (k keystream) xor(p []byte) {
	for i := range p {
		p[i] ^= k.next()
	}
}

// processSeed changes every time the program starts, so the padding length
// and filler chosen for a user vary between runs. Loading never needs it.
var processSeed = maphash.MakeSeed()

func userSeed(userId string) int64 {
	return int64(maphash.String(processSeed, userId))
}
