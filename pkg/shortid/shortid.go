// Package shortid generates the short lowercase-alphanumeric identifiers used
// for booking ids, claim codes and schedule ids. Collision probability at
// this length is accepted as negligible; no uniqueness check is performed.
package shortid

import (
	"crypto/rand"
	"math/big"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	// Length matches the ids already circulating in the fleet.
	Length = 8
)

// New returns a random 8-character lowercase alphanumeric id.
func New() string {
	b := make([]byte, Length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}
