package dice

import (
	"crypto/rand"
	"math/big"
)

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource draws from crypto/rand so that no player can predict or bias
// an outcome. rand.Int already does rejection sampling, so the distribution
// over [0, n) is uniform.
type cryptoSource struct{}

// NewCryptoSource returns the production randomness source.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn panics on n <= 0 and on an entropy read failure; neither is
// recoverable mid-roll.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(v.Int64())
}
