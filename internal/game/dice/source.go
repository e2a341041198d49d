// Package dice provides the randomness abstraction used by the combat engine.
package dice

import (
	"crypto/rand"
	"math/big"
)

// Source is the randomness provider for every damage and heal draw.
//
// Implementations used by a single engine need not be safe for concurrent use;
// NewCryptoSource is safe to share across engines.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is uniformly distributed in [0, n).
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics if n <= 0 or crypto/rand fails.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// FloatSource adapts a uniform [0, 1) generator, such as math/rand's Float64,
// into a Source. Intn computes floor(f() * n).
type FloatSource func() float64

// Intn returns floor(f() * n), clamped to [0, n).
//
// Precondition: n > 0; f returns values in [0, 1).
func (f FloatSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	v := int(f() * float64(n))
	switch {
	case v < 0:
		return 0
	case v >= n:
		return n - 1
	}
	return v
}
