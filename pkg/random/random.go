package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Jitter returns a cryptographically random duration uniformly distributed
// in [0, max). It returns 0 if max is non-positive.
func Jitter(max time.Duration) (time.Duration, error) {
	if max <= 0 {
		return 0, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("unable to read random jitter: %w", err)
	}
	return time.Duration(n.Int64()), nil
}
