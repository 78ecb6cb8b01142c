package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
func NewCryptoSource() Source {
	return cryptoSource{}
}

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

// SeededSource is a reproducible Source. The same seed yields the same
// sequence.
type SeededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a PCG-backed source for seed.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn implements Source.
//
// Precondition: n must be > 0.
func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// FixedSource replays die faces in order, wrapping around. A face is the
// 1-based value the die shows, so Intn returns face-1 clamped into [0, n).
type FixedSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewFixedSource returns a source that yields faces in order.
//
// Precondition: faces must be non-empty.
func NewFixedSource(faces ...int) *FixedSource {
	if len(faces) == 0 {
		panic("dice: NewFixedSource requires at least one face")
	}
	return &FixedSource{faces: faces}
}

// Intn implements Source.
//
// Precondition: n must be > 0.
func (f *FixedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.faces[f.next%len(f.faces)] - 1
	f.next++
	return min(max(v, 0), n-1)
}
