package unordered

import "github.com/vkngwrapper/fixedmem/memutils/hash"

type config[K comparable] struct {
	hasher func(K) uint32
	equal  func(a, b K) bool
}

// Option configures the key hash and key equality functions of a map or set
type Option[K comparable] func(c *config[K])

// WithHasher replaces the default hash function, hash.Default[K]. Keys that compare equal must hash equally.
func WithHasher[K comparable](hasher func(K) uint32) Option[K] {
	return func(c *config[K]) {
		c.hasher = hasher
	}
}

// WithEqual replaces the default key comparison, ==
func WithEqual[K comparable](equal func(a, b K) bool) Option[K] {
	return func(c *config[K]) {
		c.equal = equal
	}
}

func buildConfig[K comparable](options []Option[K]) config[K] {
	var c config[K]
	for _, option := range options {
		option(&c)
	}

	if c.hasher == nil {
		c.hasher = hash.Default[K]()
	}

	if c.equal == nil {
		c.equal = func(a, b K) bool { return a == b }
	}

	return c
}
