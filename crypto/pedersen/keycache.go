package pedersen

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultKeyCacheSize is the number of domains a KeyCache remembers when no
// size is given.
const DefaultKeyCacheSize = 128

// KeyCache memoizes DeriveKey per domain. It is an explicit value owned by
// its caller and safe for concurrent use.
type KeyCache struct {
	cache *lru.Cache[string, CommitmentKey]
}

// NewKeyCache returns a cache holding up to size keys. A non-positive size
// selects DefaultKeyCacheSize.
func NewKeyCache(size int) (*KeyCache, error) {
	if size <= 0 {
		size = DefaultKeyCacheSize
	}
	cache, err := lru.New[string, CommitmentKey](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create key cache: %w", err)
	}
	return &KeyCache{cache: cache}, nil
}

// Key returns the key for domain, deriving it on first use.
func (kc *KeyCache) Key(domain []byte) CommitmentKey {
	if key, ok := kc.cache.Get(string(domain)); ok {
		return key
	}
	key := DeriveKey(domain)
	kc.cache.Add(string(domain), key)
	return key
}

// Len returns the number of cached keys.
func (kc *KeyCache) Len() int {
	return kc.cache.Len()
}
