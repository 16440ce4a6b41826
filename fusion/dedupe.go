package fusion

import (
	"fmt"

	"github.com/golang/groupcache/lru"
	"github.com/mitchellh/hashstructure/v2"
)

// newDedupeLRUFunc returns a closure reporting whether a value is novel
// within the last size values seen. Duplicate sensor callbacks happen when a
// platform redelivers a reading after a subscription hiccup.
func newDedupeLRUFunc[T any](size int) func(T) bool {
	cache := lru.New(size)
	return func(v T) bool {
		hash, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
		if err != nil {
			return false
		}
		key := fmt.Sprintf("%d", hash)
		if _, ok := cache.Get(key); ok {
			return false
		}
		cache.Add(key, true)
		return true
	}
}
