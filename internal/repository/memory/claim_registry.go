package memory

import (
	"github.com/patrickmn/go-cache"
)

// ClaimRegistry tracks in-flight idempotency claims for this process.
// Entries never expire on their own: a claim lives until the owning
// computation finishes or releases it, so a key can never be silently
// evicted mid-job.
type ClaimRegistry struct {
	cache *cache.Cache
}

func NewClaimRegistry() *ClaimRegistry {
	return &ClaimRegistry{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// TryClaim returns true when this caller is first for (scope, key).
func (r *ClaimRegistry) TryClaim(scope, key string) bool {
	err := r.cache.Add(scope+"\x00"+key, struct{}{}, cache.NoExpiration)
	return err == nil
}

func (r *ClaimRegistry) InProgress(scope, key string) bool {
	_, found := r.cache.Get(scope + "\x00" + key)
	return found
}

func (r *ClaimRegistry) Release(scope, key string) {
	r.cache.Delete(scope + "\x00" + key)
}
