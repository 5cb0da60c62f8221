package wallet

import (
	"context"
	"time"

	"medipay/internal/utils/cache"
)

func balanceKey(hospitalID string) string {
	return cache.GenerateKey(cache.EntityWallet, cache.KeyHospital, hospitalID)
}

func (s *service) Invalidate(ctx context.Context, hospitalIDs ...string) {
	if s.cache == nil || len(hospitalIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(hospitalIDs))
	for _, id := range hospitalIDs {
		keys = append(keys, balanceKey(id))
	}
	s.deleteKeys(ctx, keys)

	// A GetBalance that read the row before the posting committed may still
	// write its value back after the delete above.
	time.AfterFunc(s.config.RecheckDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.deleteKeys(ctx, keys)
	})
}

func (s *service) deleteKeys(ctx context.Context, keys []string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("balance cache invalidation failed")
	}
}

func (s *service) cachedBalance(ctx context.Context, hospitalID string) (*Balance, bool) {
	if s.cache == nil {
		return nil, false
	}
	key := balanceKey(hospitalID)
	var b Balance
	found, err := s.cache.Get(ctx, key, &b)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("balance cache read failed")
		return nil, false
	}
	if !found {
		s.metrics.RecordCacheMiss(key)
		return nil, false
	}
	s.metrics.RecordCacheHit(key)
	return &b, true
}

func (s *service) storeBalance(ctx context.Context, b *Balance) {
	if s.cache == nil {
		return
	}
	key := balanceKey(b.HospitalID)
	if err := s.cache.SetWithTTL(ctx, key, b, s.config.CacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("balance cache write failed")
	}
}
