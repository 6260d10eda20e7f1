package cache

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"expense-tracker/internal/logger"
)

// MemcacheClient holds rendered monthly reports. The cache lives outside
// the expense model; the model reads storage directly.
type MemcacheClient struct {
	client *memcache.Client
}

type config interface {
	Hosts() []string
}

func NewMemcache(config config) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return &MemcacheClient{mc}, mc.Ping()
}

func (mc *MemcacheClient) StoreReport(key string, payload []byte) error {
	logger.Info("cache report", zap.String("key", key))
	return mc.client.Set(&memcache.Item{
		Key:   key,
		Value: payload,
	})
}

// GetReport returns the cached payload, or ok=false when the report has
// not been generated yet.
func (mc *MemcacheClient) GetReport(key string) ([]byte, bool, error) {
	item, err := mc.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "get report")
	}
	return item.Value, true, nil
}

func (mc *MemcacheClient) Invalidate(keys ...string) error {
	for _, key := range keys {
		err := mc.client.Delete(key)
		if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
			return errors.Wrap(err, "invalidate report")
		}
	}
	return nil
}
