package cache

import (
	"os"
	"path/filepath"
	"time"

	"heatmapd/internal/cache/interfaces"
	"heatmapd/internal/providers"
	"heatmapd/internal/structures"
)

const recordExt = ".zst"

// DiskCache is a content-addressed TTL cache for raw API payloads. One
// record per fingerprinted key; the file mtime doubles as the creation
// timestamp. Records are zstd-compressed and written atomically, so
// concurrent writers to the same key degrade to last-writer-wins.
//
// There is deliberately no in-memory index: call volume is bounded by the
// upstream rate limit, so every Get performs its own staleness check.
type DiskCache struct {
	dir        string
	ttl        time.Duration
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewDiskCache(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) (*DiskCache, error) {
	if err := os.MkdirAll(conf.DiskCache.Dir, 0755); err != nil {
		return nil, err
	}
	return &DiskCache{
		dir:        conf.DiskCache.Dir,
		ttl:        conf.DiskCache.TTL,
		compressor: compressor,
		logger:     logger,
	}, nil
}

// Get returns the cached payload for key, or a miss when the record is
// absent, expired or unreadable. A corrupt record is removed best-effort.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	path := c.recordPath(key)

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) >= c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warnf(providers.TypeApp, "Failed to read cache record %s: %s", path, err)
		return nil, false
	}

	payload, err := c.compressor.Decompress(data)
	if err != nil {
		c.logger.Warnf(providers.TypeApp, "Corrupt cache record %s, removing: %s", path, err)
		if rmErr := os.Remove(path); rmErr != nil {
			c.logger.Warnf(providers.TypeApp, "Failed to remove corrupt record %s: %s", path, rmErr)
		}
		return nil, false
	}
	return payload, true
}

// Set stores payload under key, compressed and written atomically.
func (c *DiskCache) Set(key string, payload []byte) error {
	compressed, err := c.compressor.Compress(payload)
	if err != nil {
		return err
	}

	path := c.recordPath(key)
	tmp, err := os.CreateTemp(c.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}

	if _, err = tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// Clear removes every record. Removal errors are logged and skipped; a
// cache that misses is an acceptable degraded state.
func (c *DiskCache) Clear() error {
	records, err := filepath.Glob(filepath.Join(c.dir, "*"+recordExt))
	if err != nil {
		return err
	}
	for _, path := range records {
		if err := os.Remove(path); err != nil {
			c.logger.Warnf(providers.TypeApp, "Failed to remove cache record %s: %s", path, err)
		}
	}
	return nil
}

// Sweep removes expired records and returns how many were dropped. Run
// periodically by the scheduler so stale records do not pile up between
// requests.
func (c *DiskCache) Sweep() (int, error) {
	records, err := filepath.Glob(filepath.Join(c.dir, "*"+recordExt))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range records {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) < c.ttl {
			continue
		}
		if err := os.Remove(path); err != nil {
			c.logger.Warnf(providers.TypeApp, "Failed to sweep cache record %s: %s", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (c *DiskCache) Close() {
	c.compressor.Close()
}

func (c *DiskCache) recordPath(key string) string {
	return filepath.Join(c.dir, fingerprint(key)+recordExt)
}
