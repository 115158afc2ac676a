package storage

import (
	"github.com/dgraph-io/ristretto/v2"
)

// defaultCacheBytes bounds the per-table page cache.
const defaultCacheBytes = 16 << 20

// pageCache is a read-through cache of page images keyed by page id.
// It is strictly a read accelerator: WritePage persists to disk before
// the cache is updated, so a miss (or an admission drop) only costs a
// disk read, never correctness.
type pageCache struct {
	c *ristretto.Cache[uint32, []byte]
}

func newPageCache(maxBytes int64) (*pageCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[uint32, []byte]{
		NumCounters: (maxBytes / PageSize) * 10,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &pageCache{c: c}, nil
}

func (pc *pageCache) get(pageID uint32, p *Page) bool {
	buf, ok := pc.c.Get(pageID)
	if !ok || len(buf) != PageSize {
		return false
	}
	copy(p.data[:], buf)
	return true
}

// put stores a copy of the page image. Wait drains ristretto's set
// buffer so a sequence of puts for the same page id applies in order.
func (pc *pageCache) put(pageID uint32, p *Page) {
	buf := make([]byte, PageSize)
	copy(buf, p.data[:])
	pc.c.Set(pageID, buf, PageSize)
	pc.c.Wait()
}

func (pc *pageCache) close() {
	pc.c.Close()
}
