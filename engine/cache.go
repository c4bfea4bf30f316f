package engine

import (
	"context"
	"sync"

	"github.com/hatlonely/metax/meta"
)

type loadFunc func(ctx context.Context) ([]*meta.EntityMeta, error)

// flight 一次正在执行的加载，等待者通过 done 取结果
type flight struct {
	done     chan struct{}
	entities []*meta.EntityMeta
	err      error
}

// entityCache 实体元数据缓存，三个状态：空、加载中、已加载
//
// 首次加载会触发 introspect-and-persist，同一引擎实例同一时刻最多执行一次；
// 加载期间到达的调用方挂在当次加载上，共享它的结果，避免并发首访
// 给同一张表写入重复的元数据
type entityCache struct {
	mu       sync.Mutex
	loaded   bool
	entities []*meta.EntityMeta
	inflight *flight
	gen      uint64
}

func (c *entityCache) get(ctx context.Context, load loadFunc) ([]*meta.EntityMeta, error) {
	c.mu.Lock()
	if c.loaded {
		entities := c.entities
		c.mu.Unlock()
		return entities, nil
	}
	if c.inflight != nil {
		f := c.inflight
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.entities, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	c.inflight = f
	gen := c.gen
	c.mu.Unlock()

	f.entities, f.err = load(ctx)

	c.mu.Lock()
	if c.inflight == f {
		c.inflight = nil
	}
	// 加载失败不缓存；加载期间发生过失效的过期结果也不缓存
	if f.err == nil && c.gen == gen {
		c.loaded = true
		c.entities = f.entities
	}
	c.mu.Unlock()
	close(f.done)

	return f.entities, f.err
}

// invalidate 清空缓存，下一次访问重新加载；
// 正在执行的加载被标记为过期，它的结果只交给已经挂起的等待者
func (c *entityCache) invalidate() {
	c.mu.Lock()
	c.gen++
	c.loaded = false
	c.entities = nil
	c.inflight = nil
	c.mu.Unlock()
}
