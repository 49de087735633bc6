package xmutex

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// closedHandle 是新建 lockStore 的初始 tail：没有前驱时无需等待。
var closedHandle = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// lockStore 记录一个 key 的排队状态。
// 仅当 pending > 0 时存在于表中。
type lockStore struct {
	// pending 排队中与执行中的请求数
	pending int
	// tail 最近一次入队请求的完成句柄，持有阶段结束后关闭
	tail chan struct{}
}

type shard struct {
	mu     sync.Mutex
	stores map[string]*lockStore
}

// table 是按 key 分片的 lockStore 表。
// 每个分片一把互斥锁，acquireSlot/releaseSlot 的读改写在分片锁内完成。
type table struct {
	shards []shard
	mask   uint64
	count  atomic.Int64
}

// newTable 创建表。shardCount 已由调用方校验为 2 的幂。
func newTable(shardCount int) *table {
	shards := make([]shard, shardCount)
	for i := range shards {
		shards[i].stores = make(map[string]*lockStore)
	}
	return &table{
		shards: shards,
		mask:   uint64(shardCount - 1),
	}
}

func (t *table) shard(key string) *shard {
	return &t.shards[xxhash.Sum64String(key)&t.mask]
}

// isLocked 报告 key 是否有排队或执行中的请求。
func (t *table) isLocked(key string) bool {
	s := t.shard(key)
	s.mu.Lock()
	_, ok := s.stores[key]
	s.mu.Unlock()
	return ok
}

// acquireSlot 将一个新请求追加到 key 的链尾。
// 返回前驱的完成句柄 prev 与本请求的完成句柄 done；调用方在持有阶段结束后
// 必须先 releaseSlot 再关闭 done。
func (t *table) acquireSlot(key string) (prev, done chan struct{}) {
	s := t.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stores[key]
	if !ok {
		st = &lockStore{tail: closedHandle}
		s.stores[key] = st
		t.count.Add(1)
	}
	st.pending++
	prev = st.tail
	done = make(chan struct{})
	st.tail = done
	return prev, done
}

// releaseSlot 递减 pending，归零时删除 lockStore。
// 每次 acquireSlot 恰好对应一次 releaseSlot。
func (t *table) releaseSlot(key string) {
	s := t.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stores[key]
	if !ok {
		return
	}
	st.pending--
	if st.pending <= 0 {
		delete(s.stores, key)
		t.count.Add(-1)
	}
}

// pending 返回 key 当前的排队数，主要用于测试与调试。
func (t *table) pending(key string) int {
	s := t.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stores[key]; ok {
		return st.pending
	}
	return 0
}

func (t *table) len() int {
	return int(max(t.count.Load(), 0))
}

// keys 返回快照，不同分片间不保证一致。
func (t *table) keys() []string {
	keys := make([]string, 0, t.len())
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for k := range s.stores {
			keys = append(keys, k)
		}
		s.mu.Unlock()
	}
	return keys
}
