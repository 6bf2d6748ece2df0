package token

import (
	"context"
	"sync"
	"time"
)

// MemoryDenylist はプロセス内のdeny-list実装。
// 各エントリが期限を持ち、期限切れはPurgeや参照時に消えるので無限には育たない。
// プロセスをまたいだ共有はできないので、複数台構成ではRedisDenylistを使う。
type MemoryDenylist struct {
	mu      sync.RWMutex
	entries map[string]time.Time // token → 失効扱いをやめてよい時刻
	clock   Clock
}

// DI
func NewMemoryDenylist(clock Clock) *MemoryDenylist {
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		clock:   clock,
	}
}

func (d *MemoryDenylist) Add(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	expireAt := d.clock.Now().Add(ttl)

	// 既にもっと長い期限で載っているなら縮めない（revokeは冪等）
	if cur, ok := d.entries[token]; ok && cur.After(expireAt) {
		return nil
	}
	d.entries[token] = expireAt

	return nil
}

func (d *MemoryDenylist) Contains(_ context.Context, token string) (bool, error) {
	d.mu.RLock()
	expireAt, ok := d.entries[token]
	d.mu.RUnlock()

	if !ok {
		return false, nil
	}

	// 期限が過ぎた分は失効扱いをやめる（tokenそのものも期限切れのはず）
	if !d.clock.Now().Before(expireAt) {
		d.mu.Lock()
		delete(d.entries, token)
		d.mu.Unlock()
		return false, nil
	}

	return true, nil
}

// Purge は期限切れエントリを掃除する。消した件数を返す（cronから呼ぶ）。
func (d *MemoryDenylist) Purge() int {
	now := d.clock.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for token, expireAt := range d.entries {
		if !now.Before(expireAt) {
			delete(d.entries, token)
			removed++
		}
	}

	return removed
}

// Len は現在のエントリ数（テスト用）。
func (d *MemoryDenylist) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
