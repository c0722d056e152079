// Package cmap provides a sharded concurrent map.
//
// Keys are spread over a power-of-two number of shards by a caller-supplied
// hash function; every shard is guarded by its own RWMutex. The merge planner
// uses it to collect classification results from many workers at once.
//
// Usage:
//
//	m := cmap.New[domain.Pubkey, *domain.Account](hashPubkey)
//	m.Set(addr, account)
//	val, ok := m.Get(addr)
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete) use Lock.
package cmap
