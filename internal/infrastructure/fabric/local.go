package fabric

import (
	"context"
	"sync"
)

// LocalFabric is the in-process Fabric backend for single-instance
// deployments. Membership lives in a mutex-guarded map; delivery happens
// synchronously in the broadcasting goroutine via Subscriber.Deliver,
// which by contract never blocks.
type LocalFabric struct {
	mu     sync.RWMutex
	groups map[string]map[string]Subscriber // group -> subscriber ID -> subscriber
}

// NewLocalFabric constructs an initialized LocalFabric.
func NewLocalFabric() *LocalFabric {
	return &LocalFabric{groups: make(map[string]map[string]Subscriber)}
}

var _ Fabric = (*LocalFabric)(nil)

// Join adds sub to the group, creating the group on first join.
func (f *LocalFabric) Join(_ context.Context, group string, sub Subscriber) error {
	if err := ValidateGroupKey(group); err != nil {
		return err
	}
	f.mu.Lock()
	members := f.groups[group]
	if members == nil {
		members = make(map[string]Subscriber)
		f.groups[group] = members
	}
	members[sub.ID()] = sub
	f.mu.Unlock()
	return nil
}

// Leave removes sub from the group. Removing a non-member is a no-op.
// Empty groups are dropped so the map does not accumulate dead keys.
func (f *LocalFabric) Leave(_ context.Context, group string, sub Subscriber) error {
	if err := ValidateGroupKey(group); err != nil {
		return err
	}
	f.mu.Lock()
	if members := f.groups[group]; members != nil {
		delete(members, sub.ID())
		if len(members) == 0 {
			delete(f.groups, group)
		}
	}
	f.mu.Unlock()
	return nil
}

// Broadcast delivers env to every subscriber currently joined to the group.
func (f *LocalFabric) Broadcast(_ context.Context, group string, env Envelope) error {
	if err := ValidateGroupKey(group); err != nil {
		return err
	}
	f.mu.RLock()
	members := f.groups[group]
	subs := make([]Subscriber, 0, len(members))
	for _, sub := range members {
		subs = append(subs, sub)
	}
	f.mu.RUnlock()

	for _, sub := range subs {
		sub.Deliver(env)
	}
	return nil
}

// Close clears all membership state.
func (f *LocalFabric) Close() error {
	f.mu.Lock()
	f.groups = make(map[string]map[string]Subscriber)
	f.mu.Unlock()
	return nil
}
