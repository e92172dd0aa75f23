package fabric

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const channelPrefix = "fabric."

// RedisFabric is the network-distributed Fabric backend. Every group maps
// to a Redis pub/sub channel; broadcasts are published to Redis and fan
// back out to the local subscribers of each instance, so delivery
// semantics match LocalFabric across any number of API nodes.
type RedisFabric struct {
	client *redis.Client
	pubsub *redis.PubSub
	log    zerolog.Logger

	mu     sync.Mutex
	groups map[string]map[string]Subscriber
}

// NewRedisFabric connects to Redis at url and starts the receive loop.
// Connectivity is verified with a ping before the fabric is returned.
func NewRedisFabric(ctx context.Context, url string, log zerolog.Logger) (*RedisFabric, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("fabric: parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}

	f := &RedisFabric{
		client: client,
		pubsub: client.Subscribe(context.Background()),
		log:    log,
		groups: make(map[string]map[string]Subscriber),
	}
	go f.receiveLoop()
	return f, nil
}

var _ Fabric = (*RedisFabric)(nil)

// Join adds sub to the local membership of group and subscribes this
// instance to the group's Redis channel on first local join.
func (f *RedisFabric) Join(ctx context.Context, group string, sub Subscriber) error {
	if err := ValidateGroupKey(group); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	members := f.groups[group]
	if members == nil {
		if err := f.pubsub.Subscribe(ctx, channelPrefix+group); err != nil {
			return fmt.Errorf("%w: subscribe %s: %v", ErrUnavailable, group, err)
		}
		members = make(map[string]Subscriber)
		f.groups[group] = members
	}
	members[sub.ID()] = sub
	return nil
}

// Leave removes sub from the local membership of group and unsubscribes
// the Redis channel once no local member remains. Unsubscribe failures are
// logged only; the membership map is already consistent.
func (f *RedisFabric) Leave(ctx context.Context, group string, sub Subscriber) error {
	if err := ValidateGroupKey(group); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	members := f.groups[group]
	if members == nil {
		return nil
	}
	delete(members, sub.ID())
	if len(members) == 0 {
		delete(f.groups, group)
		if err := f.pubsub.Unsubscribe(ctx, channelPrefix+group); err != nil {
			f.log.Warn().Err(err).Str("group", group).Msg("fabric: unsubscribe failed")
		}
	}
	return nil
}

// Broadcast publishes env to the group's Redis channel. Delivery to local
// subscribers happens through the receive loop, the same path remote
// instances take, so an envelope is delivered exactly once per subscriber.
func (f *RedisFabric) Broadcast(ctx context.Context, group string, env Envelope) error {
	if err := ValidateGroupKey(group); err != nil {
		return err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("fabric: encode envelope: %w", err)
	}
	if err := f.client.Publish(ctx, channelPrefix+group, payload).Err(); err != nil {
		return fmt.Errorf("%w: publish %s: %v", ErrUnavailable, group, err)
	}
	return nil
}

// Close tears down the pub/sub subscription and the client connection.
func (f *RedisFabric) Close() error {
	_ = f.pubsub.Close()
	return f.client.Close()
}

func (f *RedisFabric) receiveLoop() {
	for msg := range f.pubsub.Channel() {
		group := strings.TrimPrefix(msg.Channel, channelPrefix)

		var env Envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			f.log.Warn().Err(err).Str("group", group).Msg("fabric: dropping malformed envelope")
			continue
		}

		f.mu.Lock()
		members := f.groups[group]
		subs := make([]Subscriber, 0, len(members))
		for _, sub := range members {
			subs = append(subs, sub)
		}
		f.mu.Unlock()

		for _, sub := range subs {
			sub.Deliver(env)
		}
	}
}
