package docstore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ChannelPrefix prefixes the redis channel of every collection.
const ChannelPrefix = "docstore:"

// Notifier fans out "collection changed" signals between processes.
type Notifier interface {
	Publish(ctx context.Context, collection string) error
	Subscribe(ctx context.Context, q Query) (Changes, error)
}

// Changes signals that a watched collection changed. Bursts coalesce into a
// single pending signal.
type Changes interface {
	C() <-chan struct{}
	Close() error
}

// RedisNotifier publishes collection changes on redis pub/sub channels.
type RedisNotifier struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRedisNotifier(client *redis.Client, log *logrus.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, log: log}
}

func (n *RedisNotifier) Publish(ctx context.Context, collection string) error {
	return n.client.Publish(ctx, ChannelPrefix+collection, collection).Err()
}

func (n *RedisNotifier) Subscribe(ctx context.Context, q Query) (Changes, error) {
	var pubsub *redis.PubSub
	if q.Group {
		pubsub = n.client.PSubscribe(ctx, ChannelPrefix+"*/"+q.Collection)
	} else {
		pubsub = n.client.Subscribe(ctx, ChannelPrefix+q.Collection)
	}

	// Wait for confirmation that subscription is created
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	c := &redisChanges{
		pubsub: pubsub,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	c.wg.Add(1)
	go c.forward()

	n.log.WithField("query", q.String()).Debug("Subscribed to document changes")
	return c, nil
}

type redisChanges struct {
	pubsub  *redis.PubSub
	signal  chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	stopped atomic.Bool
}

func (c *redisChanges) forward() {
	defer c.wg.Done()
	defer close(c.signal)

	messages := c.pubsub.Channel()
	for {
		select {
		case <-c.done:
			return
		case _, ok := <-messages:
			if !ok {
				return
			}
			select {
			case c.signal <- struct{}{}:
			default:
			}
		}
	}
}

func (c *redisChanges) C() <-chan struct{} {
	return c.signal
}

// Close is safe to call multiple times.
func (c *redisChanges) Close() error {
	if !c.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)
	err := c.pubsub.Close()
	c.wg.Wait()
	return err
}
