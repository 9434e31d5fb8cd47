package source

import (
	"context"
	"sync"
)

// FakeClient is an in-memory Client for tests and local development; Publish
// delivers to every live subscription of the channel.
type FakeClient struct {
	mu     sync.Mutex
	data   map[string]string
	subs   map[string][]chan string
	closed bool
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		data: map[string]string{},
		subs: map[string][]chan string{},
	}
}

func (c *FakeClient) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *FakeClient) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *FakeClient) Subscribe(_ context.Context, channel string) (<-chan string, func()) {
	ch := make(chan string, 8)
	c.mu.Lock()
	c.subs[channel] = append(c.subs[channel], ch)
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			live := c.subs[channel][:0]
			for _, sub := range c.subs[channel] {
				if sub != ch {
					live = append(live, sub)
				}
			}
			c.subs[channel] = live
			close(ch)
		})
	}
}

// Publish delivers payload to every subscriber of channel.
func (c *FakeClient) Publish(channel, payload string) {
	c.mu.Lock()
	subs := append([]chan string(nil), c.subs[channel]...)
	c.mu.Unlock()
	for _, ch := range subs {
		ch <- payload
	}
}
