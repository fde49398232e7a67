// Package rcl is a Go client library binding for a ROS 2 style
// middleware. A Node owns a ParameterStore and forwards entity creation
// and graph introspection to the middleware runtime behind the rmw
// contract. The middleware does the heavy lifting (discovery, QoS
// negotiation, transport, serialization); this package is the
// bookkeeping layer on top of it.
package rcl

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mikaelarguedas/rclgo/rmw"
)

// Publisher sends messages on a single topic.
type Publisher struct {
	node     *Node
	topic    string
	typeName string
	qos      rmw.QoSProfile
	handle   rmw.Publisher
}

// Topic returns the fully expanded topic name.
func (p *Publisher) Topic() string { return p.topic }

// TypeName returns the message type name given at creation.
func (p *Publisher) TypeName() string { return p.typeName }

// GID returns the middleware identifier of the publisher.
func (p *Publisher) GID() rmw.GID { return p.handle.GID() }

// Publish hands the message to the middleware. Fire-and-forget; no
// delivery acknowledgment is awaited.
func (p *Publisher) Publish(msg interface{}) error {
	return errors.Wrapf(p.handle.Publish(msg), "failed to publish on %s", p.topic)
}

// Subscription receives messages on a single topic through the callback
// given at creation.
type Subscription struct {
	node     *Node
	topic    string
	typeName string
	qos      rmw.QoSProfile
	handle   rmw.Subscription
}

// Topic returns the fully expanded topic name.
func (s *Subscription) Topic() string { return s.topic }

// GID returns the middleware identifier of the subscription.
func (s *Subscription) GID() rmw.GID { return s.handle.GID() }

// Client calls a remote service.
type Client struct {
	node     *Node
	service  string
	typeName string
	qos      rmw.QoSProfile
	handle   rmw.Client
}

// Service returns the fully expanded service name.
func (c *Client) Service() string { return c.service }

// Call performs a blocking request/response exchange.
func (c *Client) Call(req interface{}) (interface{}, error) {
	resp, err := c.handle.Call(req)
	return resp, errors.Wrapf(err, "service call to %s failed", c.service)
}

// Service answers calls through the handler given at creation.
type Service struct {
	node     *Node
	service  string
	typeName string
	qos      rmw.QoSProfile
	handle   rmw.Service
}

// Name returns the fully expanded service name.
func (s *Service) Name() string { return s.service }

// Timer invokes a callback at a fixed period on its own goroutine.
type Timer struct {
	period   time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func newTimer(period time.Duration, callback func()) *Timer {
	t := &Timer{
		period: period,
		ticker: time.NewTicker(period),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				callback()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

// Period returns the timer period.
func (t *Timer) Period() time.Duration { return t.period }

// Stop cancels the timer. Safe to call more than once.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
