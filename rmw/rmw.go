// Package rmw defines the contract between the rcl client library and the
// underlying middleware runtime. The real implementation wraps a DDS vendor
// and lives outside this repository; memrmw provides an in-process
// implementation for tests and examples.
package rmw

import (
	"github.com/google/uuid"
)

// GID is the globally unique identifier the middleware assigns to every
// entity it creates.
type GID [16]byte

// NewGID returns a fresh random GID.
func NewGID() GID {
	return GID(uuid.New())
}

func (g GID) String() string {
	return uuid.UUID(g).String()
}

// Middleware is the entry point into a middleware runtime.
type Middleware interface {
	// CreateNode registers a node with the middleware graph and returns
	// a handle for creating entities attached to it.
	CreateNode(name string, namespace string) (NodeHandle, error)
}

// NodeHandle is the middleware-side representation of a node. All names
// passed to entity creation methods are fully expanded by the caller.
type NodeHandle interface {
	CreatePublisher(topic string, typeName string, qos QoSProfile) (Publisher, error)
	CreateSubscription(topic string, typeName string, qos QoSProfile, callback func(msg interface{})) (Subscription, error)
	CreateClient(service string, typeName string, qos QoSProfile) (Client, error)
	CreateService(service string, typeName string, qos QoSProfile, handler func(req interface{}) (interface{}, error)) (Service, error)

	TopicNamesAndTypes() (map[string][]string, error)
	ServiceNamesAndTypes() (map[string][]string, error)
	NodeNamesAndNamespaces() ([][2]string, error)
	CountPublishers(topic string) (int, error)
	CountSubscribers(topic string) (int, error)

	Destroy() error
}

// Publisher sends messages on a single topic. Serialization is the
// middleware's concern; Publish takes the in-memory message as-is.
type Publisher interface {
	Publish(msg interface{}) error
	GID() GID
	Close() error
}

// Subscription delivers messages on a single topic through the callback
// passed at creation time.
type Subscription interface {
	Topic() string
	GID() GID
	Close() error
}

// Client performs request/response calls against a remote service.
type Client interface {
	Call(req interface{}) (interface{}, error)
	GID() GID
	Close() error
}

// Service answers request/response calls through the handler passed at
// creation time.
type Service interface {
	Name() string
	GID() GID
	Close() error
}
