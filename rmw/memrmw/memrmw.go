// Package memrmw is an in-process implementation of the rmw contract.
// Messages are handed to subscription callbacks on the publishing
// goroutine and service calls invoke the handler directly. There is no
// wire protocol, no discovery and no QoS enforcement; profiles are
// recorded but otherwise ignored. It exists so the client library can be
// exercised without a DDS-backed middleware.
package memrmw

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/mikaelarguedas/rclgo/rmw"
)

// Graph is a standalone middleware instance. Nodes created from the same
// Graph see each other's topics and services.
type Graph struct {
	mu       sync.Mutex
	nodes    map[*node]struct{}
	topics   map[string]*topic
	services map[string]*service
}

// New returns an empty middleware graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[*node]struct{}),
		topics:   make(map[string]*topic),
		services: make(map[string]*service),
	}
}

type topic struct {
	typeName string
	pubs     map[rmw.GID]*publisher
	subs     map[rmw.GID]*subscription
}

func (g *Graph) topicFor(name string, typeName string) *topic {
	t, ok := g.topics[name]
	if !ok {
		t = &topic{
			typeName: typeName,
			pubs:     make(map[rmw.GID]*publisher),
			subs:     make(map[rmw.GID]*subscription),
		}
		g.topics[name] = t
	}
	return t
}

// CreateNode implements rmw.Middleware.
func (g *Graph) CreateNode(name string, namespace string) (rmw.NodeHandle, error) {
	if name == "" {
		return nil, errors.New("memrmw: node name must not be empty")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	n := &node{graph: g, name: name, namespace: namespace}
	g.nodes[n] = struct{}{}
	return n, nil
}

type node struct {
	graph     *Graph
	name      string
	namespace string
	destroyed bool
	entities  []interface{ Close() error }
}

func (n *node) CreatePublisher(topicName string, typeName string, qos rmw.QoSProfile) (rmw.Publisher, error) {
	g := n.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if n.destroyed {
		return nil, errors.Errorf("memrmw: node %s destroyed", n.name)
	}
	t := g.topicFor(topicName, typeName)
	p := &publisher{graph: g, topic: t, topicName: topicName, gid: rmw.NewGID(), qos: qos}
	t.pubs[p.gid] = p
	n.entities = append(n.entities, p)
	return p, nil
}

func (n *node) CreateSubscription(topicName string, typeName string, qos rmw.QoSProfile, callback func(msg interface{})) (rmw.Subscription, error) {
	g := n.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if n.destroyed {
		return nil, errors.Errorf("memrmw: node %s destroyed", n.name)
	}
	if callback == nil {
		return nil, errors.New("memrmw: subscription callback must not be nil")
	}
	t := g.topicFor(topicName, typeName)
	s := &subscription{graph: g, topic: t, topicName: topicName, gid: rmw.NewGID(), qos: qos, callback: callback}
	t.subs[s.gid] = s
	n.entities = append(n.entities, s)
	return s, nil
}

func (n *node) CreateClient(serviceName string, typeName string, qos rmw.QoSProfile) (rmw.Client, error) {
	g := n.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if n.destroyed {
		return nil, errors.Errorf("memrmw: node %s destroyed", n.name)
	}
	c := &client{graph: g, serviceName: serviceName, gid: rmw.NewGID(), qos: qos}
	n.entities = append(n.entities, c)
	return c, nil
}

func (n *node) CreateService(serviceName string, typeName string, qos rmw.QoSProfile, handler func(req interface{}) (interface{}, error)) (rmw.Service, error) {
	g := n.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if n.destroyed {
		return nil, errors.Errorf("memrmw: node %s destroyed", n.name)
	}
	if handler == nil {
		return nil, errors.New("memrmw: service handler must not be nil")
	}
	if _, taken := g.services[serviceName]; taken {
		return nil, errors.Errorf("memrmw: service %s already exists", serviceName)
	}
	s := &service{graph: g, name: serviceName, typeName: typeName, gid: rmw.NewGID(), handler: handler}
	g.services[serviceName] = s
	n.entities = append(n.entities, s)
	return s, nil
}

func (n *node) TopicNamesAndTypes() (map[string][]string, error) {
	g := n.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make(map[string][]string)
	for name, t := range g.topics {
		if len(t.pubs) == 0 && len(t.subs) == 0 {
			continue
		}
		result[name] = []string{t.typeName}
	}
	return result, nil
}

func (n *node) ServiceNamesAndTypes() (map[string][]string, error) {
	g := n.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make(map[string][]string)
	for name, s := range g.services {
		result[name] = []string{s.typeName}
	}
	return result, nil
}

func (n *node) NodeNamesAndNamespaces() ([][2]string, error) {
	g := n.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	var result [][2]string
	for other := range g.nodes {
		result = append(result, [2]string{other.name, other.namespace})
	}
	return result, nil
}

func (n *node) CountPublishers(topicName string) (int, error) {
	g := n.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.topics[topicName]; ok {
		return len(t.pubs), nil
	}
	return 0, nil
}

func (n *node) CountSubscribers(topicName string) (int, error) {
	g := n.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.topics[topicName]; ok {
		return len(t.subs), nil
	}
	return 0, nil
}

func (n *node) Destroy() error {
	g := n.graph
	g.mu.Lock()
	entities := n.entities
	n.entities = nil
	n.destroyed = true
	delete(g.nodes, n)
	g.mu.Unlock()
	for _, e := range entities {
		e.Close()
	}
	return nil
}

type publisher struct {
	graph     *Graph
	topic     *topic
	topicName string
	gid       rmw.GID
	qos       rmw.QoSProfile
	closed    bool
}

func (p *publisher) Publish(msg interface{}) error {
	g := p.graph
	g.mu.Lock()
	if p.closed {
		g.mu.Unlock()
		return errors.Errorf("memrmw: publisher on %s closed", p.topicName)
	}
	subs := make([]*subscription, 0, len(p.topic.subs))
	for _, s := range p.topic.subs {
		subs = append(subs, s)
	}
	g.mu.Unlock()

	for _, s := range subs {
		s.callback(msg)
	}
	return nil
}

func (p *publisher) GID() rmw.GID { return p.gid }

func (p *publisher) Close() error {
	g := p.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	p.closed = true
	delete(p.topic.pubs, p.gid)
	return nil
}

type subscription struct {
	graph     *Graph
	topic     *topic
	topicName string
	gid       rmw.GID
	qos       rmw.QoSProfile
	callback  func(msg interface{})
}

func (s *subscription) Topic() string { return s.topicName }
func (s *subscription) GID() rmw.GID  { return s.gid }

func (s *subscription) Close() error {
	g := s.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(s.topic.subs, s.gid)
	return nil
}

type client struct {
	graph       *Graph
	serviceName string
	gid         rmw.GID
	qos         rmw.QoSProfile
}

func (c *client) Call(req interface{}) (interface{}, error) {
	g := c.graph
	g.mu.Lock()
	s, ok := g.services[c.serviceName]
	g.mu.Unlock()
	if !ok {
		return nil, errors.Errorf("memrmw: no server for service %s", c.serviceName)
	}
	return s.handler(req)
}

func (c *client) GID() rmw.GID { return c.gid }
func (c *client) Close() error { return nil }

type service struct {
	graph    *Graph
	name     string
	typeName string
	gid      rmw.GID
	handler  func(req interface{}) (interface{}, error)
}

func (s *service) Name() string { return s.name }
func (s *service) GID() rmw.GID { return s.gid }

func (s *service) Close() error {
	g := s.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.services[s.name] == s {
		delete(g.services, s.name)
	}
	return nil
}
