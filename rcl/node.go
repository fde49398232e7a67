package rcl

import (
	"sync"
	"time"

	modular "github.com/edwinhayes/logrus-modular"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mikaelarguedas/rclgo/rmw"
)

// ParameterEventsTopic is the topic the per-node change events are
// published on, relative to the node namespace.
const ParameterEventsTopic = "parameter_events"

// NodeOptions configures node construction. The zero value is usable;
// DefaultNodeOptions additionally enables the parameter services.
type NodeOptions struct {
	// Namespace the node lives in. Defaults to the root namespace.
	Namespace string
	// CLIArgs are processed for remappings (`from:=to`), parameter
	// overrides (`_name:=value`) and specials (`__name`, `__ns`,
	// `__params`).
	CLIArgs []string
	// InitialParameters are declared and set during construction, after
	// the params file and CLI overrides.
	InitialParameters []Parameter
	// AllowUndeclaredParameters relaxes the declaration checks of the
	// parameter store. Fixed for the node's lifetime.
	AllowUndeclaredParameters bool
	// StartParameterServices exposes the standard per-node parameter
	// services.
	StartParameterServices bool
	// ParamsFile is a YAML params file to seed the store from.
	ParamsFile string
	// Clock used for event stamps. Defaults to the wall clock.
	Clock Clock
	// Logger is the logrus instance backing the node logger.
	Logger *logrus.Logger
}

// DefaultNodeOptions returns the options used when NewNode is given nil.
func DefaultNodeOptions() *NodeOptions {
	return &NodeOptions{
		Namespace:              GlobalNS,
		StartParameterServices: true,
	}
}

// Node is the primary entry point for communication: it owns exactly one
// ParameterStore and forwards entity creation and graph introspection to
// the middleware.
type Node struct {
	name      string
	namespace string
	fqName    string
	handle    rmw.NodeHandle
	logger    *modular.ModuleLogger
	clock     Clock
	params    *ParameterStore

	remappings NameMap
	restArgs   []string

	mu            sync.Mutex
	destroyed     bool
	paramEventPub *Publisher
	paramServices []*Service
	publishers    []*Publisher
	subscriptions []*Subscription
	clients       []*Client
	services      []*Service
	timers        []*Timer
}

// NewNode creates a node on the given middleware. nil options are
// replaced with DefaultNodeOptions.
func NewNode(middleware rmw.Middleware, name string, opts *NodeOptions) (*Node, error) {
	if middleware == nil {
		return nil, errors.New("middleware must not be nil")
	}
	if opts == nil {
		opts = DefaultNodeOptions()
	}

	remappings, cliParams, specials, rest := processArguments(opts.CLIArgs)

	if value, ok := specials["__name"]; ok {
		name = value
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = GlobalNS
	}
	if value, ok := specials["__ns"]; ok {
		namespace = value
	}

	if err := ValidateNodeName(name); err != nil {
		return nil, err
	}
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}

	handle, err := middleware.CreateNode(name, namespace)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create node %s", name)
	}

	clock := opts.Clock
	if clock == nil {
		clock = WallClock{}
	}

	node := &Node{
		name:       name,
		namespace:  namespace,
		fqName:     qualifiedName(namespace, name),
		handle:     handle,
		logger:     newModuleLogger(opts.Logger),
		clock:      clock,
		remappings: remappings,
		restArgs:   rest,
	}

	eventPub, err := node.CreatePublisher(ParameterEventsTopic,
		"rcl_interfaces/msg/ParameterEvent", rmw.ProfileParameterEvents)
	if err != nil {
		handle.Destroy()
		return nil, err
	}
	node.paramEventPub = eventPub
	node.params = NewParameterStore(node.fqName, opts.AllowUndeclaredParameters, clock, eventPub)

	if err := node.seedParameters(opts, cliParams, specials); err != nil {
		node.Destroy()
		return nil, err
	}

	if opts.StartParameterServices {
		if err := node.startParameterServices(); err != nil {
			node.Destroy()
			return nil, err
		}
	}

	logger := *node.logger
	logger.Debugf("started node %s", node.fqName)
	return node, nil
}

// seedParameters merges params-file, CLI and option-supplied parameters
// (later sources win by name), declares them and applies them through a
// single atomic set so one event is published for the whole batch.
func (node *Node) seedParameters(opts *NodeOptions, cliParams []Parameter, specials NameMap) error {
	paramsFile := opts.ParamsFile
	if value, ok := specials["__params"]; ok {
		paramsFile = value
	}

	var initial []Parameter
	if paramsFile != "" {
		fileParams, err := LoadParametersFile(paramsFile, node.fqName)
		if err != nil {
			return err
		}
		initial = append(initial, fileParams...)
	}
	initial = append(initial, cliParams...)
	initial = append(initial, opts.InitialParameters...)

	merged := make([]Parameter, 0, len(initial))
	index := make(map[string]int, len(initial))
	for _, p := range initial {
		if i, ok := index[p.Name]; ok {
			merged[i] = p
			continue
		}
		index[p.Name] = len(merged)
		merged = append(merged, p)
	}
	if len(merged) == 0 {
		return nil
	}

	declarations := make([]ParameterDeclaration, 0, len(merged))
	for _, p := range merged {
		declarations = append(declarations, ParameterDeclaration{
			Name:       p.Name,
			Value:      p.Value,
			Descriptor: p.Descriptor,
		})
	}
	if _, err := node.params.Declare("", declarations); err != nil {
		return err
	}
	_, err := node.params.SetAtomically(merged)
	return err
}

// Name returns the node name.
func (node *Node) Name() string { return node.name }

// Namespace returns the node namespace.
func (node *Node) Namespace() string { return node.namespace }

// FullyQualifiedName returns the namespace-qualified node name.
func (node *Node) FullyQualifiedName() string { return node.fqName }

// Logger returns the node's module logger.
func (node *Node) Logger() *modular.ModuleLogger { return node.logger }

// Clock returns the clock the node and its parameter store stamp with.
func (node *Node) Clock() Clock { return node.clock }

// NonMiddlewareArgs returns the CLI arguments that were not consumed as
// remappings, parameter overrides or specials.
func (node *Node) NonMiddlewareArgs() []string { return node.restArgs }

// Parameters returns the node's parameter store.
func (node *Node) Parameters() *ParameterStore { return node.params }

// resolveName applies remapping rules, expands the name against the node
// name and namespace and validates the result.
func (node *Node) resolveName(name string) (string, error) {
	if to, ok := node.remappings[name]; ok {
		name = to
	}
	expanded := expandTopicName(name, node.name, node.namespace)
	if err := ValidateFullTopicName(expanded); err != nil {
		return "", err
	}
	return expanded, nil
}

// CreatePublisher creates a publisher on the given topic. Relative and
// private names are expanded against the node name and namespace.
func (node *Node) CreatePublisher(topic string, typeName string, qos rmw.QoSProfile) (*Publisher, error) {
	name, err := node.resolveName(topic)
	if err != nil {
		return nil, err
	}
	handle, err := node.handle.CreatePublisher(name, typeName, qos)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create publisher on %s", name)
	}
	pub := &Publisher{node: node, topic: name, typeName: typeName, qos: qos, handle: handle}
	node.mu.Lock()
	node.publishers = append(node.publishers, pub)
	node.mu.Unlock()
	return pub, nil
}

// CreateSubscription creates a subscription on the given topic. The
// callback runs on a middleware goroutine.
func (node *Node) CreateSubscription(topic string, typeName string, qos rmw.QoSProfile, callback func(msg interface{})) (*Subscription, error) {
	name, err := node.resolveName(topic)
	if err != nil {
		return nil, err
	}
	handle, err := node.handle.CreateSubscription(name, typeName, qos, callback)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create subscription on %s", name)
	}
	sub := &Subscription{node: node, topic: name, typeName: typeName, qos: qos, handle: handle}
	node.mu.Lock()
	node.subscriptions = append(node.subscriptions, sub)
	node.mu.Unlock()
	return sub, nil
}

// CreateClient creates a client for the given service.
func (node *Node) CreateClient(service string, typeName string, qos rmw.QoSProfile) (*Client, error) {
	name, err := node.resolveName(service)
	if err != nil {
		return nil, err
	}
	handle, err := node.handle.CreateClient(name, typeName, qos)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create client for %s", name)
	}
	client := &Client{node: node, service: name, typeName: typeName, qos: qos, handle: handle}
	node.mu.Lock()
	node.clients = append(node.clients, client)
	node.mu.Unlock()
	return client, nil
}

// CreateService creates a server for the given service.
func (node *Node) CreateService(service string, typeName string, qos rmw.QoSProfile, handler func(req interface{}) (interface{}, error)) (*Service, error) {
	name, err := node.resolveName(service)
	if err != nil {
		return nil, err
	}
	handle, err := node.handle.CreateService(name, typeName, qos, handler)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create service %s", name)
	}
	srv := &Service{node: node, service: name, typeName: typeName, qos: qos, handle: handle}
	node.mu.Lock()
	node.services = append(node.services, srv)
	node.mu.Unlock()
	return srv, nil
}

// CreateTimer starts a timer calling callback every period.
func (node *Node) CreateTimer(period time.Duration, callback func()) *Timer {
	timer := newTimer(period, callback)
	node.mu.Lock()
	node.timers = append(node.timers, timer)
	node.mu.Unlock()
	return timer
}

// DestroyPublisher shuts a publisher down and drops it from the node.
func (node *Node) DestroyPublisher(pub *Publisher) error {
	node.mu.Lock()
	for i, p := range node.publishers {
		if p == pub {
			node.publishers = append(node.publishers[:i], node.publishers[i+1:]...)
			break
		}
	}
	node.mu.Unlock()
	return pub.handle.Close()
}

// DestroySubscription shuts a subscription down and drops it from the node.
func (node *Node) DestroySubscription(sub *Subscription) error {
	node.mu.Lock()
	for i, s := range node.subscriptions {
		if s == sub {
			node.subscriptions = append(node.subscriptions[:i], node.subscriptions[i+1:]...)
			break
		}
	}
	node.mu.Unlock()
	return sub.handle.Close()
}

// DestroyClient shuts a client down and drops it from the node.
func (node *Node) DestroyClient(client *Client) error {
	node.mu.Lock()
	for i, c := range node.clients {
		if c == client {
			node.clients = append(node.clients[:i], node.clients[i+1:]...)
			break
		}
	}
	node.mu.Unlock()
	return client.handle.Close()
}

// DestroyService shuts a service down and drops it from the node.
func (node *Node) DestroyService(srv *Service) error {
	node.mu.Lock()
	for i, s := range node.services {
		if s == srv {
			node.services = append(node.services[:i], node.services[i+1:]...)
			break
		}
	}
	node.mu.Unlock()
	return srv.handle.Close()
}

// DestroyTimer stops a timer and drops it from the node.
func (node *Node) DestroyTimer(timer *Timer) {
	node.mu.Lock()
	for i, t := range node.timers {
		if t == timer {
			node.timers = append(node.timers[:i], node.timers[i+1:]...)
			break
		}
	}
	node.mu.Unlock()
	timer.Stop()
}

// Destroy tears the node down: the parameter event publisher is released
// first, then every remaining entity, then the middleware handle. Safe to
// call more than once.
func (node *Node) Destroy() error {
	node.mu.Lock()
	if node.destroyed {
		node.mu.Unlock()
		return nil
	}
	node.destroyed = true
	publishers := node.publishers
	subscriptions := node.subscriptions
	clients := node.clients
	services := node.services
	timers := node.timers
	node.publishers = nil
	node.subscriptions = nil
	node.clients = nil
	node.services = nil
	node.timers = nil
	node.paramEventPub = nil
	node.paramServices = nil
	node.mu.Unlock()

	logger := *node.logger
	logger.Debugf("destroying node %s", node.fqName)
	for _, t := range timers {
		t.Stop()
	}
	for _, p := range publishers {
		p.handle.Close()
	}
	for _, s := range subscriptions {
		s.handle.Close()
	}
	for _, c := range clients {
		c.handle.Close()
	}
	for _, s := range services {
		s.handle.Close()
	}
	return errors.Wrapf(node.handle.Destroy(), "failed to destroy node %s", node.fqName)
}

// TopicNamesAndTypes returns the discovered topics and their types.
func (node *Node) TopicNamesAndTypes() (map[string][]string, error) {
	result, err := node.handle.TopicNamesAndTypes()
	return result, errors.Wrap(err, "failed to query topic names and types")
}

// ServiceNamesAndTypes returns the discovered services and their types.
func (node *Node) ServiceNamesAndTypes() (map[string][]string, error) {
	result, err := node.handle.ServiceNamesAndTypes()
	return result, errors.Wrap(err, "failed to query service names and types")
}

// NodeNamesAndNamespaces returns the discovered nodes as (name,
// namespace) pairs.
func (node *Node) NodeNamesAndNamespaces() ([][2]string, error) {
	result, err := node.handle.NodeNamesAndNamespaces()
	return result, errors.Wrap(err, "failed to query node names")
}

// NodeNames returns the discovered node names.
func (node *Node) NodeNames() ([]string, error) {
	pairs, err := node.NodeNamesAndNamespaces()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		names = append(names, pair[0])
	}
	return names, nil
}

// CountPublishers returns the number of publishers on a topic. The name
// is expanded but not remapped.
func (node *Node) CountPublishers(topic string) (int, error) {
	name := expandTopicName(topic, node.name, node.namespace)
	if err := ValidateFullTopicName(name); err != nil {
		return 0, err
	}
	count, err := node.handle.CountPublishers(name)
	return count, errors.Wrapf(err, "failed to count publishers on %s", name)
}

// CountSubscribers returns the number of subscribers on a topic. The name
// is expanded but not remapped.
func (node *Node) CountSubscribers(topic string) (int, error) {
	name := expandTopicName(topic, node.name, node.namespace)
	if err := ValidateFullTopicName(name); err != nil {
		return 0, err
	}
	count, err := node.handle.CountSubscribers(name)
	return count, errors.Wrapf(err, "failed to count subscribers on %s", name)
}

// DeclareParameter declares a single parameter and returns its post-set
// value.
func (node *Node) DeclareParameter(name string, value ParameterValue, descriptor ParameterDescriptor) (Parameter, error) {
	declared, err := node.params.Declare("", []ParameterDeclaration{
		{Name: name, Value: value, Descriptor: descriptor},
	})
	if err != nil {
		return Parameter{}, err
	}
	return declared[0], nil
}

// DeclareParameters declares a list of parameters under a namespace
// prefix.
func (node *Node) DeclareParameters(namespace string, declarations []ParameterDeclaration) ([]Parameter, error) {
	return node.params.Declare(namespace, declarations)
}

// UndeclareParameter removes a previously declared parameter.
func (node *Node) UndeclareParameter(name string) error {
	return node.params.Undeclare(name)
}

// HasParameter reports whether the parameter is declared.
func (node *Node) HasParameter(name string) bool {
	return node.params.Has(name)
}

// GetParameter returns a parameter by name.
func (node *Node) GetParameter(name string) (Parameter, error) {
	return node.params.Get(name)
}

// GetParameters returns a list of parameters.
func (node *Node) GetParameters(names []string) ([]Parameter, error) {
	return node.params.GetMany(names)
}

// GetParameterOr returns the parameter or the alternative value.
func (node *Node) GetParameterOr(name string, alternative *Parameter) Parameter {
	return node.params.GetOr(name, alternative)
}

// SetParameters applies the parameters one atomic set at a time.
func (node *Node) SetParameters(parameters []Parameter) ([]SetParametersResult, error) {
	return node.params.Set(parameters)
}

// SetParametersAtomically applies the batch as one indivisible unit.
func (node *Node) SetParametersAtomically(parameters []Parameter) (SetParametersResult, error) {
	return node.params.SetAtomically(parameters)
}

// DescribeParameter returns the descriptor of a parameter.
func (node *Node) DescribeParameter(name string) (ParameterDescriptor, error) {
	return node.params.Describe(name)
}

// DescribeParameters returns the descriptors of a list of parameters.
func (node *Node) DescribeParameters(names []string) ([]ParameterDescriptor, error) {
	return node.params.DescribeMany(names)
}

// SetParametersCallback registers the validation callback; the last
// registration wins.
func (node *Node) SetParametersCallback(callback SetParametersCallback) {
	node.params.SetCallback(callback)
}
