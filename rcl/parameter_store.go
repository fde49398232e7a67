package rcl

import (
	"sort"
	"sync"

	modular "github.com/edwinhayes/logrus-modular"
)

// ParameterEventPublisher receives the change event emitted after every
// successful atomic set. The publish is fire-and-forget; the store never
// waits for delivery. rmw.Publisher satisfies this interface.
type ParameterEventPublisher interface {
	Publish(msg interface{}) error
}

// ParameterStore holds the declared parameters of a single node. A store
// has no lifetime of its own; it is created with the node and discarded
// with it. All operations are guarded by one mutex so a multi-threaded
// executor never observes a torn view of the map.
type ParameterStore struct {
	mu              sync.Mutex
	parameters      map[string]Parameter
	allowUndeclared bool
	callback        SetParametersCallback
	node            string
	clock           Clock
	events          ParameterEventPublisher
	logger          *modular.ModuleLogger
}

// NewParameterStore creates a store for the node with the given fully
// qualified name. allowUndeclared is fixed for the store's lifetime.
// events may be nil, in which case no change events are emitted.
func NewParameterStore(node string, allowUndeclared bool, clock Clock, events ParameterEventPublisher) *ParameterStore {
	if clock == nil {
		clock = WallClock{}
	}
	return &ParameterStore{
		parameters:      make(map[string]Parameter),
		allowUndeclared: allowUndeclared,
		node:            node,
		clock:           clock,
		events:          events,
		logger:          newModuleLogger(nil),
	}
}

// SetCallback registers the validation callback consulted before any set
// operation is applied. Registering replaces any previous callback; nil
// clears it.
func (st *ParameterStore) SetCallback(callback SetParametersCallback) {
	st.mu.Lock()
	st.callback = callback
	st.mu.Unlock()
}

// Declare registers the given parameters, each name prefixed with
// namespace. Every name is validated and checked against the store before
// anything is applied; after that the parameters are set one at a time
// through the unconditional atomic-set path, so a callback rejection
// mid-list leaves the earlier parameters declared. Returns the post-set
// value for each declared name.
func (st *ParameterStore) Declare(namespace string, declarations []ParameterDeclaration) ([]Parameter, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	candidates := make([]Parameter, 0, len(declarations))
	for _, decl := range declarations {
		fullName := namespace + decl.Name
		if err := ValidateParameterName(fullName); err != nil {
			return nil, err
		}
		descriptor := decl.Descriptor
		descriptor.Name = fullName
		descriptor.Type = decl.Value.Type
		candidates = append(candidates, Parameter{Name: fullName, Value: decl.Value, Descriptor: descriptor})
	}

	var alreadyDeclared []string
	for _, p := range candidates {
		if _, ok := st.parameters[p.Name]; ok {
			alreadyDeclared = append(alreadyDeclared, p.Name)
		}
	}
	if len(alreadyDeclared) > 0 {
		return nil, &AlreadyDeclaredError{Names: alreadyDeclared}
	}

	for _, p := range candidates {
		result := st.setAtomically([]Parameter{p})
		if !result.Successful {
			return nil, &RejectedByCallbackError{Name: p.Name, Reason: result.Reason}
		}
	}

	// Re-read so callback-driven alterations round-trip into the result.
	declared := make([]Parameter, 0, len(candidates))
	for _, p := range candidates {
		got, err := st.get(p.Name)
		if err != nil {
			return nil, err
		}
		declared = append(declared, got)
	}
	return declared, nil
}

// Undeclare removes a previously declared parameter. The validation
// callback is not consulted and no change event is published.
func (st *ParameterStore) Undeclare(name string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	p, ok := st.parameters[name]
	if !ok {
		return &NotDeclaredError{Names: []string{name}}
	}
	if p.Descriptor.ReadOnly {
		return &ImmutableError{Name: name}
	}
	delete(st.parameters, name)
	return nil
}

// Has reports whether the parameter is declared.
func (st *ParameterStore) Has(name string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.parameters[name]
	return ok
}

// Get returns the stored parameter. When the name is unknown and
// undeclared parameters are allowed, a synthetic NOT_SET parameter is
// returned instead.
func (st *ParameterStore) Get(name string) (Parameter, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.get(name)
}

func (st *ParameterStore) get(name string) (Parameter, error) {
	if p, ok := st.parameters[name]; ok {
		return p, nil
	}
	if st.allowUndeclared {
		return Parameter{Name: name, Value: NotSetValue()}, nil
	}
	return Parameter{}, &NotDeclaredError{Names: []string{name}}
}

// GetMany returns the stored parameter for every given name.
func (st *ParameterStore) GetMany(names []string) ([]Parameter, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	result := make([]Parameter, 0, len(names))
	for _, name := range names {
		p, err := st.get(name)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

// GetOr returns the stored parameter, or the alternative when the name is
// unknown. A nil alternative yields a synthetic NOT_SET parameter. GetOr
// never fails and never declares.
func (st *ParameterStore) GetOr(name string, alternative *Parameter) Parameter {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.getOr(name, alternative)
}

func (st *ParameterStore) getOr(name string, alternative *Parameter) Parameter {
	if p, ok := st.parameters[name]; ok {
		return p
	}
	if alternative != nil {
		return *alternative
	}
	return Parameter{Name: name, Value: NotSetValue()}
}

// Describe returns the descriptor of a declared parameter, or a default
// descriptor when the name is unknown and undeclared parameters are
// allowed.
func (st *ParameterStore) Describe(name string) (ParameterDescriptor, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.describe(name)
}

func (st *ParameterStore) describe(name string) (ParameterDescriptor, error) {
	if p, ok := st.parameters[name]; ok {
		return p.Descriptor, nil
	}
	if st.allowUndeclared {
		return ParameterDescriptor{}, nil
	}
	return ParameterDescriptor{}, &NotDeclaredError{Names: []string{name}}
}

// DescribeMany returns the descriptor for every given name.
func (st *ParameterStore) DescribeMany(names []string) ([]ParameterDescriptor, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	result := make([]ParameterDescriptor, 0, len(names))
	for _, name := range names {
		d, err := st.describe(name)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

// Names returns the declared parameter names in sorted order.
func (st *ParameterStore) Names() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	names := make([]string, 0, len(st.parameters))
	for name := range st.parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set applies the parameters one at a time, in list order, each through
// its own atomic-set call. A callback rejection is reported in that
// element's result and does not stop later elements from being applied;
// there is no rollback across the list. When undeclared parameters are
// not allowed, the whole list is checked against the store before any
// element is applied.
func (st *ParameterStore) Set(parameters []Parameter) ([]SetParametersResult, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.checkDeclared(parameters); err != nil {
		return nil, err
	}
	results := make([]SetParametersResult, 0, len(parameters))
	for _, p := range parameters {
		results = append(results, st.setAtomically([]Parameter{p}))
	}
	return results, nil
}

// SetAtomically applies the whole batch as one indivisible unit. The
// validation callback is consulted exactly once with the full list; on
// rejection nothing is mutated and no event is published. On success the
// batch is applied in a single pass and exactly one change event is
// published summarizing the new, changed and deleted parameters.
func (st *ParameterStore) SetAtomically(parameters []Parameter) (SetParametersResult, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.checkDeclared(parameters); err != nil {
		return SetParametersResult{}, err
	}
	return st.setAtomically(parameters), nil
}

func (st *ParameterStore) checkDeclared(parameters []Parameter) error {
	if st.allowUndeclared {
		return nil
	}
	var missing []string
	for _, p := range parameters {
		if _, ok := st.parameters[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return &NotDeclaredError{Names: missing}
	}
	return nil
}

// setAtomically is the unconditional atomic-set primitive. It does not
// check prior declaration; Declare relies on that.
func (st *ParameterStore) setAtomically(parameters []Parameter) SetParametersResult {
	result := SetParametersResult{Successful: true}
	if st.callback != nil {
		result = st.callback(parameters)
	}
	if !result.Successful {
		return result
	}

	event := ParameterEvent{Node: st.node}
	for _, p := range parameters {
		if p.Value.Type == ParameterNotSet {
			if existing, ok := st.parameters[p.Name]; ok && existing.Value.Type != ParameterNotSet {
				event.DeletedParameters = append(event.DeletedParameters,
					Parameter{Name: p.Name, Value: NotSetValue()})
			}
			// A NOT_SET parameter is never stored; remove regardless of
			// its previous state.
			delete(st.parameters, p.Name)
			continue
		}
		if existing, ok := st.parameters[p.Name]; ok {
			event.ChangedParameters = append(event.ChangedParameters,
				Parameter{Name: p.Name, Value: p.Value})
			// The descriptor is fixed at declaration time.
			p.Descriptor = existing.Descriptor
		} else {
			event.NewParameters = append(event.NewParameters,
				Parameter{Name: p.Name, Value: p.Value})
		}
		st.parameters[p.Name] = p
	}
	event.Stamp = st.clock.Now()

	if st.events != nil {
		if err := st.events.Publish(&event); err != nil {
			logger := *st.logger
			logger.Errorf("failed to publish parameter event for %s: %v", st.node, err)
		}
	}
	return result
}
