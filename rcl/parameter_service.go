package rcl

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/mikaelarguedas/rclgo/rmw"
)

// Request and response payloads for the standard per-node parameter
// services.

type GetParametersRequest struct {
	Names []string
}

type GetParametersResponse struct {
	Values []ParameterValue
}

type SetParametersRequest struct {
	Parameters []Parameter
}

type SetParametersResponse struct {
	Results []SetParametersResult
}

type SetParametersAtomicallyRequest struct {
	Parameters []Parameter
}

type SetParametersAtomicallyResponse struct {
	Result SetParametersResult
}

type ListParametersRequest struct {
	// Prefixes restricts the listing; empty means every parameter.
	Prefixes []string
	// Depth limits how many name segments below a matched prefix are
	// included; 0 means unlimited.
	Depth uint64
}

type ListParametersResponse struct {
	Names    []string
	Prefixes []string
}

type DescribeParametersRequest struct {
	Names []string
}

type DescribeParametersResponse struct {
	Descriptors []ParameterDescriptor
}

// startParameterServices exposes the node's parameter store over the
// standard private-namespace services.
func (node *Node) startParameterServices() error {
	specs := []struct {
		suffix   string
		typeName string
		handler  func(req interface{}) (interface{}, error)
	}{
		{"get_parameters", "rcl_interfaces/srv/GetParameters", node.handleGetParameters},
		{"set_parameters", "rcl_interfaces/srv/SetParameters", node.handleSetParameters},
		{"set_parameters_atomically", "rcl_interfaces/srv/SetParametersAtomically", node.handleSetParametersAtomically},
		{"list_parameters", "rcl_interfaces/srv/ListParameters", node.handleListParameters},
		{"describe_parameters", "rcl_interfaces/srv/DescribeParameters", node.handleDescribeParameters},
	}
	for _, spec := range specs {
		srv, err := node.CreateService(PrivateNS+Sep+spec.suffix, spec.typeName,
			rmw.ProfileServicesDefault, spec.handler)
		if err != nil {
			return err
		}
		node.mu.Lock()
		node.paramServices = append(node.paramServices, srv)
		node.mu.Unlock()
	}
	return nil
}

func (node *Node) handleGetParameters(req interface{}) (interface{}, error) {
	request, ok := req.(*GetParametersRequest)
	if !ok {
		return nil, errors.Errorf("unexpected request type %T", req)
	}
	params, err := node.params.GetMany(request.Names)
	if err != nil {
		return nil, err
	}
	values := make([]ParameterValue, 0, len(params))
	for _, p := range params {
		values = append(values, p.Value)
	}
	return &GetParametersResponse{Values: values}, nil
}

func (node *Node) handleSetParameters(req interface{}) (interface{}, error) {
	request, ok := req.(*SetParametersRequest)
	if !ok {
		return nil, errors.Errorf("unexpected request type %T", req)
	}
	results, err := node.params.Set(request.Parameters)
	if err != nil {
		return nil, err
	}
	return &SetParametersResponse{Results: results}, nil
}

func (node *Node) handleSetParametersAtomically(req interface{}) (interface{}, error) {
	request, ok := req.(*SetParametersAtomicallyRequest)
	if !ok {
		return nil, errors.Errorf("unexpected request type %T", req)
	}
	result, err := node.params.SetAtomically(request.Parameters)
	if err != nil {
		return nil, err
	}
	return &SetParametersAtomicallyResponse{Result: result}, nil
}

func (node *Node) handleListParameters(req interface{}) (interface{}, error) {
	request, ok := req.(*ListParametersRequest)
	if !ok {
		return nil, errors.Errorf("unexpected request type %T", req)
	}
	response := &ListParametersResponse{}
	seenPrefixes := make(map[string]struct{})
	for _, name := range node.params.Names() {
		remainder, matched := matchPrefix(name, request.Prefixes)
		if !matched {
			continue
		}
		if request.Depth > 0 && uint64(strings.Count(remainder, Sep)) >= request.Depth {
			continue
		}
		response.Names = append(response.Names, name)
		if i := strings.LastIndex(name, Sep); i > 0 {
			prefix := name[:i]
			if _, seen := seenPrefixes[prefix]; !seen {
				seenPrefixes[prefix] = struct{}{}
				response.Prefixes = append(response.Prefixes, prefix)
			}
		}
	}
	return response, nil
}

// matchPrefix reports whether the name falls under one of the prefixes
// and returns the part of the name below the matched prefix. An empty
// prefix list matches everything.
func matchPrefix(name string, prefixes []string) (string, bool) {
	if len(prefixes) == 0 {
		return name, true
	}
	for _, prefix := range prefixes {
		if name == prefix {
			return "", true
		}
		if strings.HasPrefix(name, prefix+Sep) {
			return name[len(prefix)+1:], true
		}
	}
	return "", false
}

func (node *Node) handleDescribeParameters(req interface{}) (interface{}, error) {
	request, ok := req.(*DescribeParametersRequest)
	if !ok {
		return nil, errors.Errorf("unexpected request type %T", req)
	}
	descriptors, err := node.params.DescribeMany(request.Names)
	if err != nil {
		return nil, err
	}
	return &DescribeParametersResponse{Descriptors: descriptors}, nil
}
