package domain

import (
	"sort"
	"strings"
)

// Service is the root of a built discovery model. A Service and
// everything reachable from it is immutable once constructed and safe
// for concurrent read access.
type Service struct {
	Name        string
	Version     string
	Description string
	// BaseURI is the absolute URI request paths are resolved against.
	BaseURI string
	// RPCPath is the document's RPC endpoint path, carried for callers
	// that speak the RPC flavor of the API.
	RPCPath     string
	GZipEnabled bool
	Resources   map[string]*Resource
	Schemas     map[string]*Schema
}

// Resource is a named grouping of methods and, depending on the
// dialect, nested resources.
type Resource struct {
	Name      string
	Resources map[string]*Resource
	Methods   map[string]*Method
}

// Method is one callable API operation.
type Method struct {
	Name       string
	HTTPMethod string
	// RestPath is the path template relative to the service base URI.
	// It may contain {name} placeholders for path-located parameters.
	RestPath string
	RPCName  string
	// ParameterOrder lists the names of required parameters in the
	// order the document declares them.
	ParameterOrder []string
	Parameters     map[string]*Parameter
	// RequestSchema and ResponseSchema are reference names into the
	// service's schema map, empty when the method declares none.
	RequestSchema  string
	ResponseSchema string
}

// ParameterLocation says where a parameter value ends up in the
// outgoing request.
type ParameterLocation string

const (
	LocationPath  ParameterLocation = "path"
	LocationQuery ParameterLocation = "query"
)

// Parameter is one declared method parameter.
type Parameter struct {
	Name     string
	Type     string
	Location ParameterLocation
	Required bool
	Repeated bool
	// Default is only meaningful when HasDefault is set; it
	// distinguishes an empty-string default from no default at all.
	Default    string
	HasDefault bool
	// Pattern, when non-empty, must match supplied values in full.
	Pattern string
}

// Schema is a minimal view of a named schema declared by the document:
// enough to resolve method request/response references without
// implementing JSON Schema validation.
type Schema struct {
	Name string
	Type string
	// Properties maps property names to their declared type or
	// referenced schema name.
	Properties map[string]string
}

// MethodByID resolves a dotted method id such as
// "events.instances.list" against the resource tree.
func (s *Service) MethodByID(id string) (*Method, bool) {
	parts := strings.Split(id, ".")
	if len(parts) < 2 {
		return nil, false
	}
	res, ok := s.Resources[parts[0]]
	if !ok {
		return nil, false
	}
	for _, part := range parts[1 : len(parts)-1] {
		if res, ok = res.Resources[part]; !ok {
			return nil, false
		}
	}
	m, ok := res.Methods[parts[len(parts)-1]]
	return m, ok
}

// MethodIDs returns the dotted ids of every method in the model,
// sorted for deterministic listings.
func (s *Service) MethodIDs() []string {
	var ids []string
	for name, res := range s.Resources {
		ids = append(ids, resourceMethodIDs(name, res)...)
	}
	sort.Strings(ids)
	return ids
}

func resourceMethodIDs(prefix string, res *Resource) []string {
	var ids []string
	for name := range res.Methods {
		ids = append(ids, prefix+"."+name)
	}
	for name, sub := range res.Resources {
		ids = append(ids, resourceMethodIDs(prefix+"."+name, sub)...)
	}
	return ids
}
