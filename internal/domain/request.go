package domain

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Representation selects the wire encoding requested from the server.
type Representation string

const (
	RepresentationJSON Representation = "json"
	RepresentationAtom Representation = "atom"
)

// ContentType returns the content-type header value for the
// representation.
func (r Representation) ContentType() string {
	if r == RepresentationAtom {
		return "application/atom+xml"
	}
	return "application/json"
}

// RequestSpec is an immutable description of one API call, produced by
// pure construction so it can be tested without I/O. A spec is single
// use: exactly one execution, then discarded. It is not safe for
// concurrent use.
type RequestSpec struct {
	Service      *Service
	Method       *Method
	Values       map[string]string
	DeveloperKey string
	Body         string
	Alt          Representation
	// URL is the fully resolved request URL per BuildURL.
	URL string
}

// SupportsRetry reports whether external retry policy may safely replay
// the request. Exposed as a capability flag only; the core never
// retries.
func (r *RequestSpec) SupportsRetry() bool {
	switch r.Method.HTTPMethod {
	case "GET", "PUT", "DELETE":
		return true
	default:
		return false
	}
}

// ValidateParams reports whether values satisfy every parameter
// declared on the method. A required parameter that is absent or empty
// fails the whole request, as does a supplied value that does not
// match the parameter's pattern in full. Fail-closed: callers must not
// issue the request when this returns false.
func ValidateParams(m *Method, values map[string]string) bool {
	for name, p := range m.Parameters {
		value, supplied := values[name]
		if p.Required && (!supplied || value == "") {
			return false
		}
		if supplied && p.Pattern != "" {
			re, err := regexp.Compile("^(?:" + p.Pattern + ")$")
			if err != nil {
				return false
			}
			if !re.MatchString(value) {
				return false
			}
		}
	}
	return true
}

// BuildURL assembles the fully resolved request URL for a method call.
//
// The query list starts with the representation selector, followed by
// the escaped developer key when one is set. Declared parameters are
// then visited in name-sorted order so the resulting URL is
// deterministic: path-located values replace their {name} placeholder
// in the path template, query-located values append name=value unless
// the parameter is optional and its effective value is empty. A
// declared location other than path or query fails with
// UnsupportedLocationError.
//
// Value resolution: an absent value falls back to the parameter's
// default, an explicitly supplied empty string does not.
func BuildURL(baseURI string, m *Method, values map[string]string, developerKey string, alt Representation) (string, error) {
	if alt == "" {
		alt = RepresentationJSON
	}
	query := []string{"alt=" + string(alt)}
	if developerKey != "" {
		query = append(query, "key="+EscapeDeveloperKey(developerKey))
	}

	names := make([]string, 0, len(m.Parameters))
	for name := range m.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	path := m.RestPath
	for _, name := range names {
		p := m.Parameters[name]
		value, supplied := values[name]
		if !supplied && p.HasDefault {
			value = p.Default
		}
		switch p.Location {
		case LocationPath:
			path = strings.ReplaceAll(path, "{"+name+"}", value)
		case LocationQuery:
			if value == "" && !p.Required {
				continue
			}
			query = append(query, name+"="+value)
		default:
			return "", &UnsupportedLocationError{Parameter: name, Location: string(p.Location)}
		}
	}

	u := joinURI(baseURI, path)
	if len(query) > 0 {
		u += "?" + strings.Join(query, "&")
	}
	return u, nil
}

// EscapeDeveloperKey percent-escapes a developer key for use as a query
// value. Beyond generic query escaping this also covers '&' and '?',
// and spaces become %20 rather than '+'.
func EscapeDeveloperKey(key string) string {
	return strings.ReplaceAll(url.QueryEscape(key), "+", "%20")
}

func joinURI(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
