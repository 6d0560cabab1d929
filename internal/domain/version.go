package domain

import "fmt"

// DiscoveryVersion selects which field-name dialect and defaulting
// rules apply when a discovery document is interpreted.
type DiscoveryVersion int

const (
	// DiscoveryV0_3 is the legacy dialect: pathUrl/rpcName method
	// fields, parameters implicitly located in the query string, and a
	// single level of resources.
	DiscoveryV0_3 DiscoveryVersion = iota
	// DiscoveryV1_0 is the current dialect: restPath/rpcMethod method
	// fields, explicit restParameterType, and arbitrarily nested
	// resources maps.
	DiscoveryV1_0
)

func (v DiscoveryVersion) String() string {
	switch v {
	case DiscoveryV0_3:
		return "0.3"
	case DiscoveryV1_0:
		return "1.0"
	default:
		return fmt.Sprintf("unknown(%d)", int(v))
	}
}

// ParseDiscoveryVersion maps the protocol version strings "0.3" and
// "1.0" to their enum values.
func ParseDiscoveryVersion(s string) (DiscoveryVersion, error) {
	switch s {
	case "0.3":
		return DiscoveryV0_3, nil
	case "1.0":
		return DiscoveryV1_0, nil
	default:
		return 0, fmt.Errorf("unsupported discovery version %q", s)
	}
}
