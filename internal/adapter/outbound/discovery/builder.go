package discovery

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/yonah/apidisco/internal/domain"
	"github.com/yonah/apidisco/internal/jsontext"
	"github.com/yonah/apidisco/internal/usecase"
)

// dialect holds the per-version field naming and nesting rules. Each
// supported discovery version gets one entry in the strategy table;
// the builder itself is version-agnostic.
type dialect struct {
	basePathField   string
	restPathField   string
	rpcNameField    string
	locationField   string
	defaultLocation domain.ParameterLocation
	nestedResources bool
}

var dialects = map[domain.DiscoveryVersion]dialect{
	domain.DiscoveryV0_3: {
		basePathField:   "restBasePath",
		restPathField:   "pathUrl",
		rpcNameField:    "rpcName",
		locationField:   "parameterType",
		defaultLocation: domain.LocationQuery,
		nestedResources: false,
	},
	domain.DiscoveryV1_0: {
		basePathField:   "basePath",
		restPathField:   "restPath",
		rpcNameField:    "rpcMethod",
		locationField:   "restParameterType",
		defaultLocation: domain.LocationQuery,
		nestedResources: true,
	},
}

// knownSchemaTypes are the JSON types schema resolution understands.
// Anything else falls back to the untyped placeholder.
var knownSchemaTypes = map[string]struct{}{
	"string": {}, "integer": {}, "number": {}, "boolean": {},
	"object": {}, "array": {}, "any": {},
}

// schemaTypeAny is the generic placeholder used for unknown or
// unsupported schema types.
const schemaTypeAny = "any"

// Builder implements usecase.ServiceBuilder for discovery documents.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a new discovery model Builder.
func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{
		logger: logger.With("component", "discovery_builder"),
	}
}

// Build interprets the parsed document tree into an immutable service
// model. It fails with domain.MissingFieldError when the top-level
// name or version field is absent.
func (b *Builder) Build(doc *jsontext.Value, version domain.DiscoveryVersion, params usecase.BuilderParams) (*domain.Service, error) {
	d, ok := dialects[version]
	if !ok {
		return nil, fmt.Errorf("no dialect registered for discovery version %s", version)
	}

	name, ok := doc.Get("name").Text()
	if !ok || name == "" {
		return nil, &domain.MissingFieldError{Field: "name"}
	}
	serviceVersion, ok := doc.Get("version").Text()
	if !ok || serviceVersion == "" {
		return nil, &domain.MissingFieldError{Field: "version"}
	}
	log := b.logger.With(slog.String("service", name), slog.String("service_version", serviceVersion))

	baseURI := params.BaseURI
	if baseURI == "" {
		baseURI = doc.Get(d.basePathField).TextOr("")
	}

	svc := &domain.Service{
		Name:        name,
		Version:     serviceVersion,
		Description: doc.Get("description").TextOr(""),
		BaseURI:     baseURI,
		RPCPath:     doc.Get("rpcPath").TextOr(""),
		GZipEnabled: params.GZipEnabled,
		Resources:   make(map[string]*domain.Resource),
		Schemas:     make(map[string]*domain.Schema),
	}

	if resources := doc.Get("resources"); resources != nil && resources.Kind == jsontext.KindObject {
		for _, key := range resources.Obj.Keys() {
			res, err := b.buildResource(log, key, resources.Get(key), d)
			if err != nil {
				return nil, err
			}
			svc.Resources[key] = res
		}
	}

	b.buildSchemas(log, doc.Get("schemas"), svc)

	log.Info("Built service model",
		slog.Int("resource_count", len(svc.Resources)),
		slog.Int("schema_count", len(svc.Schemas)))
	return svc, nil
}

func (b *Builder) buildResource(log *slog.Logger, name string, v *jsontext.Value, d dialect) (*domain.Resource, error) {
	res := &domain.Resource{
		Name:      name,
		Resources: make(map[string]*domain.Resource),
		Methods:   make(map[string]*domain.Method),
	}
	if v == nil || v.Kind != jsontext.KindObject {
		log.Warn("Resource entry is not an object, building it empty", slog.String("resource", name))
		return res, nil
	}

	if methods := v.Get("methods"); methods != nil && methods.Kind == jsontext.KindObject {
		for _, key := range methods.Obj.Keys() {
			m, err := b.buildMethod(log, key, methods.Get(key), d)
			if err != nil {
				return nil, err
			}
			res.Methods[key] = m
		}
	}

	// Only the 1.0 dialect nests resources inside resources.
	if d.nestedResources {
		if nested := v.Get("resources"); nested != nil && nested.Kind == jsontext.KindObject {
			for _, key := range nested.Obj.Keys() {
				sub, err := b.buildResource(log, key, nested.Get(key), d)
				if err != nil {
					return nil, err
				}
				res.Resources[key] = sub
			}
		}
	}
	return res, nil
}

func (b *Builder) buildMethod(log *slog.Logger, name string, v *jsontext.Value, d dialect) (*domain.Method, error) {
	m := &domain.Method{
		Name:           name,
		HTTPMethod:     v.Get("httpMethod").TextOr("GET"),
		RestPath:       v.Get(d.restPathField).TextOr(""),
		RPCName:        v.Get(d.rpcNameField).TextOr(""),
		Parameters:     make(map[string]*domain.Parameter),
		RequestSchema:  v.Get("request").Get("$ref").TextOr(""),
		ResponseSchema: v.Get("response").Get("$ref").TextOr(""),
	}

	if order := v.Get("parameterOrder"); order != nil && order.Kind == jsontext.KindArray {
		for _, entry := range order.Arr {
			if s, ok := entry.Text(); ok {
				m.ParameterOrder = append(m.ParameterOrder, s)
			}
		}
	}

	if params := v.Get("parameters"); params != nil && params.Kind == jsontext.KindObject {
		for _, key := range params.Obj.Keys() {
			p := b.buildParameter(key, params.Get(key), d)
			m.Parameters[key] = p
			if p.Location == domain.LocationPath && strings.Count(m.RestPath, "{"+key+"}") != 1 {
				log.Warn("Path parameter does not appear exactly once in the path template",
					slog.String("method", name),
					slog.String("parameter", key),
					slog.String("rest_path", m.RestPath))
			}
		}
	}
	return m, nil
}

func (b *Builder) buildParameter(name string, v *jsontext.Value, d dialect) *domain.Parameter {
	p := &domain.Parameter{
		Name:     name,
		Type:     v.Get("type").TextOr("string"),
		Location: d.defaultLocation,
		Pattern:  v.Get("pattern").TextOr(""),
	}
	if loc, ok := v.Get(d.locationField).Text(); ok && loc != "" {
		p.Location = domain.ParameterLocation(loc)
	}
	if required, ok := v.Get("required").Flag(); ok {
		p.Required = required
	}
	if repeated, ok := v.Get("repeated").Flag(); ok {
		p.Repeated = repeated
	}
	if def := v.Get("default"); def != nil && def.Kind != jsontext.KindNull {
		p.Default = scalarText(def)
		p.HasDefault = true
	}
	return p
}

// buildSchemas walks the top-level schemas map. Schema resolution is
// deliberately shallow: unknown or unsupported JSON types fall back to
// the untyped placeholder and are logged, never fatal.
func (b *Builder) buildSchemas(log *slog.Logger, v *jsontext.Value, svc *domain.Service) {
	if v == nil || v.Kind != jsontext.KindObject {
		return
	}
	for _, key := range v.Obj.Keys() {
		entry := v.Get(key)
		schema := &domain.Schema{Name: key, Type: schemaTypeAny}

		declared := entry.Get("type").TextOr("")
		if declared != "" {
			if _, known := knownSchemaTypes[declared]; known {
				schema.Type = declared
			} else {
				log.Warn("Unknown schema type, falling back to untyped placeholder",
					slog.String("schema", key),
					slog.String("declared_type", declared))
			}
		}

		if props := entry.Get("properties"); props != nil && props.Kind == jsontext.KindObject {
			schema.Properties = make(map[string]string, props.Obj.Len())
			for _, propName := range props.Obj.Keys() {
				prop := props.Get(propName)
				if ref, ok := prop.Get("$ref").Text(); ok {
					schema.Properties[propName] = ref
					continue
				}
				propType := prop.Get("type").TextOr("")
				if _, known := knownSchemaTypes[propType]; !known {
					log.Warn("Unknown property type, falling back to untyped placeholder",
						slog.String("schema", key),
						slog.String("property", propName),
						slog.String("declared_type", propType))
					propType = schemaTypeAny
				}
				schema.Properties[propName] = propType
			}
		}
		svc.Schemas[key] = schema
	}
}

// scalarText string-coerces a scalar default value the way supplied
// parameter values are string-coerced.
func scalarText(v *jsontext.Value) string {
	switch v.Kind {
	case jsontext.KindString:
		return v.Str
	case jsontext.KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case jsontext.KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}
