package jsontext

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is one node of a parsed JSON document tree. Only the field
// matching Kind carries meaning; the others are zero.
type Value struct {
	Kind Kind
	Bool bool
	Num  float64
	Str  string
	Arr  []*Value
	Obj  *Object
}

// Get returns the object member named key, or nil when the member is
// absent or v is not an object. Safe to call on a nil receiver, which
// makes chained lookups over optional document fields cheap.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != KindObject || v.Obj == nil {
		return nil
	}
	member, _ := v.Obj.Get(key)
	return member
}

// Text returns the string content when v is a string value.
func (v *Value) Text() (string, bool) {
	if v == nil || v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// Flag returns the boolean content when v is a bool value.
func (v *Value) Flag() (bool, bool) {
	if v == nil || v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}

// TextOr returns the string content of v, or def when v is absent or
// not a string.
func (v *Value) TextOr(def string) string {
	if s, ok := v.Text(); ok {
		return s
	}
	return def
}

// Object is an ordered JSON object. Keys are unique and iteration via
// Keys follows insertion order.
type Object struct {
	keys   []string
	values map[string]*Value
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]*Value)}
}

// Set inserts or replaces the member named key. A replaced member keeps
// its original position.
func (o *Object) Set(key string, v *Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the member named key.
func (o *Object) Get(key string) (*Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the member names in insertion order. The returned slice
// is shared with the object and must not be modified.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of members.
func (o *Object) Len() int {
	return len(o.keys)
}
