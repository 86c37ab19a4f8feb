package notifications

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// UpdateMask lists the document fields changed by an update event.
type UpdateMask struct {
	FieldPaths []string `json:"fieldPaths"`
}

// FirestoreEvent is the payload delivered to a handler for one document
// create, update or delete.
type FirestoreEvent struct {
	OldValue   FirestoreValue `json:"oldValue"`
	Value      FirestoreValue `json:"value"`
	UpdateMask UpdateMask     `json:"updateMask"`
}

// FirestoreValue is one document snapshot in the event payload. Name is the
// full resource path of the document; a missing Name means the snapshot does
// not exist (the document was deleted).
type FirestoreValue struct {
	CreateTime time.Time        `json:"createTime"`
	Fields     map[string]Value `json:"fields"`
	Name       string           `json:"name"`
	UpdateTime time.Time        `json:"updateTime"`
}

// Exists reports whether the snapshot refers to a live document.
func (v FirestoreValue) Exists() bool {
	return v.Name != ""
}

// Value is a Firestore field in the event wire encoding: exactly one of the
// typed members is set.
type Value struct {
	StringValue    *string     `json:"stringValue,omitempty"`
	BooleanValue   *bool       `json:"booleanValue,omitempty"`
	IntegerValue   *string     `json:"integerValue,omitempty"`
	DoubleValue    *float64    `json:"doubleValue,omitempty"`
	TimestampValue *time.Time  `json:"timestampValue,omitempty"`
	ReferenceValue *string     `json:"referenceValue,omitempty"`
	NullValue      *struct{}   `json:"nullValue,omitempty"`
	ArrayValue     *ArrayValue `json:"arrayValue,omitempty"`
	MapValue       *MapValue   `json:"mapValue,omitempty"`
}

// ArrayValue wraps a repeated field.
type ArrayValue struct {
	Values []Value `json:"values"`
}

// MapValue wraps a nested document field.
type MapValue struct {
	Fields map[string]Value `json:"fields"`
}

// Flatten unwraps the wire encoding into plain Go values.
func (v Value) Flatten() interface{} {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.BooleanValue != nil:
		return *v.BooleanValue
	case v.IntegerValue != nil:
		n, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
		if err != nil {
			return *v.IntegerValue
		}
		return n
	case v.DoubleValue != nil:
		return *v.DoubleValue
	case v.TimestampValue != nil:
		return *v.TimestampValue
	case v.ReferenceValue != nil:
		return *v.ReferenceValue
	case v.ArrayValue != nil:
		out := make([]interface{}, len(v.ArrayValue.Values))
		for i, av := range v.ArrayValue.Values {
			out[i] = av.Flatten()
		}
		return out
	case v.MapValue != nil:
		return flatten(v.MapValue.Fields)
	default:
		return nil
	}
}

func flatten(fields map[string]Value) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v.Flatten()
	}
	return out
}

// Data unwraps the snapshot's fields into a plain map.
func (v FirestoreValue) Data() map[string]interface{} {
	return flatten(v.Fields)
}

// DataTo unmarshals the snapshot's fields into out, which must be a pointer
// to a struct with json tags matching the document schema.
func (v FirestoreValue) DataTo(out interface{}) error {
	b, err := json.Marshal(v.Data())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// Params captures the path parameters of the event's document resource name
// against a trigger path template like
// "partitions/{partition}/chats/{chat}/messages/{message}".
func (e FirestoreEvent) Params(template string) map[string]string {
	name := e.Value.Name
	if name == "" {
		name = e.OldValue.Name
	}
	const marker = "/documents/"
	if i := strings.Index(name, marker); i >= 0 {
		name = name[i+len(marker):]
	}
	segments := strings.Split(name, "/")
	params := map[string]string{}
	for i, t := range strings.Split(template, "/") {
		if i >= len(segments) {
			break
		}
		if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
			params[t[1:len(t)-1]] = segments[i]
		}
	}
	return params
}
