package sqlite

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/metis"
)

var kindNames = map[metis.ValueKind]string{
	metis.KindString: "string",
	metis.KindRaw:    "raw",
	metis.KindBool:   "bool",
	metis.KindList:   "list",
}

// field is one header entry stored in the fields column. The column holds a
// JSON array so key order survives.
type field struct {
	Key  string   `json:"key"`
	Kind string   `json:"kind"`
	Str  string   `json:"str,omitempty"`
	Bool bool     `json:"bool,omitempty"`
	List []string `json:"list,omitempty"`
}

func encodeFields(f *metis.Fields) (string, error) {
	out := make([]field, 0, f.Len())
	for _, k := range f.Keys() {
		v, _ := f.Get(k)
		out = append(out, field{Key: k, Kind: kindNames[v.Kind], Str: v.Str, Bool: v.Bool, List: v.List})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeFields(data string) (*metis.Fields, error) {
	var in []field
	if err := json.Unmarshal([]byte(data), &in); err != nil {
		return nil, metis.Errorf(metis.EINVALID, "malformed fields: %v", err)
	}
	f := metis.NewFields()
	for _, e := range in {
		switch e.Kind {
		case "raw":
			f.Set(e.Key, metis.RawValue(e.Str))
		case "bool":
			f.Set(e.Key, metis.BoolValue(e.Bool))
		case "list":
			f.Set(e.Key, metis.ListValue(e.List...))
		case "string":
			f.Set(e.Key, metis.StringValue(e.Str))
		default:
			return nil, metis.Errorf(metis.EINVALID, "unknown field kind %q", e.Kind)
		}
	}
	return f, nil
}

// appendLimit appends a LIMIT clause to a query builder if limit is > 0.
func appendLimit(query *strings.Builder, args *[]any, limit int) {
	if limit > 0 {
		fmt.Fprint(query, " LIMIT ?")
		*args = append(*args, limit)
	}
}
