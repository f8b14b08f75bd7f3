package model

import (
	"encoding/json"
	"time"

	"github.com/roach88/modelkit/internal/scalar"
)

// Projection returns every declared column as a plain Go value: NULL and
// absent columns are nil, timestamps are RFC 3339 strings in the
// persistence zone.
func (i *Instance) Projection() map[string]any {
	out := make(map[string]any, len(i.def.columns))
	for col := range i.def.columns {
		out[col] = project(i.record[col])
	}
	return out
}

// MarshalJSON renders the projection. Keys are sorted by encoding/json.
func (i *Instance) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Projection())
}

func project(v scalar.Value) any {
	switch x := v.(type) {
	case nil:
		return nil
	case scalar.Timestamp:
		return x.Time().Format(time.RFC3339)
	case scalar.Text:
		return string(x)
	case scalar.Double:
		return float64(x)
	case scalar.Int32:
		return int32(x)
	case scalar.Uint64:
		return uint64(x)
	case scalar.Int64:
		return int64(x)
	}
	return nil
}
