package statelet

import (
	"encoding/json"
	"fmt"
)

// Record is a schemaless entity for config-driven use, where the shape of
// the remote payload is not known at compile time. Only the id field is
// interpreted; everything else is kept as raw JSON.
//
// The CLI uses Record stores to watch arbitrary configured resources.
type Record struct {
	ID     uint64
	Fields map[string]json.RawMessage
}

// EntityID returns the record's id.
func (r Record) EntityID() uint64 {
	return r.ID
}

// Field returns the raw JSON value of a payload field, or nil if absent.
func (r Record) Field(name string) json.RawMessage {
	return r.Fields[name]
}

// RecordFactory is a [Factory] building [Record] values from arbitrary
// JSON objects. The payload must be an object carrying a numeric "id"
// field.
var RecordFactory Factory[Record] = func(raw json.RawMessage) (Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}

	rawID, ok := fields["id"]
	if !ok {
		return Record{}, fmt.Errorf("record has no id field")
	}

	var id uint64
	if err := json.Unmarshal(rawID, &id); err != nil {
		return Record{}, fmt.Errorf("record id is not an unsigned integer: %w", err)
	}

	return Record{ID: id, Fields: fields}, nil
}
