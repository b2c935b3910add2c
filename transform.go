package statelet

import (
	"encoding/json"
	"fmt"
)

// ToModel converts one raw payload into a typed entity using factory.
func ToModel[T Entity](factory Factory[T], raw json.RawMessage) (T, error) {
	model, err := factory(raw)
	if err != nil {
		return model, fmt.Errorf("transform payload: %w", err)
	}
	return model, nil
}

// ToModels converts a batch of raw payloads elementwise using factory.
//
// An empty or nil batch yields an empty, non-nil list; empty input is never
// an error. The first element that fails to transform aborts the batch.
func ToModels[T Entity](factory Factory[T], raws []json.RawMessage) ([]T, error) {
	models := make([]T, 0, len(raws))
	for i, raw := range raws {
		model, err := factory(raw)
		if err != nil {
			return nil, fmt.Errorf("transform payload %d of %d: %w", i+1, len(raws), err)
		}
		models = append(models, model)
	}
	return models, nil
}
