package types

import (
	"encoding/json"
	"fmt"
)

// LabelProduct is the entity label emitted for product names.
const LabelProduct = "PRODUCT"

// Entity is a labelled character span. It encodes as [start, end, label].
type Entity struct {
	Start int
	End   int
	Label string
}

// MarshalJSON implements json.Marshaler.
func (e Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Start, e.End, e.Label})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("entity must have 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Start); err != nil {
		return fmt.Errorf("entity start: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.End); err != nil {
		return fmt.Errorf("entity end: %w", err)
	}
	if err := json.Unmarshal(raw[2], &e.Label); err != nil {
		return fmt.Errorf("entity label: %w", err)
	}
	return nil
}

// TrainingExample is one labelled sentence for the NER model.
type TrainingExample struct {
	Text     string   `json:"text"`
	Entities []Entity `json:"entities"`
}

// Label returns the label of the first entity, or "".
func (t *TrainingExample) Label() string {
	if len(t.Entities) == 0 {
		return ""
	}
	return t.Entities[0].Label
}
