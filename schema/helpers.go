package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// NumberOrNA is a float metric that may be unavailable. It renders as a
// number when Valid and as "N/A" otherwise.
type NumberOrNA struct {
	Value float64
	Valid bool
}

// Number returns an available metric.
func Number(v float64) NumberOrNA {
	return NumberOrNA{Value: v, Valid: true}
}

// NA returns an unavailable metric.
func NA() NumberOrNA {
	return NumberOrNA{}
}

// String renders the metric for text output.
func (n NumberOrNA) String() string {
	if !n.Valid {
		return NotAvailable
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler.
func (n NumberOrNA) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumberOrNA) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != NotAvailable {
			return fmt.Errorf("unexpected metric value %q", s)
		}
		*n = NA()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("metric is neither a number nor %q: %w", NotAvailable, err)
	}
	*n = Number(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (n NumberOrNA) MarshalYAML() (any, error) {
	if !n.Valid {
		return NotAvailable, nil
	}
	return n.Value, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *NumberOrNA) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == NotAvailable {
		*n = NA()
		return nil
	}
	var v float64
	if err := value.Decode(&v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatMergeDuration renders seconds as "<h>h <m>m" using whole hours and minutes.
func FormatMergeDuration(seconds float64) string {
	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
