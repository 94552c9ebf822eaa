// Package timeutil fixes the timestamp formats used by the API and the logs.
package timeutil

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// RFC3339Millis is the API timestamp format: UTC with fixed millisecond precision.
const RFC3339Millis = "2006-01-02T15:04:05.000Z"

// RFC3339Micros is the log timestamp format.
const RFC3339Micros = "2006-01-02T15:04:05.000000Z"

// Time renders as an RFC3339Millis string in both JSON and CBOR responses.
// Decoding JSON null keeps the current value.
type Time struct {
	time.Time
}

// From wraps t.
func From(t time.Time) Time {
	return Time{Time: t}
}

func (t Time) String() string {
	return t.UTC().Format(RFC3339Millis)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("timeutil: expected JSON string, got %s", s)
	}
	return t.parse(s[1 : len(s)-1])
}

// MarshalCBOR encodes the timestamp as a text string. Without it the promoted
// time.Time.MarshalBinary would be used.
func (t Time) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(t.String())
}

func (t *Time) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timeutil: %w", err)
	}
	return t.parse(s)
}

func (t *Time) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("timeutil: %w", err)
	}
	t.Time = parsed
	return nil
}
