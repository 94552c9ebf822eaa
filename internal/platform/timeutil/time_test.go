package timeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

func TestMarshalJSONFixedMillis(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"zero millis", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), `"2024-01-15T10:30:00.000Z"`},
		{"nanos truncated", time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC), `"2024-01-15T10:30:00.123Z"`},
		{"offset converted", time.Date(2024, 1, 15, 12, 30, 0, 0, time.FixedZone("CET", 2*60*60)), `"2024-01-15T10:30:00.000Z"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(From(tt.input))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestUnmarshalJSON(t *testing.T) {
	var ts Time
	if err := json.Unmarshal([]byte(`"2024-01-15T10:30:00.5+02:00"`), &ts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Date(2024, 1, 15, 8, 30, 0, 500000000, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("got %v want %v", ts.Time, want)
	}

	before := ts
	if err := json.Unmarshal([]byte(`null`), &ts); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !ts.Equal(before.Time) {
		t.Fatal("null must keep the existing value")
	}

	if err := json.Unmarshal([]byte(`12345`), &ts); err == nil {
		t.Fatal("expected error for non-string")
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Fatal("expected error for bad layout")
	}
}

func TestCBOREncodesTextString(t *testing.T) {
	in := From(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	data, err := cbor.Marshal(struct {
		At Time `cbor:"at"`
	}{At: in})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := cbor.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["at"] != "2024-06-15T00:00:00.000Z" {
		t.Fatalf("expected text timestamp, got %#v", raw["at"])
	}

	var out struct {
		At Time `cbor:"at"`
	}
	if err := cbor.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.At.Equal(in.Time) {
		t.Fatalf("got %v want %v", out.At.Time, in.Time)
	}
}
