package schema

import "testing"

func TestDecodeRaw(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		raw, err := DecodeRaw([]byte(`{"user_seq": 42, "payment_method": "CASH"}`))
		if err != nil {
			t.Fatalf("DecodeRaw() error = %v", err)
		}
		if got := raw.Int("user_seq", 0); got != 42 {
			t.Errorf("user_seq = %d, want 42", got)
		}
	})

	t.Run("non-object decodes as empty event", func(t *testing.T) {
		for _, payload := range []string{`[1,2,3]`, `"just a string"`, `42`, `null`, `true`} {
			raw, err := DecodeRaw([]byte(payload))
			if err != nil {
				t.Errorf("DecodeRaw(%s) error = %v", payload, err)
				continue
			}
			if len(raw) != 0 {
				t.Errorf("DecodeRaw(%s) = %v, want empty", payload, raw)
			}
		}
	})

	t.Run("malformed json is an error", func(t *testing.T) {
		if _, err := DecodeRaw([]byte(`{"user_seq":`)); err == nil {
			t.Error("DecodeRaw() error = nil, want parse error")
		}
	})
}

func TestRawEvent_Int(t *testing.T) {
	tests := []struct {
		name string
		raw  RawEvent
		key  string
		def  int64
		want int64
	}{
		{"json number", RawEvent{"n": 42.0}, "n", 0, 42},
		{"fraction truncates", RawEvent{"n": 12.9}, "n", 0, 12},
		{"numeric string", RawEvent{"n": "12345"}, "n", 0, 12345},
		{"negative string", RawEvent{"n": "-7"}, "n", 0, -7},
		{"decimal string fails", RawEvent{"n": "12.5"}, "n", 9, 9},
		{"non-numeric string", RawEvent{"n": "abc"}, "n", 9, 9},
		{"missing key", RawEvent{}, "n", 9, 9},
		{"null value", RawEvent{"n": nil}, "n", 9, 9},
		{"bool value", RawEvent{"n": true}, "n", 9, 9},
		{"native int", RawEvent{"n": int(5)}, "n", 0, 5},
		{"native int64", RawEvent{"n": int64(6)}, "n", 0, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.raw.Int(tt.key, tt.def); got != tt.want {
				t.Errorf("Int(%q, %d) = %d, want %d", tt.key, tt.def, got, tt.want)
			}
		})
	}
}

func TestRawEvent_Float(t *testing.T) {
	tests := []struct {
		name string
		raw  RawEvent
		want float64
	}{
		{"json number", RawEvent{"x": 1.5}, 1.5},
		{"numeric string", RawEvent{"x": "2.25"}, 2.25},
		{"integer string", RawEvent{"x": "3"}, 3},
		{"garbage string", RawEvent{"x": "nope"}, -1},
		{"missing", RawEvent{}, -1},
		{"null", RawEvent{"x": nil}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.raw.Float("x", -1); got != tt.want {
				t.Errorf("Float() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRawEvent_String(t *testing.T) {
	raw := RawEvent{"s": "hello", "empty": "", "num": 42.0}

	if got := raw.String("s", "def"); got != "hello" {
		t.Errorf("String(s) = %q, want hello", got)
	}
	if got := raw.String("empty", "def"); got != "def" {
		t.Errorf("String(empty) = %q, want def (empty treated as absent)", got)
	}
	if got := raw.String("num", "def"); got != "def" {
		t.Errorf("String(num) = %q, want def (wrong type)", got)
	}
	if got := raw.String("missing", "def"); got != "def" {
		t.Errorf("String(missing) = %q, want def", got)
	}
}
