package paradigm_test

import (
	"errors"
	"testing"

	"github.com/tailored-agentic-units/courier/paradigm"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    paradigm.Paradigm
		wantErr bool
	}{
		{name: "classical", input: "classical", want: paradigm.Classical},
		{name: "baroque", input: "baroque", want: paradigm.Baroque},
		{name: "modern", input: "modern", want: paradigm.Modern},
		{name: "promise", input: "promise", want: paradigm.Promise},
		{name: "unknown", input: "deferred", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "case sensitive", input: "Modern", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := paradigm.Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, paradigm.ErrUnknown) {
					t.Errorf("Parse(%q) error = %v, want ErrUnknown", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAll(t *testing.T) {
	got := paradigm.All()
	if len(got) != 4 {
		t.Fatalf("All() returned %d paradigms, want 4", len(got))
	}

	got[0] = "mutated"
	if paradigm.All()[0] != paradigm.Classical {
		t.Error("All() should return a copy")
	}
}

func TestCheck(t *testing.T) {
	if err := paradigm.Check(paradigm.Modern); err != nil {
		t.Errorf("Check(modern) error = %v", err)
	}
	if err := paradigm.Check("callbackish"); !errors.Is(err, paradigm.ErrUnknown) {
		t.Errorf("Check(callbackish) error = %v, want ErrUnknown", err)
	}
}
