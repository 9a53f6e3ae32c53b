package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "full prefix",
			raw:  "[2024-01-01] [INFO] [main] Welcome to ImHex 1.34.0!",
			want: []string{"Welcome to ImHex 1.34.0!"},
		},
		{
			name: "two bracket pairs",
			raw:  "[12:00:00] [WARN] something odd",
			want: []string{"something odd"},
		},
		{
			name: "single bracket pair passes through",
			raw:  "[note] kept as is",
			want: []string{"[note] kept as is"},
		},
		{
			name: "no brackets passes through",
			raw:  "hex::plugin::doStuff+0x10",
			want: []string{"hex::plugin::doStuff+0x10"},
		},
		{
			name: "short line passes through",
			raw:  "]",
			want: []string{"]"},
		},
		{
			name: "leading bracket in message is not counted",
			raw:  "][a] [b] [c] msg",
			want: []string{"msg"},
		},
		{
			name: "brackets in message body survive",
			raw:  "[2024-01-01] [ERROR] [main] vector[3] out of range",
			want: []string{"vector[3] out of range"},
		},
		{
			name: "empty results are dropped",
			raw:  "[2024-01-01] [INFO] [main]   \n\n   \nkeep",
			want: []string{"keep"},
		},
		{
			name: "crlf line endings",
			raw:  "[t] [INFO] [main] first\r\n[t] [INFO] [main] second\r\n",
			want: []string{"first", "second"},
		},
		{
			name: "empty input",
			raw:  "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_PreservesOrder(t *testing.T) {
	raw := "[t] [I] [m] c\n[t] [I] [m] a\n[t] [I] [m] b"
	want := []string{"c", "a", "b"}
	if diff := cmp.Diff(want, Normalize(raw)); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}
