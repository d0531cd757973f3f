package sexp

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/sexp/kicadsexp"
)

// Helper to parse s-expression from string
func parseSexp(t *testing.T, input string) kicadsexp.Sexp {
	t.Helper()
	sexps, err := kicadsexp.ParseString(input)
	if err != nil {
		t.Fatalf("Failed to parse s-expression %q: %v", input, err)
	}
	if len(sexps) == 0 {
		t.Fatalf("No s-expressions parsed from %q", input)
	}
	return sexps[0]
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		index   int
		want    string
		wantErr bool
	}{
		{
			name:  "get first element",
			input: "(shape input)",
			index: 0,
			want:  "shape",
		},
		{
			name:  "get quoted element",
			input: `(label "DATA[0..7]")`,
			index: 1,
			want:  "DATA[0..7]",
		},
		{
			name:    "index out of bounds",
			input:   "(shape input)",
			index:   5,
			wantErr: true,
		},
		{
			name:    "list at index",
			input:   "(label (at 1 2))",
			index:   1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parseSexp(t, tt.input)
			got, err := GetString(s, tt.index)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("GetString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetPosition(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PositionAngle
		wantErr bool
	}{
		{
			name:  "without angle",
			input: "(at 101.6 50.8)",
			want:  PositionAngle{Position: Position{X: 101.6, Y: 50.8}},
		},
		{
			name:  "with angle in degrees",
			input: "(at 1.27 -2.54 90)",
			want:  PositionAngle{Position: Position{X: 1.27, Y: -2.54}, Angle: 90},
		},
		{
			name:    "wrong key",
			input:   "(xy 1 2)",
			wantErr: true,
		},
		{
			name:    "bad number",
			input:   "(at one 2)",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetPosition(parseSexp(t, tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetPosition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("GetPosition() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFindNodes(t *testing.T) {
	s := parseSexp(t, `(wire (pts (xy 0 0) (xy 10 0)) (uuid "w1"))`)

	pts, ok := FindNode(s, "pts")
	if !ok {
		t.Fatal("pts not found")
	}
	if got := len(FindAllNodes(pts, "xy")); got != 2 {
		t.Errorf("FindAllNodes(xy) = %d nodes, want 2", got)
	}

	uuidNode, ok := FindNode(s, "uuid")
	if !ok {
		t.Fatal("uuid not found")
	}
	id, err := GetUUID(uuidNode)
	if err != nil || id != "w1" {
		t.Errorf("GetUUID() = %q, %v", id, err)
	}

	if _, ok := FindNode(s, "stroke"); ok {
		t.Error("unexpected stroke node")
	}
}

func TestGetFlag(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"(pin power_in line hide)", true},
		{"(pin power_in line (hide yes))", true},
		{"(pin power_in line (hide no))", false},
		{"(pin power_in line)", false},
	}

	for _, tt := range tests {
		if got := GetFlag(parseSexp(t, tt.input), "hide"); got != tt.want {
			t.Errorf("GetFlag(%s) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestGetProperty(t *testing.T) {
	s := parseSexp(t, `(property "Reference" "#PWR01" (at 0 0 0) (effects (font (size 1.27 1.27)) (hide yes)))`)

	prop, err := GetProperty(s)
	if err != nil {
		t.Fatalf("GetProperty() error = %v", err)
	}
	if prop.Key != "Reference" || prop.Value != "#PWR01" {
		t.Errorf("GetProperty() = %q=%q", prop.Key, prop.Value)
	}
	if !prop.Effects.Hide {
		t.Error("expected hidden property")
	}
}
