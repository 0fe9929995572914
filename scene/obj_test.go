package scene

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseOBJTriangles(t *testing.T) {
	input := `# comment
v 0 0 0
v 1 0 0
v 0 0 1
f 1 2 3
`

	node, err := ParseOBJ(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if got := len(node.Mesh.Positions); got != 9 {
		t.Errorf("position floats = %d, want 9", got)
	}

	want := []uint32{0, 1, 2}
	if !reflect.DeepEqual(node.Mesh.Indices, want) {
		t.Errorf("indices = %v, want %v", node.Mesh.Indices, want)
	}
}

func TestParseOBJFanTriangulation(t *testing.T) {
	input := `v 0 0 0
v 1 0 0
v 1 0 1
v 0 0 1
f 1 2 3 4
`

	node, err := ParseOBJ(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	want := []uint32{0, 1, 2, 0, 2, 3}
	if !reflect.DeepEqual(node.Mesh.Indices, want) {
		t.Errorf("indices = %v, want %v (quad must fan into two triangles)", node.Mesh.Indices, want)
	}
}

func TestParseOBJNegativeAndSlashedIndices(t *testing.T) {
	input := `v 0 0 0
v 1 0 0
v 0 0 1
f -3/1 -2/2/1 -1//1
`

	node, err := ParseOBJ(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	want := []uint32{0, 1, 2}
	if !reflect.DeepEqual(node.Mesh.Indices, want) {
		t.Errorf("indices = %v, want %v", node.Mesh.Indices, want)
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "out of range index", input: "v 0 0 0\nf 1 2 3\n"},
		{name: "zero index", input: "v 0 0 0\nv 1 0 0\nv 0 0 1\nf 0 1 2\n"},
		{name: "bad coordinate", input: "v a b c\n"},
		{name: "short face", input: "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOBJ(strings.NewReader(tt.input)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	cfg := Config{GroundSize: 30, Obstacles: 8, ObstacleMin: 1, ObstacleMax: 3, Seed: 99}

	_, first := NewGenerator(cfg).Generate()
	_, second := NewGenerator(cfg).Generate()

	if first != second {
		t.Errorf("summaries differ: %+v vs %+v", first, second)
	}
	if first.Nodes != 11 {
		t.Errorf("nodes = %d, want 11 (root + ground + 8 obstacles + ramp)", first.Nodes)
	}
}
