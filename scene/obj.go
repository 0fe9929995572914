package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadOBJ reads a Wavefront OBJ file and returns a single-node scene with
// an identity transform carrying its geometry.
func LoadOBJ(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %s: %w", path, err)
	}
	defer f.Close()

	node, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("parse obj %s: %w", path, err)
	}

	node.Name = filepath.Base(path)

	return node, nil
}

// ParseOBJ parses Wavefront OBJ geometry from r. Only v and f statements
// are interpreted; faces with more than three corners are fan-triangulated
// and negative indices are resolved relative to the vertices seen so far.
func ParseOBJ(r io.Reader) (*Node, error) {
	mesh := &Mesh{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}

			for _, s := range fields[1:4] {
				v, err := strconv.ParseFloat(s, 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: vertex coordinate %q: %w", lineNo, s, err)
				}
				mesh.Positions = append(mesh.Positions, float32(v))
			}

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 corners", lineNo)
			}

			corners := make([]uint32, 0, len(fields)-1)
			vertCount := len(mesh.Positions) / 3

			for _, s := range fields[1:] {
				idx, err := parseFaceIndex(s, vertCount)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				corners = append(corners, idx)
			}

			// Fan triangulation around the first corner.
			for i := 2; i < len(corners); i++ {
				mesh.Indices = append(mesh.Indices, corners[0], corners[i-1], corners[i])
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	node := NewNode("obj")
	node.Mesh = mesh

	return node, nil
}

// parseFaceIndex resolves one face corner reference (forms "7", "7/1",
// "7/1/3", "7//3", "-1") into a zero-based vertex index.
func parseFaceIndex(s string, vertCount int) (uint32, error) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("face index %q: %w", s, err)
	}

	switch {
	case v > 0:
		v--
	case v < 0:
		v = vertCount + v
	default:
		return 0, fmt.Errorf("face index 0 is not valid")
	}

	if v < 0 || v >= vertCount {
		return 0, fmt.Errorf("face index %q out of range (have %d vertices)", s, vertCount)
	}

	return uint32(v), nil
}
