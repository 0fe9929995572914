package viz

import (
	"fmt"
	"io"
	"os"
)

// WritePathsOBJ writes every overlay as a named OBJ polyline object so the
// paths can be inspected over the source geometry in a 3D viewer. Empty
// overlays emit an object with no geometry, which viewers show as absent.
func WritePathsOBJ(w io.Writer, overlays []Overlay) error {
	vertBase := 1 // OBJ indices are 1-based

	for _, ov := range overlays {
		if _, err := fmt.Fprintf(w, "o %s\n", ov.Name); err != nil {
			return fmt.Errorf("write obj object: %w", err)
		}

		for _, p := range ov.Points {
			if _, err := fmt.Fprintf(w, "v %g %g %g\n", p[0], p[1], p[2]); err != nil {
				return fmt.Errorf("write obj vertex: %w", err)
			}
		}

		if len(ov.Points) >= 2 {
			if _, err := io.WriteString(w, "l"); err != nil {
				return fmt.Errorf("write obj line: %w", err)
			}

			for i := range ov.Points {
				if _, err := fmt.Fprintf(w, " %d", vertBase+i); err != nil {
					return fmt.Errorf("write obj line: %w", err)
				}
			}

			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("write obj line: %w", err)
			}
		}

		vertBase += len(ov.Points)
	}

	return nil
}

// SavePathsOBJ writes the overlays to a file.
func SavePathsOBJ(path string, overlays []Overlay) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WritePathsOBJ(f, overlays); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
