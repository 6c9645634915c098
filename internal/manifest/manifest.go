// Package manifest loads YAML scene manifests: the list of entities to
// spawn at boot, with their geometry, physics, sensors, and controllers.
package manifest

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/vantage3d/vantage/internal/geom"
)

// Scene is the top-level manifest document.
type Scene struct {
	Entities []EntitySpec `yaml:"entities"`
}

// SensorSpec is one sensor camera viewport size.
type SensorSpec struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

// EntitySpec describes one entity to spawn.
type EntitySpec struct {
	ID       uint32     `yaml:"id"`
	Kind     string     `yaml:"kind"` // "cube", "cuboid", or "polyline"
	Position [3]float32 `yaml:"position"`

	// Cuboid fields.
	Dims [3]float32 `yaml:"dims"`

	// Polyline fields.
	Points [][3]float32 `yaml:"points"`
	Width  float32      `yaml:"width"`
	Color  [4]float32   `yaml:"color"`

	Physics    bool         `yaml:"physics"`
	Dynamic    bool         `yaml:"dynamic"`
	Sensors    []SensorSpec `yaml:"sensors"`
	Controller string       `yaml:"controller"`
}

// Load reads and parses a scene manifest.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a scene manifest document.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for i := range s.Entities {
		if err := s.Entities[i].validate(); err != nil {
			return nil, fmt.Errorf("entity %d (id %d): %w", i, s.Entities[i].ID, err)
		}
	}
	return &s, nil
}

func (e *EntitySpec) validate() error {
	switch e.Kind {
	case "cube":
	case "cuboid":
		if e.Dims == ([3]float32{}) {
			return fmt.Errorf("cuboid needs dims")
		}
	case "polyline":
		if len(e.Points) < 2 {
			return fmt.Errorf("polyline needs at least two points")
		}
		if e.Width <= 0 {
			return fmt.Errorf("polyline needs a positive width")
		}
	default:
		return fmt.Errorf("unknown kind %q", e.Kind)
	}
	return nil
}

// Mesh builds the untransformed mesh for this spec.
func (e *EntitySpec) Mesh() geom.Mesh {
	switch e.Kind {
	case "cube":
		return geom.UnitCube()
	case "cuboid":
		return geom.Cuboid(mgl32.Vec3{}, mgl32.Vec3{e.Dims[0], e.Dims[1], e.Dims[2]})
	case "polyline":
		points := make([]mgl32.Vec3, len(e.Points))
		for i, p := range e.Points {
			points[i] = mgl32.Vec3{p[0], p[1], p[2]}
		}
		color := e.Color
		if color == ([4]float32{}) {
			color = [4]float32{0.7, 0.7, 0.7, 1.0}
		}
		return geom.FlatPolyline(points, e.Width, color)
	}
	return nil
}

// Isometry returns the spawn transform for this spec.
func (e *EntitySpec) Isometry() geom.Isometry {
	return geom.Translate(mgl32.Vec3{e.Position[0], e.Position[1], e.Position[2]})
}
