package manifest

import (
	"strings"
	"testing"
)

const sceneDoc = `
entities:
  - id: 1
    kind: cube
    position: [0, 5, 0]
    physics: true
    dynamic: true
    sensors:
      - {width: 64, height: 64}
    controller: hover
  - id: 2
    kind: cuboid
    position: [1, 0, 1]
    dims: [2, 0.5, 2]
    physics: true
  - id: 3
    kind: polyline
    points: [[0, 0, 0], [1, 0, 0], [1, 0, 1]]
    width: 0.1
    color: [1, 0, 0, 1]
`

func TestParseScene(t *testing.T) {
	s, err := Parse([]byte(sceneDoc))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Entities) != 3 {
		t.Fatalf("parsed %d entities, want 3", len(s.Entities))
	}

	cube := s.Entities[0]
	if !cube.Physics || !cube.Dynamic || cube.Controller != "hover" {
		t.Errorf("cube spec = %+v", cube)
	}
	if len(cube.Sensors) != 1 || cube.Sensors[0].Width != 64 {
		t.Errorf("cube sensors = %+v", cube.Sensors)
	}
	if iso := cube.Isometry(); iso.Translation.Y() != 5 {
		t.Errorf("cube spawn y = %v, want 5", iso.Translation.Y())
	}
	if mesh := cube.Mesh(); len(mesh) != 36 {
		t.Errorf("cube mesh has %d vertices, want 36", len(mesh))
	}

	if mesh := s.Entities[1].Mesh(); len(mesh) != 36 {
		t.Errorf("cuboid mesh has %d vertices, want 36", len(mesh))
	}

	// Two segments, six vertices each.
	if mesh := s.Entities[2].Mesh(); len(mesh) != 12 {
		t.Errorf("polyline mesh has %d vertices, want 12", len(mesh))
	}
}

func TestParseRejectsInvalidSpecs(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown kind",
			doc: `
entities:
  - id: 1
    kind: sphere
`,
			want: "unknown kind",
		},
		{
			name: "cuboid without dims",
			doc: `
entities:
  - id: 1
    kind: cuboid
`,
			want: "needs dims",
		},
		{
			name: "polyline with one point",
			doc: `
entities:
  - id: 1
    kind: polyline
    points: [[0, 0, 0]]
    width: 0.1
`,
			want: "at least two points",
		},
		{
			name: "polyline without width",
			doc: `
entities:
  - id: 1
    kind: polyline
    points: [[0, 0, 0], [1, 0, 0]]
`,
			want: "positive width",
		},
		{
			name: "not yaml",
			doc:  `{entities: [`,
			want: "parse manifest",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if err == nil {
				t.Fatal("Parse accepted an invalid manifest")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestPolylineDefaultColor(t *testing.T) {
	s, err := Parse([]byte(`
entities:
  - id: 1
    kind: polyline
    points: [[0, 0, 0], [1, 0, 0]]
    width: 0.5
`))
	if err != nil {
		t.Fatal(err)
	}
	mesh := s.Entities[0].Mesh()
	if len(mesh) == 0 {
		t.Fatal("empty polyline mesh")
	}
	if mesh[0].Color == ([4]float32{}) {
		t.Error("polyline without explicit color rendered fully transparent")
	}
}
