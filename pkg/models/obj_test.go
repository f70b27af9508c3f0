package models

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 2
g front
f 1//1 2//1 3//1 4//1
`

func TestParseOBJQuad(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ), "")
	if err != nil {
		t.Fatal(err)
	}

	if mesh.VertexCount() != 4 || mesh.TriangleCount() != 2 {
		t.Fatalf("got %d vertices, %d triangles; want 4, 2", mesh.VertexCount(), mesh.TriangleCount())
	}
	if got := mesh.GetFace(1); got != [3]int{0, 2, 3} {
		t.Errorf("second fan triangle = %v, want [0 2 3]", got)
	}
	if _, n := mesh.GetVertex(2); n != math3d.V3(0, 0, 1) {
		t.Errorf("normal = %v, want normalized +z", n)
	}
	if len(mesh.Groups) != 1 || mesh.Groups[0] != "front" || mesh.Faces[0].Group != 0 {
		t.Errorf("groups = %v, face group = %d", mesh.Groups, mesh.Faces[0].Group)
	}
	if mesh.Faces[0].Material != -1 {
		t.Errorf("material = %d, want -1", mesh.Faces[0].Material)
	}
	if mesh.BoundsMin != math3d.Zero3() || mesh.BoundsMax != math3d.V3(1, 1, 0) {
		t.Errorf("bounds = %v..%v", mesh.BoundsMin, mesh.BoundsMax)
	}
}

func TestParseOBJFaceForms(t *testing.T) {
	tests := []struct {
		name     string
		face     string
		vertices int
	}{
		{"positions", "f 1 2 3", 3},
		{"with texcoords", "f 1/1 2/2 3/3", 3},
		{"with normals", "f 1//1 2//1 3//1", 3},
		{"full", "f 1/1/1 2/2/1 3/3/1", 3},
		{"negative", "f -4 -3 -2", 3},
		{"mixed reuse", "f 1 2 3\nf 3 2 4", 4},
	}

	const header = "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nvn 0 0 1\n"
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mesh, err := ParseOBJ(strings.NewReader(header+tc.face+"\n"), "")
			if err != nil {
				t.Fatal(err)
			}
			if mesh.VertexCount() != tc.vertices {
				t.Errorf("got %d vertices, want %d", mesh.VertexCount(), tc.vertices)
			}
			if pos, n := mesh.GetVertex(0); pos != math3d.Zero3() || n != math3d.V3(0, 0, 1) {
				t.Errorf("vertex 0 = %v, %v", pos, n)
			}
		})
	}
}

func TestParseOBJComputesSmoothNormals(t *testing.T) {
	// two faces of a tent sharing the ridge edge
	src := "v 0 0 1\nv 0 0 -1\nv 1 1 0\nv -1 1 0\nf 2 1 3\nf 1 2 4\n"
	mesh, err := ParseOBJ(strings.NewReader(src), "")
	if err != nil {
		t.Fatal(err)
	}

	// the ridge vertices average the two slopes
	_, n := mesh.GetVertex(0)
	if n.Sub(math3d.V3(0, 1, 0)).Len() > 1e-9 {
		t.Errorf("ridge normal = %v, want +y", n)
	}
}

func TestParseOBJFillsMissingNormals(t *testing.T) {
	// the first face supplies +z normals, the second faces +y and has none
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 0 -1\nvn 0 0 1\n" +
		"f 1//1 2//1 3//1\nf 1 2 4\n"
	mesh, err := ParseOBJ(strings.NewReader(src), "")
	if err != nil {
		t.Fatal(err)
	}
	if mesh.VertexCount() != 6 {
		t.Fatalf("got %d vertices, want 6", mesh.VertexCount())
	}

	for face, want := range []math3d.Vec3{math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)} {
		for _, vi := range mesh.GetFace(face) {
			if _, n := mesh.GetVertex(vi); n.Sub(want).Len() > 1e-9 {
				t.Errorf("face %d vertex %d normal = %v, want %v", face, vi, n, want)
			}
		}
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line string
	}{
		{"bad float", "v 0 x 0\n", "line 1"},
		{"short vertex", "v 0 0\n", "line 1"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n", "line 2"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", "line 4"},
		{"two vertex face", "v 0 0 0\nv 1 0 0\nf 1 2\n", "line 3"},
		{"normal out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n", "line 4"},
		{"usemtl without name", "usemtl\n", "line 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tc.src), "")
			if !errors.Is(err, ErrInvalidOBJ) {
				t.Fatalf("err = %v, want ErrInvalidOBJ", err)
			}
			if !strings.Contains(err.Error(), tc.line) {
				t.Errorf("err = %v, want it to mention %q", err, tc.line)
			}
		})
	}
}

func TestLoadOBJWithMaterials(t *testing.T) {
	dir := t.TempDir()
	mtl := `newmtl red
Ka 0.1 0 0
Kd 1 0 0
Ks 0.5 0.5 0.5
Ns 32
d 0.5
newmtl plain
`
	obj := `mtllib scene.mtl missing.mtl
v 0 0 0
v 1 0 0
v 0 1 0
usemtl red
f 1 2 3
usemtl plain
f 1 2 3
usemtl unknown
f 1 2 3
`
	if err := os.WriteFile(filepath.Join(dir, "scene.mtl"), []byte(mtl), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "scene.obj")
	if err := os.WriteFile(path, []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}

	mesh, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Name != "scene.obj" || mesh.MaterialCount() != 2 {
		t.Fatalf("name %q with %d materials", mesh.Name, mesh.MaterialCount())
	}

	red := mesh.GetMaterial(mesh.GetFaceMaterial(0))
	if red == nil || red.Name != "red" {
		t.Fatalf("face 0 material = %+v", red)
	}
	if red.Diffuse != [4]float64{1, 0, 0, 0.5} || red.Shininess != 32 || red.Specular[0] != 0.5 {
		t.Errorf("red = %+v", red)
	}

	if c, ok := mesh.GetFaceColor(1); !ok || c != DefaultMaterial("plain").Diffuse {
		t.Errorf("plain face color = %v, %v", c, ok)
	}
	if _, ok := mesh.GetFaceColor(2); ok {
		t.Error("unknown material should leave the face uncolored")
	}
}

func TestParseMTLErrors(t *testing.T) {
	for _, src := range []string{"newmtl\n", "newmtl a\nKd 1 0\n", "newmtl a\nNs shiny\n"} {
		if _, err := ParseMTL(strings.NewReader(src)); !errors.Is(err, ErrInvalidOBJ) {
			t.Errorf("ParseMTL(%q) err = %v, want ErrInvalidOBJ", src, err)
		}
	}
}

func TestLoadOBJMissingFile(t *testing.T) {
	if _, err := LoadOBJ(filepath.Join(t.TempDir(), "none.obj")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}
