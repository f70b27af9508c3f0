package models

import (
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/scanline/pkg/math3d"
)

// triangleDocument builds a document holding one red triangle in the z=0
// plane with ushort indices.
func triangleDocument() *gltf.Document {
	var data []byte
	for _, p := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		for _, c := range p {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(c))
		}
	}
	for _, i := range []uint16{0, 1, 2, 0} { // trailing pad
		data = binary.LittleEndian.AppendUint16(data, i)
	}

	red := [4]float64{1, 0, 0, 1}
	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 6},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
		},
		Materials: []*gltf.Material{
			{Name: "red", PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &red}},
		},
		Meshes: []*gltf.Mesh{{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0},
				Indices:    gltf.Index(1),
				Material:   gltf.Index(0),
			}},
		}},
	}
}

func checkTriangleMesh(t *testing.T, mesh *Mesh) {
	t.Helper()

	if mesh.VertexCount() != 3 || mesh.TriangleCount() != 1 {
		t.Fatalf("got %d vertices, %d triangles; want 3, 1", mesh.VertexCount(), mesh.TriangleCount())
	}
	if got := mesh.GetFace(0); got != [3]int{0, 1, 2} {
		t.Errorf("face = %v, want counter-clockwise [0 1 2]", got)
	}
	if _, n := mesh.GetVertex(1); n != math3d.V3(0, 0, 1) {
		t.Errorf("computed normal = %v, want +z", n)
	}
	if c, ok := mesh.GetFaceColor(0); !ok || c != [4]float64{1, 0, 0, 1} {
		t.Errorf("face color = %v, %v; want red", c, ok)
	}
	if len(mesh.Groups) != 1 || mesh.Groups[0] != "tri" {
		t.Errorf("groups = %v, want [tri]", mesh.Groups)
	}
	if mesh.BoundsMax != math3d.V3(1, 1, 0) {
		t.Errorf("bounds max = %v", mesh.BoundsMax)
	}
}

func TestFromDocument(t *testing.T) {
	mesh, err := NewGLTFLoader().FromDocument(triangleDocument(), "tri.glb")
	if err != nil {
		t.Fatal(err)
	}
	checkTriangleMesh(t, mesh)
}

func TestLoadGLBRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(triangleDocument(), path); err != nil {
		t.Fatal(err)
	}

	mesh, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Name != "tri.glb" {
		t.Errorf("name = %q", mesh.Name)
	}
	checkTriangleMesh(t, mesh)
}

func TestFromDocumentErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc *gltf.Document)
	}{
		{"accessor out of range", func(doc *gltf.Document) {
			doc.Meshes[0].Primitives[0].Attributes = map[string]int{gltf.POSITION: 7}
		}},
		{"count past buffer end", func(doc *gltf.Document) {
			doc.Accessors[0].Count = 30
		}},
		{"float indices", func(doc *gltf.Document) {
			doc.Accessors[1].ComponentType = gltf.ComponentFloat
		}},
		{"index past vertices", func(doc *gltf.Document) {
			doc.Buffers[0].Data[36] = 9
		}},
		{"missing buffer view", func(doc *gltf.Document) {
			doc.Accessors[0].BufferView = nil
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := triangleDocument()
			tc.mutate(doc)
			_, err := NewGLTFLoader().FromDocument(doc, "bad")
			if !errors.Is(err, ErrInvalidGLTF) {
				t.Errorf("err = %v, want ErrInvalidGLTF", err)
			}
		})
	}
}

func TestFromDocumentSkipsNonTriangles(t *testing.T) {
	doc := triangleDocument()
	doc.Meshes[0].Primitives[0].Mode = gltf.PrimitiveLines

	mesh, err := NewGLTFLoader().FromDocument(doc, "lines")
	if err != nil {
		t.Fatal(err)
	}
	if mesh.TriangleCount() != 0 {
		t.Errorf("got %d triangles from a line primitive", mesh.TriangleCount())
	}
}

// halfNormalDocument holds the red triangle twice: once with a NORMAL
// attribute pointing at -z and once with positions only.
func halfNormalDocument() *gltf.Document {
	doc := triangleDocument()
	buf := doc.Buffers[0]
	buf.Data = append(buf.Data, 0, 0) // align floats to 4 bytes
	offset := len(buf.Data)
	for range 3 {
		for _, c := range []float32{0, 0, -1} {
			buf.Data = binary.LittleEndian.AppendUint32(buf.Data, math.Float32bits(c))
		}
	}
	buf.ByteLength = len(buf.Data)

	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{Buffer: 0, ByteOffset: offset, ByteLength: 36})
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView: gltf.Index(2), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3,
	})

	bare := doc.Meshes[0].Primitives[0]
	withNormals := &gltf.Primitive{
		Attributes: map[string]int{gltf.POSITION: 0, gltf.NORMAL: 2},
		Indices:    bare.Indices,
		Material:   bare.Material,
	}
	doc.Meshes[0].Primitives = []*gltf.Primitive{withNormals, bare}
	return doc
}

func TestFromDocumentFillsMissingNormals(t *testing.T) {
	tests := []struct {
		name      string
		calculate bool
		want      math3d.Vec3
	}{
		{"computed", true, math3d.V3(0, 0, 1)},
		{"left zero", false, math3d.Zero3()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loader := &GLTFLoader{CalculateNormals: tc.calculate}
			mesh, err := loader.FromDocument(halfNormalDocument(), "half.glb")
			if err != nil {
				t.Fatal(err)
			}
			if mesh.VertexCount() != 6 {
				t.Fatalf("got %d vertices, want 6", mesh.VertexCount())
			}
			for i := range 3 {
				if _, n := mesh.GetVertex(i); n != math3d.V3(0, 0, -1) {
					t.Errorf("supplied normal %d = %v, want -z", i, n)
				}
			}
			for i := 3; i < 6; i++ {
				if _, n := mesh.GetVertex(i); n != tc.want {
					t.Errorf("normal %d = %v, want %v", i, n, tc.want)
				}
			}
		})
	}
}

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load("model.stl"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}
