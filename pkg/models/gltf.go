package models

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/scanline/pkg/math3d"
)

// ErrInvalidGLTF is returned for accessors the loader cannot read.
var ErrInvalidGLTF = errors.New("invalid glTF data")

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals fills in normals for vertices of primitives that
	// have no NORMAL attribute.
	CalculateNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
	}
}

// LoadGLB loads a binary (.glb) or JSON (.gltf) glTF file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(doc, filepath.Base(path))
}

// FromDocument converts every triangle primitive of doc into one mesh. Each
// glTF mesh becomes a group; node transforms are not applied.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	for _, mat := range doc.Materials {
		m := DefaultMaterial(mat.Name)
		if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
			m.Diffuse = *pbr.BaseColorFactor
		}
		mesh.Materials = append(mesh.Materials, m)
	}

	for i, m := range doc.Meshes {
		groupName := m.Name
		if groupName == "" {
			groupName = fmt.Sprintf("mesh%d", i)
		}
		mesh.Groups = append(mesh.Groups, groupName)

		if err := l.processMesh(doc, m, len(mesh.Groups)-1, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	if l.CalculateNormals {
		mesh.FillMissingNormals()
	}

	mesh.CalculateBounds()

	return mesh, nil
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, group int, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			// Skip non-triangle primitives (lines, points, strips)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		baseVertex := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: p}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		// glTF front faces are counter-clockwise, the same as the rasterizer's.
		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{Material: material, Group: group}
			for j := range 3 {
				idx := indices[i+j]
				if idx < 0 || idx >= len(positions) {
					return fmt.Errorf("index %d out of range: %w", idx, ErrInvalidGLTF)
				}
				f.V[j] = baseVertex + idx
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}

// readVec3 reads a float VEC3 accessor.
func readVec3(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	acc, err := accessor(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltf.AccessorVec3 || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v/%v: %w", acc.Type, acc.ComponentType, ErrInvalidGLTF)
	}

	data, stride, err := accessorData(doc, acc, 12)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, acc.Count)
	for i := range result {
		b := data[i*stride:]
		result[i] = math3d.V3(
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
		)
	}
	return result, nil
}

// readIndices reads an unsigned SCALAR accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	acc, err := accessor(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v: %w", acc.Type, ErrInvalidGLTF)
	}

	var size int
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type %v: %w", acc.ComponentType, ErrInvalidGLTF)
	}

	data, stride, err := accessorData(doc, acc, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, acc.Count)
	for i := range result {
		b := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range: %w", idx, ErrInvalidGLTF)
	}
	return doc.Accessors[idx], nil
}

// accessorData returns the bytes starting at the accessor's first element
// and the distance between elements. It checks that all acc.Count elements
// of elemSize bytes fit in the buffer.
func accessorData(doc *gltf.Document, acc *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if acc.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view: %w", ErrInvalidGLTF)
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d out of range: %w", *acc.BufferView, ErrInvalidGLTF)
	}
	view := doc.BufferViews[*acc.BufferView]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d out of range: %w", view.Buffer, ErrInvalidGLTF)
	}

	data := doc.Buffers[view.Buffer].Data
	if data == nil {
		return nil, 0, fmt.Errorf("buffer has no data: %w", ErrInvalidGLTF)
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if acc.Count == 0 {
		return nil, stride, nil
	}
	start := view.ByteOffset + acc.ByteOffset
	end := start + (acc.Count-1)*stride + elemSize
	if start < 0 || end > len(data) {
		return nil, 0, fmt.Errorf("accessor needs bytes [%d, %d) of %d: %w", start, end, len(data), ErrInvalidGLTF)
	}
	return data[start:], stride, nil
}
