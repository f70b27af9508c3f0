package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/scanline/pkg/math3d"
)

// ErrInvalidOBJ is returned for OBJ or MTL statements that cannot be parsed.
var ErrInvalidOBJ = errors.New("invalid OBJ data")

// LoadOBJ loads a Wavefront OBJ file. Material libraries are resolved
// relative to the file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// objVertex identifies a mesh vertex by its position and normal indices.
type objVertex struct {
	v, vn int
}

type objParser struct {
	dir  string
	mesh *Mesh

	positions []math3d.Vec3
	normals   []math3d.Vec3

	vertices  map[objVertex]int
	materials map[string]int
	groups    map[string]int

	material int
	group    int
}

// ParseOBJ reads OBJ data from r. Polygons are split into triangle fans and
// vertices without normals get smooth normals computed from the faces. dir
// is where mtllib files are looked up; an empty dir skips them.
func ParseOBJ(r io.Reader, dir string) (*Mesh, error) {
	p := &objParser{
		dir:       dir,
		mesh:      NewMesh("obj"),
		vertices:  make(map[objVertex]int),
		materials: make(map[string]int),
		groups:    make(map[string]int),
		material:  -1,
		group:     -1,
	}

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	p.mesh.FillMissingNormals()
	p.mesh.CalculateBounds()
	return p.mesh, nil
}

func (p *objParser) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	args := fields[1:]

	switch fields[0] {
	case "v":
		v, err := parseVec3(args)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, v)
	case "vn":
		v, err := parseVec3(args)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, v.Normalize())
	case "f":
		return p.parseFace(args)
	case "g":
		name := "default"
		if len(args) > 0 {
			name = strings.Join(args, " ")
		}
		p.group = lookup(p.groups, &p.mesh.Groups, name)
	case "usemtl":
		if len(args) == 0 {
			return fmt.Errorf("usemtl without a name: %w", ErrInvalidOBJ)
		}
		idx, ok := p.materials[args[0]]
		if !ok {
			idx = -1
		}
		p.material = idx
	case "mtllib":
		for _, name := range args {
			if err := p.loadMaterials(name); err != nil {
				return err
			}
		}
	}
	// vt, o, s and other statements do not affect the mesh.
	return nil
}

func (p *objParser) parseFace(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face with %d vertices: %w", len(args), ErrInvalidOBJ)
	}

	idx := make([]int, len(args))
	for i, a := range args {
		key, err := p.parseFaceVertex(a)
		if err != nil {
			return err
		}
		vi, ok := p.vertices[key]
		if !ok {
			vi = len(p.mesh.Vertices)
			v := MeshVertex{Position: p.positions[key.v]}
			if key.vn >= 0 {
				v.Normal = p.normals[key.vn]
			}
			p.mesh.Vertices = append(p.mesh.Vertices, v)
			p.vertices[key] = vi
		}
		idx[i] = vi
	}

	for i := 1; i+1 < len(idx); i++ {
		p.mesh.Faces = append(p.mesh.Faces, Face{
			V:        [3]int{idx[0], idx[i], idx[i+1]},
			Material: p.material,
			Group:    p.group,
		})
	}
	return nil
}

// parseFaceVertex parses v, v/vt, v//vn or v/vt/vn.
func (p *objParser) parseFaceVertex(s string) (objVertex, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return objVertex{}, fmt.Errorf("face vertex %q: %w", s, ErrInvalidOBJ)
	}

	v, err := resolveIndex(parts[0], len(p.positions))
	if err != nil {
		return objVertex{}, fmt.Errorf("face vertex %q: %w", s, err)
	}
	key := objVertex{v: v, vn: -1}

	if len(parts) == 3 && parts[2] != "" {
		key.vn, err = resolveIndex(parts[2], len(p.normals))
		if err != nil {
			return objVertex{}, fmt.Errorf("face normal %q: %w", s, err)
		}
	}
	return key, nil
}

// resolveIndex turns a 1-based or negative relative OBJ index into a
// 0-based one.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidOBJ, err)
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	default:
		return 0, fmt.Errorf("index %d out of range [1, %d]: %w", i, n, ErrInvalidOBJ)
	}
}

func (p *objParser) loadMaterials(name string) error {
	if p.dir == "" {
		return nil
	}

	f, err := os.Open(filepath.Join(p.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		// Missing libraries leave faces uncolored.
		return nil
	}
	if err != nil {
		return fmt.Errorf("open mtl: %w", err)
	}
	defer f.Close()

	mats, err := ParseMTL(f)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for _, m := range mats {
		if i, ok := p.materials[m.Name]; ok {
			p.mesh.Materials[i] = m
			continue
		}
		p.materials[m.Name] = len(p.mesh.Materials)
		p.mesh.Materials = append(p.mesh.Materials, m)
	}
	return nil
}

// ParseMTL reads a material library. It understands newmtl, Ka, Kd, Ks,
// Ns, d and Tr; other statements are ignored.
func ParseMTL(r io.Reader) ([]Material, error) {
	var mats []Material
	cur := -1

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: newmtl without a name: %w", line, ErrInvalidOBJ)
			}
			mats = append(mats, DefaultMaterial(fields[1]))
			cur = len(mats) - 1
			continue
		}
		if cur < 0 {
			continue
		}

		if err := applyMTL(&mats[cur], fields[0], fields[1:]); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read mtl: %w", err)
	}
	return mats, nil
}

func applyMTL(m *Material, key string, args []string) error {
	switch key {
	case "Ka", "Kd", "Ks":
		c, err := parseVec3(args)
		if err != nil {
			return err
		}
		rgba := [4]float64{c.X, c.Y, c.Z, 1}
		switch key {
		case "Ka":
			m.Ambient = rgba
		case "Kd":
			rgba[3] = m.Diffuse[3]
			m.Diffuse = rgba
		case "Ks":
			m.Specular = rgba
		}
	case "Ns", "d", "Tr":
		if len(args) == 0 {
			return fmt.Errorf("%s without a value: %w", key, ErrInvalidOBJ)
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOBJ, err)
		}
		switch key {
		case "Ns":
			m.Shininess = v
		case "d":
			m.Diffuse[3] = v
		case "Tr":
			m.Diffuse[3] = 1 - v
		}
	}
	return nil
}

func parseVec3(args []string) (math3d.Vec3, error) {
	if len(args) < 3 {
		return math3d.Vec3{}, fmt.Errorf("need 3 components, got %d: %w", len(args), ErrInvalidOBJ)
	}
	var c [3]float64
	for i := range c {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("%w: %w", ErrInvalidOBJ, err)
		}
		c[i] = v
	}
	return math3d.V3(c[0], c[1], c[2]), nil
}

// lookup returns the index of name in list, appending it if new.
func lookup(index map[string]int, list *[]string, name string) int {
	if i, ok := index[name]; ok {
		return i
	}
	i := len(*list)
	index[name] = i
	*list = append(*list, name)
	return i
}
