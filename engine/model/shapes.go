package model

// shapes.go provides procedural geometry for built-in passes and examples.

// NewCube creates a unit cube centered at the origin with per-face normals
// and texture coordinates. The same geometry doubles as skybox geometry: sky
// pipelines sample by direction and ignore the winding by disabling culling.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - Mesh: the unbuilt cube mesh
func NewCube(name string) Mesh {
	type face struct {
		normal [3]float32
		// corner positions in counter-clockwise order seen from outside
		corners [4][3]float32
	}
	h := float32(0.5)
	faces := []face{
		{ // +Z
			normal:  [3]float32{0, 0, 1},
			corners: [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}},
		},
		{ // -Z
			normal:  [3]float32{0, 0, -1},
			corners: [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}},
		},
		{ // +X
			normal:  [3]float32{1, 0, 0},
			corners: [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}},
		},
		{ // -X
			normal:  [3]float32{-1, 0, 0},
			corners: [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}},
		},
		{ // +Y
			normal:  [3]float32{0, 1, 0},
			corners: [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}},
		},
		{ // -Y
			normal:  [3]float32{0, -1, 0},
			corners: [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}},
		},
	}

	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	vertices := make([]MeshVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, corner := range f.corners {
			v := DefaultVertex()
			v.Position = corner
			v.Normal = f.normal
			v.TexCoords = uvs[i]
			vertices = append(vertices, v)
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	mesh := NewMesh(name, vertices, indices)
	mesh.CalcTangents()
	return mesh
}
