package lessons

import (
	"github.com/spaghettifunk/nehe/engine/math"
)

func litVertex(x, y, z, nx, ny, nz, u, v float32) math.VertexNormalTexcoord {
	return math.VertexNormalTexcoord{
		Position: math.Vec3{X: x, Y: y, Z: z},
		Normal:   math.Vec3{X: nx, Y: ny, Z: nz},
		Texcoord: math.Vec2{X: u, Y: v},
	}
}

// cubeVertices is a unit cube with four vertices per face so each face has
// its own normal and texture coordinates.
var cubeVertices = []math.VertexNormalTexcoord{
	// Front
	litVertex(-1, -1, 1, 0, 0, 1, 0, 0),
	litVertex(1, -1, 1, 0, 0, 1, 1, 0),
	litVertex(1, 1, 1, 0, 0, 1, 1, 1),
	litVertex(-1, 1, 1, 0, 0, 1, 0, 1),
	// Back
	litVertex(-1, -1, -1, 0, 0, -1, 1, 0),
	litVertex(-1, 1, -1, 0, 0, -1, 1, 1),
	litVertex(1, 1, -1, 0, 0, -1, 0, 1),
	litVertex(1, -1, -1, 0, 0, -1, 0, 0),
	// Top
	litVertex(-1, 1, -1, 0, 1, 0, 0, 1),
	litVertex(-1, 1, 1, 0, 1, 0, 0, 0),
	litVertex(1, 1, 1, 0, 1, 0, 1, 0),
	litVertex(1, 1, -1, 0, 1, 0, 1, 1),
	// Bottom
	litVertex(-1, -1, -1, 0, -1, 0, 1, 1),
	litVertex(1, -1, -1, 0, -1, 0, 0, 1),
	litVertex(1, -1, 1, 0, -1, 0, 0, 0),
	litVertex(-1, -1, 1, 0, -1, 0, 1, 0),
	// Right
	litVertex(1, -1, -1, 1, 0, 0, 1, 0),
	litVertex(1, 1, -1, 1, 0, 0, 1, 1),
	litVertex(1, 1, 1, 1, 0, 0, 0, 1),
	litVertex(1, -1, 1, 1, 0, 0, 0, 0),
	// Left
	litVertex(-1, -1, -1, -1, 0, 0, 0, 0),
	litVertex(-1, -1, 1, -1, 0, 0, 1, 0),
	litVertex(-1, 1, 1, -1, 0, 0, 1, 1),
	litVertex(-1, 1, -1, -1, 0, 0, 0, 1),
}

var cubeIndices = []uint16{
	0, 1, 2, 2, 3, 0,
	4, 5, 6, 6, 7, 4,
	8, 9, 10, 10, 11, 8,
	12, 13, 14, 14, 15, 12,
	16, 17, 18, 18, 19, 16,
	20, 21, 22, 22, 23, 20,
}

// texturedCube drops the normals for lessons that are not lit.
func texturedCube() []math.VertexTexcoord {
	out := make([]math.VertexTexcoord, len(cubeVertices))
	for i, v := range cubeVertices {
		out[i] = math.VertexTexcoord{Position: v.Position, Texcoord: v.Texcoord}
	}
	return out
}
