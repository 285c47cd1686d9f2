package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief a 4x4 matrix stored column-major: Data[col*4+row]. Vectors are
 * transformed as M * v.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief A position-only vertex, as used by the flat shaded lessons.
 */
type VertexPosition struct {
	Position Vec3
}

/**
 * @brief A vertex with a per-vertex colour.
 */
type VertexColour struct {
	/** @brief The position of the vertex */
	Position Vec3
	/** @brief The colour of the vertex. */
	Colour Vec4
}

/**
 * @brief A vertex with a texture coordinate.
 */
type VertexTexcoord struct {
	/** @brief The position of the vertex */
	Position Vec3
	/** @brief The texture coordinate of the vertex. */
	Texcoord Vec2
}

/**
 * @brief A lit, textured vertex.
 */
type VertexNormalTexcoord struct {
	/** @brief The position of the vertex */
	Position Vec3
	/** @brief The normal of the vertex. */
	Normal Vec3
	/** @brief The texture coordinate of the vertex. */
	Texcoord Vec2
}
