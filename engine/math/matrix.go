package math

import "unsafe"

/**
 * @brief Creates and returns an identity matrix:
 *
 * {
 *   {1, 0, 0, 0},
 *   {0, 1, 0, 0},
 *   {0, 0, 1, 0},
 *   {0, 0, 0, 1}
 * }
 */
func Identity() Mat4 {
	var out Mat4
	out.Data[0] = 1.0
	out.Data[5] = 1.0
	out.Data[10] = 1.0
	out.Data[15] = 1.0
	return out
}

/**
 * @brief Creates a translation matrix. The offset lives in the last column.
 */
func Translation(x, y, z float32) Mat4 {
	out := Identity()
	out.Data[12] = x
	out.Data[13] = y
	out.Data[14] = z
	return out
}

// makeRotation fills a column-major 3x3 rotation about a unit axis from the
// cosine and sine of the angle.
func makeRotation(c, s, x, y, z float32) [9]float32 {
	rc := 1.0 - c
	rcx, rcy, rcz := x*rc, y*rc, z*rc
	sx, sy, sz := x*s, y*s, z*s

	var r [9]float32
	r[0] = rcx*x + c
	r[3] = rcx*y - sz
	r[6] = rcx*z + sy

	r[1] = rcy*x + sz
	r[4] = rcy*y + c
	r[7] = rcy*z - sx

	r[2] = rcz*x - sy
	r[5] = rcz*y + sx
	r[8] = rcz*z + c
	return r
}

// makeGLRotation takes the angle in degrees, like glRotatef. The axis is only
// normalized when it is measurably not unit length. A zero axis yields the
// identity.
func makeGLRotation(angleDegrees, x, y, z float32) [9]float32 {
	theta := DegToRad(angleDegrees)
	mag := ksqrt(x*x + y*y + z*z)
	if mag == 0 {
		return [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	}
	if kabs(mag-1.0) > K_FLOAT_EPSILON {
		x, y, z = x/mag, y/mag, z/mag
	}
	return makeRotation(kcos(theta), ksin(theta), x, y, z)
}

/**
 * @brief Creates a rotation of angleDegrees about the axis (x, y, z).
 */
func Rotation(angleDegrees, x, y, z float32) Mat4 {
	r := makeGLRotation(angleDegrees, x, y, z)
	var out Mat4
	copy(out.Data[0:3], r[0:3])
	copy(out.Data[4:7], r[3:6])
	copy(out.Data[8:11], r[6:9])
	out.Data[15] = 1.0
	return out
}

/**
 * @brief Creates a perspective projection.
 *
 *   [w  0  0  0]
 *   [0  h  0  0]
 *   [0  0 zh zl]
 *   [0  0 -1  0]
 *
 * Clip space depth spans [-1, 1], as with glFrustum.
 *
 * @param fovyDegrees The vertical field of view in degrees.
 * @param aspect The width to height ratio of the viewport.
 * @param near The near clipping plane distance.
 * @param far The far clipping plane distance.
 */
func Perspective(fovyDegrees, aspect, near, far float32) Mat4 {
	h := 1.0 / ktan(DegToRad(fovyDegrees)*0.5)
	w := h / aspect
	invClipRange := 1.0 / (far - near)
	zh := -(far + near) * invClipRange
	zl := -(2.0 * far * near) * invClipRange

	var out Mat4
	out.Data[0] = w
	out.Data[5] = h
	out.Data[10] = zh
	out.Data[11] = -1.0
	out.Data[14] = zl
	return out
}

/**
 * @brief Creates an orthographic projection mapping the box
 * [left, right] x [bottom, top] x [-near, -far] onto clip space, as glOrtho.
 */
func Orthographic(left, right, bottom, top, near, far float32) Mat4 {
	lr := 1.0 / (right - left)
	bt := 1.0 / (top - bottom)
	nf := 1.0 / (far - near)

	out := Identity()
	out.Data[0] = 2.0 * lr
	out.Data[5] = 2.0 * bt
	out.Data[10] = -2.0 * nf
	out.Data[12] = -(right + left) * lr
	out.Data[13] = -(top + bottom) * bt
	out.Data[14] = -(far + near) * nf
	return out
}

// Orthographic2D is Orthographic with a depth range of [-1, 1].
func Orthographic2D(left, right, bottom, top float32) Mat4 {
	return Orthographic(left, right, bottom, top, -1.0, 1.0)
}

/**
 * @brief Returns the product mt * other. Column c, row r of the result is the
 * dot product of row r of mt with column c of other.
 */
func (mt Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for i := 0; i < 4; i++ {
				sum += mt.Data[i*4+row] * other.Data[col*4+i]
			}
			out.Data[col*4+row] = sum
		}
	}
	return out
}

/**
 * @brief Transforms v by mt.
 */
func (mt Mat4) MulVec4(v Vec4) Vec4 {
	d := &mt.Data
	return Vec4{
		X: d[0]*v.X + d[4]*v.Y + d[8]*v.Z + d[12]*v.W,
		Y: d[1]*v.X + d[5]*v.Y + d[9]*v.Z + d[13]*v.W,
		Z: d[2]*v.X + d[6]*v.Y + d[10]*v.Z + d[14]*v.W,
		W: d[3]*v.X + d[7]*v.Y + d[11]*v.Z + d[15]*v.W,
	}
}

/**
 * @brief Applies a translation to mt in place: mt = mt * Translation(x, y, z).
 * Only the last column changes.
 */
func (mt *Mat4) Translate(x, y, z float32) {
	d := &mt.Data
	for i := 0; i < 4; i++ {
		d[12+i] += x*d[i] + y*d[4+i] + z*d[8+i]
	}
}

/**
 * @brief Applies a rotation to mt in place: mt = mt * Rotation(angle, x, y, z).
 * Only the upper 3x4 block is touched, so mt must be affine.
 */
func (mt *Mat4) Rotate(angleDegrees, x, y, z float32) {
	r := makeGLRotation(angleDegrees, x, y, z)
	var t [12]float32
	copy(t[:], mt.Data[0:12])

	d := &mt.Data
	for i := 0; i < 4; i++ {
		d[i] = r[0]*t[i] + r[1]*t[4+i] + r[2]*t[8+i]
		d[4+i] = r[3]*t[i] + r[4]*t[4+i] + r[5]*t[8+i]
		d[8+i] = r[6]*t[i] + r[7]*t[4+i] + r[8]*t[8+i]
	}
}

/**
 * @brief Applies a scale to mt in place: mt = mt * diag(x, y, z, 1).
 */
func (mt *Mat4) Scale(x, y, z float32) {
	d := &mt.Data
	for i := 0; i < 4; i++ {
		d[i] *= x
		d[4+i] *= y
		d[8+i] *= z
	}
}

/**
 * @brief Returns the matrix as 64 bytes in host order, suitable for a
 * uniform upload. The slice aliases mt.
 */
func (mt *Mat4) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&mt.Data[0])), int(unsafe.Sizeof(mt.Data)))
}

/**
 * @brief Compares every element of mt and other against tolerance.
 */
func (mt Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := range mt.Data {
		if kabs(mt.Data[i]-other.Data[i]) > tolerance {
			return false
		}
	}
	return true
}
