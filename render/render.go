package render

// Renderer produces the triangles of a surface in a stream.
type Renderer interface {
	// ReadTriangles writes triangles to dst and returns the number written.
	// It returns io.EOF once every triangle has been read.
	ReadTriangles(dst []Triangle3) (int, error)
}
