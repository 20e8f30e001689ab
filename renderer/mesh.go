package renderer

import (
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glhologram/geometry"
)

// Mesh is a geometry.Mesh uploaded to vertex and index buffers.
type Mesh struct {
	Local mgl32.Mat4

	vao, vbo, ebo uint32
	mode          uint32
	count         int32
	indexed       bool
}

func UploadMesh(m *geometry.Mesh) *Mesh {
	gm := &Mesh{
		Local: m.Local,
		mode:  gl.TRIANGLES,
		count: int32(m.Count()),
	}
	if m.Local == (mgl32.Mat4{}) {
		gm.Local = mgl32.Ident4()
	}
	if m.Primitive == geometry.Points {
		gm.mode = gl.POINTS
	}

	vertices := m.Interleaved()
	stride := int32(geometry.FloatsPerVertex * 4)

	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	gl.GenBuffers(1, &gm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	}

	gl.EnableVertexAttribArray(positionAttrib)
	gl.VertexAttribPointerWithOffset(positionAttrib, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(normalAttrib)
	gl.VertexAttribPointerWithOffset(normalAttrib, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(uvAttrib)
	gl.VertexAttribPointerWithOffset(uvAttrib, 2, gl.FLOAT, false, stride, 6*4)

	if len(m.Indices) > 0 {
		gm.indexed = true
		gl.GenBuffers(1, &gm.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	return gm
}

// UploadModel uploads every mesh of m.
func UploadModel(m *geometry.Model) []*Mesh {
	meshes := make([]*Mesh, len(m.Meshes))
	for i := range m.Meshes {
		meshes[i] = UploadMesh(&m.Meshes[i])
	}
	return meshes
}

func (m *Mesh) Draw() {
	if m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElementsWithOffset(m.mode, m.count, gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(m.mode, 0, m.count)
	}
}

func (m *Mesh) Delete() {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	if m.indexed {
		gl.DeleteBuffers(1, &m.ebo)
	}
}
