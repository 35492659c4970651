// Package solid holds the boundary representation of planar solids and the
// parametric constructors that build them.
package solid

import (
	"errors"
	"fmt"

	"github.com/philipparndt/gobox/pkg/geometry"
)

// ErrNotClosed is returned when the faces do not form a closed 2-manifold
var ErrNotClosed = errors.New("solid: shell is not closed")

// Edge joins two vertices. A is always the lower vertex index.
type Edge struct {
	A, B int
}

// Face is a planar polygon. Loop lists vertex indices counter-clockwise
// when seen from outside the solid.
type Face struct {
	Normal geometry.Vector3
	Loop   []int
}

// OrientedEdge references an edge as it is traversed by a face loop
type OrientedEdge struct {
	Edge    int
	Forward bool
}

// Solid is an immutable closed shell of planar faces
type Solid struct {
	Vertices []geometry.Vector3
	Edges    []Edge
	Faces    []Face

	edgeFaces [][2]int
	loops     [][]OrientedEdge
}

// New builds a solid from vertices and outward-wound faces and derives the
// edge topology. Every edge must be shared by exactly two faces.
func New(vertices []geometry.Vector3, faces []Face) (*Solid, error) {
	s := &Solid{
		Vertices: vertices,
		Faces:    faces,
		loops:    make([][]OrientedEdge, len(faces)),
	}

	index := make(map[Edge]int)
	uses := make([]int, 0)

	for fi, face := range faces {
		if len(face.Loop) < 3 {
			return nil, fmt.Errorf("solid: face %d has %d vertices", fi, len(face.Loop))
		}
		for i, a := range face.Loop {
			b := face.Loop[(i+1)%len(face.Loop)]
			if a < 0 || a >= len(vertices) || b < 0 || b >= len(vertices) {
				return nil, fmt.Errorf("solid: face %d references missing vertex", fi)
			}

			key := Edge{A: min(a, b), B: max(a, b)}
			ei, ok := index[key]
			if !ok {
				ei = len(s.Edges)
				index[key] = ei
				s.Edges = append(s.Edges, key)
				s.edgeFaces = append(s.edgeFaces, [2]int{fi, -1})
				uses = append(uses, 0)
			} else if uses[ei] == 1 {
				s.edgeFaces[ei][1] = fi
			}
			uses[ei]++

			s.loops[fi] = append(s.loops[fi], OrientedEdge{Edge: ei, Forward: a == key.A})
		}
	}

	for ei, n := range uses {
		if n != 2 {
			return nil, fmt.Errorf("%w: edge %d-%d used by %d faces", ErrNotClosed, s.Edges[ei].A, s.Edges[ei].B, n)
		}
	}

	return s, nil
}

// EdgeFaces returns the two faces that share an edge
func (s *Solid) EdgeFaces(edge int) (int, int) {
	f := s.edgeFaces[edge]
	return f[0], f[1]
}

// LoopEdges returns the oriented edges bounding a face, in loop order
func (s *Solid) LoopEdges(face int) []OrientedEdge {
	return s.loops[face]
}

// BoundingBox returns the axis-aligned bounds of all vertices
func (s *Solid) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, v := range s.Vertices {
		bbox.Extend(v)
	}
	return bbox
}

// Triangles tessellates every face as a fan around its first vertex.
// Faces are convex, so the fan covers them exactly.
func (s *Solid) Triangles() []geometry.Triangle {
	triangles := make([]geometry.Triangle, 0, 2*len(s.Faces))
	for _, face := range s.Faces {
		v0 := s.Vertices[face.Loop[0]]
		for i := 1; i+1 < len(face.Loop); i++ {
			triangles = append(triangles, geometry.NewTriangle(
				face.Normal,
				v0,
				s.Vertices[face.Loop[i]],
				s.Vertices[face.Loop[i+1]],
			))
		}
	}
	return triangles
}
