// Package step reads and writes ISO 10303-21 exchange files (AP214
// automotive_design schema) for planar boundary-representation solids.
package step

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/philipparndt/gobox/pkg/geometry"
	"github.com/philipparndt/gobox/pkg/solid"
)

// Schema is the schema identifier written to FILE_SCHEMA
const Schema = "AUTOMOTIVE_DESIGN { 1 0 10303 214 1 1 1 1 }"

// WriteFile writes the solid to path, replacing any existing file
func WriteFile(path string, s *solid.Solid, name string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, s, name); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write encodes the solid as a single-part STEP file named name
func Write(w io.Writer, s *solid.Solid, name string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "ISO-10303-21;")
	fmt.Fprintln(bw, "HEADER;")
	fmt.Fprintf(bw, "FILE_DESCRIPTION((%s),'2;1');\n", quote("gobox model"))
	fmt.Fprintf(bw, "FILE_NAME(%s,%s,(''),(''),%s,%s,'');\n",
		quote(name), quote(time.Now().UTC().Format("2006-01-02T15:04:05")), quote("gobox"), quote("gobox"))
	fmt.Fprintf(bw, "FILE_SCHEMA((%s));\n", quote(Schema))
	fmt.Fprintln(bw, "ENDSEC;")
	fmt.Fprintln(bw, "DATA;")

	e := &encoder{w: bw, next: 1}
	e.solid(s, name)

	fmt.Fprintln(bw, "ENDSEC;")
	fmt.Fprintln(bw, "END-ISO-10303-21;")

	return bw.Flush()
}

type encoder struct {
	w    *bufio.Writer
	next int
}

// add emits one entity instance and returns its id
func (e *encoder) add(format string, args ...any) int {
	id := e.next
	e.next++
	fmt.Fprintf(e.w, "#%d = %s;\n", id, fmt.Sprintf(format, args...))
	return id
}

func (e *encoder) point(v geometry.Vector3) int {
	return e.add("CARTESIAN_POINT('',(%s,%s,%s))", realLit(v.X), realLit(v.Y), realLit(v.Z))
}

func (e *encoder) direction(v geometry.Vector3) int {
	v = v.Normalize()
	return e.add("DIRECTION('',(%s,%s,%s))", realLit(v.X), realLit(v.Y), realLit(v.Z))
}

func (e *encoder) placement(origin, axis, ref geometry.Vector3) int {
	return e.add("AXIS2_PLACEMENT_3D('',#%d,#%d,#%d)", e.point(origin), e.direction(axis), e.direction(ref))
}

func (e *encoder) solid(s *solid.Solid, name string) {
	points := make([]int, len(s.Vertices))
	vertices := make([]int, len(s.Vertices))
	for i, v := range s.Vertices {
		points[i] = e.point(v)
		vertices[i] = e.add("VERTEX_POINT('',#%d)", points[i])
	}

	edges := make([]int, len(s.Edges))
	for i, edge := range s.Edges {
		a, b := s.Vertices[edge.A], s.Vertices[edge.B]
		span := b.Sub(a)
		vector := e.add("VECTOR('',#%d,%s)", e.direction(span), realLit(span.Length()))
		line := e.add("LINE('',#%d,#%d)", points[edge.A], vector)
		edges[i] = e.add("EDGE_CURVE('',#%d,#%d,#%d,.T.)", vertices[edge.A], vertices[edge.B], line)
	}

	faces := make([]string, len(s.Faces))
	for fi, face := range s.Faces {
		loop := s.LoopEdges(fi)
		oriented := make([]string, len(loop))
		for i, oe := range loop {
			oriented[i] = ref(e.add("ORIENTED_EDGE('',*,*,#%d,%s)", edges[oe.Edge], logical(oe.Forward)))
		}
		edgeLoop := e.add("EDGE_LOOP('',(%s))", strings.Join(oriented, ","))
		bound := e.add("FACE_OUTER_BOUND('',#%d,.T.)", edgeLoop)

		origin := s.Vertices[face.Loop[0]]
		refDir := s.Vertices[face.Loop[1]].Sub(origin)
		plane := e.add("PLANE('',#%d)", e.placement(origin, face.Normal, refDir))
		faces[fi] = ref(e.add("ADVANCED_FACE('',(#%d),#%d,.T.)", bound, plane))
	}

	shell := e.add("CLOSED_SHELL('',(%s))", strings.Join(faces, ","))
	brep := e.add("MANIFOLD_SOLID_BREP(%s,#%d)", quote(name), shell)

	mm := e.add("( LENGTH_UNIT() NAMED_UNIT(*) SI_UNIT(.MILLI.,.METRE.) )")
	rad := e.add("( NAMED_UNIT(*) PLANE_ANGLE_UNIT() SI_UNIT($,.RADIAN.) )")
	sr := e.add("( NAMED_UNIT(*) SI_UNIT($,.STERADIAN.) SOLID_ANGLE_UNIT() )")
	uncertainty := e.add("UNCERTAINTY_MEASURE_WITH_UNIT(LENGTH_MEASURE(1.E-07),#%d,'distance_accuracy_value','confusion accuracy')", mm)
	context := e.add("( GEOMETRIC_REPRESENTATION_CONTEXT(3) GLOBAL_UNCERTAINTY_ASSIGNED_CONTEXT((#%d)) GLOBAL_UNIT_ASSIGNED_CONTEXT((#%d,#%d,#%d)) REPRESENTATION_CONTEXT('Context #1','3D Context with UNIT and UNCERTAINTY') )",
		uncertainty, mm, rad, sr)

	axis := e.placement(geometry.Vector3{}, geometry.NewVector3(0, 0, 1), geometry.NewVector3(1, 0, 0))
	shape := e.add("ADVANCED_BREP_SHAPE_REPRESENTATION('',(#%d,#%d),#%d)", axis, brep, context)

	app := e.add("APPLICATION_CONTEXT('core data for automotive mechanical design processes')")
	e.add("APPLICATION_PROTOCOL_DEFINITION('international standard','automotive_design',2000,#%d)", app)
	productContext := e.add("PRODUCT_CONTEXT('',#%d,'mechanical')", app)
	product := e.add("PRODUCT(%s,%s,'',(#%d))", quote(name), quote(name), productContext)
	formation := e.add("PRODUCT_DEFINITION_FORMATION('','',#%d)", product)
	definitionContext := e.add("PRODUCT_DEFINITION_CONTEXT('part definition',#%d,'design')", app)
	definition := e.add("PRODUCT_DEFINITION('design','',#%d,#%d)", formation, definitionContext)
	definitionShape := e.add("PRODUCT_DEFINITION_SHAPE('','',#%d)", definition)
	e.add("SHAPE_DEFINITION_REPRESENTATION(#%d,#%d)", definitionShape, shape)
}

func ref(id int) string {
	return "#" + strconv.Itoa(id)
}

func logical(b bool) string {
	if b {
		return ".T."
	}
	return ".F."
}

// realLit formats a REAL literal; Part 21 requires the decimal point
func realLit(f float64) string {
	if f == 0 {
		return "0."
	}
	s := strconv.FormatFloat(f, 'G', -1, 64)
	if !strings.ContainsAny(s, ".") {
		if i := strings.IndexByte(s, 'E'); i >= 0 {
			s = s[:i] + "." + s[i:]
		} else {
			s += "."
		}
	}
	return s
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
