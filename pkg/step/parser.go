package step

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/philipparndt/gobox/pkg/geometry"
)

// ErrNoSolid is returned for exchange files without a solid body
var ErrNoSolid = errors.New("step: file contains no solid")

// Entity is one instance from the DATA section. Complex instances, written
// as a parenthesised list of partial types, report their first type.
type Entity struct {
	ID     int
	Type   string
	Params string
}

// Model is a parsed exchange structure
type Model struct {
	Name     string
	Schemas  []string
	Entities map[int]Entity
}

var (
	instanceRe = regexp.MustCompile(`^#(\d+)\s*=\s*(.*)$`)
	refRe      = regexp.MustCompile(`#(\d+)`)
	keywordRe  = regexp.MustCompile(`^\(?\s*([A-Z_][A-Z0-9_]*)`)
)

// Parse reads a STEP file from disk
func Parse(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file)
}

// ParseReader reads a STEP exchange structure and checks that every
// instance reference resolves and that at least one solid is present.
func ParseReader(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read STEP data: %w", err)
	}

	statements := splitStatements(string(data))
	if len(statements) == 0 || statements[0] != "ISO-10303-21" {
		return nil, fmt.Errorf("step: missing ISO-10303-21 start token")
	}
	if statements[len(statements)-1] != "END-ISO-10303-21" {
		return nil, fmt.Errorf("step: missing END-ISO-10303-21 end token")
	}

	model := &Model{Entities: make(map[int]Entity)}
	section := ""

	for _, stmt := range statements[1 : len(statements)-1] {
		switch stmt {
		case "HEADER", "DATA":
			section = stmt
			continue
		case "ENDSEC":
			section = ""
			continue
		}

		switch section {
		case "HEADER":
			model.readHeader(stmt)
		case "DATA":
			entity, err := parseInstance(stmt)
			if err != nil {
				return nil, err
			}
			if _, dup := model.Entities[entity.ID]; dup {
				return nil, fmt.Errorf("step: duplicate instance #%d", entity.ID)
			}
			model.Entities[entity.ID] = entity
		default:
			return nil, fmt.Errorf("step: statement outside section: %.40q", stmt)
		}
	}

	for _, entity := range model.Entities {
		for _, m := range refRe.FindAllStringSubmatch(stripStrings(entity.Params), -1) {
			id, _ := strconv.Atoi(m[1])
			if _, ok := model.Entities[id]; !ok {
				return nil, fmt.Errorf("step: #%d references missing instance #%d", entity.ID, id)
			}
		}
	}

	if model.Count("MANIFOLD_SOLID_BREP") == 0 {
		return nil, ErrNoSolid
	}

	return model, nil
}

func (m *Model) readHeader(stmt string) {
	name, params, ok := splitCall(stmt)
	if !ok {
		return
	}
	switch name {
	case "FILE_NAME":
		if args := splitParams(params); len(args) > 0 {
			m.Name = unquote(args[0])
		}
	case "FILE_SCHEMA":
		inner := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(params), "("), ")")
		for _, s := range splitParams(inner) {
			m.Schemas = append(m.Schemas, unquote(s))
		}
	}
}

// Count returns the number of instances of the given type
func (m *Model) Count(typeName string) int {
	n := 0
	for _, e := range m.Entities {
		if e.Type == typeName {
			n++
		}
	}
	return n
}

// BoundingBox returns the bounds of every topological vertex
func (m *Model) BoundingBox() (geometry.BoundingBox, error) {
	bbox := geometry.NewBoundingBox()
	for _, e := range m.Entities {
		if e.Type != "VERTEX_POINT" {
			continue
		}
		args := splitParams(e.Params)
		if len(args) != 2 {
			return bbox, fmt.Errorf("step: malformed VERTEX_POINT #%d", e.ID)
		}
		point, err := m.point(args[1])
		if err != nil {
			return bbox, fmt.Errorf("step: VERTEX_POINT #%d: %w", e.ID, err)
		}
		bbox.Extend(point)
	}
	if bbox.Empty() {
		return bbox, fmt.Errorf("step: no vertices")
	}
	return bbox, nil
}

func (m *Model) point(refText string) (geometry.Vector3, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(refText), "#"))
	if err != nil {
		return geometry.Vector3{}, fmt.Errorf("bad reference %q", refText)
	}
	e := m.Entities[id]
	if e.Type != "CARTESIAN_POINT" {
		return geometry.Vector3{}, fmt.Errorf("#%d is %s, not CARTESIAN_POINT", id, e.Type)
	}
	args := splitParams(e.Params)
	if len(args) != 2 {
		return geometry.Vector3{}, fmt.Errorf("malformed CARTESIAN_POINT #%d", id)
	}
	coords := splitParams(strings.TrimSuffix(strings.TrimPrefix(args[1], "("), ")"))
	if len(coords) != 3 {
		return geometry.Vector3{}, fmt.Errorf("CARTESIAN_POINT #%d is not 3D", id)
	}
	var c [3]float64
	for i, s := range coords {
		if c[i], err = strconv.ParseFloat(s, 64); err != nil {
			return geometry.Vector3{}, fmt.Errorf("CARTESIAN_POINT #%d: %w", id, err)
		}
	}
	return geometry.NewVector3(c[0], c[1], c[2]), nil
}

func parseInstance(stmt string) (Entity, error) {
	m := instanceRe.FindStringSubmatch(stmt)
	if m == nil {
		return Entity{}, fmt.Errorf("step: malformed instance %.40q", stmt)
	}
	id, _ := strconv.Atoi(m[1])
	body := strings.TrimSpace(m[2])

	if strings.HasPrefix(body, "(") {
		kw := keywordRe.FindStringSubmatch(body)
		if kw == nil {
			return Entity{}, fmt.Errorf("step: malformed complex instance #%d", id)
		}
		return Entity{ID: id, Type: kw[1], Params: body}, nil
	}

	name, params, ok := splitCall(body)
	if !ok {
		return Entity{}, fmt.Errorf("step: malformed instance #%d", id)
	}
	return Entity{ID: id, Type: name, Params: params}, nil
}

// splitCall separates NAME(params) into its keyword and parameter text
func splitCall(s string) (string, string, bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	return strings.TrimSpace(s[:open]), s[open+1 : len(s)-1], true
}

// splitStatements splits on ';' outside string literals and drops comments
func splitStatements(src string) []string {
	var out []string
	var cur strings.Builder
	inString := false

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inString:
			cur.WriteByte(c)
			if c == '\'' {
				if i+1 < len(src) && src[i+1] == '\'' {
					cur.WriteByte('\'')
					i++
				} else {
					inString = false
				}
			}
		case c == '\'':
			inString = true
			cur.WriteByte(c)
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				i = len(src)
			} else {
				i += end + 3
			}
		case c == ';':
			if s := strings.TrimSpace(cur.String()); s != "" {
				out = append(out, s)
			}
			cur.Reset()
		case c == '\n' || c == '\r':
			cur.WriteByte(' ')
		default:
			cur.WriteByte(c)
		}
	}
	return out
}

// splitParams splits a parameter list on top-level commas
func splitParams(s string) []string {
	var out []string
	depth := 0
	inString := false
	start := 0

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'':
			inString = !inString
		case inString:
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			out = append(out, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" || len(out) > 0 {
		out = append(out, rest)
	}
	return out
}

// stripStrings blanks out string literals so '#' inside names is not read as a reference
func stripStrings(s string) string {
	var b strings.Builder
	inString := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			inString = !inString
			continue
		}
		if !inString {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, "''", "'")
}
