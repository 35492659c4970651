package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/gobox/pkg/geometry"
)

const (
	headerSize    = 80
	facetSize     = 50
	binaryMinSize = headerSize + 4
)

// Parse reads an STL file and returns a Model.
// It automatically detects whether the file is ASCII or binary format.
func Parse(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file)
}

// ParseReader reads an STL document from r.
// A payload whose length matches the binary layout is read as binary even
// when its header starts with "solid", which several exporters emit.
func ParseReader(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL data: %w", err)
	}

	if isBinary(data) {
		return parseBinary(data)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return parseASCII(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("unrecognized STL data (%d bytes)", len(data))
}

func isBinary(data []byte) bool {
	if len(data) < binaryMinSize {
		return false
	}
	count := binary.LittleEndian.Uint32(data[headerSize:binaryMinSize])
	return uint64(len(data)) == uint64(binaryMinSize)+uint64(count)*facetSize
}

// parseASCII parses an ASCII STL file
func parseASCII(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	model := NewModel("")

	var currentNormal geometry.Vector3
	var vertices []geometry.Vector3
	closed := false

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				model.Name = strings.Join(fields[1:], " ")
			}

		case "facet":
			if len(fields) < 5 || fields[1] != "normal" {
				return nil, fmt.Errorf("malformed facet line %q", scanner.Text())
			}
			normal, err := parseVector(fields[2:5])
			if err != nil {
				return nil, fmt.Errorf("facet normal: %w", err)
			}
			currentNormal = normal

		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("malformed vertex line %q", scanner.Text())
			}
			vertex, err := parseVector(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("vertex: %w", err)
			}
			vertices = append(vertices, vertex)

		case "endfacet":
			if len(vertices) != 3 {
				return nil, fmt.Errorf("facet %d has %d vertices", model.TriangleCount(), len(vertices))
			}
			model.AddTriangle(geometry.NewTriangle(currentNormal, vertices[0], vertices[1], vertices[2]))
			vertices = vertices[:0]

		case "endsolid":
			closed = true
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}
	if !closed {
		return nil, fmt.Errorf("ASCII STL is missing endsolid")
	}

	return model, nil
}

func parseVector(fields []string) (geometry.Vector3, error) {
	var c [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geometry.Vector3{}, err
		}
		c[i] = v
	}
	return geometry.NewVector3(c[0], c[1], c[2]), nil
}

// parseBinary parses a binary STL payload whose size was already validated
func parseBinary(data []byte) (*Model, error) {
	model := NewModel(strings.TrimSpace(string(bytes.TrimRight(data[:headerSize], "\x00"))))

	count := binary.LittleEndian.Uint32(data[headerSize:binaryMinSize])
	model.Triangles = make([]geometry.Triangle, 0, count)

	offset := binaryMinSize
	for i := uint32(0); i < count; i++ {
		var v [4]geometry.Vector3
		for j := range v {
			v[j] = readVector(data[offset+12*j:])
		}
		// trailing 2-byte attribute count is ignored
		offset += facetSize

		model.AddTriangle(geometry.NewTriangle(v[0], v[1], v[2], v[3]))
	}

	return model, nil
}

func readVector(b []byte) geometry.Vector3 {
	return geometry.NewVector3(
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:8]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:12]))),
	)
}
