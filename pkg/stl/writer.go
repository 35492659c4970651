package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/philipparndt/gobox/pkg/geometry"
)

// WriteFile writes the model to path, replacing any existing file
func WriteFile(path string, model *Model, ascii bool) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, model, ascii); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write encodes the model as binary STL, or ASCII STL when ascii is set
func Write(w io.Writer, model *Model, ascii bool) error {
	if ascii {
		return writeASCII(w, model)
	}
	return writeBinary(w, model)
}

func writeBinary(w io.Writer, model *Model) error {
	bw := bufio.NewWriter(w)

	var header [headerSize]byte
	copy(header[:], "gobox "+model.Name)
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(model.Triangles))); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}

	var facet [facetSize]byte
	for i, tri := range model.Triangles {
		for j, v := range [4]geometry.Vector3{tri.Normal, tri.V1, tri.V2, tri.V3} {
			putVector(facet[12*j:], v)
		}
		if _, err := bw.Write(facet[:]); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}

	return bw.Flush()
}

func putVector(b []byte, v geometry.Vector3) {
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:12], math.Float32bits(float32(v.Z)))
}

func writeASCII(w io.Writer, model *Model) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "solid %s\n", model.Name)
	for _, tri := range model.Triangles {
		fmt.Fprintf(bw, "  facet normal %s\n", formatVector(tri.Normal))
		fmt.Fprintln(bw, "    outer loop")
		for _, v := range [3]geometry.Vector3{tri.V1, tri.V2, tri.V3} {
			fmt.Fprintf(bw, "      vertex %s\n", formatVector(v))
		}
		fmt.Fprintln(bw, "    endloop")
		fmt.Fprintln(bw, "  endfacet")
	}
	fmt.Fprintf(bw, "endsolid %s\n", model.Name)

	return bw.Flush()
}

func formatVector(v geometry.Vector3) string {
	return strconv.FormatFloat(v.X, 'e', -1, 64) + " " +
		strconv.FormatFloat(v.Y, 'e', -1, 64) + " " +
		strconv.FormatFloat(v.Z, 'e', -1, 64)
}
