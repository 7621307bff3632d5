package surface

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

var ErrMalformed = errors.New("malformed surface file")

// ReadSTL reads an ASCII STL file:
//
//	solid name
//	  facet normal nx ny nz
//	    outer loop
//	      vertex x y z   (x3)
//	    endloop
//	  endfacet
//	endsolid name
func ReadSTL(filename string, verbose bool) (facets []Facet, err error) {
	var file *os.File
	if verbose {
		fmt.Printf("Reading STL file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		err = fmt.Errorf("unable to open surface file %s: %w", filename, err)
		return
	}
	defer file.Close()
	if facets, err = ParseSTL(bufio.NewReader(file)); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
		return
	}
	if verbose {
		fmt.Printf("Read %d facets, total area = %8.5f\n", len(facets), TotalArea(facets))
	}
	return
}

func ParseSTL(reader *bufio.Reader) (facets []Facet, err error) {
	var (
		line   string
		lineNo int
	)
	next := func() (fields []string, err error) {
		for {
			if line, err = getLine(reader); err != nil {
				err = fmt.Errorf("%w: unexpected end of file after line %d", ErrMalformed, lineNo)
				return
			}
			lineNo++
			if fields = strings.Fields(line); len(fields) != 0 {
				return
			}
		}
	}
	expect := func(keyword string) (fields []string, err error) {
		if fields, err = next(); err != nil {
			return
		}
		if !strings.EqualFold(fields[0], keyword) {
			err = fmt.Errorf("%w: line %d: expected %q, have [%s]", ErrMalformed, lineNo, keyword, line)
		}
		return
	}
	if _, err = expect("solid"); err != nil {
		return
	}
	for {
		var (
			fields []string
			normal r3.Vec
			vtx    [3]r3.Vec
		)
		if fields, err = next(); err != nil {
			return
		}
		switch strings.ToLower(fields[0]) {
		case "endsolid":
			return
		case "facet":
		default:
			err = fmt.Errorf("%w: line %d: expected facet or endsolid, have [%s]", ErrMalformed, lineNo, line)
			return
		}
		if normal, err = readVec(fields, "normal", lineNo); err != nil {
			return
		}
		if _, err = expect("outer"); err != nil {
			return
		}
		for i := 0; i < 3; i++ {
			if fields, err = expect("vertex"); err != nil {
				return
			}
			if vtx[i], err = readVec(fields, "vertex", lineNo); err != nil {
				return
			}
		}
		if _, err = expect("endloop"); err != nil {
			return
		}
		if _, err = expect("endfacet"); err != nil {
			return
		}
		facets = append(facets, NewFacet(normal, vtx[0], vtx[1], vtx[2]))
	}
}

// readVec parses the three numbers trailing keyword on a line
func readVec(fields []string, keyword string, lineNo int) (v r3.Vec, err error) {
	var n int
	for n = 0; n < len(fields) && !strings.EqualFold(fields[n], keyword); n++ {
	}
	if len(fields) < n+4 {
		err = fmt.Errorf("%w: line %d: unable to read %s coordinates", ErrMalformed, lineNo, keyword)
		return
	}
	if _, err = fmt.Sscanf(strings.Join(fields[n+1:n+4], " "), "%g %g %g", &v.X, &v.Y, &v.Z); err != nil {
		err = fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
	}
	return
}

func getLine(reader *bufio.Reader) (line string, err error) {
	if line, err = reader.ReadString('\n'); err == io.EOF && len(line) != 0 {
		err = nil
	}
	line = strings.TrimRight(line, "\r\n")
	return
}
