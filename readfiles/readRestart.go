package readfiles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/fnknot/grid"
)

var (
	ErrTruncated  = errors.New("restart file ended early")
	ErrBadValue   = errors.New("unable to read value from restart file")
	ErrDimensions = errors.New("restart file dimensions do not match the grid")
)

const (
	HeaderLines      = 10 // Structured points header before the first block
	BlockHeaderLines = 2  // SCALARS and LOOKUP_TABLE lines before later blocks
)

// ReadPhi reads a phase field written as a structured points file: a 10 line
// header followed by one value per line with x fastest and z slowest.
func ReadPhi(filename string, g *grid.Grid, verbose bool) (phi []float64, err error) {
	err = readRestart(filename, verbose, func(reader *bufio.Reader) (err error) {
		if err = readHeader(reader, g); err != nil {
			return
		}
		phi, err = readBlock(reader, g)
		return
	})
	return
}

// ReadUV reads u and v from a field snapshot: the header, the u block, a two
// line block header and the v block. Blocks after v are ignored.
func ReadUV(filename string, g *grid.Grid, verbose bool) (u, v []float64, err error) {
	err = readRestart(filename, verbose, func(reader *bufio.Reader) (err error) {
		if err = readHeader(reader, g); err != nil {
			return
		}
		if u, err = readBlock(reader, g); err != nil {
			return
		}
		if err = skipLines(BlockHeaderLines, reader); err != nil {
			return
		}
		v, err = readBlock(reader, g)
		return
	})
	return
}

func readRestart(filename string, verbose bool, read func(reader *bufio.Reader) error) (err error) {
	var file *os.File
	if verbose {
		fmt.Printf("Reading restart file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		return fmt.Errorf("unable to open restart file %s: %w", filename, err)
	}
	defer file.Close()
	if err = read(bufio.NewReader(file)); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}
	return
}

// readHeader skips the header, checking the DIMENSIONS line when there is one
func readHeader(reader *bufio.Reader, g *grid.Grid) (err error) {
	var line string
	for n := 0; n < HeaderLines; n++ {
		if line, err = getLine(reader); err != nil {
			return
		}
		if !strings.HasPrefix(line, "DIMENSIONS") {
			continue
		}
		var nx, ny, nz int
		if _, err = fmt.Sscanf(line, "DIMENSIONS %d %d %d", &nx, &ny, &nz); err != nil {
			return fmt.Errorf("%w: [%s]", ErrBadValue, line)
		}
		if nx != g.Nx || ny != g.Ny || nz != g.Nz {
			return fmt.Errorf("%w: file has %d x %d x %d, grid is %d x %d x %d",
				ErrDimensions, nx, ny, nz, g.Nx, g.Ny, g.Nz)
		}
	}
	return
}

func readBlock(reader *bufio.Reader, g *grid.Grid) (f []float64, err error) {
	var line string
	f = make([]float64, g.Size())
	for k := 0; k < g.Nz; k++ {
		for j := 0; j < g.Ny; j++ {
			for i := 0; i < g.Nx; i++ {
				if line, err = getLine(reader); err != nil {
					return
				}
				if f[g.Pt(i, j, k)], err = strconv.ParseFloat(strings.TrimSpace(line), 64); err != nil {
					err = fmt.Errorf("%w at (%d,%d,%d): [%s]", ErrBadValue, i, j, k, line)
					return
				}
			}
		}
	}
	return
}

func getLine(reader *bufio.Reader) (line string, err error) {
	line, err = reader.ReadString('\n')
	if err == io.EOF && len(line) != 0 {
		err = nil
	}
	if err != nil {
		if err == io.EOF {
			err = ErrTruncated
		}
		return
	}
	line = strings.TrimRight(line, "\r\n") // Strip away the newline
	return
}

func skipLines(n int, reader *bufio.Reader) (err error) {
	for i := 0; i < n; i++ {
		if _, err = getLine(reader); err != nil {
			return
		}
	}
	return
}
