package writefiles

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/notargets/fnknot/invariants"
)

const SeriesFileName = "writhe.txt"

// SeriesWriter appends one row per invariant sample to writhe.txt
type SeriesWriter struct {
	FileName string
	file     *os.File
}

// NewSeriesWriter starts a fresh series file with its header row. When
// resume is set an existing file is appended to instead.
func NewSeriesWriter(dir string, resume bool) (sw *SeriesWriter, err error) {
	var (
		fileName = filepath.Join(dir, SeriesFileName)
		file     *os.File
		flags    = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		header   = true
	)
	if resume {
		if fi, statErr := os.Stat(fileName); statErr == nil && fi.Size() > 0 {
			flags, header = os.O_WRONLY|os.O_APPEND, false
		}
	}
	if file, err = os.OpenFile(fileName, flags, 0644); err != nil {
		return
	}
	sw = &SeriesWriter{FileName: fileName, file: file}
	if header {
		if _, err = fmt.Fprintf(file, "Time\tWrithe\tTwist\tLength\n"); err != nil {
			file.Close()
			sw = nil
		}
	}
	return
}

func (sw *SeriesWriter) Append(smp invariants.Sample) (err error) {
	_, err = fmt.Fprintf(sw.file, "%s\t%s\t%s\t%s\n",
		FormatTime(smp.Time), formatFloat(smp.Writhe), formatFloat(smp.Twist), formatFloat(smp.Length))
	return
}

func (sw *SeriesWriter) Close() error {
	return sw.file.Close()
}
