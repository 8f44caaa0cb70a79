package pointcloud

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// WriteCSV writes one "x,y,z" line per vertex with CRLF line endings, matching the export format
// of the capture app.
func WriteCSV(out io.Writer, vs Vertices) error {
	w := bufio.NewWriter(out)
	for i := 0; i+2 < len(vs); i += ComponentsPerVertex {
		if _, err := fmt.Fprintf(w, "%f,%f,%f\r\n", vs[i], vs[i+1], vs[i+2]); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadCSV reads vertices written by WriteCSV.
func ReadCSV(in io.Reader) (Vertices, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = ComponentsPerVertex
	r.ReuseRecord = true
	var vs Vertices
	for line := 1; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return vs, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "bad vertex on line %d", line)
		}
		for _, field := range rec {
			f, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "bad vertex component on line %d", line)
			}
			vs = append(vs, float32(f))
		}
	}
}
