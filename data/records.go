// Package data persists measurements: a CSV of records and the images each record was measured
// on, all named after the time of capture.
package data

import (
	"encoding/csv"
	"image"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/vision/diameter"
	"github.com/bridgewiz/trunkgauge/vision/edges"
)

const (
	// RecordsFileName is the CSV every record is appended to.
	RecordsFileName = "records.csv"
	// TimestampLayout names records and their images.
	TimestampLayout = "2006-01-02 15-04-05"
	// ImageExt is the extension of saved images.
	ImageExt = ".jpg"
)

// Image suffixes.
const (
	SuffixOriginal   = "original"
	SuffixForeground = "foreground"
	SuffixAnnotated  = "annotated"
)

// Header is the column layout of the records file. The file itself has no header row.
var Header = []string{"timestamp", "distance", "diameter_a", "diameter_b", "diameter_c"}

// FormatDecimal rounds to at most two decimals and drops trailing zeros. NaN stays "NaN".
func FormatDecimal(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// Row formats one records line. Every strategy has a column whether or not it ran.
func Row(stamp string, m *diameter.Measurement) []string {
	row := make([]string, 0, 2+len(edges.Kinds))
	row = append(row, stamp, FormatDecimal(m.CenterDistanceMeters))
	for _, k := range edges.Kinds {
		row = append(row, FormatDecimal(m.DiameterCM(k)))
	}
	return row
}

// Images are the pictures saved with a record. Nil images are skipped.
type Images struct {
	Original   image.Image
	Foreground image.Image
	Annotated  image.Image
}

// Record describes what was written for one measurement.
type Record struct {
	Time       time.Time
	Stamp      string
	Row        []string
	ImagePaths []string
}

// Recorder writes records into a directory.
type Recorder struct {
	dir    string
	clock  clock.Clock
	logger logging.Logger

	mu sync.Mutex
}

// NewRecorder creates dir if needed. A nil clock uses the wall clock.
func NewRecorder(dir string, clk clock.Clock, logger logging.Logger) (*Recorder, error) {
	if dir == "" {
		return nil, errors.New("records need an output directory")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "cannot create output directory %q", dir)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Recorder{dir: dir, clock: clk, logger: logger}, nil
}

// Dir returns the output directory.
func (r *Recorder) Dir() string {
	return r.dir
}

// ImagePath returns where the image with the given stamp and suffix is saved.
func (r *Recorder) ImagePath(stamp, suffix string) string {
	return filepath.Join(r.dir, stamp+"-"+suffix+ImageExt)
}

// Record saves the images and then appends the measurement to the records file, so a row never
// refers to images that failed to save.
func (r *Recorder) Record(m *diameter.Measurement, imgs Images) (*Record, error) {
	if m == nil {
		return nil, errors.New("no measurement to record")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	rec := &Record{Time: now, Stamp: now.Format(TimestampLayout)}
	rec.Row = Row(rec.Stamp, m)

	for _, img := range []struct {
		suffix string
		img    image.Image
	}{
		{SuffixOriginal, imgs.Original},
		{SuffixForeground, imgs.Foreground},
		{SuffixAnnotated, imgs.Annotated},
	} {
		if img.img == nil {
			continue
		}
		path := r.ImagePath(rec.Stamp, img.suffix)
		if err := imaging.Save(img.img, path); err != nil {
			return nil, errors.Wrapf(err, "cannot save %s image", img.suffix)
		}
		rec.ImagePaths = append(rec.ImagePaths, path)
	}

	if err := r.appendRow(rec.Row); err != nil {
		return nil, err
	}
	r.logger.Infow("saved record", "stamp", rec.Stamp, "row", rec.Row, "images", len(rec.ImagePaths))
	return rec, nil
}

func (r *Recorder) appendRow(row []string) (err error) {
	//nolint:gosec
	f, err := os.OpenFile(filepath.Join(r.dir, RecordsFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return errors.Wrap(err, "cannot open records file")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	w := csv.NewWriter(f)
	w.UseCRLF = true
	if err := w.Write(row); err != nil {
		return errors.Wrap(err, "cannot write record")
	}
	w.Flush()
	return w.Error()
}

// ReadRecords reads every row of the records file in dir.
func ReadRecords(dir string) (rows [][]string, err error) {
	//nolint:gosec
	f, err := os.Open(filepath.Join(dir, RecordsFileName))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(Header)
	return cr.ReadAll()
}
