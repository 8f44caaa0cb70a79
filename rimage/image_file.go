package rimage

import (
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ReadImageFromFile decodes an image file; the format is detected from its contents.
func ReadImageFromFile(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read image %q", path)
	}
	return img, nil
}

// WriteImageToFile encodes img with the format implied by the file extension, creating the
// parent directory when needed.
func WriteImageToFile(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrapf(err, "cannot create directory for %q", path)
	}
	if err := imaging.Save(img, path); err != nil {
		return errors.Wrapf(err, "cannot write image %q", path)
	}
	return nil
}
