package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestNewLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunkgauge.log")
	logger, closer, err := NewLoggerWithFile("trunkgauge", INFO, FileConfig{Path: path})
	test.That(t, err, test.ShouldBeNil)

	logger.Debug("dropped")
	logger.Sublogger("girth").Infow("processed frame", "distance_m", 1.25)
	test.That(t, closer.Close(), test.ShouldBeNil)

	raw, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	test.That(t, len(lines), test.ShouldEqual, 1)
	test.That(t, lines[0], test.ShouldContainSubstring, `"level":"INFO"`)
	test.That(t, lines[0], test.ShouldContainSubstring, `"logger":"trunkgauge.girth"`)
	test.That(t, lines[0], test.ShouldContainSubstring, `"distance_m":1.25`)

	_, _, err = NewLoggerWithFile("trunkgauge", INFO, FileConfig{})
	test.That(t, err, test.ShouldNotBeNil)
}
