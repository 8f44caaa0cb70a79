package logging

import (
	"testing"

	"go.viam.com/test"
)

func TestObservedLoggerRespectsLevel(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)

	logger.Debugw("scan", "side", "left")
	logger.Warnw("segmentation failed", "error", "degenerate seed")
	test.That(t, logs.Len(), test.ShouldEqual, 2)

	logger.SetLevel(WARN)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)
	logger.Debug("dropped")
	logger.Infof("dropped %d", 1)
	logger.Error("kept")
	test.That(t, logs.Len(), test.ShouldEqual, 3)
	test.That(t, logs.FilterMessageSnippet("segmentation").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("kept").Len(), test.ShouldEqual, 1)
}

func TestSubloggerNaming(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("edges")
	sub.Info("hello")

	entries := logs.All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "edges")

	named := NewBlankLogger("girth").Sublogger("mask")
	test.That(t, named.(*impl).name, test.ShouldEqual, "girth.mask")
}

func TestSubloggerLevelIsIndependent(t *testing.T) {
	logger := NewBlankLogger("parent")
	logger.SetLevel(ERROR)
	sub := logger.Sublogger("child")
	test.That(t, sub.GetLevel(), test.ShouldEqual, ERROR)

	sub.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, ERROR)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"", INFO},
		{"warning", WARN},
		{" Warn ", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	_, err := LevelFromString("verbose")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "verbose")
}
