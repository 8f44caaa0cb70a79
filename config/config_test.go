package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.viam.com/test"

	"github.com/bridgewiz/trunkgauge/components/camera/fake"
	"github.com/bridgewiz/trunkgauge/components/camera/replay"
	"github.com/bridgewiz/trunkgauge/components/camera/transformpipeline"
	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/utils"
	"github.com/bridgewiz/trunkgauge/vision/edges"
	"github.com/bridgewiz/trunkgauge/vision/girth"
	"github.com/bridgewiz/trunkgauge/vision/segmentation"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "trunkgauge.json")
	test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)
	return path
}

func TestDefault(t *testing.T) {
	want := &Config{
		ExpectedMaxDiameter: 0.5,
		Cleaning:            Cleaning{SmallSize: 4, LargeSize: 8},
		MaskBoundarySource:  "refined",
		Strategies:          []string{"mask_boundary", "cloud_discontinuity", "neighbor_corrected"},
		Source:              Source{Type: SourceFake},
		OutputDir:           DefaultOutputDir,
		LogLevel:            "info",
	}
	cfg := Default()
	test.That(t, cmp.Diff(want, cfg), test.ShouldBeEmpty)
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	test.That(t, cmp.Diff(girth.DefaultConfig(), cfg.Pipeline()), test.ShouldBeEmpty)
}

func TestRead(t *testing.T) {
	t.Setenv("TRUNK_DIAMETER", "0.8")
	path := writeConfig(t, t.TempDir(), `{
		"expected_max_diameter_m": ${TRUNK_DIAMETER},
		"cleaning": {"disabled": true},
		"segmentation": {"refiner": "color_cluster", "include_probable": true, "attributes": {"max_iterations": 3}},
		"mask_boundary_source": "raw",
		"strategies": ["cloud_discontinuity"],
		"pre_filters": [{"type": "hole_fill", "attributes": {"max_gap_px": 4}}],
		"source": {"type": "fake", "attributes": {"trunk_left_px": 200}},
		"disable_annotation": true,
		"log_level": "debug"
	}`)

	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.ExpectedMaxDiameter, test.ShouldEqual, 0.8)
	test.That(t, cfg.OutputDir, test.ShouldEqual, DefaultOutputDir)

	pipeline := cfg.Pipeline()
	test.That(t, pipeline.Cleaning.Enabled, test.ShouldBeFalse)
	test.That(t, pipeline.IncludeProbable, test.ShouldBeTrue)
	test.That(t, pipeline.MaskBoundarySource, test.ShouldEqual, girth.MaskRaw)
	test.That(t, pipeline.Strategies, test.ShouldResemble, []edges.Kind{edges.KindCloudDiscontinuity})
	test.That(t, pipeline.Annotate, test.ShouldBeFalse)

	refiner, err := cfg.Refiner(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	cc, ok := refiner.(*segmentation.ColorClusterRefiner)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, cc.MaxIterations, test.ShouldEqual, 3)

	knob, err := cfg.NewKnob()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, knob.Load(), test.ShouldEqual, 0.8)

	fakeCfg, err := cfg.FakeConfig()
	test.That(t, err, test.ShouldBeNil)
	want := fake.DefaultConfig()
	want.TrunkLeft = 200
	test.That(t, fakeCfg, test.ShouldResemble, want)
}

func TestReadRejects(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		msg     string
	}{
		{"not json", `{`, "failed to decode"},
		{"unknown field", `{"diameter": 1}`, "unknown field"},
		{"negative diameter", `{"expected_max_diameter_m": -1}`, "expected_max_diameter_m"},
		{"bad cleaning", `{"cleaning": {"small_px": 4, "large_px": 6}}`, "large_px"},
		{"bad mask source", `{"mask_boundary_source": "cleaned"}`, "mask_boundary_source"},
		{"bad strategy", `{"strategies": ["hough"]}`, "hough"},
		{"bad refiner", `{"segmentation": {"refiner": "magic"}}`, "unknown refiner"},
		{"bad pre-filter", `{"pre_filters": [{"type": "sharpen"}]}`, "sharpen"},
		{"bad source", `{"source": {"type": "usb"}}`, "usb"},
		{"bad log level", `{"log_level": "chatty"}`, "log_level"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromReader("test.json", strings.NewReader(tc.content))
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
		})
	}

	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRefinerOff(t *testing.T) {
	refiner, err := Default().Refiner(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, refiner, test.ShouldBeNil)
}

func TestNewSource(t *testing.T) {
	logger := logging.NewTestLogger(t)
	ctx := context.Background()

	cfg := Default()
	cfg.Source.Attributes = utils.AttributeMap{"width_px": 64, "height_px": 48, "trunk_left_px": 24, "trunk_right_px": 39}
	cfg.PreFilters = []transformpipeline.Transformation{{Type: "blur", Attributes: utils.AttributeMap{"sigma": 0.5}}}
	src, err := cfg.NewSource(ctx, logger)
	test.That(t, err, test.ShouldBeNil)
	frame, err := src.NextFrame(ctx)
	test.That(t, err, test.ShouldBeNil)
	w, h := frame.Size()
	test.That(t, w, test.ShouldEqual, 64)
	test.That(t, h, test.ShouldEqual, 48)
	test.That(t, src.Close(ctx), test.ShouldBeNil)

	cfg.Source.Attributes = utils.AttributeMap{"trunk_right_px": 9000}
	_, err = cfg.NewSource(ctx, logger)
	test.That(t, err, test.ShouldNotBeNil)

	dir := t.TempDir()
	recorded, err := fake.Render(fake.Config{
		Width: 32, Height: 24, TrunkLeft: 10, TrunkRight: 21,
		TrunkDistance: 1, BackgroundDistance: 3, MaxRange: 4, HorizontalFOVDegree: 60,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, replay.WriteFrame(dir, recorded), test.ShouldBeNil)

	cfg = Default()
	cfg.Source = Source{Type: SourceReplay, Attributes: utils.AttributeMap{"dir": dir}}
	src, err = cfg.NewSource(ctx, logger)
	test.That(t, err, test.ShouldBeNil)
	frame, err = src.NextFrame(ctx)
	test.That(t, err, test.ShouldBeNil)
	w, _ = frame.Size()
	test.That(t, w, test.ShouldEqual, 32)

	cfg.Source.Attributes = nil
	_, err = cfg.NewSource(ctx, logger)
	test.That(t, err.Error(), test.ShouldContainSubstring, "dir")

	cfg.Source.Attributes = utils.AttributeMap{"dir": dir}
	cfg.PreFilters = []transformpipeline.Transformation{{Type: "sharpen"}}
	_, err = cfg.NewSource(ctx, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSchema(t *testing.T) {
	raw, err := SchemaJSON()
	test.That(t, err, test.ShouldBeNil)
	for _, field := range []string{"expected_max_diameter_m", "mask_boundary_source", "pre_filters", "replay"} {
		test.That(t, string(raw), test.ShouldContainSubstring, field)
	}
}

func TestWatchDiameter(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{"expected_max_diameter_m": 0.5}`)
	knob, err := utils.NewKnob("expected_max_diameter_m", 0.5)
	test.That(t, err, test.ShouldBeNil)

	logger, logs := logging.NewObservedTestLogger(t)
	w, err := WatchDiameter(path, knob, 10*time.Millisecond, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, w.Close(), test.ShouldBeNil)
	}()

	waitFor := func(cond func() bool) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for !cond() {
			if time.Now().After(deadline) {
				t.Fatal("timed out waiting for the watcher")
			}
			time.Sleep(10 * time.Millisecond)
		}
	}

	writeConfig(t, dir, `{"expected_max_diameter_m": 0.9}`)
	waitFor(func() bool { return knob.Load() == 0.9 })

	// invalid edits are ignored
	writeConfig(t, dir, `{"expected_max_diameter_m": -2}`)
	waitFor(func() bool { return logs.FilterMessage("ignoring config change").Len() > 0 })
	test.That(t, knob.Load(), test.ShouldEqual, 0.9)

	// other files in the directory do not matter
	test.That(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o600), test.ShouldBeNil)
	writeConfig(t, dir, `{"expected_max_diameter_m": 0.3}`)
	waitFor(func() bool { return knob.Load() == 0.3 })

	_, err = WatchDiameter(path, nil, 0, logger)
	test.That(t, err, test.ShouldNotBeNil)
}
