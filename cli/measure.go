package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/bridgewiz/trunkgauge/components/camera"
	"github.com/bridgewiz/trunkgauge/components/camera/capture"
	"github.com/bridgewiz/trunkgauge/config"
	"github.com/bridgewiz/trunkgauge/data"
	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/utils"
	"github.com/bridgewiz/trunkgauge/vision/diameter"
	"github.com/bridgewiz/trunkgauge/vision/edges"
	"github.com/bridgewiz/trunkgauge/vision/girth"
)

// MeasureAction measures frames from the configured source. Each frame goes through the capture
// workflow: it is frozen with its result, optionally saved, then released.
func MeasureAction(c *cli.Context) (err error) {
	env, err := newEnvironment(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, env.Close())
	}()
	cfg, logger := env.cfg, env.logger

	frames := c.Int(flagFrames)
	if frames < 1 {
		return errors.Errorf("--%s must be at least 1", flagFrames)
	}
	if d := c.Float64(flagExpectedDiameter); d != 0 {
		cfg.ExpectedMaxDiameter = d
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	prog := newProgress(c.App.ErrWriter, !c.Bool(flagQuiet))
	defer prog.Stop()

	if err := prog.Start("source", fmt.Sprintf("opening %s source", cfg.Source.Type)); err != nil {
		return err
	}
	src, err := cfg.NewSource(c.Context, logger)
	if err != nil {
		return multierr.Combine(err, prog.Fail("source", err))
	}
	defer func() {
		err = multierr.Combine(err, src.Close(c.Context))
	}()
	if err := prog.Done("source", ""); err != nil {
		return err
	}

	if err := prog.Start("pipeline", "building pipeline"); err != nil {
		return err
	}
	pipeline, knob, err := newPipeline(cfg, env)
	if err != nil {
		return multierr.Combine(err, prog.Fail("pipeline", err))
	}
	if err := prog.Done("pipeline", ""); err != nil {
		return err
	}

	if c.Bool(flagWatch) {
		if cfg.ConfigFilePath == "" {
			return errors.Errorf("--%s needs --%s", flagWatch, flagConfig)
		}
		w, watchErr := config.WatchDiameter(cfg.ConfigFilePath, knob, config.DefaultWatchDelay, logger.Sublogger("config"))
		if watchErr != nil {
			return watchErr
		}
		defer func() {
			err = multierr.Combine(err, w.Close())
		}()
	}

	var recorder *data.Recorder
	if c.Bool(flagSave) {
		if recorder, err = data.NewRecorder(cfg.OutputDir, nil, logger.Sublogger("data")); err != nil {
			return err
		}
	}

	controller := capture.NewController[*girth.Result](logger.Sublogger("capture"))
	measurements := make([]*diameter.Measurement, 0, frames)
	for i := 0; i < frames; i++ {
		if err := prog.Start("frame", fmt.Sprintf("measuring frame %d/%d", i+1, frames)); err != nil {
			return err
		}
		res, err := measureOnce(c, logger, src, pipeline, controller, recorder)
		if err != nil {
			return multierr.Combine(err, prog.Fail("frame", err))
		}
		if err := prog.Done("frame", res.Measurement.String()); err != nil {
			return err
		}
		printTable(c.App.Writer, measurementTable(i+1, res.Measurement))
		measurements = append(measurements, res.Measurement)
	}
	if frames > 1 {
		printTable(c.App.Writer, summaryTable(measurements))
	}
	return nil
}

func newPipeline(cfg *config.Config, env *environment) (*girth.Pipeline, *utils.Knob, error) {
	knob, err := cfg.NewKnob()
	if err != nil {
		return nil, nil, err
	}
	refiner, err := cfg.Refiner(env.logger.Sublogger("segmentation"))
	if err != nil {
		return nil, nil, err
	}
	pipeline, err := girth.NewPipeline(cfg.Pipeline(), knob, refiner, env.logger.Sublogger("girth"))
	if err != nil {
		return nil, nil, err
	}
	return pipeline, knob, nil
}

func measureOnce(
	c *cli.Context,
	logger logging.Logger,
	src camera.Source,
	pipeline *girth.Pipeline,
	controller *capture.Controller[*girth.Result],
	recorder *data.Recorder,
) (*girth.Result, error) {
	captureID := uuid.New().String()
	frame, err := src.NextFrame(c.Context)
	if err != nil {
		return nil, err
	}
	if err := controller.Trigger(frame); err != nil {
		return nil, err
	}
	res, err := pipeline.Process(c.Context, frame)
	if err != nil {
		return nil, multierr.Combine(err, controller.Abort())
	}
	if err := controller.Complete(res); err != nil {
		return nil, err
	}
	logger.Debugw("measured capture", "capture_id", captureID, "refined", res.Refined, "measurement", res.Measurement.String())
	if recorder != nil {
		err := controller.Save(func(frame *camera.Frame, res *girth.Result) error {
			rec, err := recorder.Record(res.Measurement, data.Images{
				Original:   frame.Color,
				Foreground: res.Foreground,
				Annotated:  res.Annotated,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "capture %s saved as %q\n", captureID, rec.Stamp)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return res, controller.Reset()
}

// summaryTable reports how often each strategy produced a diameter and the mean of those.
func summaryTable(ms []*diameter.Measurement) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Strategy", "Valid frames", "Mean diameter (cm)"})
	for _, k := range edges.Kinds {
		valid := lo.FilterMap(ms, func(m *diameter.Measurement, _ int) (float64, bool) {
			e, ok := m.Estimate(k)
			return e.DiameterCM, ok && e.Valid
		})
		mean := "-"
		if len(valid) > 0 {
			mean = data.FormatDecimal(lo.Mean(valid))
		}
		t.AppendRow(table.Row{fmt.Sprintf("%s %s", k.Letter(), k), fmt.Sprintf("%d/%d", len(valid), len(ms)), mean})
	}
	return t.Render()
}
