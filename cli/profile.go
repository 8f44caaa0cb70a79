package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/bridgewiz/trunkgauge/vision/girth"
)

// ProfileAction prints statistics and a histogram of the scanline depths of one frame.
func ProfileAction(c *cli.Context) (err error) {
	env, err := newEnvironment(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, env.Close())
	}()

	src, err := env.cfg.NewSource(c.Context, env.logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, src.Close(c.Context))
	}()
	frame, err := src.NextFrame(c.Context)
	if err != nil {
		return err
	}

	profile, err := girth.NewProfile(frame)
	if err != nil {
		return err
	}
	stats, err := profile.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "row %d, center column %d, center distance %.3fm\n",
		profile.Row, profile.CenterColumn, profile.CenterDistanceMeters)
	printTable(c.App.Writer, profileTable(stats))
	if err := profile.WriteHistogram(c.App.Writer, c.Int(flagBins), c.Int(flagWidth)); err != nil {
		return err
	}

	if path := c.String(flagPlot); path != "" {
		if err := profile.SavePlot(path, env.cfg.ExpectedMaxDiameter); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "profile plot written to %s\n", path)
	}
	return nil
}
