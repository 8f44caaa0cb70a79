package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/bridgewiz/trunkgauge/components/camera/fake"
	"github.com/bridgewiz/trunkgauge/components/camera/replay"
	"github.com/bridgewiz/trunkgauge/config"
	"github.com/bridgewiz/trunkgauge/pointcloud"
)

// SynthAction renders the fake scene, adjusted by flags, into a directory the replay source can
// read.
func SynthAction(c *cli.Context) (err error) {
	env, err := newEnvironment(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, env.Close())
	}()

	if env.cfg.Source.Type != config.SourceFake {
		env.cfg.Source = config.Source{Type: config.SourceFake}
	}
	scene, err := env.cfg.FakeConfig()
	if err != nil {
		return err
	}
	if c.IsSet(flagTrunkLeft) {
		scene.TrunkLeft = c.Int(flagTrunkLeft)
	}
	if c.IsSet(flagTrunkRight) {
		scene.TrunkRight = c.Int(flagTrunkRight)
	}
	if c.IsSet(flagDistance) {
		scene.TrunkDistance = c.Float64(flagDistance)
	}
	frame, err := fake.Render(scene)
	if err != nil {
		return err
	}

	dir := c.String(flagOut)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrapf(err, "cannot create %q", dir)
	}
	if err := replay.WriteFrame(dir, frame); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %dx%d frame of a %.2fcm trunk at %.2fm to %s\n",
		scene.Width, scene.Height, scene.TrunkDiameterMeters()*100, frame.CenterDistanceMeters, dir)
	return nil
}

// ExportCloudAction writes the point cloud of the next frame.
func ExportCloudAction(c *cli.Context) (err error) {
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

	path := c.String(flagOut)
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	if err := pointcloud.WriteCSV(f, frame.Cloud); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %d vertices to %s\n", frame.Cloud.Len(), path)
	return nil
}

// SchemaAction prints the config schema.
func SchemaAction(c *cli.Context) error {
	raw, err := config.SchemaJSON()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(raw))
	return nil
}
