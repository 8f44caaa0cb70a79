// Package cli contains the trunkgauge command line: measuring frames, inspecting the depth
// profile, rendering synthetic scenes and exporting point clouds.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	flagConfig = "config"
	flagDebug  = "debug"

	flagFrames           = "frames"
	flagSave             = "save"
	flagWatch            = "watch"
	flagExpectedDiameter = "expected-diameter"
	flagQuiet            = "quiet"

	flagPlot  = "plot"
	flagBins  = "bins"
	flagWidth = "width"

	flagOut        = "out"
	flagTrunkLeft  = "trunk-left"
	flagTrunkRight = "trunk-right"
	flagDistance   = "distance"
)

// NewApp returns the trunkgauge application writing to the given streams.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "trunkgauge",
		Usage:           "measure tree trunk diameters from depth camera frames",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "measure",
				Usage:  "measure the object at the center of each frame",
				Action: MeasureAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagFrames,
						Value: 1,
						Usage: "number of frames to measure",
					},
					&cli.BoolFlag{
						Name:  flagSave,
						Usage: "append every measurement to the records file and save its images",
					},
					&cli.BoolFlag{
						Name:  flagWatch,
						Usage: "apply expected_max_diameter_m edits of the config file between frames",
					},
					&cli.Float64Flag{
						Name:  flagExpectedDiameter,
						Usage: "override the expected maximum diameter in `METERS`",
					},
					&cli.BoolFlag{
						Name:  flagQuiet,
						Usage: "do not show progress",
					},
				},
			},
			{
				Name:   "profile",
				Usage:  "summarize the depth along the measurement scanline",
				Action: ProfileAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagPlot,
						Usage: "also render the profile to `FILE` (png, svg or pdf)",
					},
					&cli.IntFlag{
						Name:  flagBins,
						Value: 16,
						Usage: "histogram bins",
					},
					&cli.IntFlag{
						Name:  flagWidth,
						Value: 40,
						Usage: "histogram bar width in characters",
					},
				},
			},
			{
				Name:      "synth",
				Usage:     "render a synthetic trunk frame into a replay directory",
				ArgsUsage: "",
				Action:    SynthAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagOut,
						Required: true,
						Usage:    "write the frame into `DIR`",
					},
					&cli.IntFlag{
						Name:  flagTrunkLeft,
						Usage: "first trunk column",
					},
					&cli.IntFlag{
						Name:  flagTrunkRight,
						Usage: "last trunk column",
					},
					&cli.Float64Flag{
						Name:  flagDistance,
						Usage: "trunk distance in `METERS`",
					},
				},
			},
			{
				Name:   "export-cloud",
				Usage:  "write the point cloud of one frame as x,y,z rows",
				Action: ExportCloudAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagOut,
						Required: true,
						Usage:    "write the cloud to `FILE`",
					},
				},
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the config file",
				Action: SchemaAction,
			},
		},
	}
}
