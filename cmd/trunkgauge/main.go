// Package main is the trunkgauge command.
package main

import (
	"log"
	"os"

	"github.com/bridgewiz/trunkgauge/cli"
	// registers the grabcut refiner.
	_ "github.com/bridgewiz/trunkgauge/vision/segmentation/grabcut"
)

func main() {
	if err := cli.NewApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
