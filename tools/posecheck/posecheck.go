package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/skeleton_viewer/export"
	"github.com/mogaika/skeleton_viewer/posescript"
	"github.com/mogaika/skeleton_viewer/rig"
	"github.com/mogaika/skeleton_viewer/skeleton"
	"github.com/mogaika/skeleton_viewer/utils"
)

// check applies the script and prints the resulting joint positions,
// reporting any bone whose length or frame drifted.
func check(out io.Writer, s *skeleton.Skeleton, commands []*posescript.Command, verbose bool) error {
	if err := posescript.Apply(s, commands); err != nil {
		return err
	}

	broken := 0
	for _, b := range s.Bones() {
		proximal, distal := b.ProximalWorld(), b.DistalWorld()
		fmt.Fprintf(out, "%3d %-16s %8.4f %8.4f %8.4f -> %8.4f %8.4f %8.4f\n",
			b.Id(), export.BoneName(s, b),
			proximal[0], proximal[1], proximal[2], distal[0], distal[1], distal[2])

		if l := distal.Sub(proximal).Len(); !mgl64.FloatEqualThreshold(l, b.Length(), 1e-6) {
			fmt.Fprintf(out, "    length %v drifted from %v\n", l, b.Length())
			broken++
		}
		if det := b.Frame().Det(); !mgl64.FloatEqualThreshold(det, 1, 1e-6) {
			fmt.Fprintf(out, "    frame determinant %v\n", det)
			broken++
		}
	}

	if verbose {
		fmt.Fprint(out, utils.SDump(commands, s.WorldTransforms()))
	}
	if broken != 0 {
		return errors.Errorf("%d pose problems found", broken)
	}
	return nil
}

func main() {
	var rigPath, scriptPath string
	var verbose bool
	flag.StringVar(&rigPath, "rig", "", "Rig file (yaml or json)")
	flag.StringVar(&scriptPath, "script", "", "Pose script")
	flag.BoolVar(&verbose, "v", false, "Dump commands and world transforms")
	flag.Parse()

	if rigPath == "" {
		flag.PrintDefaults()
		return
	}

	r, err := rig.LoadFile(rigPath)
	if err != nil {
		log.Fatal(err)
	}
	s, err := r.Build()
	if err != nil {
		log.Fatal(err)
	}

	var commands []*posescript.Command
	if scriptPath != "" {
		text, err := ioutil.ReadFile(scriptPath)
		if err != nil {
			log.Fatal(err)
		}
		if commands, err = posescript.Parse(text); err != nil {
			log.Fatalf("%v: %v", scriptPath, err)
		}
	}

	if err := check(os.Stdout, s, commands, verbose); err != nil {
		log.Fatal(err)
	}
}
