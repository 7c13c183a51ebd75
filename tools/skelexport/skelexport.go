package main

import (
	"bytes"
	"flag"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/skeleton_viewer/config"
	"github.com/mogaika/skeleton_viewer/export"
	"github.com/mogaika/skeleton_viewer/posescript"
	"github.com/mogaika/skeleton_viewer/rig"
	"github.com/mogaika/skeleton_viewer/skeleton"
)

func writeFile(outDir, name string, write func(buf *bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return errors.Wrapf(err, "Failed to export %q", name)
	}
	path := filepath.Join(outDir, name)
	if err := ioutil.WriteFile(path, buf.Bytes(), 0666); err != nil {
		return errors.Wrapf(err, "Failed to write %q", path)
	}
	log.Printf("[skelexport] %v (%d bytes)", path, buf.Len())
	return nil
}

func exportSkeleton(outDir, name string, s *skeleton.Skeleton, formats []string) error {
	if err := os.MkdirAll(outDir, 0776); err != nil {
		return err
	}
	for _, format := range formats {
		var err error
		switch format {
		case "gltf":
			err = writeFile(outDir, name+".glb", func(buf *bytes.Buffer) error {
				doc, err := export.ExportGLTFDefault(name, s)
				if err != nil {
					return err
				}
				return export.WriteGLB(buf, doc)
			})
		case "fbx":
			err = writeFile(outDir, name+".fbx", func(buf *bytes.Buffer) error {
				return export.ExportFBX(buf, name, s)
			})
		case "yaml", "json":
			rigFormat := rig.FORMAT_YAML
			if format == "json" {
				rigFormat = rig.FORMAT_JSON
			}
			err = writeFile(outDir, name+"."+format, func(buf *bytes.Buffer) error {
				data, err := rig.FromSkeleton(name, s).Marshal(rigFormat)
				buf.Write(data)
				return err
			})
		default:
			err = errors.Errorf("Unknown format %q", format)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// outputDir prefers the -o flag, then export_dir of the config file.
func outputDir(configPath, flagDir string) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return "", err
		}
	}
	return cfg.ExportDir, nil
}

// loadRig reads path, or stdin in the given format when path is "-".
func loadRig(path, format string, stdin io.Reader) (*rig.Rig, error) {
	if path != "-" {
		return rig.LoadFile(path)
	}
	rigFormat := rig.FORMAT_YAML
	switch format {
	case "yaml":
	case "json":
		rigFormat = rig.FORMAT_JSON
	default:
		return nil, errors.Errorf("Unknown rig format %q", format)
	}
	r, err := rig.Read(stdin, rigFormat)
	if err != nil {
		return nil, errors.Wrapf(err, "stdin")
	}
	if r.Name == "" {
		r.Name = "stdin"
	}
	return r, nil
}

func main() {
	var rigPath, rigFormat, configPath, scriptPath, outDir, formats string
	flag.StringVar(&rigPath, "rig", "", "Rig file (yaml or json), - for stdin")
	flag.StringVar(&rigFormat, "rigformat", "yaml", "Format of a rig read from stdin (yaml or json)")
	flag.StringVar(&configPath, "config", "", "Path to yaml config, its export_dir is the default output")
	flag.StringVar(&scriptPath, "script", "", "Pose script applied before export")
	flag.StringVar(&outDir, "o", "", "Output directory (overrides config)")
	flag.StringVar(&formats, "formats", "gltf,fbx", "Comma separated list of gltf, fbx, yaml, json")
	flag.Parse()

	if rigPath == "" {
		flag.PrintDefaults()
		return
	}

	outDir, err := outputDir(configPath, outDir)
	if err != nil {
		log.Fatal(err)
	}
	r, err := loadRig(rigPath, rigFormat, os.Stdin)
	if err != nil {
		log.Fatal(err)
	}
	s, err := r.Build()
	if err != nil {
		log.Fatal(err)
	}

	if scriptPath != "" {
		text, err := ioutil.ReadFile(scriptPath)
		if err != nil {
			log.Fatal(err)
		}
		commands, err := posescript.Parse(text)
		if err != nil {
			log.Fatalf("%v: %v", scriptPath, err)
		}
		if err := posescript.Apply(s, commands); err != nil {
			log.Fatalf("%v: %v", scriptPath, err)
		}
	}

	if err := exportSkeleton(outDir, r.Name, s, strings.Split(formats, ",")); err != nil {
		log.Fatal(err)
	}
}
