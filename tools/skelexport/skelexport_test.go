package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/skeleton_viewer/config"
	"github.com/mogaika/skeleton_viewer/rig"
	"github.com/mogaika/skeleton_viewer/skeleton"
)

func TestExportSkeleton(t *testing.T) {
	s, err := skeleton.Build([]mgl64.Vec3{{0, 1, 0}, {1, 0, 0}}, []int{-1, 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(t.TempDir(), "out")
	if err := exportSkeleton(outDir, "elbow", s, []string{"gltf", "fbx", "yaml", "json"}); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"elbow.glb", "elbow.fbx", "elbow.yaml", "elbow.json"} {
		if st, err := os.Stat(filepath.Join(outDir, name)); err != nil || st.Size() == 0 {
			t.Errorf("%v not written: %v", name, err)
		}
	}

	r, err := rig.LoadFile(filepath.Join(outDir, "elbow.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Joints) != 2 {
		t.Errorf("exported rig has %d joints; expected 2", len(r.Joints))
	}

	if err := exportSkeleton(outDir, "elbow", s, []string{"obj"}); err == nil {
		t.Errorf("unknown format accepted")
	}
}

func TestOutputDir(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "viewer.yaml")
	if err := os.WriteFile(configPath, []byte("export_dir: renders\n"), 0666); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		configPath, flagDir, expected string
	}{
		{"", "", config.DEFAULT_EXPORT_DIR},
		{configPath, "", "renders"},
		{configPath, "out", "out"},
	}
	for _, test := range tests {
		dir, err := outputDir(test.configPath, test.flagDir)
		if err != nil {
			t.Errorf("outputDir(%q, %q): %v", test.configPath, test.flagDir, err)
			continue
		}
		if dir != test.expected {
			t.Errorf("outputDir(%q, %q)=%q; expected %q", test.configPath, test.flagDir, dir, test.expected)
		}
	}

	if _, err := outputDir(filepath.Join(t.TempDir(), "missing.yaml"), ""); err == nil {
		t.Errorf("missing config accepted")
	}
}

func TestLoadRigFromStdin(t *testing.T) {
	tests := []struct {
		format, data string
		joints       int
	}{
		{"yaml", "joints:\n  - offset: [0, 1, 0]\n    parent: -1\n  - offset: [1, 0, 0]\n    parent: 0\n", 2},
		{"json", `{"name": "arm", "joints": [{"offset": [0, 1, 0], "parent": -1}]}`, 1},
	}
	for _, test := range tests {
		r, err := loadRig("-", test.format, strings.NewReader(test.data))
		if err != nil {
			t.Errorf("%s: %v", test.format, err)
			continue
		}
		if len(r.Joints) != test.joints || r.Name == "" {
			t.Errorf("%s: rig %+v; expected %d joints and a name", test.format, r, test.joints)
		}
	}

	if _, err := loadRig("-", "xml", strings.NewReader("")); err == nil {
		t.Errorf("unknown stdin format accepted")
	}
}
