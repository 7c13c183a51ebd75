package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/skeleton_viewer/posescript"
	"github.com/mogaika/skeleton_viewer/skeleton"
)

func TestCheck(t *testing.T) {
	s, err := skeleton.BuildNamed([]mgl64.Vec3{{0, 1, 0}, {0, 1, 0}}, []int{-1, 0}, []string{"hip", "knee"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	commands, err := posescript.Parse([]byte("rotate $hip 90deg 0 0 1\nroll $knee 45deg\n"))
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := check(&out, s, commands, true); err != nil {
		t.Fatalf("check failed: %v\n%s", err, out.String())
	}
	lines := strings.Split(out.String(), "\n")
	if !strings.Contains(lines[1], "knee") || !strings.Contains(lines[1], "-2.0000") {
		t.Errorf("unexpected knee line %q", lines[1])
	}

	bad, _ := posescript.Parse([]byte("roll $ankle 1\n"))
	if err := check(&out, s, bad, false); err == nil {
		t.Errorf("check with unknown bone succeeded")
	}
}
