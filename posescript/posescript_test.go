package posescript_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/skeleton_viewer/posescript"
	"github.com/mogaika/skeleton_viewer/skeleton"
)

func buildLeg(t *testing.T) *skeleton.Skeleton {
	s, err := skeleton.BuildNamed(
		[]mgl64.Vec3{{0, 1, 0}, {0, 1, 0}},
		[]int{-1, 0},
		[]string{"hip", "knee"},
		nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParser(t *testing.T) {
	const test = `
// bend the leg
roll 0 0.5
rotate $knee 90deg 0 0 1 // bend

reset 1
reset //
`
	commands, err := posescript.Parse([]byte(test))
	if err != nil {
		t.Fatal(err)
	}
	if len(commands) != 4 {
		t.Fatalf("Parse returned %d commands; expected 4", len(commands))
	}

	expected := []struct {
		op   posescript.Op
		bone string
		args []float64
	}{
		{posescript.OP_ROLL, "0", []float64{0.5}},
		{posescript.OP_ROTATE, "$knee", []float64{math.Pi / 2, 0, 0, 1}},
		{posescript.OP_RESET, "1", nil},
		{posescript.OP_RESET, "0", nil},
	}
	for i, e := range expected {
		c := commands[i]
		if c.Op != e.op || c.Bone.String() != e.bone || len(c.Args) != len(e.args) {
			t.Errorf("command %d = %v; expected %v %v %v", i, c, e.op, e.bone, e.args)
			continue
		}
		for j := range e.args {
			if math.Abs(c.Args[j]-e.args[j]) > 1e-12 {
				t.Errorf("command %d arg %d = %v; expected %v", i, j, c.Args[j], e.args[j])
			}
		}
	}
	if commands[1].Comment != "bend" {
		t.Errorf("comment = %q; expected %q", commands[1].Comment, "bend")
	}
	if commands[0].Line >= commands[1].Line {
		t.Errorf("lines %d, %d are not increasing", commands[0].Line, commands[1].Line)
	}
}

func TestParserErrors(t *testing.T) {
	for _, test := range []string{
		"roll",
		"roll 0",
		"jump 0 1",
		"roll 0 1 roll 1 1",
		"rotate 0 1 0 0",
		"roll 1.5 2",
		"0 1",
		"reset 0 1",
		"roll $a $b 1",
	} {
		if commands, err := posescript.Parse([]byte(test)); err == nil {
			t.Errorf("Parse(%q)=%v; expected error", test, commands)
		}
	}
}

func TestApply(t *testing.T) {
	s := buildLeg(t)
	commands, err := posescript.Parse([]byte("rotate 0 90deg 0 0 1\nroll $knee 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := posescript.Apply(s, commands); err != nil {
		t.Fatal(err)
	}
	if got := s.BoneById(1).DistalWorld(); !got.ApproxEqualThreshold(mgl64.Vec3{-2, 0, 0}, 1e-9) {
		t.Errorf("knee distal = %v; expected (-2,0,0)", got)
	}

	commands, err = posescript.Parse([]byte("reset"))
	if err != nil {
		t.Fatal(err)
	}
	if err := posescript.Apply(s, commands); err != nil {
		t.Fatal(err)
	}
	if got := s.BoneById(1).DistalWorld(); !got.ApproxEqualThreshold(mgl64.Vec3{0, 2, 0}, 1e-9) {
		t.Errorf("knee distal after reset = %v; expected (0,2,0)", got)
	}
}

func TestApplyUnknownBoneKeepsPose(t *testing.T) {
	s := buildLeg(t)
	commands, err := posescript.Parse([]byte("rotate 0 1 0 0 1\nroll $foot 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := posescript.Apply(s, commands); err == nil {
		t.Errorf("Apply with unknown bone succeeded")
	}
	if got := s.BoneById(1).DistalWorld(); !got.ApproxEqualThreshold(mgl64.Vec3{0, 2, 0}, 1e-9) {
		t.Errorf("pose changed to %v after failed script", got)
	}

	bad := &posescript.Command{Op: posescript.OP_ROLL, Bone: posescript.ById(7), Args: []float64{1}}
	if err := bad.Apply(s); err == nil {
		t.Errorf("Apply on bone 7 succeeded")
	}
}

func TestApplyMalformedCommandKeepsPose(t *testing.T) {
	tests := []struct {
		name    string
		command posescript.Command
	}{
		{"rotate with one number", posescript.Command{Op: posescript.OP_ROTATE, Bone: posescript.ById(0), Args: []float64{1}}},
		{"roll without angle", posescript.Command{Op: posescript.OP_ROLL, Bone: posescript.ByName("knee")}},
		{"roll without bone", posescript.Command{Op: posescript.OP_ROLL, Args: []float64{1}}},
		{"reset with angle", posescript.Command{Op: posescript.OP_RESET, Args: []float64{1}}},
		{"unknown op", posescript.Command{Op: posescript.Op(42), Bone: posescript.ById(0)}},
	}
	for _, test := range tests {
		s := buildLeg(t)
		rotate := &posescript.Command{Op: posescript.OP_ROTATE, Bone: posescript.ById(0), Args: []float64{1, 0, 0, 1}}
		bad := test.command
		if err := posescript.Apply(s, []*posescript.Command{rotate, &bad}); err == nil {
			t.Errorf("%s: Apply succeeded", test.name)
		}
		if err := bad.Apply(s); err == nil {
			t.Errorf("%s: Command.Apply succeeded", test.name)
		}
		if got := s.BoneById(1).DistalWorld(); !got.ApproxEqualThreshold(mgl64.Vec3{0, 2, 0}, 1e-9) {
			t.Errorf("%s: pose changed to %v", test.name, got)
		}
	}
}

func TestRender(t *testing.T) {
	commands := []*posescript.Command{
		{Op: posescript.OP_ROLL, Bone: posescript.ById(0), Args: []float64{0.5}},
		{Op: posescript.OP_ROTATE, Bone: posescript.ByName("knee"), Args: []float64{1, 0, 0, 1}},
		{Op: posescript.OP_RESET},
	}
	text := posescript.Render(commands)
	const expected = "roll 0 0.5\nrotate $knee 1 0 0 1\nreset"
	if text != expected {
		t.Errorf("Render=%q; expected %q", text, expected)
	}
	parsed, err := posescript.Parse([]byte(text))
	if err != nil {
		t.Fatal(err)
	}
	if posescript.Render(parsed) != expected {
		t.Errorf("Render(Parse(%q))=%q", expected, posescript.Render(parsed))
	}
}
