// Package posescript is a line based command language for posing a skeleton
// from a file or an HTTP request body.
package posescript

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/skeleton_viewer/skeleton"
)

type Op int

const (
	OP_ROLL Op = iota
	OP_ROTATE
	OP_RESET
)

var opByName = map[string]Op{
	"roll":   OP_ROLL,
	"rotate": OP_ROTATE,
	"reset":  OP_RESET,
}

func (op Op) String() string {
	for name, o := range opByName {
		if o == op {
			return name
		}
	}
	return fmt.Sprintf("op%d", int(op))
}

// BoneRef addresses a bone by id or, when Name is set, by its distal joint name.
type BoneRef struct {
	Id   int
	Name string
	set  bool
}

func (r BoneRef) String() string {
	if r.Name != "" {
		return "$" + r.Name
	}
	return strconv.Itoa(r.Id)
}

func (r BoneRef) Resolve(s *skeleton.Skeleton) *skeleton.Bone {
	if r.Name != "" {
		return s.BoneByName(r.Name)
	}
	return s.BoneById(r.Id)
}

type Command struct {
	Op      Op
	Bone    BoneRef
	Args    []float64
	Line    int
	Comment string
}

// ById and ByName build commands for callers that do not go through Parse.
func ById(id int) BoneRef        { return BoneRef{Id: id, set: true} }
func ByName(name string) BoneRef { return BoneRef{Name: name, set: true} }

func (c *Command) validate() error {
	var want int
	switch c.Op {
	case OP_ROLL:
		want = 1
	case OP_ROTATE:
		want = 4
	case OP_RESET:
		if len(c.Args) != 0 {
			return errors.Errorf("reset on line %v takes no angles", c.Line)
		}
		return nil
	default:
		return errors.Errorf("unknown command %v on line %v", c.Op, c.Line)
	}
	if !c.Bone.set {
		return errors.Errorf("%v on line %v requires a bone", c.Op, c.Line)
	}
	if len(c.Args) != want {
		return errors.Errorf("%v on line %v takes %d numbers, got %d", c.Op, c.Line, want, len(c.Args))
	}
	return nil
}

func (c *Command) String() string {
	parts := []string{c.Op.String()}
	if c.Bone.set {
		parts = append(parts, c.Bone.String())
	}
	for _, a := range c.Args {
		parts = append(parts, strconv.FormatFloat(a, 'g', -1, 64))
	}
	s := strings.Join(parts, " ")
	if c.Comment != "" {
		s = fmt.Sprintf("%-30s // %s", s, c.Comment)
	}
	return s
}

// Apply runs one command. Malformed commands and unknown bones are reported,
// pose math itself never fails.
func (c *Command) Apply(s *skeleton.Skeleton) error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.Op == OP_RESET && !c.Bone.set {
		s.ResetPose()
		return nil
	}
	b := c.Bone.Resolve(s)
	if b == nil {
		return errors.Errorf("Line %v: bone %v not found", c.Line, c.Bone)
	}
	switch c.Op {
	case OP_ROLL:
		b.Roll(c.Args[0])
	case OP_ROTATE:
		b.Rotate(c.Args[0], mgl64.Vec3{c.Args[1], c.Args[2], c.Args[3]})
	case OP_RESET:
		b.ResetPose()
	}
	return nil
}

// Apply validates every command and resolves every bone before touching the
// pose, so a bad script leaves it unchanged.
func Apply(s *skeleton.Skeleton, commands []*Command) error {
	for _, c := range commands {
		if err := c.validate(); err != nil {
			return err
		}
		if c.Op == OP_RESET && !c.Bone.set {
			continue
		}
		if c.Bone.Resolve(s) == nil {
			return errors.Errorf("Line %v: bone %v not found", c.Line, c.Bone)
		}
	}
	for _, c := range commands {
		if err := c.Apply(s); err != nil {
			return err
		}
	}
	return nil
}

func Render(commands []*Command) string {
	lines := make([]string, 0, len(commands))
	for _, c := range commands {
		lines = append(lines, c.String())
	}
	return strings.Join(lines, "\n")
}
