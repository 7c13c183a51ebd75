// Package rig reads skeleton descriptions (joint offsets, parent links and
// sparse weights) from YAML or JSON files and feeds them to skeleton.Build.
package rig

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"log"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/skeleton_viewer/skeleton"
	"github.com/mogaika/skeleton_viewer/utils"
)

type Format int

const (
	FORMAT_YAML Format = iota
	FORMAT_JSON
)

type JointDesc struct {
	Name   string     `yaml:"name,omitempty" json:"name,omitempty"`
	Offset [3]float64 `yaml:"offset,flow" json:"offset"`
	// Parent is an index into Joints, -1 for the root. ParentName wins when both are set.
	Parent     *int   `yaml:"parent,omitempty" json:"parent,omitempty"`
	ParentName string `yaml:"parent_name,omitempty" json:"parent_name,omitempty"`
}

type Rig struct {
	Name    string                 `yaml:"name,omitempty" json:"name,omitempty"`
	Joints  []JointDesc            `yaml:"joints" json:"joints"`
	Weights []skeleton.SparseTuple `yaml:"weights,omitempty" json:"weights,omitempty"`
}

func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FORMAT_YAML, nil
	case ".json":
		return FORMAT_JSON, nil
	default:
		return 0, errors.Errorf("Unknown rig extension %q", filepath.Ext(path))
	}
}

func Parse(data []byte, format Format) (*Rig, error) {
	r := new(Rig)
	switch format {
	case FORMAT_YAML:
		if err := yaml.Unmarshal(data, r); err != nil {
			return nil, errors.Wrapf(err, "Failed to unmarshal yaml rig")
		}
	case FORMAT_JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(r); err != nil {
			return nil, errors.Wrapf(err, "Failed to unmarshal json rig")
		}
	default:
		return nil, errors.Errorf("Unknown rig format %d", format)
	}
	return r, nil
}

func Read(rd io.Reader, format Format) (*Rig, error) {
	data, err := ioutil.ReadAll(rd)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read rig")
	}
	return Parse(data, format)
}

func LoadFile(path string) (*Rig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read rig %q", path)
	}
	r, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "Rig %q", path)
	}
	if r.Name == "" {
		r.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	log.Printf("[rig] loaded %q: %d joints, %d weights", path, len(r.Joints), len(r.Weights))
	return r, nil
}

// Resolve turns the description into the flat arrays skeleton.Build consumes.
// Unnamed joints get generated names so every joint can be addressed by name.
func (r *Rig) Resolve() ([]mgl64.Vec3, []int, []string, error) {
	var names utils.RandomNameGenerator
	index := make(map[string]int, len(r.Joints))
	for i, j := range r.Joints {
		if j.Name == "" {
			continue
		}
		if prev, ok := index[j.Name]; ok {
			return nil, nil, nil, errors.Errorf("Joints %d and %d share name %q", prev, i, j.Name)
		}
		index[j.Name] = i
		names.Reserve(j.Name)
	}

	offsets := make([]mgl64.Vec3, len(r.Joints))
	parents := make([]int, len(r.Joints))
	jointNames := make([]string, len(r.Joints))
	for i, j := range r.Joints {
		offsets[i] = mgl64.Vec3(j.Offset)

		switch {
		case j.ParentName != "":
			p, ok := index[j.ParentName]
			if !ok {
				return nil, nil, nil, errors.Errorf("Joint %d references unknown parent %q", i, j.ParentName)
			}
			parents[i] = p
		case j.Parent != nil:
			parents[i] = *j.Parent
		default:
			return nil, nil, nil, errors.Errorf("Joint %d has no parent (use %d for the root)", i, skeleton.JOINT_PARENT_NONE)
		}

		jointNames[i] = j.Name
		if jointNames[i] == "" {
			jointNames[i] = names.RandomName()
		}
	}
	return offsets, parents, jointNames, nil
}

func (r *Rig) Build() (*skeleton.Skeleton, error) {
	offsets, parents, names, err := r.Resolve()
	if err != nil {
		return nil, errors.Wrapf(err, "Rig %q", r.Name)
	}
	s, err := skeleton.BuildNamed(offsets, parents, names, r.Weights)
	if err != nil {
		return nil, errors.Wrapf(err, "Rig %q", r.Name)
	}
	return s, nil
}

// FromSkeleton describes the bind pose of s. Parents are written by name.
func FromSkeleton(name string, s *skeleton.Skeleton) *Rig {
	joints := s.Joints()
	// the last arena entry is the synthetic origin
	r := &Rig{
		Name:    name,
		Joints:  make([]JointDesc, len(joints)-1),
		Weights: s.Weights(),
	}
	for i := range r.Joints {
		j := joints[i]
		r.Joints[i] = JointDesc{Name: j.Name, Offset: [3]float64(j.Offset)}
		if j.Parent == skeleton.JOINT_PARENT_NONE {
			root := skeleton.JOINT_PARENT_NONE
			r.Joints[i].Parent = &root
		} else if parentName := joints[j.Parent].Name; parentName != "" {
			r.Joints[i].ParentName = parentName
		} else {
			parent := j.Parent
			r.Joints[i].Parent = &parent
		}
	}
	return r
}

func (r *Rig) Marshal(format Format) ([]byte, error) {
	switch format {
	case FORMAT_YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return nil, errors.Wrapf(err, "Failed to marshal yaml rig")
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FORMAT_JSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to marshal json rig")
		}
		return data, nil
	default:
		return nil, errors.Errorf("Unknown rig format %d", format)
	}
}
