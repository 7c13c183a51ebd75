package rig

import (
	"testing"

	"github.com/mogaika/skeleton_viewer/skeleton"
)

const humanYaml = `
name: human
joints:
  - name: hips
    offset: [0, 1, 0]
    parent: -1
  - name: chest
    offset: [0, 0.5, 0]
    parent_name: hips
  - offset: [0, 0.3, 0]
    parent_name: chest
  - name: arm
    offset: [0.4, 0, 0]
    parent: 1
weights:
  - {vertex: 0, bone: 1, weight: 0.5}
  - {vertex: 0, bone: 2, weight: 0.5}
`

const humanJson = `{
  "name": "human",
  "joints": [
    {"name": "hips", "offset": [0, 1, 0], "parent": -1},
    {"name": "chest", "offset": [0, 0.5, 0], "parent_name": "hips"},
    {"offset": [0, 0.3, 0], "parent": 1}
  ],
  "weights": [{"vertex": 3, "bone": 0, "weight": 1}]
}`

func TestParseYaml(t *testing.T) {
	r, err := Parse([]byte(humanYaml), FORMAT_YAML)
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "human" || len(r.Joints) != 4 || len(r.Weights) != 2 {
		t.Fatalf("parsed rig %+v", r)
	}

	s, err := r.Build()
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 4 {
		t.Errorf("Len()=%d; expected 4", s.Len())
	}
	if j, _ := s.Joint(2); j.Name == "" || j.Parent != 1 {
		t.Errorf("joint 2 = %+v; expected generated name and parent 1", j)
	}
	if w := s.Weights(); len(w) != 2 || w[1].Bone != 2 {
		t.Errorf("weights %v", w)
	}
}

func TestParseJson(t *testing.T) {
	r, err := Parse([]byte(humanJson), FORMAT_JSON)
	if err != nil {
		t.Fatal(err)
	}
	s, err := r.Build()
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Errorf("Len()=%d; expected 3", s.Len())
	}
	if _, err := Parse([]byte(`{"joints": [], "bogus": 1}`), FORMAT_JSON); err == nil {
		t.Errorf("unknown json field accepted")
	}
}

func TestResolveErrors(t *testing.T) {
	for _, in := range []string{
		"joints:\n  - {name: a, offset: [0, 1, 0]}\n",
		"joints:\n  - {name: a, offset: [0, 1, 0], parent: -1}\n  - {offset: [0, 1, 0], parent_name: b}\n",
		"joints:\n  - {name: a, offset: [0, 1, 0], parent: -1}\n  - {name: a, offset: [0, 1, 0], parent: 0}\n",
	} {
		r, err := Parse([]byte(in), FORMAT_YAML)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", in, err)
		}
		if s, err := r.Build(); err == nil {
			t.Errorf("Build(%q)=%v; expected error", in, s)
		}
	}
}

func TestBuildConfigurationError(t *testing.T) {
	r, err := Parse([]byte("joints:\n  - {offset: [0, 1, 0], parent: -1}\n  - {offset: [0, 1, 0], parent: -1}\n"), FORMAT_YAML)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Build(); !skeleton.IsConfigurationError(err) {
		t.Errorf("Build with two roots error = %v; expected configuration error", err)
	}
}

func TestRoundTrip(t *testing.T) {
	r, err := Parse([]byte(humanYaml), FORMAT_YAML)
	if err != nil {
		t.Fatal(err)
	}
	s, err := r.Build()
	if err != nil {
		t.Fatal(err)
	}

	for _, format := range []Format{FORMAT_YAML, FORMAT_JSON} {
		data, err := FromSkeleton("copy", s).Marshal(format)
		if err != nil {
			t.Fatalf("Marshal(%d) failed: %v", format, err)
		}
		back, err := Parse(data, format)
		if err != nil {
			t.Fatalf("Parse(%d) of %s failed: %v", format, data, err)
		}
		s2, err := back.Build()
		if err != nil {
			t.Fatalf("Build(%d) failed: %v", format, err)
		}
		if s2.Len() != s.Len() {
			t.Fatalf("format %d: %d bones; expected %d", format, s2.Len(), s.Len())
		}
		for i := 0; i < s.Len(); i++ {
			a, b := s.BoneAt(i).DistalWorld(), s2.BoneAt(i).DistalWorld()
			if !a.ApproxEqualThreshold(b, 1e-9) {
				t.Errorf("format %d bone %d distal %v; expected %v", format, i, b, a)
			}
		}
		if len(back.Weights) != len(r.Weights) {
			t.Errorf("format %d: %d weights; expected %d", format, len(back.Weights), len(r.Weights))
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path   string
		format Format
		ok     bool
	}{
		{"a/human.yaml", FORMAT_YAML, true},
		{"human.YML", FORMAT_YAML, true},
		{"human.json", FORMAT_JSON, true},
		{"human.pmd", 0, false},
	}
	for _, test := range tests {
		f, err := FormatFromPath(test.path)
		if (err == nil) != test.ok || (test.ok && f != test.format) {
			t.Errorf("FormatFromPath(%q)=%v,%v; expected %v,%v", test.path, f, err, test.format, test.ok)
		}
	}
}
