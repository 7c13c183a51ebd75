package config

import "testing"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("rig: rigs/human.yaml\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Rig != "rigs/human.yaml" {
		t.Errorf("Rig=%q; expected rigs/human.yaml", cfg.Rig)
	}
	if cfg.PickRadius != DEFAULT_PICK_RADIUS || cfg.Addr != DEFAULT_ADDR || cfg.RollSpeed != DEFAULT_ROLL_SPEED {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte("addr: 127.0.0.1:9000\npick_radius: 0.5\nrotation_speed: 0.01\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.PickRadius != 0.5 || cfg.RotationSpeed != 0.01 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{
		"pick_radius: -1\n",
		"roll_speed: 0\n",
		"addr: [1, 2\n",
	} {
		if cfg, err := Parse([]byte(in)); err == nil {
			t.Errorf("Parse(%q)=%+v; expected error", in, cfg)
		}
	}
}

func TestGetSet(t *testing.T) {
	defer Set(Default())
	cfg := Default()
	cfg.RollSpeed = 1
	Set(cfg)
	if Get().RollSpeed != 1 {
		t.Errorf("Get().RollSpeed=%v; expected 1", Get().RollSpeed)
	}
}
