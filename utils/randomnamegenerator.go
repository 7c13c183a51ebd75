package utils

import (
	"math/rand"
	"sync"

	"github.com/Pallinder/go-randomdata"
)

// randomdata keeps its source in a global
var randomdataLock sync.Mutex

// RandomNameGenerator hands out unique, seed-stable names. The zero value is ready to use.
type RandomNameGenerator struct {
	used map[string]struct{}
	rnd  *rand.Rand
}

func (rng *RandomNameGenerator) Reserve(name string) {
	if rng.used == nil {
		rng.used = make(map[string]struct{})
	}
	rng.used[name] = struct{}{}
}

func (rng *RandomNameGenerator) RandomName() string {
	if rng.used == nil {
		rng.used = make(map[string]struct{})
	}
	if rng.rnd == nil {
		rng.rnd = rand.New(rand.NewSource(0))
	}
	for {
		randomdataLock.Lock()
		randomdata.CustomRand(rng.rnd)
		name := randomdata.SillyName()
		randomdataLock.Unlock()
		// avoid duplicate names
		if _, exists := rng.used[name]; !exists {
			rng.used[name] = struct{}{}
			return name
		}
	}
}
