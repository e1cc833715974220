// Package prompt builds the text prompts sent alongside the clock-hand
// conditioning image.
package prompt

import (
	"math/rand"
	"strings"
	"sync"
)

const suffix = "trending on ArtStation"

var (
	MainElements = []string{
		"a grand clockwork mechanism", "an ancient timekeeper's sanctuary",
		"a cosmic observatory", "a temporal dimension", "a time-bending realm",
		"a celestial chronometer", "an ethereal timescape",
	}
	Settings = []string{
		"at dawn", "at dusk", "under moonlight", "in twilight", "at midnight",
		"in a mystical realm", "in a dream dimension", "in an ethereal space",
	}
	Details = []string{
		"intricate gears floating in space", "swirling time spirals",
		"floating numerical constellations", "temporal energy streams",
		"crystalline chronographs", "orbiting time fragments",
	}
	Atmospheres = []string{
		"serene and mysterious", "enigmatic and profound",
		"timeless and ethereal", "cosmic and surreal",
	}
	Qualities = []string{
		"ultra-detailed", "hyper-realistic", "HDR", "8k",
		"cinematic lighting", "dramatic atmosphere",
	}
)

// Generator fills the prompt template from the vocabulary lists. It is safe
// for concurrent use; the output sequence is fully determined by the seed.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns
// "<main> <setting>, <detail>, <detail>, <atmosphere>, <quality>, <quality>, trending on ArtStation".
// The two details (and the two qualities) are drawn independently and may repeat.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	head := g.pick(MainElements) + " " + g.pick(Settings)
	parts := []string{
		head,
		g.pick(Details),
		g.pick(Details),
		g.pick(Atmospheres),
		g.pick(Qualities),
		g.pick(Qualities),
		suffix,
	}
	return strings.Join(parts, ", ")
}

func (g *Generator) pick(words []string) string {
	return words[g.rng.Intn(len(words))]
}
