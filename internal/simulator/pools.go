package simulator

import (
	"os"
	"strings"

	"griddle/pkg/logging"
)

// DefaultNormalOrders is the compiled-in pool of plausible orders used
// when no pool file is configured or the file yields nothing.
var DefaultNormalOrders = []string{
	"Bacon cheeseburger with waffle fries",
	"Double cheeseburger well-done with standard fries",
	"Veggie burger with sweet potato fries and a vanilla shake",
	"Cheeseburger with fries and a chocolate shake",
	"Plain burger to go with a strawberry sundae",
	"Bacon burger with waffle fries and a sundae with whipped cream",
	"Chicken burger on a toasted brioche bun, takeout please",
	"Large chocolate shake with whipped cream",
}

// DefaultChaosOrders is the compiled-in pool of nonsense orders used to
// exercise the resolver's degrade-to-minimal-plan behavior.
var DefaultChaosOrders = []string{
	"A bucket of moonbeams, extra crispy",
	"One existential dread, hold the pickles",
	"Seventeen invisible tacos",
	"The sound of one hand clapping, medium rare",
	"Quantum soup with a side of static",
}

// ParsePool extracts order texts from a markdown blob: one entry per
// "- " bullet line, everything else ignored.
func ParsePool(blob string) []string {
	var pool []string
	for _, line := range strings.Split(blob, "\n") {
		line = strings.TrimSpace(line)
		if text, ok := strings.CutPrefix(line, "- "); ok {
			text = strings.TrimSpace(text)
			if text != "" {
				pool = append(pool, text)
			}
		}
	}
	return pool
}

// LoadPool reads a markdown pool file. Missing files and files without
// any bullets fall back to the given pool.
func LoadPool(path string, fallback []string) []string {
	if path == "" {
		return fallback
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		logging.Warn("Simulator", "could not read pool file %s, using built-in pool: %v", path, err)
		return fallback
	}
	pool := ParsePool(string(blob))
	if len(pool) == 0 {
		logging.Warn("Simulator", "pool file %s contains no bullet entries, using built-in pool", path)
		return fallback
	}
	return pool
}
