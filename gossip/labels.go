package gossip

import "math/rand"

// DefaultNames fills the label pool after the caller-provided names.
var DefaultNames = []string{
	"Ana", "Bruno", "Carlos", "Diana", "Eduardo", "Fernanda", "Gabriel", "Helena",
	"Igor", "Julia", "Kaique", "Larissa", "Marcelo", "Natalia", "Otavio", "Paula",
	"Rafael", "Sofia", "Tiago", "Valentina", "Wagner", "Yasmin", "Zeca", "Alice",
	"Bernardo", "Camila", "Daniel", "Elisa", "Fabio", "Giovana", "Heitor", "Isabela",
}

// labelPool returns the caller's names followed by the unused default names
// in random order. Duplicates and blanks in the caller's list are dropped.
func labelPool(rng *rand.Rand, preferred []string) []string {
	seen := make(map[string]bool, len(preferred)+len(DefaultNames))
	pool := make([]string, 0, len(preferred)+len(DefaultNames))
	for _, name := range preferred {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		pool = append(pool, name)
	}

	rest := make([]string, 0, len(DefaultNames))
	for _, name := range DefaultNames {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	return append(pool, rest...)
}
