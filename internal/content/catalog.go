package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/footyguess/footyguess/internal/models"
)

// ErrExhausted is returned by Pick when every subject of the requested
// difficulty has already been used. The game layer turns this into a soft
// finish, never a user-facing error.
var ErrExhausted = errors.New("subject pool exhausted")

// Subject is one football player that can be the answer of a round.
type Subject struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Difficulty  models.Difficulty `json:"difficulty"`
	Nationality string            `json:"nationality"`
	Position    string            `json:"position"`
	Club        string            `json:"club"`
	Hints       []string          `json:"hints"`
}

// Catalog is the immutable trivia subject pool, bucketed by difficulty.
type Catalog struct {
	byDifficulty map[models.Difficulty][]Subject
	byID         map[string]Subject
}

// Load reads the subject pool from a JSON file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subject pool: %w", err)
	}

	var subjects []Subject
	if err := json.Unmarshal(data, &subjects); err != nil {
		return nil, fmt.Errorf("failed to parse subject pool: %w", err)
	}

	return New(subjects), nil
}

// New builds a catalog from an already-loaded subject list.
func New(subjects []Subject) *Catalog {
	c := &Catalog{
		byDifficulty: make(map[models.Difficulty][]Subject),
		byID:         make(map[string]Subject, len(subjects)),
	}
	for _, s := range subjects {
		c.byDifficulty[s.Difficulty] = append(c.byDifficulty[s.Difficulty], s)
		c.byID[s.ID] = s
	}
	return c
}

// ByDifficulty returns all subjects of the given difficulty.
func (c *Catalog) ByDifficulty(d models.Difficulty) []Subject {
	return c.byDifficulty[d]
}

// Get returns a subject by id.
func (c *Catalog) Get(id string) (Subject, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Pick selects a subject of the given difficulty uniformly at random,
// skipping ids in excluded. Returns ErrExhausted when nothing remains.
func (c *Catalog) Pick(d models.Difficulty, excluded map[string]bool, rng *rand.Rand) (Subject, error) {
	var available []Subject
	for _, s := range c.byDifficulty[d] {
		if !excluded[s.ID] {
			available = append(available, s)
		}
	}
	if len(available) == 0 {
		return Subject{}, ErrExhausted
	}
	return available[rng.Intn(len(available))], nil
}

// CheckGuess compares a guess against the subject's name, ignoring case,
// accents and surrounding whitespace.
func CheckGuess(guess string, subject Subject) bool {
	return foldName(guess) == foldName(subject.Name)
}

var accentStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

func foldName(s string) string {
	folded, _, err := transform.String(accentStripper, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
