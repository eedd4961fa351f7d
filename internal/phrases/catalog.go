// internal/phrases/catalog.go
//
// Offline phrase source backed by a JSON catalog.
//
// Responsibilities:
//   - Load the catalog from PHRASES_FILE or fall back to the embedded default.
//   - Validate entries (category, text, source, year; creator for chained categories).
//   - Serve game.PhraseSource with a deterministic, history-aware pick.
//
// Catalog format:
//   { "SONG": [ {"text", "source", "year", "hint", "genre",
//                "creator": {"role", "name"}, "difficulty"} ], ... }
//
// Notes:
//   • The embedded catalog is parsed once (sync.Once).
//   • Entries without a difficulty serve every difficulty.

package phrases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/assets"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

var (
	ErrNoPhrases   = errors.New("phrases: no phrases for category")
	ErrBadCatalog  = errors.New("phrases: invalid catalog")
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Entry is one catalog phrase.
type Entry struct {
	game.Phrase
	Difficulty game.Difficulty `json:"difficulty,omitempty"`
}

// Catalog is an immutable set of phrases grouped by category.
type Catalog struct {
	byCategory map[game.Category][]Entry
	salt       string
}

// Open loads the catalog at path, or the embedded one when path is empty.
func Open(path, salt string) (*Catalog, error) {
	if path == "" {
		c, err := Default()
		if err != nil {
			return nil, err
		}
		return &Catalog{byCategory: c.byCategory, salt: salt}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("phrases: read %s: %w", path, err)
	}
	return Parse(raw, salt)
}

// Default returns the embedded catalog with an empty salt.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		raw, err := assets.Phrases()
		if err != nil {
			defaultErr = err
			return
		}
		defaultCatalog, defaultErr = Parse(raw, "")
	})
	return defaultCatalog, defaultErr
}

// Parse decodes and validates a JSON catalog.
func Parse(raw []byte, salt string) (*Catalog, error) {
	var doc map[string][]Entry
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCatalog, err)
	}
	c := &Catalog{byCategory: make(map[game.Category][]Entry, len(doc)), salt: salt}
	for key, entries := range doc {
		cat, ok := game.ParseCategory(key)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrBadCatalog, key)
		}
		for i, e := range entries {
			if err := validate(cat, e); err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", ErrBadCatalog, key, i, err)
			}
			if e.Difficulty != "" {
				d, ok := game.ParseDifficulty(string(e.Difficulty))
				if !ok {
					return nil, fmt.Errorf("%w: %s[%d]: difficulty %q", ErrBadCatalog, key, i, e.Difficulty)
				}
				e.Difficulty = d
			}
			if cat.HasCreator() && e.Creator.Role == "" {
				e.Creator.Role = cat.Info().CreatorRole
			}
			c.byCategory[cat] = append(c.byCategory[cat], e)
		}
	}
	return c, nil
}

func validate(cat game.Category, e Entry) error {
	switch {
	case strings.TrimSpace(e.Text) == "":
		return errors.New("empty text")
	case strings.TrimSpace(e.Source) == "":
		return errors.New("empty source")
	case strings.TrimSpace(e.Year) == "":
		return errors.New("empty year")
	case cat.HasCreator() && strings.TrimSpace(e.Creator.Name) == "":
		return errors.New("missing creator")
	}
	return nil
}

// Stats returns the number of phrases per category.
func (c *Catalog) Stats() map[game.Category]int {
	out := make(map[game.Category]int, len(c.byCategory))
	for k, v := range c.byCategory {
		out[k] = len(v)
	}
	return out
}

// FetchPhrase implements game.PhraseSource.
//
// Candidates are the category's phrases at the requested difficulty (all of
// them if none match). Phrases already shown in req.Prior are skipped unless
// that would leave nothing.
func (c *Catalog) FetchPhrase(ctx context.Context, req game.PhraseRequest) (game.Phrase, error) {
	if err := ctx.Err(); err != nil {
		return game.Phrase{}, err
	}
	all := c.byCategory[req.Category]
	if len(all) == 0 {
		return game.Phrase{}, fmt.Errorf("%w: %s", ErrNoPhrases, req.Category)
	}

	candidates := filter(all, func(e Entry) bool { return e.Difficulty == "" || e.Difficulty == req.Difficulty })
	if len(candidates) == 0 {
		candidates = all
	}
	seen := make(map[string]struct{}, len(req.Prior))
	for _, le := range req.Prior {
		if le.Phrase != "" {
			seen[le.Phrase] = struct{}{}
		}
	}
	if fresh := filter(candidates, func(e Entry) bool { _, ok := seen[e.Text]; return !ok }); len(fresh) > 0 {
		candidates = fresh
	}

	return candidates[pick(c.salt, req, len(candidates))].Phrase, nil
}

func filter(in []Entry, keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range in {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
