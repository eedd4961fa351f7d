package game

import "strings"

// Category is one of the fixed playable categories.
type Category string

const (
	CategorySong               Category = "SONG"
	CategoryMovie              Category = "MOVIE"
	CategoryFamousPerson       Category = "FAMOUS_PERSON"
	CategoryFictionalCharacter Category = "FICTIONAL_CHARACTER"
	CategoryBook               Category = "BOOK"
	CategoryPoet               Category = "POET"
	CategoryQuote              Category = "QUOTE"
)

// Info describes the immutable scoring rules of a category.
type Info struct {
	Name        string
	BasePoints  int
	Chain       []Stage
	CreatorRole string
}

var (
	twoStage   = []Stage{StageSource, StageYear}
	threeStage = []Stage{StageSource, StageYear, StageCreator}
)

var categories = map[Category]Info{
	CategorySong:               {Name: "Song", BasePoints: 1, Chain: threeStage, CreatorRole: "artist"},
	CategoryMovie:              {Name: "Movie", BasePoints: 2, Chain: threeStage, CreatorRole: "director"},
	CategoryFamousPerson:       {Name: "Famous Person", BasePoints: 3, Chain: twoStage},
	CategoryFictionalCharacter: {Name: "Fictional Character", BasePoints: 3, Chain: twoStage},
	CategoryBook:               {Name: "Book", BasePoints: 4, Chain: threeStage, CreatorRole: "author"},
	CategoryPoet:               {Name: "Poet", BasePoints: 5, Chain: twoStage},
	CategoryQuote:              {Name: "Quote", BasePoints: 6, Chain: twoStage},
}

// Categories lists every category in ascending base-point order.
var Categories = []Category{
	CategorySong,
	CategoryMovie,
	CategoryFamousPerson,
	CategoryFictionalCharacter,
	CategoryBook,
	CategoryPoet,
	CategoryQuote,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Info returns the rules for c; the zero Info for unknown categories.
func (c Category) Info() Info {
	return categories[c]
}

// HasCreator reports whether the bonus chain continues past the year.
func (c Category) HasCreator() bool {
	return len(categories[c].Chain) == len(threeStage)
}

// NextStage returns the stage following s in c's chain, if any.
// Creator is only ever reachable through this for three-stage categories.
func (c Category) NextStage(s Stage) (Stage, bool) {
	chain := categories[c].Chain
	for i, st := range chain {
		if st == s && i+1 < len(chain) {
			return chain[i+1], true
		}
	}
	return "", false
}

// ParseCategory resolves free text to a category, ignoring case, spaces and hyphens.
// Both keys ("famous_person") and display names ("Famous Person") are accepted.
func ParseCategory(raw string) (Category, bool) {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	c := Category(norm)
	if c.Valid() {
		return c, true
	}
	return "", false
}

// BasePoints is the points awarded for a correct source answer.
func BasePoints(c Category) int {
	return categories[c].BasePoints
}

// StagePoints is the award for a correct answer at stage s: base, ×2 for year, ×3 for creator.
func StagePoints(c Category, s Stage) int {
	return BasePoints(c) * s.multiplier()
}

// MaxPoints is the most a single round of c can bank: base·6 with a creator
// stage, base·3 without.
func MaxPoints(c Category) int {
	total := 0
	for _, s := range categories[c].Chain {
		total += StagePoints(c, s)
	}
	return total
}
