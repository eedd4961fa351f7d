package assets

import (
	"embed"
	"io/fs"
)

//go:embed phrases.json
var FS embed.FS

// PhrasesFile is the embedded default phrase catalog.
const PhrasesFile = "phrases.json"

// Phrases returns the raw embedded catalog.
func Phrases() ([]byte, error) {
	return fs.ReadFile(FS, PhrasesFile)
}
