// Package assets embeds the default question bank and its JSON schema.
package assets

import (
	"embed"
)

//go:embed questions.yaml questions.schema.json
var FS embed.FS

// Questions returns the default question bank document.
func Questions() ([]byte, error) {
	return FS.ReadFile("questions.yaml")
}

// QuestionsSchema returns the JSON schema every bank document must satisfy.
func QuestionsSchema() ([]byte, error) {
	return FS.ReadFile("questions.schema.json")
}
