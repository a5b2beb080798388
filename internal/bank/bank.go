// internal/bank/bank.go
//
// Question bank loading for the game engine.
//
// Responsibilities:
//   - Parse a YAML bank document (one question list per tier).
//   - Validate it against the embedded JSON schema before use.
//   - Normalize words: strip spaces, upper-case.
//
// LoadFile behavior:
//   1. A non-empty path is read from disk (the CLI's --questions-file).
//   2. Otherwise the bank embedded in the assets package is used.
//
// Every tier must end up with at least one question; an empty tier is a
// configuration error surfaced by LoadFile.

package bank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/funquiz/assets"
	"github.com/robalobadob/funquiz/internal/quiz"
)

// Bank maps each tier to its question pool.
type Bank map[quiz.Tier][]quiz.Question

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// LoadFile reads and validates the bank at path, or the embedded bank when
// path is empty. Every tier must have at least one question.
func LoadFile(path string) (Bank, error) {
	var (
		doc []byte
		err error
	)
	if path != "" {
		doc, err = os.ReadFile(path)
	} else {
		doc, err = assets.Questions()
	}
	if err != nil {
		return nil, fmt.Errorf("bank: read: %w", err)
	}
	b, err := Parse(doc)
	if err != nil {
		return nil, err
	}
	for _, t := range quiz.Tiers {
		if len(b[t]) == 0 {
			return nil, fmt.Errorf("bank: tier %s: %w", t, quiz.ErrEmptyPool)
		}
	}
	return b, nil
}

// Parse decodes and validates a YAML bank document.
func Parse(doc []byte) (Bank, error) {
	var raw any
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("bank: decode yaml: %w", err)
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	var byTier map[string][]quiz.Question
	if err := yaml.Unmarshal(doc, &byTier); err != nil {
		return nil, fmt.Errorf("bank: decode questions: %w", err)
	}
	b := make(Bank, len(byTier))
	for name, qs := range byTier {
		t, err := quiz.ParseTier(name)
		if err != nil {
			return nil, fmt.Errorf("bank: %q: %w", name, err)
		}
		pool := make([]quiz.Question, 0, len(qs))
		for _, q := range qs {
			pool = append(pool, quiz.Question{
				Word:       normalizeWord(q.Word),
				Definition: strings.TrimSpace(q.Definition),
			})
		}
		b[t] = pool
	}
	return b, nil
}

// validate checks raw against the embedded schema. The schema library wants
// JSON-shaped values, so raw is round-tripped through encoding/json first.
func validate(raw any) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	js, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("bank: to json: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(js))
	if err != nil {
		return fmt.Errorf("bank: parse json: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("bank: schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := assets.QuestionsSchema()
		if err != nil {
			schemaErr = fmt.Errorf("bank: read schema: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			schemaErr = fmt.Errorf("bank: parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://questions.json"
		if err := c.AddResource(url, doc); err != nil {
			schemaErr = fmt.Errorf("bank: add schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(url)
	})
	return schema, schemaErr
}

// normalizeWord upper-cases w and drops everything outside A–Z.
func normalizeWord(w string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(w) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Counts returns the number of questions per tier in b.
func (b Bank) Counts() map[quiz.Tier]int {
	out := make(map[quiz.Tier]int, len(quiz.Tiers))
	for _, t := range quiz.Tiers {
		out[t] = len(b[t])
	}
	return out
}
