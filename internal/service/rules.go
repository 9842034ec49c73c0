package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"log/slog"

	"github.com/sakif/rulesmith/internal/apperror"
	"github.com/sakif/rulesmith/internal/generator"
)

// configSection is one block of the rule configuration: a titled group of
// tags the user selected in the frontend. The config arrives either as an
// array of sections or as an object keyed by section ID — both shapes occur
// in the wild, so the prompt builder accepts both.
type configSection struct {
	Title        string   `json:"title"`
	SelectedTags []string `json:"selectedTags"`
}

// RulesService assembles a prompt from the rule configuration and delegates
// generation to the external text-generation collaborator.
type RulesService struct {
	gen    generator.TextGenerator
	logger *slog.Logger
}

// NewRulesService creates a RulesService.
func NewRulesService(gen generator.TextGenerator, logger *slog.Logger) *RulesService {
	return &RulesService{gen: gen, logger: logger}
}

// Generate builds the prompt and calls the generator. The optional
// supplement is appended as extra instructions.
func (s *RulesService) Generate(ctx context.Context, config json.RawMessage, supplement string) (string, error) {
	if emptyConfig(config) {
		return "", apperror.ValidationFailed("config", "config is required")
	}

	prompt, err := buildPrompt(config, supplement)
	if err != nil {
		return "", apperror.ValidationFailed("config", "config must be an array or object of sections")
	}

	s.logger.Info("generating rules", slog.Int("promptLength", len(prompt)))

	text, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Error("rule generation failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("generating rules: %w", err)
	}

	return text, nil
}

// buildPrompt renders the selected sections as a markdown outline wrapped in
// generation instructions. Sections with no selected tags are skipped.
//
// Object-form configs are rendered in sorted key order so the same config
// always yields the same prompt — map iteration order would otherwise make
// generation non-reproducible.
func buildPrompt(config json.RawMessage, supplement string) (string, error) {
	sections, err := decodeSections(config)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Generate a complete Cursor Rules file from the following configuration:\n\n")

	for _, sec := range sections {
		if len(sec.SelectedTags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "# %s\n", sec.Title)
		for _, tag := range sec.SelectedTags {
			fmt.Fprintf(&b, "- %s\n", tag)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nGenerate a complete, professional Cursor Rules file covering all necessary rules and guidelines.")

	if supplement = strings.TrimSpace(supplement); supplement != "" {
		b.WriteString("\n\nAdditional requirements:\n")
		b.WriteString(supplement)
	}

	return b.String(), nil
}

// decodeSections accepts both config shapes: a JSON array of sections, or a
// JSON object whose values are sections.
func decodeSections(config json.RawMessage) ([]configSection, error) {
	var asArray []configSection
	if err := json.Unmarshal(config, &asArray); err == nil {
		return asArray, nil
	}

	var asObject map[string]configSection
	if err := json.Unmarshal(config, &asObject); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(asObject))
	for k := range asObject {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sections := make([]configSection, 0, len(asObject))
	for _, k := range keys {
		sections = append(sections, asObject[k])
	}
	return sections, nil
}
