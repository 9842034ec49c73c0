package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// mockGenerator implements generator.TextGenerator, capturing the prompt it
// was asked to generate from.
type mockGenerator struct {
	capturedPrompt string
	returnText     string
	returnErr      error
}

func (m *mockGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	m.capturedPrompt = prompt
	if m.returnErr != nil {
		return "", m.returnErr
	}
	return m.returnText, nil
}

func newTestRulesService(gen *mockGenerator) *RulesService {
	return NewRulesService(gen, testServiceLogger())
}

func TestRulesGenerate_ArrayConfig(t *testing.T) {
	gen := &mockGenerator{returnText: "# Generated Rules"}
	svc := newTestRulesService(gen)

	config := json.RawMessage(`[
		{"title": "Code Style", "selectedTags": ["concise", "typed"]},
		{"title": "Testing", "selectedTags": ["table-driven"]}
	]`)

	text, err := svc.Generate(context.Background(), config, "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "# Generated Rules" {
		t.Errorf("Generate() = %q, want generator output", text)
	}

	// Prompt must contain each section title and tag in outline form
	for _, want := range []string{"# Code Style", "- concise", "- typed", "# Testing", "- table-driven"} {
		if !strings.Contains(gen.capturedPrompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, gen.capturedPrompt)
		}
	}
}

func TestRulesGenerate_ObjectConfigSortedByKey(t *testing.T) {
	gen := &mockGenerator{returnText: "ok"}
	svc := newTestRulesService(gen)

	config := json.RawMessage(`{
		"b-second": {"title": "Second", "selectedTags": ["two"]},
		"a-first":  {"title": "First",  "selectedTags": ["one"]}
	}`)

	if _, err := svc.Generate(context.Background(), config, ""); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	first := strings.Index(gen.capturedPrompt, "# First")
	second := strings.Index(gen.capturedPrompt, "# Second")
	if first == -1 || second == -1 {
		t.Fatalf("prompt missing sections:\n%s", gen.capturedPrompt)
	}
	if first > second {
		t.Error("object-form sections not rendered in sorted key order — prompts would be non-deterministic")
	}
}

func TestRulesGenerate_SkipsSectionsWithoutTags(t *testing.T) {
	gen := &mockGenerator{returnText: "ok"}
	svc := newTestRulesService(gen)

	config := json.RawMessage(`[
		{"title": "Used", "selectedTags": ["x"]},
		{"title": "Unused", "selectedTags": []}
	]`)

	if _, err := svc.Generate(context.Background(), config, ""); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if strings.Contains(gen.capturedPrompt, "Unused") {
		t.Errorf("prompt includes a section with no selected tags:\n%s", gen.capturedPrompt)
	}
}

func TestRulesGenerate_SupplementAppended(t *testing.T) {
	gen := &mockGenerator{returnText: "ok"}
	svc := newTestRulesService(gen)

	config := json.RawMessage(`[{"title": "T", "selectedTags": ["x"]}]`)

	if _, err := svc.Generate(context.Background(), config, "prefer British spelling"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !strings.Contains(gen.capturedPrompt, "prefer British spelling") {
		t.Errorf("prompt missing the supplement:\n%s", gen.capturedPrompt)
	}
}

func TestRulesGenerate_EmptyConfig(t *testing.T) {
	gen := &mockGenerator{returnText: "ok"}
	svc := newTestRulesService(gen)

	for _, config := range []json.RawMessage{nil, json.RawMessage("null")} {
		_, err := svc.Generate(context.Background(), config, "")
		if !errorsIsValidation(err) {
			t.Errorf("Generate(config=%q) error = %v, want validation error", config, err)
		}
	}
}

func TestRulesGenerate_MalformedConfig(t *testing.T) {
	gen := &mockGenerator{returnText: "ok"}
	svc := newTestRulesService(gen)

	_, err := svc.Generate(context.Background(), json.RawMessage(`"just a string"`), "")
	if !errorsIsValidation(err) {
		t.Errorf("Generate() error = %v, want validation error for non-section config", err)
	}
}

func TestRulesGenerate_UpstreamFailurePropagates(t *testing.T) {
	gen := &mockGenerator{returnErr: errors.New("api quota exceeded")}
	svc := newTestRulesService(gen)

	config := json.RawMessage(`[{"title": "T", "selectedTags": ["x"]}]`)

	_, err := svc.Generate(context.Background(), config, "")
	if err == nil {
		t.Fatal("Generate() should propagate generator failures")
	}
	if errorsIsValidation(err) {
		t.Error("upstream failure misclassified as validation error")
	}
}
