package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"reqforge/internal/logging"
	"reqforge/internal/services"
	"reqforge/internal/textgen"
)

// Canonical field names, in prompt order.
const (
	FieldPurpose          = "Purpose"
	FieldScope            = "Scope"
	FieldProductFunctions = "Product Functions"
	FieldConstraints      = "Constraints"
	FieldStakeholders     = "Stakeholders"
	FieldAssumptions      = "Assumptions"
	FieldDependencies     = "Dependencies"
)

// FieldNames returns the seven canonical fields in prompt order.
func FieldNames() []string {
	return []string{
		FieldPurpose,
		FieldScope,
		FieldProductFunctions,
		FieldConstraints,
		FieldStakeholders,
		FieldAssumptions,
		FieldDependencies,
	}
}

// Fields maps field names to extracted free text. A missing key means the
// model gave no answer for it; an empty string never appears.
type Fields map[string]string

const promptTemplate = `Analyze this requirements text and extract key information:

Text: %s

Extract the following information:
1. What is the main purpose or goal of this system?
2. What is the scope or boundaries of this system?
3. What are the main functions or features mentioned?
4. What are the limitations or constraints mentioned?
5. Who are the main stakeholders or users mentioned?
6. What assumptions are being made?
7. What external dependencies are mentioned?

Provide clear, specific answers based on the text. Do not use placeholder text like "[extracted purpose]".`

// Defaults used when no strategy can parse the model output.
var defaultFields = Fields{
	FieldPurpose:          "System requirements analysis",
	FieldScope:            "Requirements specification",
	FieldProductFunctions: "Core system functionality",
	FieldConstraints:      "System limitations",
	FieldStakeholders:     "System users",
	FieldAssumptions:      "System assumptions",
	FieldDependencies:     "External dependencies",
}

// DefaultFields returns a fresh copy of the static fallback field set.
func DefaultFields() Fields {
	fields := make(Fields, len(defaultFields))
	for key, value := range defaultFields {
		fields[key] = value
	}
	return fields
}

// IsDefault reports whether a field carries its static fallback value.
func IsDefault(field, value string) bool {
	return defaultFields[field] == value
}

// strategy is one parse attempt over raw model output. Returning an empty
// map means the strategy found nothing and the next one runs.
type strategy func(output string) Fields

var strategies = []strategy{parseKeyValue, parseNumbered}

// Extractor runs the extraction prompt through a Generator and parses the
// response with an ordered strategy chain.
type Extractor struct {
	generator textgen.Generator
	logger    *slog.Logger
}

// New builds an extractor around the supplied generator.
func New(generator textgen.Generator, logger *slog.Logger) *Extractor {
	return &Extractor{
		generator: generator,
		logger:    logging.NewComponentLogger(logger, "extraction"),
	}
}

// Extract produces the seven-field map for one requirements statement.
// Malformed model output never fails: the strategy chain falls through to
// static defaults. Only a failed model call itself returns an error.
func (e *Extractor) Extract(ctx context.Context, text string) (Fields, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, services.Wrap(services.ErrValidation, "extraction", "extract", "input text is empty", nil)
	}

	output, err := e.generator.Generate(ctx, fmt.Sprintf(promptTemplate, text))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "extraction", "extract", "generation failed", err)
	}

	fields := Parse(output)
	if len(fields) == 0 {
		e.logger.Warn("model output unparseable, using default fields",
			logging.Int(logging.FieldCount, len(output)))
		fields = DefaultFields()
	}
	return fields, nil
}

// Parse runs the strategy chain over raw model output. An empty result means
// no strategy matched; callers fall back to DefaultFields.
func Parse(output string) Fields {
	for _, parse := range strategies {
		if fields := parse(output); len(fields) > 0 {
			return fields
		}
	}
	return nil
}

// parseKeyValue reads "Key: value" lines, discarding bracketed placeholder
// values the model sometimes echoes back from the prompt.
func parseKeyValue(output string) Fields {
	if !strings.Contains(output, ":") {
		return nil
	}
	fields := Fields{}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if strings.HasPrefix(value, "[") || strings.HasSuffix(value, "]") {
			continue
		}
		fields[key] = value
	}
	return fields
}

// ordinalFields maps numbered-list positions to canonical field names.
var ordinalFields = map[string]string{
	"1": FieldPurpose,
	"2": FieldScope,
	"3": FieldProductFunctions,
	"4": FieldConstraints,
	"5": FieldStakeholders,
	"6": FieldAssumptions,
	"7": FieldDependencies,
}

// parseNumbered maps "N. answer" lines onto fields by ordinal position.
func parseNumbered(output string) Fields {
	fields := Fields{}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		ordinal, content, found := strings.Cut(line, ".")
		if !found {
			continue
		}
		field, known := ordinalFields[strings.TrimSpace(ordinal)]
		if !known {
			continue
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		fields[field] = content
	}
	return fields
}
