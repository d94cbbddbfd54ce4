package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"reqforge/internal/logging"
	"reqforge/internal/textgen"
)

// maxGenerativeInputChars bounds the combined requirements text embedded in
// each leaf prompt.
const maxGenerativeInputChars = 1000

// maxGenerativeListItems caps list-shaped generative answers.
const maxGenerativeListItems = 5

var (
	ordinalPrefixRE = regexp.MustCompile(`^\d+[.)]\s*`)
	bulletPrefixRE  = regexp.MustCompile(`^[-•*]\s*`)
)

// Generative drafts a Section directly from raw text, one prompt per leaf,
// bypassing per-record extraction entirely.
type Generative struct {
	generator textgen.Generator
	logger    *slog.Logger
}

// NewGenerative builds a generative-mode synthesizer.
func NewGenerative(generator textgen.Generator, logger *slog.Logger) *Generative {
	return &Generative{
		generator: generator,
		logger:    logging.NewComponentLogger(logger, "synthesis"),
	}
}

type leafPrompt struct {
	instruction string
	closing     string
}

func (p leafPrompt) render(requirementsText string) string {
	return fmt.Sprintf("%s\n\n%s\n\n%s", p.instruction, requirementsText, p.closing)
}

var (
	purposePrompt = leafPrompt{
		"Write a brief purpose statement for a software requirements specification based on these requirements:",
		"Purpose statement:",
	}
	scopePrompt = leafPrompt{
		"Write a scope description for a software system based on these requirements:",
		"Scope:",
	}
	overviewPrompt = leafPrompt{
		"Write a brief overview of a software system based on these requirements:",
		"Overview:",
	}
	perspectivePrompt = leafPrompt{
		"Describe the product perspective and context for this system:",
		"Product perspective:",
	}
	functionsPrompt = leafPrompt{
		"List the main functions of this system (one per line):",
		"Functions:",
	}
	stakeholdersPrompt = leafPrompt{
		"List the main user roles and stakeholders of this system (one per line):",
		"User roles:",
	}
	constraintsPrompt = leafPrompt{
		"List the main constraints and limitations for this system:",
		"Constraints:",
	}
	assumptionsPrompt = leafPrompt{
		"List the main assumptions made about this system (one per line):",
		"Assumptions:",
	}
	dependenciesPrompt = leafPrompt{
		"List the external dependencies of this system (one per line):",
		"Dependencies:",
	}
)

// Synthesize drafts every leaf from the combined raw texts. Failed or empty
// generations fall back to the static defaults, so the section shape is
// always complete; the error return is reserved for context cancellation.
func (g *Generative) Synthesize(ctx context.Context, texts []string) (*Section, error) {
	combined := combineTexts(texts)
	section := &Section{}

	if combined == "" {
		g.logger.Warn("no requirements text available, emitting defaults")
		return defaultSection(), nil
	}

	section.Introduction.Purpose = g.textLeaf(ctx, purposePrompt, combined, defaultPurpose)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	section.Introduction.Scope = g.textLeaf(ctx, scopePrompt, combined, defaultScope)
	section.Introduction.Definitions = listOrDefault(mineDefinitionTerms(combined), defaultDefinitions)
	section.Introduction.References = copyList(defaultReferences)
	section.Introduction.Overview = g.textLeaf(ctx, overviewPrompt, combined,
		"This document provides a comprehensive overview of the system requirements.")

	section.OverallDescription.ProductPerspective = g.textLeaf(ctx, perspectivePrompt, combined, defaultPerspective)
	section.OverallDescription.ProductFunctions = g.listLeaf(ctx, functionsPrompt, combined, defaultFunctions)
	section.OverallDescription.UserCharacteristics = g.listLeaf(ctx, stakeholdersPrompt, combined, defaultStakeholders)
	section.OverallDescription.Constraints = g.listLeaf(ctx, constraintsPrompt, combined, defaultConstraints)
	section.OverallDescription.Assumptions = g.listLeaf(ctx, assumptionsPrompt, combined, defaultAssumptions)
	section.OverallDescription.Dependencies = g.listLeaf(ctx, dependenciesPrompt, combined, defaultDependencies)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return section, nil
}

func (g *Generative) textLeaf(ctx context.Context, prompt leafPrompt, combined, fallback string) string {
	output, err := g.generator.Generate(ctx, prompt.render(combined))
	if err != nil {
		g.logger.Warn("leaf generation failed, using default",
			logging.String(logging.FieldStep, prompt.closing), logging.Error(err))
		return fallback
	}
	return textOrDefault(strings.TrimSpace(output), fallback)
}

func (g *Generative) listLeaf(ctx context.Context, prompt leafPrompt, combined string, fallback []string) []string {
	output, err := g.generator.Generate(ctx, prompt.render(combined))
	if err != nil {
		g.logger.Warn("leaf generation failed, using default",
			logging.String(logging.FieldStep, prompt.closing), logging.Error(err))
		return copyList(fallback)
	}
	return listOrDefault(parseGeneratedList(output), fallback)
}

// parseGeneratedList splits the model answer into lines, strips ordinal and
// bullet prefixes, and truncates to the item cap.
func parseGeneratedList(output string) []string {
	var items []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		line = ordinalPrefixRE.ReplaceAllString(line, "")
		line = bulletPrefixRE.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, line)
		if len(items) == maxGenerativeListItems {
			break
		}
	}
	return items
}

func combineTexts(texts []string) string {
	var parts []string
	for _, text := range texts {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	combined := strings.Join(parts, " ")
	if len(combined) > maxGenerativeInputChars {
		combined = combined[:maxGenerativeInputChars]
	}
	return combined
}

// mineDefinitionTerms collects capitalized terms that do not start a
// sentence, deduplicated and capped, as glossary candidates.
func mineDefinitionTerms(text string) []string {
	words := strings.Fields(text)
	seen := map[string]struct{}{}
	var terms []string
	for i := 1; i < len(words); i++ {
		word := words[i]
		if len(word) <= 3 || word[0] < 'A' || word[0] > 'Z' {
			continue
		}
		if strings.HasSuffix(words[i-1], ".") {
			continue
		}
		term := strings.Trim(word, ".,;:!?\"'()")
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
		if len(terms) == maxDefinitions {
			break
		}
	}
	return terms
}

// defaultSection is the fully-defaulted shape for empty input.
func defaultSection() *Section {
	return &Section{
		Introduction: Introduction{
			Purpose:     defaultPurpose,
			Scope:       defaultScope,
			Definitions: copyList(defaultDefinitions),
			References:  copyList(defaultReferences),
			Overview:    "This document provides a comprehensive overview of the system requirements.",
		},
		OverallDescription: OverallDescription{
			ProductPerspective:  defaultPerspective,
			ProductFunctions:    copyList(defaultFunctions),
			UserCharacteristics: copyList(defaultStakeholders),
			Constraints:         copyList(defaultConstraints),
			Assumptions:         copyList(defaultAssumptions),
			Dependencies:        copyList(defaultDependencies),
		},
	}
}
