package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/resume-builder/internal/prompts"
)

const promptFile = "tailoring.json"

// Tailorer rewrites an original resume for a target position using a Client.
type Tailorer struct {
	client  Client
	tier    ModelTier
	Verbose bool
}

// NewTailorer creates a Tailorer that uses the advanced tier of client.
func NewTailorer(client Client) *Tailorer {
	return &Tailorer{client: client, tier: TierAdvanced}
}

// SystemInstruction returns the system prompt paired with the tailoring prompt.
func SystemInstruction() (string, error) {
	return prompts.Get(promptFile, "system")
}

// BuildPrompt fills the tailoring prompt with the original resume and position description.
func BuildPrompt(originalResume, positionDescription string) (string, error) {
	return prompts.Render(promptFile, "tailor_resume", map[string]string{
		"OriginalResume":      originalResume,
		"PositionDescription": positionDescription,
	})
}

// Generate returns the tailored resume text. An empty completion yields ErrEmptyResponse.
func (t *Tailorer) Generate(ctx context.Context, originalResume, positionDescription string) (string, error) {
	prompt, err := BuildPrompt(originalResume, positionDescription)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	if t.Verbose {
		log.Printf("[VERBOSE] Requesting tailored resume from %s (prompt %d chars)", t.client.GetModel(t.tier), len(prompt))
	}

	text, err := t.client.GenerateContent(ctx, prompt, t.tier)
	if err != nil {
		return "", err
	}

	text = StripCodeFence(text)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	if t.Verbose {
		log.Printf("[VERBOSE] Received %d chars of tailored resume", len(text))
	}
	return text, nil
}
