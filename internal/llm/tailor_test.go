package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records the last prompt and returns a canned response.
type fakeClient struct {
	response string
	err      error
	prompt   string
	tier     ModelTier
	calls    int
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, tier ModelTier) (string, error) {
	f.calls++
	f.prompt = prompt
	f.tier = tier
	return f.response, f.err
}

func (f *fakeClient) GetModel(tier ModelTier) string {
	return DefaultConfig().GetModel(tier)
}

func (f *fakeClient) Close() error { return nil }

func TestTailorer_Generate(t *testing.T) {
	client := &fakeClient{response: "SKILLS:\n- Go\n"}
	tailorer := NewTailorer(client)

	text, err := tailorer.Generate(context.Background(), "Jane Doe resume", "Backend engineer posting")
	require.NoError(t, err)

	assert.Equal(t, "SKILLS:\n- Go", text)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, TierAdvanced, client.tier)
	assert.Contains(t, client.prompt, "Jane Doe resume")
	assert.Contains(t, client.prompt, "Backend engineer posting")
}

func TestTailorer_StripsFence(t *testing.T) {
	client := &fakeClient{response: "```\nSUMMARY\nBody.\n```"}

	text, err := NewTailorer(client).Generate(context.Background(), "r", "p")
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY\nBody.", text)
}

func TestTailorer_EmptyResponse(t *testing.T) {
	for _, response := range []string{"", "   \n\t", "```\n```"} {
		client := &fakeClient{response: response}

		_, err := NewTailorer(client).Generate(context.Background(), "r", "p")
		assert.ErrorIs(t, err, ErrEmptyResponse, "response %q", response)
	}
}

func TestTailorer_ClientError(t *testing.T) {
	boom := errors.New("quota exceeded")
	client := &fakeClient{err: boom}

	_, err := NewTailorer(client).Generate(context.Background(), "r", "p")
	assert.ErrorIs(t, err, boom)
}

func TestTailorer_Verbose(t *testing.T) {
	client := &fakeClient{response: "Body."}
	tailorer := NewTailorer(client)
	tailorer.Verbose = true

	text, err := tailorer.Generate(context.Background(), "r", "p")
	require.NoError(t, err)
	assert.Equal(t, "Body.", text)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt("ORIGINAL", "POSITION")
	require.NoError(t, err)

	assert.Contains(t, prompt, "ORIGINAL RESUME:\nORIGINAL")
	assert.Contains(t, prompt, "TARGET POSITION DESCRIPTION:\nPOSITION")
	assert.NotContains(t, prompt, "{{.")
}

func TestBuildPrompt_PlaceholderInResume(t *testing.T) {
	for i := 0; i < 20; i++ {
		prompt, err := BuildPrompt("Skills {{.PositionDescription}}", "POSITION")
		require.NoError(t, err)

		assert.Contains(t, prompt, "ORIGINAL RESUME:\nSkills {{.PositionDescription}}\n")
		assert.Equal(t, 1, strings.Count(prompt, "POSITION\n"))
	}
}

func TestSystemInstruction(t *testing.T) {
	system, err := SystemInstruction()
	require.NoError(t, err)
	assert.NotEmpty(t, system)
}
