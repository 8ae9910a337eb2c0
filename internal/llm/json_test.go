package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONPlain(t *testing.T) {
	var v BiasVerdict
	require.NoError(t, decodeJSON(`{"bias_score": 0.4, "bias_types": ["framing"]}`, &v))
	assert.Equal(t, 0.4, v.Score)
	assert.Equal(t, []string{"framing"}, v.Types)
}

func TestDecodeJSONMarkdownFence(t *testing.T) {
	raw := "```json\n{\"label\": \"contradiction\", \"confidence\": 0.9}\n```"

	var v NLIVerdict
	require.NoError(t, decodeJSON(raw, &v))
	assert.Equal(t, "contradiction", v.Label)
	assert.Equal(t, 0.9, v.Confidence)
}

func TestDecodeJSONLeadingProse(t *testing.T) {
	raw := `Here is the analysis: {"label": "neutral", "confidence": 0.6} hope that helps`

	var v NLIVerdict
	require.NoError(t, decodeJSON(raw, &v))
	assert.Equal(t, "neutral", v.Label)
}

func TestDecodeJSONNoObject(t *testing.T) {
	var v NLIVerdict
	assert.Error(t, decodeJSON("I could not process that document.", &v))
}
