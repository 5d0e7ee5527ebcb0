package slack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommandText(t *testing.T) {
	tests := []struct {
		input    string
		expected CommandKind
	}{
		{"", KindSearch},
		{"help", KindHelp},
		{"HELP", KindHelp},
		{"  help  ", KindHelp},
		{"h", KindHelp},
		{"ヘルプ", KindHelp},
		{"week", KindSearch},
		{"helpme", KindSearch},
		{"7", KindSearch},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCommandText(tt.input))
		})
	}
}

func TestCommandKind_String(t *testing.T) {
	assert.Equal(t, "search", KindSearch.String())
	assert.Equal(t, "help", KindHelp.String())
}
