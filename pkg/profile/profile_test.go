package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractUsername(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://www.linkedin.com/in/janedoe/", "janedoe"},
		{"https://www.linkedin.com/in/janedoe", "janedoe"},
		{"https://linkedin.com/in/jane-doe-123?trk=public_profile", "jane-doe-123"},
		{"linkedin.com/in/janedoe#about", "janedoe"},
		{"http://uk.linkedin.com/in/janedoe/recent-activity/all/", "janedoe"},
		{"  https://www.linkedin.com/in/janedoe/  ", "janedoe"},
		{"not-a-url", "not-a-url"},
		{"  janedoe \n", "janedoe"},
		{"https://www.linkedin.com/company/acme", "https://www.linkedin.com/company/acme"},
		{"https://www.linkedin.com/in/", "https://www.linkedin.com/in/"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractUsername(tt.input))
		})
	}
}
