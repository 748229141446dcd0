package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainName(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "https://www.bbc.co.uk/news/world-123", want: "www.bbc.co.uk", wantOK: true},
		{in: "http://Example.com:8080/path?q=1", want: "example.com", wantOK: true},
		{in: "", wantOK: false},
		{in: "not a url", wantOK: false},
		{in: "://bad", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := DomainName(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogoURL(t *testing.T) {
	assert.Equal(t, "https://logo.clearbit.com/bbc.co.uk", LogoURL("https://www.bbc.co.uk/news"))
	assert.Equal(t, "https://logo.clearbit.com/techcrunch.com", LogoURL("https://techcrunch.com/2024/01/01/x"))
	assert.Equal(t, "", LogoURL(""))
}
