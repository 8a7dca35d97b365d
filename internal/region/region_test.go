package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Aliases(t *testing.T) {
	tests := []struct {
		alias    string
		expected string
	}{
		{"us-east", Default},
		{"us-east-1", Default},
		{"us-west", "us-west-1"},
		{"us-west-1", "us-west-1"},
		{"us-west-2", "us-west-2"},
		{"ap-southeast", "ap-southeast-1"},
		{"ap-southeast-1", "ap-southeast-1"},
		{"ap-southeast-2", "ap-southeast-2"},
		{"ap-northeast", "ap-northeast-1"},
		{"ap-northeast-1", "ap-northeast-1"},
		{"eu-west", "eu-west-1"},
		{"eu-west-1", "eu-west-1"},
		{"eu-central", "eu-central-1"},
		{"eu-central-1", "eu-central-1"},
		{"sa-east", "sa-east-1"},
		{"sa-east-1", "sa-east-1"},
		{"cn-north", "cn-north-1"},
		{"cn-north-1", "cn-north-1"},
		{"EU-West", "eu-west-1"},
		{"US-WEST-2", "us-west-2"},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve("", tt.alias))
		})
	}
}

func TestResolve_UnknownAliasFallsBackToDefault(t *testing.T) {
	for _, alias := range []string{"eu-north-1", "mars-1", "us-east-2", " us-west"} {
		assert.Equal(t, Default, Resolve("", alias), alias)
	}
}

func TestResolve_ExplicitWins(t *testing.T) {
	assert.Equal(t, "eu-north-1", Resolve("eu-north-1", "us-west"))
	assert.Equal(t, "Custom-Region", Resolve("Custom-Region", ""))
}

func TestResolve_NothingSet(t *testing.T) {
	assert.Equal(t, Default, Resolve("", ""))
}
