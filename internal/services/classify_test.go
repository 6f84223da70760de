package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTemperature(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"412°C", 412, true},
		{"-55°C", -55, true},
		{"0°C", 0, true},
		{"  300°C ", 300, true},
		{"unknown", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"°C", 0, false},
	}

	for _, tc := range tests {
		got, ok := parseTemperature(tc.input)
		require.Equal(t, tc.ok, ok, "input %q", tc.input)
		require.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestMatchRuleBoundaries(t *testing.T) {
	tests := []struct {
		name        string
		climate     string
		temperature string
		rule        string
		ok          bool
	}{
		{"hot above threshold", "hot, arid", "310°C", ruleHot, true},
		{"hot at threshold excluded", "hot", "300°C", "", false},
		{"cold below zero", "frozen", "-5°C", ruleCold, true},
		{"cold at zero excluded", "frozen", "0°C", "", false},
		{"temperate mid range", "temperate", "150°C", ruleTemperate, true},
		{"temperate at zero excluded", "temperate", "0°C", "", false},
		{"temperate at upper bound excluded", "mild", "300°C", "", false},
		{"unmatched climate", "unknown", "50°C", "", false},
		{"unknown temperature fails every rule", "hot, arid", "unknown", "", false},
		{"climate substring match", "arid, rocky", "500°C", ruleHot, true},
		{"hot vocabulary with cold reading falls through", "hot", "-20°C", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule, ok := matchRule(tc.climate, tc.temperature)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.rule, rule)
			require.Equal(t, tc.ok, classify(tc.climate, tc.temperature))
		})
	}
}

func TestMatchRuleFirstRuleWins(t *testing.T) {
	// A climate naming both hot and cold vocabularies with a qualifying hot
	// reading resolves to the hot rule because evaluation order is fixed.
	rule, ok := matchRule("hot, frozen", "400°C")
	require.True(t, ok)
	require.Equal(t, ruleHot, rule)
}

func TestDescribeTemplates(t *testing.T) {
	t.Run("scorching", func(t *testing.T) {
		got := describe("Tatooine", "Kepler-10b", "arid", "412°C")
		require.Equal(t, "Kepler-10b is a scorching world similar to Tatooine in Star Wars. Both share desert conditions and extreme heat.", got)
	})

	t.Run("frozen", func(t *testing.T) {
		got := describe("Hoth", "OGLE-2005b", "frozen", "-55°C")
		require.Equal(t, "OGLE-2005b is a frozen world like Hoth in the Star Wars saga. Extremely cold temperatures are common on both.", got)
	})

	t.Run("temperate", func(t *testing.T) {
		got := describe("Naboo", "Proxima Cen b", "temperate", "30°C")
		require.Equal(t, "Proxima Cen b has temperate conditions similar to Naboo in the Star Wars universe. It could potentially harbor life as Naboo does.", got)
	})

	t.Run("generic fallback", func(t *testing.T) {
		got := describe("Endor", "Wolf 359 c", "forests", "50°C")
		require.Equal(t, "Wolf 359 c shares similarities with Endor from the Star Wars universe, though across different galaxies.", got)
	})

	t.Run("template independent of matching rule", func(t *testing.T) {
		// "arid, temperate" with 150°C pairs under the temperate rule only,
		// yet the description template is also temperate here. With an
		// unknown temperature the climate branch still applies.
		got := describe("Naboo", "Kepler-22b", "arid, temperate", "unknown")
		require.Contains(t, got, "has temperate conditions")
	})
}
