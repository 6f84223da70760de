package services

import (
	"fmt"
	"strconv"
	"strings"
)

// Rule vocabularies tested by substring containment against the free-text
// climate descriptor. Matching is case-sensitive; catalog climates are
// lower-case tokens.
var (
	hotClimates       = []string{"hot", "arid", "tropical"}
	coldClimates      = []string{"frozen", "cold", "frigid"}
	temperateClimates = []string{"temperate", "mild"}
)

const (
	ruleHot       = "hot"
	ruleCold      = "cold"
	ruleTemperate = "temperate"
)

// parseTemperature extracts the signed integer prefix of a formatted catalog
// temperature such as "412°C". Missing or unparsable values report ok=false
// and deterministically fail every rule comparison.
func parseTemperature(value string) (int, bool) {
	value = strings.TrimSpace(value)

	end := 0
	if end < len(value) && value[end] == '-' {
		end++
	}
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == 0 || value[:end] == "-" {
		return 0, false
	}

	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// matchRule reports which climate/temperature rule a pairing satisfies.
// Rules are evaluated in order; the first satisfied wins. The boundary
// temperatures 0 and 300 are excluded by the strict inequalities.
func matchRule(climate, temperature string) (string, bool) {
	degrees, known := parseTemperature(temperature)

	switch {
	case containsAny(climate, hotClimates) && known && degrees > 300:
		return ruleHot, true
	case containsAny(climate, coldClimates) && known && degrees < 0:
		return ruleCold, true
	case containsAny(climate, temperateClimates) && known && degrees > 0 && degrees < 300:
		return ruleTemperate, true
	default:
		return "", false
	}
}

// classify reports whether a Star Wars climate and an exoplanet temperature
// satisfy any pairing rule.
func classify(climate, temperature string) bool {
	_, ok := matchRule(climate, temperature)
	return ok
}

// describe generates the relation description. Template selection re-parses
// the temperature and is deliberately independent of the rule that produced
// the pairing: a climate string with several vocabulary hits can receive a
// template that differs from the matching rule. This mirrors long-standing
// observed behavior and is covered by tests; do not unify the two rule sets.
func describe(starWarsPlanet, exoplanet, climate, temperature string) string {
	degrees, known := parseTemperature(temperature)

	switch {
	case known && degrees > 300:
		return fmt.Sprintf("%s is a scorching world similar to %s in Star Wars. Both share desert conditions and extreme heat.", exoplanet, starWarsPlanet)
	case known && degrees < 0:
		return fmt.Sprintf("%s is a frozen world like %s in the Star Wars saga. Extremely cold temperatures are common on both.", exoplanet, starWarsPlanet)
	case containsAny(climate, temperateClimates):
		return fmt.Sprintf("%s has temperate conditions similar to %s in the Star Wars universe. It could potentially harbor life as %s does.", exoplanet, starWarsPlanet, starWarsPlanet)
	default:
		return fmt.Sprintf("%s shares similarities with %s from the Star Wars universe, though across different galaxies.", exoplanet, starWarsPlanet)
	}
}

func containsAny(s string, words []string) bool {
	for _, word := range words {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}
