package trophy

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed themes.yaml
var themesYAML []byte

// DefaultTheme is applied when the request names no theme or an unknown one.
const DefaultTheme = "flat"

// Theme holds the colors for one card palette.
type Theme struct {
	Background string `yaml:"background"`
	Frame      string `yaml:"frame"`
	Title      string `yaml:"title"`
	Text       string `yaml:"text"`
}

// LoadThemes parses the embedded palette catalog.
func LoadThemes() (map[string]Theme, error) {
	themes := make(map[string]Theme)
	if err := yaml.Unmarshal(themesYAML, &themes); err != nil {
		return nil, fmt.Errorf("failed to parse embedded theme catalog: %w", err)
	}
	if _, ok := themes[DefaultTheme]; !ok {
		return nil, fmt.Errorf("embedded theme catalog is missing the default theme '%s'", DefaultTheme)
	}
	return themes, nil
}

// rankColors picks the accent color for a rank tier.
var rankColors = map[Rank]string{
	RankSecret:  "#9e30a5",
	RankSSS:     "#ffd700",
	RankSS:      "#ffd700",
	RankS:       "#ffd700",
	RankAAA:     "#b0bec5",
	RankAA:      "#b0bec5",
	RankA:       "#b0bec5",
	RankB:       "#cd7f32",
	RankC:       "#837b70",
	RankUnknown: "#777777",
}

// rankColor falls back to the unknown tint for ranks outside the table.
func rankColor(r Rank) string {
	if c, ok := rankColors[r]; ok {
		return c
	}
	return rankColors[RankUnknown]
}
