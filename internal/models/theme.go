package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Preset color keys available on friend cards.
var PresetColors = []string{
	"blue", "pink", "green", "yellow", "purple", "orange",
	"teal", "cyan", "lime", "indigo", "default",
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ThemeColor is either a preset key or a custom literal color.
// The zero value is the "default" preset.
type ThemeColor struct {
	preset string
	custom string
}

// Preset returns the preset variant for name.
func Preset(name string) ThemeColor {
	return ThemeColor{preset: name}
}

// Custom returns the literal color variant.
func Custom(literal string) ThemeColor {
	return ThemeColor{custom: literal}
}

// ParseThemeColor classifies s once: preset keys become Preset, hex literals
// become Custom, the empty string is the default preset.
func ParseThemeColor(s string) (ThemeColor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ThemeColor{}, nil
	}
	if isPreset(s) {
		return Preset(s), nil
	}
	if hexColor.MatchString(s) {
		return Custom(strings.ToUpper(s)), nil
	}
	return ThemeColor{}, fmt.Errorf("unknown color %q", s)
}

func isPreset(s string) bool {
	for _, p := range PresetColors {
		if p == s {
			return true
		}
	}
	return false
}

// IsCustom reports whether the color is a literal value.
func (c ThemeColor) IsCustom() bool { return c.custom != "" }

// PresetName returns the preset key; "default" for the zero value.
func (c ThemeColor) PresetName() string {
	if c.preset == "" {
		return "default"
	}
	return c.preset
}

// Literal returns the custom color value, empty for presets.
func (c ThemeColor) Literal() string { return c.custom }

// String returns the stored form: the preset key or the literal.
func (c ThemeColor) String() string {
	if c.IsCustom() {
		return c.custom
	}
	return c.PresetName()
}

func (c ThemeColor) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ThemeColor) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ThemeColor{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseThemeColor(s)
	if err != nil {
		// Unknown values fall back to the default card rather than failing a restore.
		*c = ThemeColor{}
		return nil
	}
	*c = parsed
	return nil
}
