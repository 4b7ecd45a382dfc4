// Package theme resolves friend card colors and holds the app's appearance
// setting.
package theme

import (
	"github.com/mmynk/kinship/internal/models"
)

// Palette is the set of colors a friend card is drawn with.
type Palette struct {
	Paper string `json:"paper"`
	Photo string `json:"photo"`
	Text  string `json:"text"`
}

var presets = map[string]Palette{
	"blue":    {Paper: "#D5E1E6", Photo: "#BCCCD3", Text: "#586E75"},
	"pink":    {Paper: "#EEDADD", Photo: "#DBC2C6", Text: "#8C5E65"},
	"green":   {Paper: "#CCD5AE", Photo: "#B0BB96", Text: "#5F6C38"},
	"yellow":  {Paper: "#FAE1DD", Photo: "#E8C6C0", Text: "#8D5B54"},
	"purple":  {Paper: "#E2DAEB", Photo: "#CCC0DB", Text: "#69587B"},
	"orange":  {Paper: "#F4D0B8", Photo: "#E3BA9E", Text: "#8F5B3E"},
	"teal":    {Paper: "#C4E0E0", Photo: "#A8CFCF", Text: "#4A7272"},
	"cyan":    {Paper: "#CFE6EA", Photo: "#B3D6DC", Text: "#4F757D"},
	"lime":    {Paper: "#E9EDC9", Photo: "#D6DBA6", Text: "#6C733D"},
	"indigo":  {Paper: "#D6D8E8", Photo: "#BEC1D8", Text: "#535775"},
	"default": {Paper: "#F3F4F6", Photo: "#E5E7EB", Text: "#374151"},
}

// Custom colors keep a neutral photo backdrop and dark text for contrast.
const (
	customPhoto = "rgba(0,0,0,0.1)"
	customText  = "#1F2937"
)

// Resolve returns the palette for c. Custom colors use the literal as paper.
func Resolve(c models.ThemeColor) Palette {
	if c.IsCustom() {
		return Palette{Paper: c.Literal(), Photo: customPhoto, Text: customText}
	}
	if p, ok := presets[c.PresetName()]; ok {
		return p
	}
	return presets["default"]
}
