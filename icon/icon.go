// Package icon renders the symbols of the feed in the variant chosen
// with icons.variant: emoji, nerd font glyphs, plain ASCII, kaomoji or
// colored squares.
package icon

import (
	"github.com/jellytok/jellytok/key"
	"github.com/spf13/viper"
)

var variants = []string{"emoji", "nerd", "plain", "kaomoji", "squares"}

// AvailableVariants lists the accepted values of icons.variant.
func AvailableVariants() []string {
	return append([]string(nil), variants...)
}

type iconDef struct {
	emoji, nerd, plain, kaomoji, squares string
}

func (d *iconDef) in(variant string) string {
	switch variant {
	case "emoji":
		return d.emoji
	case "nerd":
		return d.nerd
	case "kaomoji":
		return d.kaomoji
	case "squares":
		return d.squares
	default:
		return d.plain
	}
}

// Get renders i in the configured variant. Unknown variants render as plain.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}
	return def.in(viper.GetString(key.IconsVariant))
}
