package menus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/rolemenu/pkg/menu"
)

// ComponentPrefix namespaces the custom IDs of menu buttons so the
// interaction router can claim them.
const ComponentPrefix = "rolemenu"

// Discord caps action rows at 5 buttons and messages at 5 rows.
const (
	buttonsPerRow = 5
	maxRows       = 5
)

// ComponentID encodes the menu/option binding carried by a button press.
func ComponentID(menuID, optionID int64) string {
	return fmt.Sprintf("%s:%d:%d", ComponentPrefix, menuID, optionID)
}

// ParseComponentID decodes a button custom ID. ok is false for custom IDs
// this package does not own or cannot decode.
func ParseComponentID(customID string) (menuID, optionID int64, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != ComponentPrefix {
		return 0, 0, false
	}
	menuID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	optionID, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return menuID, optionID, true
}

// componentEmoji decodes the stored emoji form: "name" for unicode emoji,
// "name:id" for custom guild emoji, empty for none.
func componentEmoji(stored string) *discordgo.ComponentEmoji {
	if stored == "" {
		return nil
	}
	if name, id, found := strings.Cut(stored, ":"); found {
		return &discordgo.ComponentEmoji{Name: name, ID: id}
	}
	return &discordgo.ComponentEmoji{Name: stored}
}

// BuildComponents renders a menu's options as button rows in display order.
// Options beyond the 25-button component limit are dropped from the
// rendering; they stay in the definition and come back if earlier options are
// removed.
func BuildComponents(m *menu.Menu) []discordgo.MessageComponent {
	opts := m.SortedOptions()
	if len(opts) > buttonsPerRow*maxRows {
		opts = opts[:buttonsPerRow*maxRows]
	}

	var rows []discordgo.MessageComponent
	for start := 0; start < len(opts); start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(opts))
		row := discordgo.ActionsRow{}
		for _, o := range opts[start:end] {
			row.Components = append(row.Components, discordgo.Button{
				Label:    o.Label,
				Style:    discordgo.SecondaryButton,
				CustomID: ComponentID(m.ID, o.ID),
				Emoji:    componentEmoji(o.Emoji),
			})
		}
		rows = append(rows, row)
	}
	return rows
}
