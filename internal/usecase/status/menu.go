package status

import (
	"fmt"

	"github.com/kailas-cloud/burner/internal/domain"
)

// Action identifies what a menu item does when picked.
type Action string

const (
	ActionEnable      Action = "enable"
	ActionDisable     Action = "disable"
	ActionBurnNow     Action = "burn"
	ActionSelectModel Action = "select_model"
	ActionSetInterval Action = "set_interval"
	ActionPickModel   Action = "pick_model"
)

// MenuItem is one quick-pick entry.
type MenuItem struct {
	Action      Action `json:"action"`
	Label       string `json:"label"`
	Description string `json:"description"`
	// Value is the argument the action takes (model id for pick_model).
	Value string `json:"value,omitempty"`
}

// Menu builds the main quick-pick for the given state.
func Menu(state domain.BurnState) []MenuItem {
	toggle := MenuItem{Action: ActionEnable, Label: "Enable Burn Mode", Description: "Start burning tokens"}
	if state.IsEnabled {
		toggle = MenuItem{Action: ActionDisable, Label: "Disable Burn Mode", Description: "Stop burning tokens"}
	}
	return []MenuItem{
		toggle,
		{Action: ActionBurnNow, Label: "Trigger Burn Now", Description: "Send a request immediately"},
		{Action: ActionSelectModel, Label: "Select Model", Description: state.ModelLabel()},
		{Action: ActionSetInterval, Label: "Set Interval", Description: fmt.Sprintf("Currently: %d minutes", state.IntervalMinutes)},
	}
}

// ModelPicker lists "auto" followed by every available model.
func ModelPicker(models []domain.Model) []MenuItem {
	items := make([]MenuItem, 0, len(models)+1)
	items = append(items, MenuItem{
		Action:      ActionPickModel,
		Label:       domain.AutoModel,
		Description: "Use any available model",
		Value:       domain.AutoModel,
	})
	for _, m := range models {
		items = append(items, MenuItem{Action: ActionPickModel, Label: m.ID, Description: m.DisplayName, Value: m.ID})
	}
	return items
}
