package present

import "hairfluencer/internal/domain"

// Mode selects how a finished result is shown.
type Mode string

const (
	ModeResult     Mode = "result"
	ModeComparison Mode = "comparison"
)

// ParseMode maps a query value onto a Mode, defaulting to ModeResult.
func ParseMode(v string) Mode {
	if Mode(v) == ModeComparison {
		return ModeComparison
	}
	return ModeResult
}

// Action is something the user can do from the results screen.
type Action string

const (
	ActionSave     Action = "save"
	ActionShare    Action = "share"
	ActionTryAgain Action = "try_again"
	ActionHome     Action = "home"
)

const (
	EmptyMessage = "No results to display"
	ResultTitle  = "Your New Look!"
)

// View is the render model of the results screen.
type View struct {
	Empty     bool              `json:"empty"`
	Mode      Mode              `json:"mode,omitempty"`
	Title     string            `json:"title,omitempty"`
	Subtitle  string            `json:"subtitle,omitempty"`
	Message   string            `json:"message,omitempty"`
	Hairstyle *domain.Hairstyle `json:"hairstyle,omitempty"`
	Before    domain.PhotoRef   `json:"before,omitempty"`
	After     domain.PhotoRef   `json:"after,omitempty"`
	Actions   []Action          `json:"actions"`
}

// Render builds the results view. Without both the source and the result
// photo only the way home is offered.
func Render(state domain.SessionState, mode Mode) View {
	if state.ResultPhoto.IsZero() || state.SourcePhoto.IsZero() {
		return View{Empty: true, Message: EmptyMessage, Actions: []Action{ActionHome}}
	}
	name := ""
	if state.SelectedHairstyle != nil {
		name = state.SelectedHairstyle.Name
	}
	v := View{
		Mode:      ParseMode(string(mode)),
		Title:     ResultTitle,
		Subtitle:  "Here's how you look with " + name,
		Hairstyle: state.Clone().SelectedHairstyle,
		After:     state.ResultPhoto,
		Actions:   []Action{ActionSave, ActionShare, ActionTryAgain, ActionHome},
	}
	if v.Mode == ModeComparison {
		v.Before = state.SourcePhoto
	}
	return v
}
