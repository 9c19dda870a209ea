package imagegen

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const instructionTemplate = "Change the hairstyle to %s. Apply the %s hairstyle to this person while keeping their face and features exactly the same. Make it look natural and realistic."

// BuildInstruction renders the edit prompt for a style. The remote service is
// tuned to this exact sentence, so the wording must not change.
func BuildInstruction(styleName, styleDescription string) string {
	// Casers keep state; build one per call instead of sharing.
	lower := cases.Lower(language.Und)
	name := lower.String(styleName)
	description := lower.String(styleDescription)
	return fmt.Sprintf(instructionTemplate, name, description)
}
