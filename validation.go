// validation.go
package widgetprefs

import (
	"fmt"
	"strings"
)

func validateWidget(w Widget) error {
	if strings.TrimSpace(w.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidWidget)
	}
	if w.ID != strings.TrimSpace(w.ID) {
		return fmt.Errorf("%w: id %q has surrounding whitespace", ErrInvalidWidget, w.ID)
	}
	if w.Position.Col < 0 || w.Position.Row < 0 {
		return fmt.Errorf("%w: %s: negative position", ErrInvalidWidget, w.ID)
	}
	if w.Size.W < 0 || w.Size.H < 0 {
		return fmt.Errorf("%w: %s: negative size", ErrInvalidWidget, w.ID)
	}
	if w.MinSize.W < 0 || w.MinSize.H < 0 {
		return fmt.Errorf("%w: %s: negative min size", ErrInvalidWidget, w.ID)
	}
	return nil
}

// normalizeProfile maps the empty profile onto DefaultProfile.
func normalizeProfile(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return DefaultProfile
	}
	return profile
}
