package core

const DefaultServiceIcon = "🐳"

type Service struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// DisplayIcon returns the icon hint, falling back to the default.
func (s Service) DisplayIcon() string {
	if s.Icon == "" {
		return DefaultServiceIcon
	}
	return s.Icon
}
