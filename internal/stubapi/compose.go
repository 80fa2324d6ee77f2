package stubapi

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lzjever/mbos-wsdesk/internal/core"
)

// DefaultCompose is served when no compose file is configured.
const DefaultCompose = `services:
  ubuntu-desktop:
    image: lscr.io/linuxserver/webtop:ubuntu-xfce
    icon: "🖥️"
    description: Ubuntu XFCE desktop
  firefox:
    image: lscr.io/linuxserver/firefox:latest
    icon: "🦊"
    description: Firefox browser
  chromium:
    image: lscr.io/linuxserver/chromium:latest
    description: Chromium browser
  telegram:
    image: lscr.io/linuxserver/telegram:latest
`

type composeService struct {
	Image       string `yaml:"image"`
	Icon        string `yaml:"icon"`
	Description string `yaml:"description"`
}

// ParseCompose reads the services section of a compose file, keeping the
// file's order.
func ParseCompose(r io.Reader) ([]core.Service, error) {
	var doc struct {
		Services yaml.Node `yaml:"services"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode compose: %w", err)
	}
	if doc.Services.Kind == 0 || doc.Services.Tag == "!!null" {
		return nil, nil
	}
	if doc.Services.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("compose: services must be a mapping (line %d)", doc.Services.Line)
	}

	services := make([]core.Service, 0, len(doc.Services.Content)/2)
	for i := 0; i+1 < len(doc.Services.Content); i += 2 {
		name := doc.Services.Content[i].Value
		var cs composeService
		if err := doc.Services.Content[i+1].Decode(&cs); err != nil {
			return nil, fmt.Errorf("compose service %s: %w", name, err)
		}
		if cs.Image == "" {
			cs.Image = "unknown"
		}
		services = append(services, core.Service{
			Name:        name,
			Image:       cs.Image,
			Icon:        cs.Icon,
			Description: cs.Description,
		})
	}
	return services, nil
}

func LoadCompose(path string) ([]core.Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open compose file: %w", err)
	}
	defer f.Close()
	return ParseCompose(f)
}
