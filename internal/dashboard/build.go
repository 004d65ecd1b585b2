package dashboard

import (
	"fmt"

	"golang.org/x/text/language"

	"tablero/internal/config"
	"tablero/internal/util"
)

// NewPanels builds one panel per enabled stream, in configured order.
func NewPanels(cfg *config.Config) ([]*Panel, error) {
	f := NewFormatter(language.Spanish, cfg.Dashboard.Currency)
	cal := util.NewCalendar(cfg.Dashboard.Timezone)

	streams := cfg.Enabled()
	panels := make([]*Panel, 0, len(streams))
	for _, s := range streams {
		preset, err := NewPreset(s.Columns, PresetOptions{
			Formatter: f,
			Calendar:  cal,
			Hidden:    s.HiddenColumns,
		})
		if err != nil {
			return nil, fmt.Errorf("stream %s: %w", s.Name, err)
		}
		panels = append(panels, NewPanel(s.Name, s.Title, s.ErrorTitle, preset))
	}
	return panels, nil
}
