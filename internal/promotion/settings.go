package promotion

import (
	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/geometry"
)

// OptionsFromSettings maps the dedup and store sections of settings to
// engine options.
func OptionsFromSettings(settings *conf.Settings) ([]Option, error) {
	mode, err := geometry.ParseDistanceMode(settings.Dedup.Mode)
	if err != nil {
		return nil, errors.New(err).
			Component("promotion").
			Category(errors.CategoryConfiguration).
			Context("setting", "dedup.mode").
			Build()
	}

	threshold := settings.Dedup.Threshold
	if threshold == 0 {
		threshold = conf.DefaultDuplicateThreshold
	}

	return []Option{
		WithThreshold(threshold),
		WithDistanceMode(mode),
		WithRoomCacheTTL(settings.Dedup.RoomCacheTTL),
		WithStoreTimeout(settings.Store.Timeout),
	}, nil
}
