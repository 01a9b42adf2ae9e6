package main

import (
	"golang.org/x/exp/slog"

	"github.com/spf13/viper"

	"github.com/ttpr0/go-routing/costing"
)

// Config is the daemon's runtime configuration, loaded with viper the way
// the teacher loads its yaml.v3 Config (config.go) - generalized to also
// accept environment variable overrides and defaults, which a plain
// yaml.Unmarshal call doesn't give you for free.
type Config struct {
	Server struct {
		Addr               string  `mapstructure:"addr"`
		MaxMatrixLocations int     `mapstructure:"max-matrix-locations"`
		MaxMatrixDistanceM float32 `mapstructure:"max-matrix-distance-m"`
		RateLimitPerSec    float64 `mapstructure:"rate-limit-per-sec"`
		RateLimitBurst     int     `mapstructure:"rate-limit-burst"`
	} `mapstructure:"server"`
	Build struct {
		OSM       string `mapstructure:"osm"`
		TileCache string `mapstructure:"tile-cache"`
	} `mapstructure:"build"`
	Profiles []string `mapstructure:"profiles"`
}

func ReadConfig(file string) Config {
	slog.Info("reading config file", "file", file)

	v := viper.New()
	v.SetConfigFile(file)
	v.SetDefault("server.addr", ":5002")
	v.SetDefault("server.max-matrix-locations", 100)
	v.SetDefault("server.max-matrix-distance-m", 200000.0)
	v.SetDefault("server.rate-limit-per-sec", 5.0)
	v.SetDefault("server.rate-limit-burst", 10)
	v.SetDefault("build.tile-cache", "./graphs/tilecache")
	v.SetDefault("profiles", []string{"auto", "bicycle", "pedestrian", "bikeshare"})

	if err := v.ReadInConfig(); err != nil {
		slog.Error("failed to read config file", "error", err.Error())
		panic(err)
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		slog.Error("failed to parse config file", "error", err.Error())
		panic(err)
	}
	return config
}

// CostingByProfile resolves one of the profiles a matrix request may name
// to its Costing implementation. "bikeshare" has no single Costing (it
// runs matrix.BSSEngine's own pedestrian/bicycle pair) so it is handled
// separately by the matrix handler.
func CostingByProfile(name string) (costing.Costing, bool) {
	switch name {
	case "auto":
		return costing.NewAutoCosting(), true
	case "bicycle":
		return costing.NewBicycleCosting(), true
	case "pedestrian":
		return costing.NewPedestrianCosting(), true
	default:
		return nil, false
	}
}
