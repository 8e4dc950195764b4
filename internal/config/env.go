package config

import (
	"os"
	"strconv"
	"strings"
)

type envVar struct {
	name  string
	desc  string
	apply func(*Config, string)
}

var supportedEnvVars = []envVar{
	{
		// Only here for documentation purposes.  Does not override any values in the config as this environment variable
		// points to where the config should be loaded.  It is handled prior to loading the config.
		name:  "DOUGA_CONFIG_PATH",
		desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) {}, // Special case, no-op
	},
	{
		name:  "DOUGA_CONFIG_PLAYER_PATH",
		desc:  "Sets the path to the mpv binary.  Default: mpv",
		apply: func(c *Config, s string) { c.Player.Path = s },
	},
	{
		name:  "DOUGA_CONFIG_PLAYER_ARGS",
		desc:  "Sets extra arguments for the mpv command line.  Default: None",
		apply: func(c *Config, s string) { c.Player.Args = s },
	},
	{
		name:  "DOUGA_CONFIG_RESOLVER_CLIENT",
		desc:  "Sets the client identity used for stream resolution.  One of: android, web.  Default: android",
		apply: func(c *Config, s string) { c.Resolver.Client = s },
	},
	{
		name: "DOUGA_CONFIG_PLAYBACK_AUTO_PLAY",
		desc: "Whether playback starts automatically once media is loaded.  One of: true, false.  Default: true",
		apply: func(c *Config, s string) {
			if v, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
				c.Playback.AutoPlay = &v
			}
		},
	},
	{
		name:  "DOUGA_CONFIG_LOGGING_LEVEL",
		desc:  "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) { c.Logging.Level = s },
	},
	{
		name:  "DOUGA_CONFIG_LOGGING_FILE_PATH",
		desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) { c.Logging.FilePath = s },
	},
}

func applyEnvVarOverrides(c *Config) {
	for _, envVar := range supportedEnvVars {
		if value := os.Getenv(envVar.name); value != "" {
			envVar.apply(c, value)
		}
	}
}
