package config

// Default configuration values.
const (
	DefaultThemesDir = "themes"
	DefaultTheme     = "default"
	DefaultDriver    = "sqlite"
	DefaultDSN       = ".leappage/pages.db"
	DefaultPort      = 8080
	DefaultMaxSteps  = 1_000_000
	DefaultLogLevel  = "info"
	DefaultOutput    = OutputAuto
)

// Output formats.
const (
	OutputAuto     = "auto" // markdown on a terminal, html otherwise
	OutputHTML     = "html"
	OutputMarkdown = "markdown"
	OutputJSON     = "json"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "leappage.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "leappage.yml"

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore: LEAPPAGE_DATABASE__DSN sets database.dsn.
const EnvPrefix = "LEAPPAGE_"

func defaults() map[string]any {
	return map[string]any{
		"themes_dir":            DefaultThemesDir,
		"theme":                 DefaultTheme,
		"database.driver":       DefaultDriver,
		"database.dsn":          DefaultDSN,
		"server.port":           DefaultPort,
		"server.watch":          true,
		"server.session_secret": "",
		"scripts.max_steps":     DefaultMaxSteps,
		"log_level":             DefaultLogLevel,
		"verbose":               false,
		"output":                DefaultOutput,
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"themes-dir": "themes_dir",
	"theme":      "theme",
	"db-driver":  "database.driver",
	"db":         "database.dsn",
	"port":       "server.port",
	"watch":      "server.watch",
	"max-steps":  "scripts.max_steps",
	"log-level":  "log_level",
	"verbose":    "verbose",
	"output":     "output",
}
