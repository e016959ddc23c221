package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/multierr"
)

// Path is the location of the optional YAML config file.
type Path string

const DefaultPath Path = "./config/config.yaml"

type Config struct {
	Console Console `yaml:"console" split_words:"true"`
	API     API     `yaml:"api" split_words:"true"`
	Session Session `yaml:"session" split_words:"true"`
	SOAP    SOAP    `yaml:"soap" split_words:"true"`
	State   State   `yaml:"state" split_words:"true"`
	Runner  Runner  `yaml:"runner" split_words:"true"`
}

type Console struct {
	Port        int    `yaml:"port" split_words:"true"`
	TemplateDir string `yaml:"templateDir" split_words:"true"`
	StaticDir   string `yaml:"staticDir" split_words:"true"`
}

type API struct {
	URL            string        `yaml:"url" split_words:"true"`
	RequestTimeout time.Duration `yaml:"requestTimeout" split_words:"true"`
}

type Session struct {
	Timeout      time.Duration `yaml:"timeout" split_words:"true"`
	TickInterval time.Duration `yaml:"tickInterval" split_words:"true"`
}

type SOAP struct {
	Username        string `yaml:"username" split_words:"true"`
	Password        string `yaml:"password" split_words:"true"`
	StudyIdentifier string `yaml:"studyIdentifier" split_words:"true"`
}

type State struct {
	Path string `yaml:"path" split_words:"true"`
}

// Runner holds the credentials and output used by the headless mode.
type Runner struct {
	Username       string `yaml:"username" split_words:"true"`
	Password       string `yaml:"password" split_words:"true"`
	SignPassword   string `yaml:"signPassword" split_words:"true"`
	SignMeaning    string `yaml:"signMeaning" split_words:"true"`
	PolicyPassword string `yaml:"policyPassword" split_words:"true"`
	Output         string `yaml:"output" split_words:"true"`
}

func Default() *Config {
	return &Config{
		Console: Console{
			Port:        8125,
			TemplateDir: "web/tmpl",
			StaticDir:   "web/static",
		},
		API: API{
			URL:            "http://localhost:8080",
			RequestTimeout: 30 * time.Second,
		},
		Session: Session{
			Timeout:      30 * time.Minute,
			TickInterval: time.Second,
		},
		SOAP: SOAP{
			Username:        "root",
			Password:        "12345678",
			StudyIdentifier: "S_DEFAULTS1",
		},
		State: State{
			Path: "./data/state.json",
		},
		Runner: Runner{
			Username:       "root",
			SignMeaning:    "Approval",
			PolicyPassword: "Str0ng!Passw0rd",
		},
	}
}

// New builds the config from defaults, the YAML file at p, a .env file and
// PART11_* environment variables, in that order of precedence.
func New(p Path) (*Config, error) {
	cfg := Default()

	if err := loadYAML(string(p), cfg); err != nil {
		return nil, err
	}
	if err := loadEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var err error

	if c.Console.Port < 1 || c.Console.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("console port out of range: %d", c.Console.Port))
	}
	if c.Session.Timeout <= 0 {
		err = multierr.Append(err, errors.New("session timeout must be > 0"))
	}
	if c.Session.TickInterval <= 0 {
		err = multierr.Append(err, errors.New("session tick interval must be > 0"))
	}
	if c.API.RequestTimeout <= 0 {
		err = multierr.Append(err, errors.New("api request timeout must be > 0"))
	}
	if verr := ValidateURL(c.API.URL); verr != nil {
		err = multierr.Append(err, verr)
	}
	if c.State.Path == "" {
		err = multierr.Append(err, errors.New("state path must not be empty"))
	}

	return err
}

// ValidateURL reports whether raw is an absolute http(s) URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid api url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("api url %q has no host", raw)
	}
	return nil
}
