package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	NavigationContinuous = "continuous"
	NavigationPerSet     = "per-set"
)

type Config struct {
	Host        string   `yaml:"host"`
	Port        uint     `yaml:"port"`
	DBDriver    string   `yaml:"db_driver"`
	DBUrl       string   `yaml:"db_url"`
	Debug       bool     `yaml:"debug"`
	LogFormat   string   `yaml:"log_format"`
	Navigation  string   `yaml:"navigation"`
	CORSOrigins []string `yaml:"cors_origins"`
	Fixture     string   `yaml:"fixture"`

	Addr string `yaml:"-"`
}

func Default() Config {
	return Config{
		Host:       "0.0.0.0",
		Port:       80,
		DBDriver:   "sqlite3",
		DBUrl:      "survey.sqlite",
		LogFormat:  "text",
		Navigation: NavigationContinuous,
	}
}

// ParseFlags reads the command line. When -config points to a YAML file, the
// file is loaded first and flags given explicitly on the command line win.
func ParseFlags(args []string) (cfg Config, err error) {
	cfg = Default()

	fs := flag.NewFlagSet("survey", flag.ContinueOnError)
	var file string
	fs.StringVar(&file, "config", "", "path to a YAML configuration file")
	host := fs.String("host", cfg.Host, "listen host name")
	port := fs.Uint("port", cfg.Port, "listen port number")
	driver := fs.String("db-driver", cfg.DBDriver, "database driver (sqlite3 or postgres)")
	dbUrl := fs.String("db-url", cfg.DBUrl, "path to SQLite3 DB file or postgres connection URL")
	debug := fs.Bool("debug", cfg.Debug, "log at DEBUG level")
	logFormat := fs.String("log-format", cfg.LogFormat, "log output format (text or json)")
	navigation := fs.String("navigation", cfg.Navigation, "question navigation mode (continuous or per-set)")
	origins := fs.String("cors-origins", "", "comma separated list of allowed CORS origins")
	fixture := fs.String("fixture", "", "path to a YAML survey to load at startup")
	if err = fs.Parse(args); err != nil {
		return
	}

	if file != "" {
		if err = cfg.loadFile(file); err != nil {
			return
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = *host
		case "port":
			cfg.Port = *port
		case "db-driver":
			cfg.DBDriver = *driver
		case "db-url":
			cfg.DBUrl = *dbUrl
		case "debug":
			cfg.Debug = *debug
		case "log-format":
			cfg.LogFormat = *logFormat
		case "navigation":
			cfg.Navigation = *navigation
		case "cors-origins":
			cfg.CORSOrigins = splitList(*origins)
		case "fixture":
			cfg.Fixture = *fixture
		}
	})

	err = cfg.finish()
	return
}

func (cfg *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func (cfg *Config) finish() error {
	switch cfg.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
	switch cfg.Navigation {
	case NavigationContinuous, NavigationPerSet:
	default:
		return fmt.Errorf("unknown navigation mode %q", cfg.Navigation)
	}
	if cfg.DBUrl == "" {
		return errors.New("missing parameter -db-url")
	}

	cfg.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))
	return nil
}

// DSN returns the data source name handed to the driver.
func (cfg Config) DSN() string {
	if cfg.DBDriver != "sqlite3" || strings.Contains(cfg.DBUrl, "?") {
		return cfg.DBUrl
	}
	return SQLiteDSN(cfg.DBUrl)
}

// SQLiteDSN enables foreign keys and a busy timeout on every pooled
// connection. Transactions take the write lock on BEGIN: a deferred
// transaction that reads and then writes fails with SQLITE_BUSY instead of
// waiting when another one holds the lock.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func splitList(s string) (list []string) {
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return
}
