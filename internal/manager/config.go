package manager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/hoppxi/displayconfig/pkg/displayinfo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	appName   = "displayconfig"
	envPrefix = "DISPLAYCONFIG"
)

var outputFormats = []string{"text", "json", "yaml"}

type MQTTSettings struct {
	Broker   string `mapstructure:"broker" yaml:"broker"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Topic    string `mapstructure:"topic" yaml:"topic"`
	ClientID string `mapstructure:"client_id" yaml:"client_id"`
	QoS      byte   `mapstructure:"qos" yaml:"qos"`
	Retain   bool   `mapstructure:"retain" yaml:"retain"`
}

// Enabled reports whether watch events should be published.
func (m MQTTSettings) Enabled() bool {
	return m.Broker != ""
}

type Settings struct {
	LogLevel string                `mapstructure:"log_level" yaml:"log_level"`
	Output   string                `mapstructure:"output" yaml:"output"`
	Match    displayinfo.Tolerance `mapstructure:"match" yaml:"match"`
	MQTT     MQTTSettings          `mapstructure:"mqtt" yaml:"mqtt"`
}

// Validate rejects settings the commands cannot act on.
func (s Settings) Validate() error {
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", s.LogLevel)
	}
	if !validOutput(s.Output) {
		return fmt.Errorf("invalid output %q: must be one of %s", s.Output, strings.Join(outputFormats, ", "))
	}
	if s.Match.Logical <= 0 || s.Match.Refresh <= 0 || s.Match.Pixel <= 0 {
		return errors.New("match tolerances must be positive")
	}
	if s.MQTT.QoS > 2 {
		return fmt.Errorf("invalid mqtt.qos %d: must be 0, 1 or 2", s.MQTT.QoS)
	}
	return nil
}

func validOutput(o string) bool {
	for _, f := range outputFormats {
		if o == f {
			return true
		}
	}
	return false
}

// Defaults returns the settings used when no file or environment
// override is present.
func Defaults() Settings {
	host := Hostname()
	return Settings{
		LogLevel: "warn",
		Output:   "text",
		Match:    displayinfo.DefaultTolerance,
		MQTT: MQTTSettings{
			Topic:    appName + "/" + host,
			ClientID: host + "_" + appName,
		},
	}
}

// Hostname is the local host name made safe for MQTT topic levels.
func Hostname() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "localhost"
	}
	host = strings.TrimSuffix(host, ".local")
	return strings.NewReplacer(" ", "", "/", "", "+", "", "#", "").Replace(host)
}

// DefaultPath is <UserConfigDir>/displayconfig/displayconfig.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, appName+".yaml"), nil
}

// ConfigManager loads settings once per process. An explicit Path must
// exist; the default path is optional.
type ConfigManager struct {
	Path string

	once     sync.Once
	v        *viper.Viper
	err      error
	fromFile bool
}

func (c *ConfigManager) Load() (*viper.Viper, error) {
	c.once.Do(func() {
		c.v, c.err = c.load()
	})
	return c.v, c.err
}

func (c *ConfigManager) load() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, explicit := c.Path, c.Path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			log.WithError(err).Debug("no user config directory, using defaults")
			return v, nil
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			log.WithField("path", path).Debug("config file not found, using defaults")
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	c.fromFile = true
	log.WithField("path", v.ConfigFileUsed()).Debug("config loaded")
	return v, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("output", d.Output)
	v.SetDefault("match.logical_tolerance", d.Match.Logical)
	v.SetDefault("match.refresh_tolerance", d.Match.Refresh)
	v.SetDefault("match.pixel_tolerance", d.Match.Pixel)
	v.SetDefault("mqtt.broker", d.MQTT.Broker)
	v.SetDefault("mqtt.username", d.MQTT.Username)
	v.SetDefault("mqtt.password", d.MQTT.Password)
	v.SetDefault("mqtt.topic", d.MQTT.Topic)
	v.SetDefault("mqtt.client_id", d.MQTT.ClientID)
	v.SetDefault("mqtt.qos", d.MQTT.QoS)
	v.SetDefault("mqtt.retain", d.MQTT.Retain)
}

// Settings decodes and validates the effective configuration.
func (c *ConfigManager) Settings() (Settings, error) {
	v, err := c.Load()
	if err != nil {
		return Settings{}, err
	}
	return decode(v)
}

func decode(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}

// Watch calls onChange with the new settings each time the config file
// is written. Invalid edits are logged and skipped. It is a no-op when
// no file was loaded.
func (c *ConfigManager) Watch(onChange func(Settings)) {
	v, err := c.Load()
	if err != nil || !c.fromFile {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		s, err := decode(v)
		if err != nil {
			log.WithError(err).WithField("path", e.Name).Warn("ignoring config change")
			return
		}
		log.WithField("path", e.Name).Info("config reloaded")
		onChange(s)
	})
	v.WatchConfig()
}

// Used returns the config file in effect, or "" when running on defaults.
func (c *ConfigManager) Used() string {
	if v, err := c.Load(); err == nil && c.fromFile {
		return v.ConfigFileUsed()
	}
	return ""
}

// WriteDefault writes the default settings to path as YAML. An existing
// file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
	}
	out, err := yaml.Marshal(Defaults())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, out, 0o600)
}
