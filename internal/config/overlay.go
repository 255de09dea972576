package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. HOTFIX_SOURCE_ADDRESS.
const EnvPrefix = "HOTFIX"

// Keys understood by Overlay. Flags bound to these keys and the matching
// environment variables override file values.
const (
	KeyTheme           = "theme"
	KeySourceKind      = "source.kind"
	KeySourceAddress   = "source.address"
	KeySourceSession   = "source.session_cookie"
	KeySourceCAFile    = "source.ca_file"
	KeySourceTimeout   = "source.timeout"
	KeySourceManifest  = "source.manifest"
	KeySourceRoster    = "source.roster"
	KeySourceHotfixDir = "source.hotfix_dir"
	KeySourceDatabase  = "source.database"
	KeyStdDelay        = "notifications.std_delay"
	KeyExitDelay       = "notifications.exit_delay"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyLogFile         = "log.file"
	KeyServerListen    = "server.listen"
	KeyServerSession   = "server.session"
	KeyServerCert      = "server.cert_path"
	KeyServerKey       = "server.key_path"
)

// NewViper returns a viper instance reading HOTFIX_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Overlay applies every key set in v on top of cfg.
func Overlay(cfg Config, v *viper.Viper) Config {
	if v == nil {
		return cfg
	}
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	str(KeyTheme, &cfg.Theme)
	str(KeySourceKind, &cfg.Source.Kind)
	str(KeySourceAddress, &cfg.Source.Address)
	str(KeySourceSession, &cfg.Source.Session)
	str(KeySourceCAFile, &cfg.Source.CAFile)
	str(KeySourceManifest, &cfg.Source.Manifest)
	str(KeySourceRoster, &cfg.Source.Roster)
	str(KeySourceHotfixDir, &cfg.Source.HotfixDir)
	str(KeySourceDatabase, &cfg.Source.Database)
	str(KeyLogLevel, &cfg.Log.Level)
	str(KeyLogFormat, &cfg.Log.Format)
	str(KeyLogFile, &cfg.Log.File)
	str(KeyServerListen, &cfg.Server.Listen)
	str(KeyServerSession, &cfg.Server.Session)
	str(KeyServerCert, &cfg.Server.CertPath)
	str(KeyServerKey, &cfg.Server.KeyPath)

	if v.IsSet(KeySourceTimeout) {
		cfg.Source.Timeout = v.GetDuration(KeySourceTimeout)
	}
	if v.IsSet(KeyStdDelay) {
		cfg.Notifications.StdDelay = v.GetDuration(KeyStdDelay)
	}
	if v.IsSet(KeyExitDelay) {
		cfg.Notifications.ExitDelay = v.GetDuration(KeyExitDelay)
	}
	return cfg
}
