package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// FileLoader loads configuration from a file.
type FileLoader struct {
	viper    *viper.Viper
	validate Validator
	name     string
	paths    []string
}

// NewFileLoader creates a new file loader.
func NewFileLoader(name string, paths []string, v *viper.Viper, validate Validator) *FileLoader {
	// Determine config type from file extension
	extension := path.Ext(name)
	configType := strings.TrimPrefix(extension, ".")

	for _, configPath := range paths {
		v.AddConfigPath(configPath)
	}

	v.SetConfigName(strings.TrimSuffix(name, extension))
	v.SetConfigType(configType)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &FileLoader{
		viper:    v,
		paths:    paths,
		name:     name,
		validate: validate,
	}
}

// Load implements the Loader interface.
func (l *FileLoader) Load(target any) error {
	if err := l.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("config file not found: %w", err)
	}

	if err := l.viper.Unmarshal(target); err != nil {
		return fmt.Errorf("config parse error: %w", err)
	}

	if d, ok := target.(Defaulter); ok {
		d.ApplyDefaults()
	}

	if l.validate != nil {
		if err := l.validate.Struct(target); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// Watch implements the Loader interface.
func (l *FileLoader) Watch(callback func()) error {
	l.viper.OnConfigChange(func(e fsnotify.Event) {
		if callback != nil {
			callback()
		}
	})

	l.viper.WatchConfig()
	return nil
}

// Defaulter is implemented by targets that fill zero-valued fields before
// validation.
type Defaulter interface {
	ApplyDefaults()
}
