// Package config loads configuration structs from YAML/JSON files and
// environment variables. File values load first; environment variables
// override them.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a YAML or JSON file based on
// extension.
func LoadFromFile(configPath string, config interface{}) error {
	if configPath == "" {
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file %s: %w", configPath, err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file %s: %w", configPath, err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}

	return nil
}

// LoadFromEnv overlays environment variables onto the config struct.
// A field's `env` tag names the environment variable directly; fields
// without one are skipped. Nested structs and struct pointers are walked
// recursively.
func LoadFromEnv(config interface{}) error {
	return applyEnv(reflect.ValueOf(config).Elem())
}

// Load loads configuration from file, then overrides from environment.
func Load(configPath string, config interface{}) error {
	if err := LoadFromFile(configPath, config); err != nil {
		return err
	}
	if err := LoadFromEnv(config); err != nil {
		return fmt.Errorf("failed to load config from environment: %w", err)
	}
	return nil
}

func applyEnv(value reflect.Value) error {
	if !value.IsValid() || !value.CanSet() {
		return nil
	}

	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			value.Set(reflect.New(value.Type().Elem()))
		}
		return applyEnv(value.Elem())

	case reflect.Struct:
		structType := value.Type()
		for i := 0; i < value.NumField(); i++ {
			field := value.Field(i)
			fieldType := structType.Field(i)

			if !field.CanSet() {
				continue
			}

			if field.Kind() == reflect.Struct ||
				(field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct) {
				if err := applyEnv(field); err != nil {
					return err
				}
				continue
			}

			envName := fieldType.Tag.Get("env")
			if envName == "" {
				continue
			}

			if envValue := os.Getenv(envName); envValue != "" {
				if err := setFieldFromString(field, envValue); err != nil {
					return fmt.Errorf("failed to set field %s from env %s: %w", fieldType.Name, envName, err)
				}
			}
		}
	}

	return nil
}

func setFieldFromString(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool value: %s", value)
		}
		field.SetBool(boolVal)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration value: %s", value)
			}
			field.SetInt(int64(duration))
			return nil
		}
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int value: %s", value)
		}
		field.SetInt(intVal)

	case reflect.Float32, reflect.Float64:
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		field.SetFloat(floatVal)

	case reflect.Slice:
		// Comma-separated string lists (e.g. CORS origins).
		if field.Type().Elem().Kind() == reflect.String {
			values := strings.Split(value, ",")
			for i, v := range values {
				values[i] = strings.TrimSpace(v)
			}
			field.Set(reflect.ValueOf(values))
			return nil
		}
		return fmt.Errorf("unsupported slice type: %s", field.Type())

	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}

	return nil
}

// WriteExample writes an example configuration file in the format implied
// by the path extension.
func WriteExample(configPath string, config interface{}) error {
	ext := strings.ToLower(filepath.Ext(configPath))

	var data []byte
	var err error

	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateConfigPath validates that a config file path exists and has a
// supported extension.
func ValidateConfigPath(configPath string) error {
	if configPath == "" {
		return nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml", ".json":
		return nil
	default:
		return fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}
}
