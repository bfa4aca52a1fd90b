package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const configFileEnv = "CONFIG_FILE"

// loadInto hydrates the struct pointer from an optional YAML file (named
// by CONFIG_FILE) and then overrides fields from environment variables.
// Nested structs get PARENT_CHILD keys unless an `env:"KEY"` tag is set.
func loadInto(target interface{}) error {
	if target == nil {
		return errors.New("config: target is nil")
	}
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return errors.New("config: target must be pointer to struct")
	}

	if path := os.Getenv(configFileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, target); err != nil {
			return fmt.Errorf("config: decode yaml: %w", err)
		}
	}

	return overrideFromEnv(val.Elem(), "")
}

func overrideFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fieldVal := v.Field(i)
		fieldType := t.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		key := fieldType.Tag.Get("env")
		if key == "-" {
			continue
		}
		if key == "" {
			key = envKey(prefix, fieldType.Name)
		}

		if fieldVal.Kind() == reflect.Struct {
			if err := overrideFromEnv(fieldVal, key); err != nil {
				return err
			}
			continue
		}

		// Empty values do not override defaults, matching the usual
		// PORT-or-fallback environment convention.
		raw, ok := os.LookupEnv(key)
		if !ok || raw == "" {
			continue
		}
		if err := setField(fieldVal, raw); err != nil {
			return fmt.Errorf("config: parse %s: %w", key, err)
		}
	}
	return nil
}

func envKey(prefix, name string) string {
	name = strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(parsed)
	case reflect.Int, reflect.Int64:
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(parsed)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type().String())
	}
	return nil
}
