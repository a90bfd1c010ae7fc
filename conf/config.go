package conf

/*
   This is a package that wraps viper, a package designed to handle config
   files, for the asthma ETL.

   Lookup order:
   1. An asthma.env file found in ASTHMA_CONF_DIR, ./conf or the working
   directory. Values set through SetEnv are kept here as well.
   2. The process environment, for any key the file does not track.

   Assumptions:
   1. The configuration file is an env file
   2. The configuration file stays immutable for the duration of a run
   (exception is test)
*/

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configName = "asthma"
	tagName    = "conf"
	defaultTag = "conf_default"
)

// An instance of viper containing the conf information. Only made
// accessible through public functions GetEnv, SetEnv, etc.
var envVars *viper.Viper

func setup(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("env")
	if dir != "" {
		v.AddConfigPath(dir)
		// Missing file is fine, we fall back to the environment.
		_ = v.ReadInConfig()
	}
	return v
}

func init() {
	envVars = setup(findEnv(configLocations()))
}

func configLocations() []string {
	locations := []string{"conf", "."}
	if dir, ok := os.LookupEnv("ASTHMA_CONF_DIR"); ok && dir != "" {
		locations = append([]string{dir}, locations...)
	}
	return locations
}

// findEnv returns the first location that holds an asthma.env file, or "" when
// none does.
func findEnv(locations []string) string {
	for _, loc := range locations {
		if _, err := os.Stat(filepath.Join(loc, configName+".env")); err == nil {
			return loc
		}
	}
	return ""
}

// GetEnv retrieves the value stored in conf, falling back to the environment.
// If neither has it, "" is returned.
func GetEnv(key string) string {
	value, _ := LookupEnv(key)
	return value
}

// LookupEnv augments os.LookupEnv to look in the viper struct first.
func LookupEnv(key string) (string, bool) {
	if value := envVars.GetString(key); value != "" {
		return value, true
	}
	return os.LookupEnv(key)
}

// SetEnv adds key values into conf. This function should only be used
// either in this package itself or testing. Protect parameter is type *testing.T, and is there
// to ensure developers knowingly use it in the appropriate scope.
func SetEnv(protect *testing.T, key string, value string) error {
	envVars.Set(key, value)
	return os.Setenv(key, value)
}

// UnsetEnv "unsets" a variable. Like SetEnv, this should only be used
// either in this package itself or testing.
func UnsetEnv(protect *testing.T, key string) error {
	envVars.Set(key, "")
	return os.Unsetenv(key)
}

// Checkout populates the struct pointed to by v. Each field tagged with
// `conf:"KEY"` is read through GetEnv, using `conf_default:"value"` when the
// key is unset. Values are decoded with weak typing so "true", "4" and "0.5"
// land in bool, int and float fields.
func Checkout(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("conf: Checkout requires a pointer to a struct, got %T", v)
	}

	values := make(map[string]interface{})
	rt := rv.Elem().Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		key, ok := field.Tag.Lookup(tagName)
		if !ok || key == "" {
			continue
		}
		if value, found := LookupEnv(key); found && value != "" {
			values[key] = value
		} else if def, hasDefault := field.Tag.Lookup(defaultTag); hasDefault {
			values[key] = def
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tagName,
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return errors.Wrap(err, "conf: failed to create decoder")
	}
	if err := decoder.Decode(values); err != nil {
		return errors.Wrapf(err, "conf: failed to decode into %T", v)
	}
	return nil
}
