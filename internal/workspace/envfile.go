package workspace

import (
	"fmt"

	"github.com/spf13/viper"
)

// ReadEnvFile parses a dotenv-style file and returns a LookupFunc over its
// entries. Keys are matched case-insensitively.
func ReadEnvFile(path string) (LookupFunc, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	return func(key string) (string, bool) {
		if !v.IsSet(key) {
			return "", false
		}
		return v.GetString(key), true
	}, nil
}

// LoadEnvFile reads path and layers it under the process environment, so a
// variable exported in the shell wins over the same variable in the file.
func LoadEnvFile(path string) (LookupFunc, error) {
	fileLookup, err := ReadEnvFile(path)
	if err != nil {
		return nil, err
	}
	return Layered(EnvLookup(), fileLookup), nil
}
