package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

// Ternary returns a when cond holds, b otherwise
func Ternary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}

// ArrayContains returns the index of the first element satisfying match
func ArrayContains[T any](set []T, match func(elem T) bool) (int, bool) {
	for idx, elem := range set {
		if match(elem) {
			return idx, true
		}
	}

	return -1, false
}

func IsValidSubcommand(available []*cobra.Command, cmd string) bool {
	_, found := ArrayContains(available, func(elem *cobra.Command) bool {
		return elem.Name() == cmd
	})
	return found
}

// UnmarshalFile reads a JSON or YAML file into dest. When credentials is set the
// file content is treated as possibly encrypted and decrypted with ENCRYPTION_KEY first.
func UnmarshalFile(file string, dest any, credentials bool) error {
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", file)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("file not found: %s", err)
	}

	if credentials {
		data, err = DecryptFileContent(data)
		if err != nil {
			return fmt.Errorf("failed to decrypt %s: %s", file, err)
		}
	}

	ext := strings.ToLower(filepath.Ext(file))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return fmt.Errorf("failed to convert yaml file %s: %s", file, err)
		}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal file[%s]: %s", file, err)
	}

	return nil
}
