package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/getsops/sops/v3/decrypt"
	"gopkg.in/yaml.v3"
)

// DecryptSOPSFile decrypts a SOPS-encrypted YAML or JSON file referenced by a
// ${SOPS[file].path} setting and returns the parsed data.
// Keys are resolved by the SOPS library from the environment and its config files.
func DecryptSOPSFile(filePath string) (map[string]interface{}, error) {
	if _, err := os.Stat(filePath); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	format := sopsFormat(filePath)
	cleartext, err := decrypt.File(filePath, format)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt SOPS file %s: %w", filePath, err)
	}

	// JSON cleartext is valid YAML
	var data map[string]interface{}
	if err := yaml.Unmarshal(cleartext, &data); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted %s: %w", format, err)
	}

	return data, nil
}

// sopsFormat picks the SOPS store from the file extension, yaml unless it is .json
func sopsFormat(filePath string) string {
	if strings.EqualFold(filepath.Ext(filePath), ".json") {
		return "json"
	}
	return "yaml"
}
