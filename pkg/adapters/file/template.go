package file

import (
	"fmt"
	"os"
)

// ReadTemplate reads a code stub template.
func ReadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(data), nil
}
