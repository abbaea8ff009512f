package io

import (
	"fmt"
	"os"
	"path/filepath"
)

// MakeDirForFile creates a directory provided in the filePath. It uses
// creator as a name of the file owner for error messages.
func MakeDirForFile(filePath string, creator string) error {
	fileName := filePath
	dir := filepath.Dir(fileName)
	err := os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("could not create dir for %s: %w", creator, err)
	}
	return nil
}
