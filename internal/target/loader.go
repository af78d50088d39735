package target

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFromDirectory discovers and loads all target files from a directory
func LoadFromDirectory(dirPath string) ([]TargetWithFile, []ValidationError) {
	var targets []TargetWithFile
	var errors []ValidationError

	files, err := discoverYAMLFiles(dirPath)
	if err != nil {
		errors = append(errors, ValidationError{
			File:    dirPath,
			Message: fmt.Sprintf("failed to read directory: %v", err),
		})
		return nil, errors
	}

	for _, file := range files {
		tgt, err := parseYAMLFile(file)
		if err != nil {
			errors = append(errors, ValidationError{
				File:    file,
				Message: fmt.Sprintf("failed to parse YAML: %v", err),
			})
			continue
		}
		targets = append(targets, TargetWithFile{
			Target: tgt,
			File:   file,
		})
	}

	return targets, errors
}

// discoverYAMLFiles finds all *.yaml and *.yml files in a directory
func discoverYAMLFiles(dirPath string) ([]string, error) {
	var files []string

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// parseYAMLFile parses a single YAML file into a Target struct
func parseYAMLFile(filePath string) (*Target, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var tgt Target
	if err := yaml.Unmarshal(data, &tgt); err != nil {
		return nil, err
	}

	return &tgt, nil
}
