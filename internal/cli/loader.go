package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadError represents an error that occurred while reading an input file.
type LoadError struct {
	Code    string
	Message string
	Path    string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// documentExts are the input extensions batch picks up.
var documentExts = []string{".json", ".yaml", ".yml"}

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeParse, Message: err.Error(), Path: "<stdin>"}
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "file not found", Path: path}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Path: path}
	}
	return data, nil
}

// LoadDocument reads a JSON or YAML mapping. YAML is chosen by a .yaml or
// .yml extension; anything else, stdin included, is parsed as JSON first and
// as YAML if that fails.
func LoadDocument(path string, stdin io.Reader) (map[string]any, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if isYAML(path) {
		err = yaml.Unmarshal(data, &doc)
	} else if err = json.Unmarshal(data, &doc); err != nil {
		if yerr := yaml.Unmarshal(data, &doc); yerr == nil {
			err = nil
		}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: err.Error(), Path: path}
	}
	if doc == nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: "document is empty", Path: path}
	}
	return doc, nil
}

// LoadJSON decodes a JSON or YAML file into v. YAML input is converted to
// JSON first so v's json tags apply.
func LoadJSON(path string, stdin io.Reader, v any) error {
	data, err := readInput(path, stdin)
	if err != nil {
		return err
	}
	if isYAML(path) {
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return &LoadError{Code: ErrCodeParse, Message: err.Error(), Path: path}
		}
		if data, err = json.Marshal(generic); err != nil {
			return &LoadError{Code: ErrCodeParse, Message: err.Error(), Path: path}
		}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return &LoadError{Code: ErrCodeParse, Message: err.Error(), Path: path}
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// FindDocuments returns the JSON and YAML files directly inside dir, sorted.
func FindDocuments(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "directory not found", Path: dir}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Path: dir}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "not a directory", Path: dir}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Path: dir}
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(documentExts, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: "no JSON or YAML files found", Path: dir}
	}
	return paths, nil
}

// loadFailure maps a loader error onto the CLI error output.
func loadFailure(f *OutputFormatter, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return fail(f, ExitCommandError, le.Code, le.Error(), nil)
	}
	return fail(f, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}
