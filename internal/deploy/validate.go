package deploy

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"instaforce.app/engine/internal/model"
)

var ErrValidation = errors.New("file validation failed")

// ValidationError describes the first file in a batch that cannot be staged.
type ValidationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid file %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid file %q: %s", e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrValidation, e.Err}
	}
	return []error{ErrValidation}
}

var (
	xmlExtensions = map[string]bool{
		".xml": true, ".object": true, ".layout": true, ".profile": true, ".permissionset": true,
	}
	codeExtensions = map[string]bool{
		".cls": true, ".trigger": true, ".js": true, ".cmp": true, ".app": true, ".evt": true,
	}
	drivePattern = regexp.MustCompile(`^[A-Za-z]:`)
)

// StagingPath returns the slash separated path of f inside the staging root,
// or a ValidationError when the path is absolute or escapes the root.
func StagingPath(f model.GeneratedFile) (string, error) {
	dir := strings.ReplaceAll(f.FilePath, `\`, "/")
	name := strings.ReplaceAll(f.FileName, `\`, "/")
	raw := path.Join(dir, name)

	if strings.TrimSpace(f.FileName) == "" {
		return "", &ValidationError{Path: raw, Reason: "missing file name"}
	}
	if strings.HasPrefix(dir, "/") || drivePattern.MatchString(dir) ||
		strings.HasPrefix(name, "/") || drivePattern.MatchString(name) {
		return "", &ValidationError{Path: raw, Reason: "absolute path"}
	}

	clean := path.Clean(raw)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", &ValidationError{Path: raw, Reason: "path escapes staging directory"}
	}
	return clean, nil
}

// ValidateFile checks f's content by extension. XML family files must be
// well formed with a single root element and code files must not be blank.
// Any other blank file is accepted with a warning.
func ValidateFile(f model.GeneratedFile) (warning string, err error) {
	ext := strings.ToLower(path.Ext(f.FileName))

	switch {
	case xmlExtensions[ext]:
		if err := checkXML(f.Content); err != nil {
			return "", &ValidationError{Path: f.RelPath(), Reason: "malformed XML", Err: err}
		}
	case codeExtensions[ext]:
		if strings.TrimSpace(f.Content) == "" {
			return "", &ValidationError{Path: f.RelPath(), Reason: "empty source file"}
		}
	default:
		if strings.TrimSpace(f.Content) == "" {
			return fmt.Sprintf("%s is empty", f.RelPath()), nil
		}
	}
	return "", nil
}

// ValidateBatch validates every file before any is written. It fails on the
// first invalid file or on two files mapping to the same staging path, and
// returns the non-fatal warnings otherwise.
func ValidateBatch(files []model.GeneratedFile) ([]string, error) {
	var warnings []string
	seen := make(map[string]int, len(files))

	for i, f := range files {
		dest, err := StagingPath(f)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[dest]; ok {
			return nil, &ValidationError{
				Path:   dest,
				Reason: fmt.Sprintf("collides with file #%d", prev+1),
			}
		}
		seen[dest] = i

		warning, err := ValidateFile(f)
		if err != nil {
			return nil, err
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
	}
	return warnings, nil
}

func checkXML(content string) error {
	dec := xml.NewDecoder(strings.NewReader(content))
	// content is already decoded text; the declared encoding is informational
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	depth, roots := 0, 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return fmt.Errorf("multiple root elements")
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(strings.TrimSpace(string(t))) > 0 {
				return fmt.Errorf("text outside root element")
			}
		}
	}

	if roots == 0 {
		return fmt.Errorf("no root element")
	}
	return nil
}
