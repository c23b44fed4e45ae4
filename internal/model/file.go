package model

import "path"

// GeneratedFile is one metadata source file produced by code generation.
// FilePath is relative to the project root.
type GeneratedFile struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	Content  string `json:"content"`
}

// RelPath joins FilePath and FileName with forward slashes.
func (f GeneratedFile) RelPath() string {
	return path.Join(f.FilePath, f.FileName)
}

// NormalizeFile coerces raw into a file carrying exactly the three string fields.
func NormalizeFile(raw map[string]any) GeneratedFile {
	return GeneratedFile{
		FileName: asString(raw["fileName"], ""),
		FilePath: asString(raw["filePath"], ""),
		Content:  asString(raw["content"], ""),
	}
}

// NormalizeFiles reads the files list out of an extracted generation payload.
// A top-level list is taken as the files list itself. Anything that is not a
// list yields an empty slice; non-object entries are dropped.
func NormalizeFiles(raw any) []GeneratedFile {
	var list any
	switch v := raw.(type) {
	case map[string]any:
		list = v["files"]
	case []any:
		list = v
	}

	objs := asObjects(list)
	files := make([]GeneratedFile, 0, len(objs))
	for _, obj := range objs {
		files = append(files, NormalizeFile(obj))
	}
	return files
}
