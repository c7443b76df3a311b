// Package metadata derives the indexed attributes of a single file.
package metadata

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"filedex/internal/store"
)

// ErrNotFound is returned when a file cannot be stat'ed. A file removed after
// discovery and a file the process may not read are treated the same.
var ErrNotFound = errors.New("file not found")

// knownTypes pins the lookup for common extensions so results do not depend
// on the host's mime.types files.
var knownTypes = map[string]string{
	".txt":  "text/plain",
	".text": "text/plain",
	".log":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".tsv":  "text/tab-separated-values",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".mjs":  "text/javascript",
	".py":   "text/x-python",
	".c":    "text/x-c",
	".h":    "text/x-c",
	".sh":   "application/x-sh",
	".json": "application/json",
	".xml":  "application/xml",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".gz":   "application/gzip",
	".tar":  "application/x-tar",
	".wasm": "application/wasm",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".avif": "image/avif",
	".ico":  "image/vnd.microsoft.icon",
	".bmp":  "image/bmp",
	".mp3":  "audio/mpeg",
	".wav":  "audio/x-wav",
	".ogg":  "audio/ogg",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

func init() {
	for ext, typ := range knownTypes {
		if err := mime.AddExtensionType(ext, typ); err != nil {
			panic(fmt.Sprintf("register %s: %v", ext, err))
		}
	}
}

// Extract stats path and returns its record.
func Extract(path string) (store.FileRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return store.FileRecord{}, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}
	if !info.Mode().IsRegular() {
		return store.FileRecord{}, fmt.Errorf("%w: %s is not a regular file", ErrNotFound, path)
	}

	name := filepath.Base(path)
	return store.FileRecord{
		Name:        name,
		SizeBytes:   uint64(info.Size()),
		ContentType: ContentType(name),
	}, nil
}

// ContentType infers a media type from the extension of name. It returns nil
// when the name has no extension or the extension is unknown.
func ContentType(name string) *string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || ext == "." {
		return nil
	}
	typ := mime.TypeByExtension(ext)
	if typ == "" {
		return nil
	}
	if mt, _, err := mime.ParseMediaType(typ); err == nil {
		typ = mt
	}
	return &typ
}
