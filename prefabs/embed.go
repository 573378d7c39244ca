package prefabs

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.yaml *.toml
var PrefabsFS embed.FS

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// Dir is where disk overrides of the embedded prefabs live.
var Dir = "prefabs"

// Load reads a prefab, preferring a copy under Dir.
func Load(name string) ([]byte, error) {
	return readOverride(PrefabsFS, cleanPrefabPath(name))
}

// LoadScript reads a script, preferring a copy under Dir/scripts.
func LoadScript(name string) ([]byte, error) {
	return readOverride(ScriptsFS, cleanScriptPath(name))
}

func readOverride(embedded fs.FS, clean string) ([]byte, error) {
	if data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(clean))); err == nil {
		return data, nil
	}
	return fs.ReadFile(embedded, clean)
}

// Name maps a watched path back to the name Load and LoadScript expect.
func Name(path string) string {
	if isScriptFile(path) {
		return cleanScriptPath(filepath.Base(path))
	}
	return filepath.Base(path)
}

func cleanPrefabPath(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(path), "prefabs/")
}

// cleanScriptPath accepts a bare name or any prefabs/scripts prefix of it.
func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	for _, prefix := range []string{"prefabs/", "scripts/"} {
		s = strings.TrimPrefix(s, prefix)
	}
	return "scripts/" + s
}
