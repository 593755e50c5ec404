package autostart

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

var desktopEntryTemplate = template.Must(template.New("desktop").Parse(`[Desktop Entry]
Type=Application
Name={{.Name}}
Exec={{.Exec}}
Terminal=false
X-GNOME-Autostart-enabled=true
`))

var (
	// inside a quoted Exec argument
	execArgEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`, `%`, `%%`)
	// any string value
	valueEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
)

// quoteExec renders path as a single quoted Exec argument
func quoteExec(path string) string {
	return valueEscaper.Replace(`"` + execArgEscaper.Replace(path) + `"`)
}

// DesktopEntryStore manages an XDG autostart entry (~/.config/autostart/<app>.desktop)
type DesktopEntryStore struct {
	dir     string
	appName string
}

// NewDesktopEntryStore returns a store writing <appName>.desktop into dir
func NewDesktopEntryStore(dir, appName string) *DesktopEntryStore {
	return &DesktopEntryStore{dir: dir, appName: appName}
}

func (s *DesktopEntryStore) path() string {
	return filepath.Join(s.dir, s.appName+".desktop")
}

func (s *DesktopEntryStore) IsEnabled() (bool, error) {
	_, err := os.Stat(s.path())
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("autostart: stat desktop entry: %w", err)
}

func (s *DesktopEntryStore) Enable(execPath string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("autostart: create %s: %w", s.dir, err)
	}

	var buf bytes.Buffer
	data := struct{ Name, Exec string }{valueEscaper.Replace(s.appName), quoteExec(execPath)}
	if err := desktopEntryTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("autostart: render desktop entry: %w", err)
	}
	if err := os.WriteFile(s.path(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("autostart: write desktop entry: %w", err)
	}
	return nil
}

func (s *DesktopEntryStore) Disable() error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("autostart: remove desktop entry: %w", err)
	}
	return nil
}
