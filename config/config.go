// Package config loads zcode's on-disk settings: keybindings, theme
// colors, and per-language server overrides, from a single JSON file
// under the platform cache directory. JSON is used because it is the
// only serialization format this codebase's editor-facing code speaks
// anywhere (the LSP wire format, the web bridge's RPC envelope); no
// third-party config-file library appears in the retrieved corpus.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/zcode-editor/zcode/lsp"
	"github.com/zcode-editor/zcode/zerr"
)

// ServerOverride replaces or augments a built-in language-server mapping.
type ServerOverride struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Theme names the colors the renderer glue uses outside of externally
// produced highlight tokens: chrome, status bar, and diagnostic severity
// colors. Values are hex strings ("#rrggbb" or "#rgb"), parsed with
// go-colorful's Hex; color names are not recognized and fail to parse.
type Theme struct {
	Name          string `json:"name"`
	Background    string `json:"background"`
	Foreground    string `json:"foreground"`
	CursorLine    string `json:"cursorLine"`
	Selection     string `json:"selection"`
	StatusBarBG   string `json:"statusBarBackground"`
	StatusBarFG   string `json:"statusBarForeground"`
	DiagnosticErr string `json:"diagnosticError"`
	DiagnosticWrn string `json:"diagnosticWarning"`
	DiagnosticInf string `json:"diagnosticInfo"`
	Keyword       string `json:"keyword"`
	Comment       string `json:"comment"`
	String        string `json:"string"`
	Number        string `json:"number"`
}

// DefaultTheme is used whenever the config file omits a theme entirely.
func DefaultTheme() Theme {
	return Theme{
		Name:          "dark",
		Background:    "#1e1e1e",
		Foreground:    "#d4d4d4",
		CursorLine:    "#2a2a2a",
		Selection:     "#264f78",
		StatusBarBG:   "#007acc",
		StatusBarFG:   "#ffffff",
		DiagnosticErr: "#f14c4c",
		DiagnosticWrn: "#cca700",
		DiagnosticInf: "#3794ff",
		Keyword:       "#569cd6",
		Comment:       "#6a9955",
		String:        "#ce9178",
		Number:        "#b5cea8",
	}
}

// Colors parses every hex string in the theme into colorful.Color,
// returning zerr.Parse on the first field that doesn't parse. Renderer
// glue calls this once at startup rather than re-parsing on every frame.
func (t Theme) Colors() (map[string]colorful.Color, error) {
	fields := map[string]string{
		"background":         t.Background,
		"foreground":         t.Foreground,
		"cursorLine":         t.CursorLine,
		"selection":          t.Selection,
		"statusBarBackground": t.StatusBarBG,
		"statusBarForeground": t.StatusBarFG,
		"diagnosticError":    t.DiagnosticErr,
		"diagnosticWarning":  t.DiagnosticWrn,
		"diagnosticInfo":     t.DiagnosticInf,
		"keyword":            t.Keyword,
		"comment":            t.Comment,
		"string":             t.String,
		"number":             t.Number,
	}
	out := make(map[string]colorful.Color, len(fields))
	for name, hex := range fields {
		if hex == "" {
			continue
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, zerr.Wrap(zerr.Parse, "theme."+name, err)
		}
		out[name] = c
	}
	return out, nil
}

// BlendSeverity interpolates between the info/warning/error colors by a
// 0..1 severity score, used by the status bar to show a blended
// problem-count indicator rather than three separate counters.
func (t Theme) BlendSeverity(score float64) (colorful.Color, error) {
	colors, err := t.Colors()
	if err != nil {
		return colorful.Color{}, err
	}
	if score <= 0.5 {
		return colors["diagnosticInfo"].BlendLuv(colors["diagnosticWarning"], score*2), nil
	}
	return colors["diagnosticWarning"].BlendLuv(colors["diagnosticError"], (score-0.5)*2), nil
}

// Config is the full contents of the settings file.
type Config struct {
	Keybindings map[string]string        `json:"keybindings,omitempty"`
	Theme       Theme                    `json:"theme"`
	LSP         LSPConfig                `json:"lsp"`
}

// LSPConfig holds per-language server command overrides layered on top of
// lsp.DefaultServers.
type LSPConfig struct {
	Servers map[string]ServerOverride `json:"servers,omitempty"`
}

// Default returns the configuration used when no file exists yet.
func Default() Config {
	return Config{
		Keybindings: DefaultKeymap(),
		Theme:       DefaultTheme(),
	}
}

// Dir returns the directory the config file and its sibling log
// directory live under: os.UserCacheDir()/zcode.
func Dir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", zerr.Wrap(zerr.UnreadableFile, "user cache dir", err)
	}
	return filepath.Join(base, "zcode"), nil
}

// Path returns the settings file's path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// Load reads the settings file, returning Default() if it does not exist.
// Missing keybinding/theme entries in an existing file are filled in from
// the default rather than left zero, so a user's partial override file
// still produces a fully usable Config.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, zerr.Wrap(zerr.UnreadableFile, path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, zerr.Wrap(zerr.Parse, path, err)
	}
	if cfg.Keybindings == nil {
		cfg.Keybindings = DefaultKeymap()
	}
	if cfg.Theme.Name == "" {
		cfg.Theme = DefaultTheme()
	}
	return cfg, nil
}

// Save writes cfg to the settings file, creating its directory if needed.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zerr.Wrap(zerr.DiskFull, path, err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return zerr.Wrap(zerr.Parse, path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return zerr.Wrap(zerr.DiskFull, path, err)
	}
	return nil
}

// ResolveServers layers cfg's overrides on top of lsp.DefaultServers,
// returning one merged map keyed by language id.
func (c Config) ResolveServers() map[string]lsp.ServerConfig {
	servers := lsp.DefaultServers()
	for lang, override := range c.LSP.Servers {
		servers[lang] = lsp.ServerConfig{Command: override.Command, Args: override.Args}
	}
	return servers
}
