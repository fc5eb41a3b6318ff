// Command zcode is a terminal code editor: a rope-backed text model, an
// undo/redo history that survives concurrent local and remote edits, and a
// language-server client for diagnostics, completion, hover, and
// navigation.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gdamore/tcell/v3"
	"golang.org/x/term"

	"github.com/zcode-editor/zcode/config"
	"github.com/zcode-editor/zcode/editor"
	"github.com/zcode-editor/zcode/loop"
	"github.com/zcode-editor/zcode/lsp"
	"github.com/zcode-editor/zcode/web"
	"github.com/zcode-editor/zcode/zerr"
	"github.com/zcode-editor/zcode/zlog"
)

func main() {
	webUI := flag.String("webui", "", "serve the browser frontend on this address instead of opening a terminal UI")
	flag.Parse()

	args := flag.Args()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := zlog.New("main")
	defer log.Close()
	defer log.RecoverPanic("main", func() { os.Exit(1) })

	if *webUI != "" {
		if err := runWebUI(ctx, args, *webUI); err != nil {
			fmt.Fprintf(os.Stderr, "zcode: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "zcode: stdin is not a terminal; use -webui to run headless")
		os.Exit(2)
	}

	if err := run(ctx, args, log); err != nil {
		fmt.Fprintf(os.Stderr, "zcode: %v\n", err)
		if zerr.Is(err, zerr.UnreadableFile) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run wires the terminal UI: it opens whatever files were named on the
// command line (or starts with one untitled buffer), spawns the language
// server supervisor, and drives the event loop until the user quits or the
// context is cancelled.
func run(ctx context.Context, paths []string, log *zlog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		log.Warnf("using default config: %v", err)
		cfg = config.Default()
	}

	tabs := editor.NewTabManager()
	if len(paths) == 0 {
		tabs.NewUntitled()
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return zerr.Wrap(zerr.UnreadableFile, p, err)
		}
		if _, err := tabs.OpenFile(abs); err != nil {
			return err
		}
	}

	sv := lsp.NewSupervisor(log.With("lsp"), cfg.ResolveServers())

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	screen.EnableMouse()
	defer screen.Fini()

	keybindings := cfg.Keybindings
	if keybindings == nil {
		keybindings = config.DefaultKeymap()
	}

	app := loop.NewApp(tabs, sv, cfg)
	w, h := screen.Size()
	app.Width, app.Height = w, h

	input := loop.NewInputSource(screen, keybindings)
	renderer := loop.NewScreenRenderer(screen)
	runner := loop.NewRunner(app, input, renderer.Render)

	go func() {
		<-ctx.Done()
		app.Quit = true
	}()

	runner.Run()
	return nil
}

// webUIEditorState adapts editor.TabManager to web.EditorState for the
// browser frontend bridge.
type webUIEditorState struct {
	tabs *editor.TabManager
	root string
}

func (s *webUIEditorState) OpenFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	idx, err := s.tabs.OpenFile(abs)
	if err != nil {
		return "", err
	}
	s.tabs.SetActive(idx)
	buf := s.tabs.Buffer(idx)
	if buf == nil {
		return "", fmt.Errorf("failed to open buffer")
	}
	return buf.Text(), nil
}

func (s *webUIEditorState) ReadBuffer(path string) (string, error) {
	for _, buf := range s.tabs.Buffers() {
		if buf.Path() == path {
			return buf.Text(), nil
		}
	}
	return "", fmt.Errorf("buffer not open: %s", path)
}

func (s *webUIEditorState) WriteBuffer(path string, text string) error {
	for _, buf := range s.tabs.Buffers() {
		if buf.Path() == path {
			return buf.Replace(editor.Range{Start: 0, End: buf.Rope().ByteLen()}, text)
		}
	}
	return fmt.Errorf("buffer not open: %s", path)
}

func (s *webUIEditorState) SaveFile(path string) error {
	for _, buf := range s.tabs.Buffers() {
		if buf.Path() == path {
			return buf.Save()
		}
	}
	return fmt.Errorf("buffer not open: %s", path)
}

func (s *webUIEditorState) ListFiles() []string {
	var files []string
	_ = filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if name == ".git" || name == "node_modules" || name == "vendor" || name == ".claude" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(s.root, path)
		files = append(files, rel)
		return nil
	})
	return files
}

func (s *webUIEditorState) GetLanguage(path string) string {
	for _, buf := range s.tabs.Buffers() {
		if buf.Path() == path {
			return buf.Language()
		}
	}
	return editor.LanguageFromExtension(path)
}

func runWebUI(ctx context.Context, paths []string, addr string) error {
	root := ""
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			continue
		}
		if info.IsDir() {
			root = abs
			break
		}
		root = filepath.Dir(abs)
	}
	if root == "" {
		root, _ = os.Getwd()
	}

	state := &webUIEditorState{
		tabs: editor.NewTabManager(),
		root: root,
	}

	srv := web.NewServer(state, root)
	server := &http.Server{Addr: addr, Handler: srv}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	fmt.Printf("zcode web UI: http://localhost%s\n", addr)
	return server.ListenAndServe()
}
