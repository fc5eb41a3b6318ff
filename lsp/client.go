package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/jsonrpc2"
	protocol "github.com/sourcegraph/go-lsp"

	"github.com/zcode-editor/zcode/zlog"
)

// Client manages one language server subprocess over JSON-RPC 2.0 with
// Content-Length framing, using sourcegraph/jsonrpc2 for the wire protocol
// and sourcegraph/go-lsp for the message shapes rather than hand-rolling
// either.
type Client struct {
	cmd  *exec.Cmd
	conn *jsonrpc2.Conn

	mu     sync.Mutex
	notify func(method string, params json.RawMessage)
	req    func(ctx context.Context, method string, params json.RawMessage) (interface{}, error)

	closed atomic.Bool
	log    *zlog.Logger
}

// stdio adapts a subprocess's separate stdin/stdout pipes to the single
// io.ReadWriteCloser jsonrpc2.NewBufferedStream wants.
type stdio struct {
	r io.ReadCloser
	w io.WriteCloser
}

func (s *stdio) Read(p []byte) (int, error)  { return s.r.Read(p) }
func (s *stdio) Write(p []byte) (int, error) { return s.w.Write(p) }
func (s *stdio) Close() error {
	werr := s.w.Close()
	rerr := s.r.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// NewClient starts command as a subprocess and speaks LSP over its stdio.
func NewClient(ctx context.Context, log *zlog.Logger, command string, args ...string) (*Client, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, err
	}
	cmd.Stderr = zlog.ServerStderrWriter(log, command)

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, err
	}

	c := &Client{cmd: cmd, log: log}
	stream := jsonrpc2.NewBufferedStream(&stdio{r: stdout, w: stdin}, jsonrpc2.VSCodeObjectCodec{})
	c.conn = jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(c.handle))
	return c, nil
}

// SetNotifyHandler registers a callback for server-to-client notifications
// (publishDiagnostics, window/logMessage, and the like).
func (c *Client) SetNotifyHandler(fn func(method string, params json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = fn
}

// SetRequestHandler registers a callback for server-to-client requests
// (workspace/applyEdit, window/showMessageRequest, workspace/configuration).
func (c *Client) SetRequestHandler(fn func(ctx context.Context, method string, params json.RawMessage) (interface{}, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.req = fn
}

func (c *Client) handle(ctx context.Context, _ *jsonrpc2.Conn, r *jsonrpc2.Request) (interface{}, error) {
	var raw json.RawMessage
	if r.Params != nil {
		raw = *r.Params
	}
	if r.Notif {
		c.mu.Lock()
		fn := c.notify
		c.mu.Unlock()
		if fn != nil {
			fn(r.Method, raw)
		}
		return nil, nil
	}
	c.mu.Lock()
	fn := c.req
	c.mu.Unlock()
	if fn == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: r.Method}
	}
	return fn(ctx, r.Method, raw)
}

// Call sends a request and decodes its result into result (which may be
// nil to discard it).
func (c *Client) Call(ctx context.Context, method string, params, result interface{}) error {
	if c.closed.Load() {
		return fmt.Errorf("lsp client closed")
	}
	return c.conn.Call(ctx, method, params, result)
}

// Notify sends a notification; no response is expected.
func (c *Client) Notify(ctx context.Context, method string, params interface{}) error {
	if c.closed.Load() {
		return fmt.Errorf("lsp client closed")
	}
	return c.conn.Notify(ctx, method, params)
}

// DidOpen notifies the server that a document is now open in the editor.
func (c *Client) DidOpen(ctx context.Context, uri protocol.DocumentURI, languageID string, version int, text string) error {
	return c.Notify(ctx, "textDocument/didOpen", protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    version,
			Text:       text,
		},
	})
}

// DidChange notifies the server of edits; changes should already be
// shaped (incremental ranges vs. one full-text replacement) according to
// the session's negotiated sync kind.
func (c *Client) DidChange(ctx context.Context, uri protocol.DocumentURI, version int, changes []protocol.TextDocumentContentChangeEvent) error {
	return c.Notify(ctx, "textDocument/didChange", protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: changes,
	})
}

// DidSave notifies the server that a document was saved.
func (c *Client) DidSave(ctx context.Context, uri protocol.DocumentURI, text string) error {
	return c.Notify(ctx, "textDocument/didSave", map[string]interface{}{
		"textDocument": protocol.TextDocumentIdentifier{URI: uri},
		"text":         text,
	})
}

// DidClose notifies the server that a document is closed.
func (c *Client) DidClose(ctx context.Context, uri protocol.DocumentURI) error {
	return c.Notify(ctx, "textDocument/didClose", protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
}

func posParams(uri protocol.DocumentURI, pos protocol.Position) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     pos,
	}
}

// Completion requests completions at pos. Servers may reply with either a
// bare array or a CompletionList; both shapes are handled.
func (c *Client) Completion(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.CompletionItem, error) {
	var raw json.RawMessage
	if err := c.Call(ctx, "textDocument/completion", posParams(uri, pos), &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list protocol.CompletionList
	if err := json.Unmarshal(raw, &list); err == nil && len(list.Items) > 0 {
		return list.Items, nil
	}
	var items []protocol.CompletionItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Definition requests the definition location(s) of the symbol at pos.
func (c *Client) Definition(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.Location, error) {
	var raw json.RawMessage
	if err := c.Call(ctx, "textDocument/definition", posParams(uri, pos), &raw); err != nil {
		return nil, err
	}
	return decodeLocations(raw)
}

// References requests every reference to the symbol at pos, including its
// declaration.
func (c *Client) References(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.Location, error) {
	var locs []protocol.Location
	err := c.Call(ctx, "textDocument/references", map[string]interface{}{
		"textDocument": protocol.TextDocumentIdentifier{URI: uri},
		"position":     pos,
		"context":      map[string]interface{}{"includeDeclaration": true},
	}, &locs)
	return locs, err
}

// HoverInfo requests hover documentation at pos. Returns nil, nil if the
// server has nothing to show.
func (c *Client) HoverInfo(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) (*protocol.Hover, error) {
	var raw json.RawMessage
	if err := c.Call(ctx, "textDocument/hover", posParams(uri, pos), &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var hover protocol.Hover
	if err := json.Unmarshal(raw, &hover); err != nil {
		return nil, err
	}
	return &hover, nil
}

// Rename requests a workspace-wide rename of the symbol at pos to newName.
func (c *Client) Rename(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position, newName string) (*protocol.WorkspaceEdit, error) {
	var edit protocol.WorkspaceEdit
	err := c.Call(ctx, "textDocument/rename", map[string]interface{}{
		"textDocument": protocol.TextDocumentIdentifier{URI: uri},
		"position":     pos,
		"newName":      newName,
	}, &edit)
	if err != nil {
		return nil, err
	}
	return &edit, nil
}

// CodeAction requests the code actions available over rng.
func (c *Client) CodeAction(ctx context.Context, uri protocol.DocumentURI, rng protocol.Range, diagnostics []protocol.Diagnostic) ([]protocol.CodeAction, error) {
	var actions []protocol.CodeAction
	err := c.Call(ctx, "textDocument/codeAction", map[string]interface{}{
		"textDocument": protocol.TextDocumentIdentifier{URI: uri},
		"range":        rng,
		"context":      map[string]interface{}{"diagnostics": diagnostics},
	}, &actions)
	return actions, err
}

// Initialize performs the initialize/initialized handshake and returns the
// server's advertised capabilities as raw JSON; the supervisor picks out
// the handful of fields it negotiates on (sync kind, position encoding,
// per-feature booleans) rather than decoding into go-lsp's full
// ServerCapabilities, whose optional-field shape varies enough across
// server implementations that a raw map is the more resilient contract.
func (c *Client) Initialize(ctx context.Context, rootURI protocol.DocumentURI) (json.RawMessage, error) {
	params := map[string]interface{}{
		"processId": os.Getpid(),
		"rootUri":   rootURI,
		"capabilities": map[string]interface{}{
			"textDocument": map[string]interface{}{
				"completion":         map[string]interface{}{"completionItem": map[string]interface{}{"snippetSupport": true}},
				"hover":              map[string]interface{}{},
				"definition":         map[string]interface{}{},
				"references":         map[string]interface{}{},
				"rename":             map[string]interface{}{},
				"codeAction":         map[string]interface{}{},
				"publishDiagnostics": map[string]interface{}{},
			},
			"general": map[string]interface{}{
				"positionEncodings": []string{"utf-16", "utf-8"},
			},
		},
	}
	var result struct {
		Capabilities json.RawMessage `json:"capabilities"`
	}
	if err := c.Call(ctx, "initialize", params, &result); err != nil {
		return nil, err
	}
	if err := c.Notify(ctx, "initialized", struct{}{}); err != nil {
		return nil, err
	}
	return result.Capabilities, nil
}

// Close shuts down the LSP server and its connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	connErr := c.conn.Close()
	if c.cmd != nil {
		_ = c.cmd.Wait()
	}
	return connErr
}

func decodeLocations(raw json.RawMessage) ([]protocol.Location, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var locations []protocol.Location
	if err := json.Unmarshal(raw, &locations); err == nil && len(locations) > 0 {
		return locations, nil
	}
	var single protocol.Location
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []protocol.Location{single}, nil
}
