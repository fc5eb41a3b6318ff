package lsp

import "encoding/json"

// Capabilities is the handful of a language server's advertised
// capabilities the supervisor actually negotiates on. go-lsp's
// ServerCapabilities struct exists but its optional-field shape varies
// enough across real servers (gopls, typescript-language-server, pyright
// all diverge on which fields they bother to send) that decoding into it
// directly is brittle; picking fields out of the raw JSON by hand is the
// more resilient contract for this editor-specific subset.
type Capabilities struct {
	// TextDocumentSyncKind mirrors the LSP TextDocumentSyncKind enum:
	// 0 = none, 1 = full, 2 = incremental.
	TextDocumentSyncKind int
	PositionEncoding     string // "utf-8", "utf-16", or "utf-32"
	HoverProvider        bool
	DefinitionProvider   bool
	ReferencesProvider   bool
	RenameProvider       bool
	CodeActionProvider   bool
	CompletionProvider   bool
}

// ParseCapabilities decodes a server's initialize response capabilities
// object into the subset zcode acts on, defaulting sync to full-document
// and encoding to utf-16 (the LSP spec's own defaults) when a server
// omits them.
func ParseCapabilities(raw json.RawMessage) Capabilities {
	caps := Capabilities{TextDocumentSyncKind: 1, PositionEncoding: "utf-16"}
	if len(raw) == 0 {
		return caps
	}

	var doc struct {
		TextDocumentSync    json.RawMessage `json:"textDocumentSync"`
		HoverProvider       json.RawMessage `json:"hoverProvider"`
		DefinitionProvider  json.RawMessage `json:"definitionProvider"`
		ReferencesProvider  json.RawMessage `json:"referencesProvider"`
		RenameProvider      json.RawMessage `json:"renameProvider"`
		CodeActionProvider  json.RawMessage `json:"codeActionProvider"`
		CompletionProvider  json.RawMessage `json:"completionProvider"`
		PositionEncoding    string          `json:"positionEncoding"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return caps
	}

	if doc.PositionEncoding != "" {
		caps.PositionEncoding = doc.PositionEncoding
	}
	caps.TextDocumentSyncKind = parseSyncKind(doc.TextDocumentSync)
	caps.HoverProvider = truthy(doc.HoverProvider)
	caps.DefinitionProvider = truthy(doc.DefinitionProvider)
	caps.ReferencesProvider = truthy(doc.ReferencesProvider)
	caps.RenameProvider = truthy(doc.RenameProvider)
	caps.CodeActionProvider = truthy(doc.CodeActionProvider)
	caps.CompletionProvider = truthy(doc.CompletionProvider)
	return caps
}

// parseSyncKind handles textDocumentSync being either a bare number (old
// LSP shape) or a {change: N, openClose: bool} object (current shape).
func parseSyncKind(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 1
	}
	var kind int
	if err := json.Unmarshal(raw, &kind); err == nil {
		return kind
	}
	var opts struct {
		Change int `json:"change"`
	}
	if err := json.Unmarshal(raw, &opts); err == nil {
		return opts.Change
	}
	return 1
}

// truthy reports whether a capability field is present and not literally
// `false` — LSP capability fields are either omitted, a bool, or an
// options object, and all three of "present as object", "true", count as
// supported.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	return string(raw) != "false"
}
