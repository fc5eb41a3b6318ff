package config

// Action names a reducer-level command a key chord maps to (§4.8). The
// event loop looks up the pressed chord's string form in the active
// Config's Keybindings map, falls back to DefaultKeymap on a miss, and
// dispatches the resulting Action to the reducer; unrecognized chords
// fall through to plain-text insertion.
type Action string

const (
	ActionSave              Action = "save"
	ActionSaveAs            Action = "saveAs"
	ActionQuit              Action = "quit"
	ActionUndo              Action = "undo"
	ActionRedo              Action = "redo"
	ActionFind              Action = "find"
	ActionReplace           Action = "replace"
	ActionGoToLine          Action = "goToLine"
	ActionNewTab            Action = "newTab"
	ActionCloseTab          Action = "closeTab"
	ActionNextTab           Action = "nextTab"
	ActionPrevTab           Action = "prevTab"
	ActionMoveUp            Action = "moveUp"
	ActionMoveDown          Action = "moveDown"
	ActionMoveLeft          Action = "moveLeft"
	ActionMoveRight         Action = "moveRight"
	ActionMoveWordLeft      Action = "moveWordLeft"
	ActionMoveWordRight     Action = "moveWordRight"
	ActionMoveLineStart     Action = "moveLineStart"
	ActionMoveLineEnd       Action = "moveLineEnd"
	ActionSelectUp          Action = "selectUp"
	ActionSelectDown        Action = "selectDown"
	ActionSelectLeft        Action = "selectLeft"
	ActionSelectRight       Action = "selectRight"
	ActionSelectAll         Action = "selectAll"
	ActionDeleteLine        Action = "deleteLine"
	ActionDuplicateLine     Action = "duplicateLine"
	ActionMoveLineUp        Action = "moveLineUp"
	ActionMoveLineDown      Action = "moveLineDown"
	ActionToggleFold        Action = "toggleFold"
	ActionAddCursorNextOcc  Action = "addCursorNextOccurrence"
	ActionAddCursorUp       Action = "addCursorUp"
	ActionAddCursorDown     Action = "addCursorDown"
	ActionEscapeMultiCursor Action = "escapeMultiCursor"
	ActionGoToDefinition    Action = "goToDefinition"
	ActionFindReferences    Action = "findReferences"
	ActionHover             Action = "hover"
	ActionRename            Action = "rename"
	ActionCodeAction        Action = "codeAction"
	ActionCompletion        Action = "completion"
	ActionMatchBracket      Action = "matchBracket"
	ActionBlockSelectUp     Action = "blockSelectUp"
	ActionBlockSelectDown   Action = "blockSelectDown"
	ActionBlockSelectLeft   Action = "blockSelectLeft"
	ActionBlockSelectRight  Action = "blockSelectRight"
	ActionSubmitPrompt      Action = "submitPrompt"
)

// DefaultKeymap is the built-in chord-to-action table. Chord strings use
// tcell's own modifier naming ("Ctrl+", "Alt+", "Shift+") followed by a
// key name, so they can be built directly from a tcell.EventKey without
// an intermediate representation.
func DefaultKeymap() map[string]string {
	return map[string]string{
		"Ctrl+S":       string(ActionSave),
		"Ctrl+Shift+S": string(ActionSaveAs),
		"Ctrl+Q":       string(ActionQuit),
		"Ctrl+Z":       string(ActionUndo),
		"Ctrl+Y":       string(ActionRedo),
		"Ctrl+Shift+Z": string(ActionRedo),
		"Ctrl+F":       string(ActionFind),
		"Ctrl+H":       string(ActionReplace),
		"Ctrl+G":       string(ActionGoToLine),
		"Ctrl+T":       string(ActionNewTab),
		"Ctrl+W":       string(ActionCloseTab),
		"Ctrl+Tab":     string(ActionNextTab),
		"Ctrl+Shift+Tab": string(ActionPrevTab),
		"Up":           string(ActionMoveUp),
		"Down":         string(ActionMoveDown),
		"Left":         string(ActionMoveLeft),
		"Right":        string(ActionMoveRight),
		"Ctrl+Left":    string(ActionMoveWordLeft),
		"Ctrl+Right":   string(ActionMoveWordRight),
		"Home":         string(ActionMoveLineStart),
		"End":          string(ActionMoveLineEnd),
		"Shift+Up":     string(ActionSelectUp),
		"Shift+Down":   string(ActionSelectDown),
		"Shift+Left":   string(ActionSelectLeft),
		"Shift+Right":  string(ActionSelectRight),
		"Ctrl+A":       string(ActionSelectAll),
		"Ctrl+Shift+K": string(ActionDeleteLine),
		"Ctrl+Shift+D": string(ActionDuplicateLine),
		"Alt+Up":       string(ActionMoveLineUp),
		"Alt+Down":     string(ActionMoveLineDown),
		"Ctrl+Shift+[": string(ActionToggleFold),
		"Ctrl+D":       string(ActionAddCursorNextOcc),
		"Ctrl+Alt+Up":   string(ActionAddCursorUp),
		"Ctrl+Alt+Down": string(ActionAddCursorDown),
		"Escape":       string(ActionEscapeMultiCursor),
		"F12":          string(ActionGoToDefinition),
		"Shift+F12":    string(ActionFindReferences),
		"Ctrl+K Ctrl+I": string(ActionHover),
		"F2":           string(ActionRename),
		"Ctrl+.":       string(ActionCodeAction),
		"Ctrl+Space":   string(ActionCompletion),
		"Ctrl+]":            string(ActionMatchBracket),
		"Alt+Shift+Up":      string(ActionBlockSelectUp),
		"Alt+Shift+Down":    string(ActionBlockSelectDown),
		"Alt+Shift+Left":    string(ActionBlockSelectLeft),
		"Alt+Shift+Right":   string(ActionBlockSelectRight),
		"Enter":             string(ActionSubmitPrompt),
	}
}

// Resolve looks up chord in cfg's keybindings, falling back to the
// built-in default if the user file doesn't mention it. Returns ("", false)
// for an unbound chord.
func Resolve(keybindings map[string]string, chord string) (Action, bool) {
	if act, ok := keybindings[chord]; ok {
		return Action(act), true
	}
	if act, ok := DefaultKeymap()[chord]; ok {
		return Action(act), true
	}
	return "", false
}
