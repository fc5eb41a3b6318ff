package editor

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/zcode-editor/zcode/rope"
	"github.com/zcode-editor/zcode/zerr"
)

// DefaultCheckpointInterval is the recommended K from §4.4: a rope
// snapshot is retained every K ops on the active path.
const DefaultCheckpointInterval = 100

// OpID addresses one history entry. It is lexicographically ordered by
// creation time; a ulid.MonotonicEntropy source resolves same-millisecond
// collisions in insertion order, matching the spec's
// (timestamp-ms, counter) tuple without hand-rolling the counter.
type OpID = ulid.ULID

// RootOpID is the synthetic id denoting the initial snapshot.
var RootOpID = ulid.ULID{}

// Primitive is one self-invertible text substitution: replace
// [Offset, Offset+len(OldText)) with NewText.
type Primitive struct {
	Offset  int
	OldText string
	NewText string
}

// Op is Insert, Delete, or a composite of several primitives (used by the
// edit-application engine for a single workspace-edit buffer portion).
// Primitives are stored in application order — for a single-buffer
// workspace edit that order is descending by Offset (§4.5.2), which lets
// each primitive be applied without adjusting for the ones after it.
type Op struct {
	Primitives []Primitive
}

// InsertOp builds a single-primitive Insert.
func InsertOp(offset int, text string) Op {
	return Op{Primitives: []Primitive{{Offset: offset, NewText: text}}}
}

// DeleteOp builds a single-primitive Delete; replacedText is the text
// being removed, recorded so the op is self-invertible.
func DeleteOp(offset int, replacedText string) Op {
	return Op{Primitives: []Primitive{{Offset: offset, OldText: replacedText}}}
}

func (op Op) inverse() Op {
	n := len(op.Primitives)
	inv := make([]Primitive, n)
	for i, p := range op.Primitives {
		inv[n-1-i] = Primitive{Offset: p.Offset, OldText: p.NewText, NewText: p.OldText}
	}
	return Op{Primitives: inv}
}

func applyForwardOp(r rope.Rope, op Op) (rope.Rope, error) {
	var err error
	for _, p := range op.Primitives {
		r, err = r.Delete(p.Offset, p.Offset+len(p.OldText))
		if err != nil {
			return r, err
		}
		r, err = r.Insert(p.Offset, p.NewText)
		if err != nil {
			return r, err
		}
	}
	return r, nil
}

func applyInverseOp(r rope.Rope, op Op) (rope.Rope, error) {
	return applyForwardOp(r, op.inverse())
}

type historyNode struct {
	ID                  OpID
	Op                  Op
	Parent              OpID
	Children            []OpID
	CursorBefore        Selection
	CursorAfter         Selection
	distSinceCheckpoint int
}

// HistoryDAG is an append-only DAG of edit operations addressed by stable
// identifiers, supporting branching undo/redo (§4.4). Undo never deletes
// history: a redo that chooses a different child creates a new branch and
// the old branch stays reachable via Checkout.
type HistoryDAG struct {
	mu          sync.Mutex
	nodes       map[OpID]*historyNode
	checkpoints map[OpID]rope.Rope
	order       []OpID // reflog: insertion order
	head        OpID
	root        OpID
	k           int
	rope        rope.Rope // materialized rope at head, kept incrementally in sync
	entropy     *ulid.MonotonicEntropy
}

// NewHistoryDAG creates a DAG rooted at baseRope with the given checkpoint
// interval (DefaultCheckpointInterval if k <= 0).
func NewHistoryDAG(baseRope rope.Rope, k int) *HistoryDAG {
	if k <= 0 {
		k = DefaultCheckpointInterval
	}
	d := &HistoryDAG{
		nodes:       make(map[OpID]*historyNode),
		checkpoints: make(map[OpID]rope.Rope),
		head:        RootOpID,
		root:        RootOpID,
		k:           k,
		rope:        baseRope,
		entropy:     ulid.Monotonic(rand.Reader, 0),
	}
	d.nodes[RootOpID] = &historyNode{ID: RootOpID}
	d.checkpoints[RootOpID] = baseRope
	return d
}

func (d *HistoryDAG) newID() OpID {
	return ulid.MustNew(ulid.Timestamp(time.Now()), d.entropy)
}

// Apply assigns a fresh id, records parent=HEAD, and advances HEAD.
// currentRope must be the rope that results from applying op to the rope
// at the prior HEAD; the DAG does not perform the mutation itself, and it
// does not check op's offsets. Fails only if op has no primitives (or the
// HEAD node is missing), in which case HEAD is unchanged.
func (d *HistoryDAG) Apply(op Op, cursorBefore, cursorAfter Selection, currentRope rope.Rope) (OpID, error) {
	if len(op.Primitives) == 0 {
		return OpID{}, zerr.New(zerr.InvalidBoundary, "empty op")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	parent, ok := d.nodes[d.head]
	if !ok {
		return OpID{}, zerr.New(zerr.InvalidBoundary, "corrupt history: missing HEAD node")
	}

	id := d.newID()
	node := &historyNode{
		ID:                  id,
		Op:                  op,
		Parent:              d.head,
		CursorBefore:        cursorBefore,
		CursorAfter:         cursorAfter,
		distSinceCheckpoint: parent.distSinceCheckpoint + 1,
	}
	if node.distSinceCheckpoint >= d.k {
		d.checkpoints[id] = currentRope
		node.distSinceCheckpoint = 0
	}

	d.nodes[id] = node
	parent.Children = append(parent.Children, id)
	d.order = append(d.order, id)
	d.head = id
	d.rope = currentRope
	return id, nil
}

// CanUndo reports whether HEAD has a parent.
func (d *HistoryDAG) CanUndo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.head != d.root
}

// CanRedo reports whether HEAD has any children.
func (d *HistoryDAG) CanRedo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	node := d.nodes[d.head]
	return node != nil && len(node.Children) > 0
}

// Undo applies the inverse of HEAD's op, moves HEAD to its parent, and
// returns the resulting rope and the cursor recorded before the undone op.
// Returns ok=false if HEAD is already root.
func (d *HistoryDAG) Undo() (r rope.Rope, cursor Selection, ok bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.head == d.root {
		return rope.Rope{}, Selection{}, false, nil
	}
	node := d.nodes[d.head]
	newRope, err := applyInverseOp(d.rope, node.Op)
	if err != nil {
		return rope.Rope{}, Selection{}, false, err
	}
	d.rope = newRope
	d.head = node.Parent
	return newRope, node.CursorBefore, true, nil
}

// Redo re-applies the most recently created child of HEAD (if any) and
// advances HEAD to it.
func (d *HistoryDAG) Redo() (r rope.Rope, cursor Selection, ok bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	node := d.nodes[d.head]
	if node == nil || len(node.Children) == 0 {
		return rope.Rope{}, Selection{}, false, nil
	}
	childID := node.Children[len(node.Children)-1]
	child := d.nodes[childID]
	newRope, err := applyForwardOp(d.rope, child.Op)
	if err != nil {
		return rope.Rope{}, Selection{}, false, err
	}
	d.rope = newRope
	d.head = childID
	return newRope, child.CursorAfter, true, nil
}

// Checkout moves HEAD to id, rebuilding the rope from the nearest ancestor
// checkpoint and forward-applying the remaining ops on that path. This
// bounds replay to at most K ops regardless of where HEAD currently sits,
// which is why every checkout goes through a checkpoint rather than
// diffing against the current HEAD via a lowest-common-ancestor walk (see
// DESIGN.md).
func (d *HistoryDAG) Checkout(id OpID) (rope.Rope, Selection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	target, ok := d.nodes[id]
	if !ok {
		return rope.Rope{}, Selection{}, zerr.New(zerr.InvalidBoundary, "unknown op id")
	}

	var forwardPath []*historyNode
	cur := target
	for {
		if snap, ok := d.checkpoints[cur.ID]; ok {
			result := snap
			var err error
			for i := len(forwardPath) - 1; i >= 0; i-- {
				result, err = applyForwardOp(result, forwardPath[i].Op)
				if err != nil {
					return rope.Rope{}, Selection{}, err
				}
			}
			d.rope = result
			d.head = id
			cursor := target.CursorAfter
			if id == d.root {
				cursor = Selection{}
			}
			return result, cursor, nil
		}
		forwardPath = append(forwardPath, cur)
		parent, ok := d.nodes[cur.Parent]
		if !ok {
			return rope.Rope{}, Selection{}, zerr.New(zerr.InvalidBoundary, "no checkpoint reachable from op id")
		}
		cur = parent
	}
}

// Head returns the current HEAD id.
func (d *HistoryDAG) Head() OpID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.head
}

// Rope returns the rope materialized at HEAD.
func (d *HistoryDAG) Rope() rope.Rope {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rope
}

// Log returns op ids from HEAD back to root, HEAD first.
func (d *HistoryDAG) Log() []OpID {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []OpID
	cur := d.head
	for {
		out = append(out, cur)
		if cur == d.root {
			break
		}
		node := d.nodes[cur]
		if node == nil {
			break
		}
		cur = node.Parent
	}
	return out
}

// Reflog returns every op id in the order it was applied.
func (d *HistoryDAG) Reflog() []OpID {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]OpID, len(d.order))
	copy(out, d.order)
	return out
}

// BranchPoints returns every op id with more than one child.
func (d *HistoryDAG) BranchPoints() []OpID {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []OpID
	for id, n := range d.nodes {
		if len(n.Children) > 1 {
			out = append(out, id)
		}
	}
	return out
}
