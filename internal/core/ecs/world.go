package ecs

import (
	"sort"

	"go.uber.org/zap"
)

// Node is a named entity owning one ObjectRegistry of components.
type Node struct {
	ID         EntityID
	Name       string
	Components *ObjectRegistry
}

// NodeEvent reports a lifecycle change anywhere in the world. Event is set for
// component adds/removes; Destroyed is set once the node itself is gone.
type NodeEvent struct {
	Node      *Node
	Event     ObjectEvent
	Destroyed bool
}

// World is the top-level container. It owns the node ID pool, every node's
// registry, and a deferred destruction queue flushed by CleanupSystem each tick.
type World struct {
	pool         *EntityPool
	nodes        map[EntityID]*Node
	destroyQueue []EntityID
	observers    *Emitter[struct{}, NodeEvent]
	log          *zap.Logger
}

func NewWorld(log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		pool:         NewEntityPool(),
		nodes:        make(map[EntityID]*Node, 64),
		destroyQueue: make([]EntityID, 0, 16),
		observers:    NewEmitter[struct{}, NodeEvent](),
		log:          log,
	}
}

// CreateNode allocates a node with an empty registry.
func (w *World) CreateNode(name string) *Node {
	id := w.pool.Create()
	n := &Node{ID: id, Name: name}
	reg := NewObjectRegistry(id, w.log)
	reg.notify = func(ev ObjectEvent) {
		w.observers.Emit(struct{}{}, NodeEvent{Node: n, Event: ev})
	}
	n.Components = reg
	w.nodes[id] = n
	return n
}

func (w *World) Node(id EntityID) (*Node, bool) {
	n, ok := w.nodes[id]
	return n, ok
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

func (w *World) Len() int {
	return len(w.nodes)
}

// Nodes returns the live nodes ordered by slot index.
func (w *World) Nodes() []*Node {
	out := make([]*Node, 0, len(w.nodes))
	for _, n := range w.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Index() < out[j].ID.Index() })
	return out
}

// Observe subscribes fn to every component add/remove on every node, and to
// node destruction. The returned func unsubscribes.
func (w *World) Observe(fn func(NodeEvent)) (off func()) {
	token := new(byte)
	w.observers.On(struct{}{}, token, fn)
	return func() { w.observers.Off(struct{}{}, token) }
}

// MarkForDestruction queues a node for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue detaches every component of each queued node, firing the
// usual remove events, then recycles the node's ID. Nodes marked while the
// queue is being flushed are destroyed in the same call.
func (w *World) FlushDestroyQueue() {
	// Indexed loop: remove listeners may queue more nodes while we flush.
	for i := 0; i < len(w.destroyQueue); i++ {
		id := w.destroyQueue[i]
		n, ok := w.nodes[id]
		if !ok {
			continue // queued twice or already gone
		}
		n.Components.Clear()
		delete(w.nodes, id)
		w.pool.Destroy(id)
		w.observers.Emit(struct{}{}, NodeEvent{Node: n, Destroyed: true})
		w.log.Debug("node destroyed", zap.Stringer("node", id), zap.String("name", n.Name))
	}
	w.destroyQueue = w.destroyQueue[:0]
}
