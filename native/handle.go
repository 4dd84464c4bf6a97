/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Handle table, grounded on original_source/src/jnihandlemap.cpp's
 * JNIHandleMap (toJObject/fromJObject/release backed by a mutex-guarded
 * map), reworked from address-keyed to counter-keyed tokens since Go
 * code has no business treating a pointer as a stable integer.
 */

package native

import (
	"sync"

	"dalvik/object"
)

// HandleTable converts object references to opaque integer tokens for
// the duration of a native call, and back. It implements gc.RootProvider
// so every live handle -- local or promoted to global -- counts as a GC
// root: the collector must not reclaim an object native code still holds
// a token for.
type HandleTable struct {
	mu     sync.Mutex
	byTok  map[uint64]*object.Object
	byObj  map[*object.Object]uint64
	global map[uint64]bool
	next   uint64
}

// NewHandleTable constructs an empty table.
func NewHandleTable() *HandleTable {
	return &HandleTable{
		byTok:  make(map[uint64]*object.Object),
		byObj:  make(map[*object.Object]uint64),
		global: make(map[uint64]bool),
	}
}

// ToHandle returns the token for o, minting a new one if this is the
// first time o has crossed into native code. A nil or null reference
// converts to token 0, the native-side NULL.
func (h *HandleTable) ToHandle(o *object.Object) uint64 {
	if o == nil || o.Kind == object.KindNull {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if tok, ok := h.byObj[o]; ok {
		return tok
	}
	h.next++
	tok := h.next
	h.byTok[tok] = o
	h.byObj[o] = tok
	return tok
}

// FromHandle resolves a token back to its object, or the null singleton
// for token 0 or an unknown/already-released token.
func (h *HandleTable) FromHandle(tok uint64) *object.Object {
	if tok == 0 {
		return object.TheNull
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if o, ok := h.byTok[tok]; ok {
		return o
	}
	return object.TheNull
}

// Promote marks tok as a global reference (NewGlobalRef, §4.I): it
// survives the end-of-call release sweep and must be explicitly deleted.
func (h *HandleTable) Promote(tok uint64) {
	if tok == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.global[tok] = true
}

// Release deletes tok unconditionally (DeleteGlobalRef / explicit
// DeleteLocalRef).
func (h *HandleTable) Release(tok uint64) {
	if tok == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.release(tok)
}

func (h *HandleTable) release(tok uint64) {
	if o, ok := h.byTok[tok]; ok {
		delete(h.byObj, o)
	}
	delete(h.byTok, tok)
	delete(h.global, tok)
}

// ReleaseLocals drops every token in toks that was not promoted to
// global, run once a native call returns -- "all handles created for the
// duration of the call are released on return unless promoted".
func (h *HandleTable) ReleaseLocals(toks []uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, tok := range toks {
		if tok != 0 && !h.global[tok] {
			h.release(tok)
		}
	}
}

// Roots implements gc.RootProvider: every handle still on the table,
// local or global, is a live reference native code may use at any time.
func (h *HandleTable) Roots() []*object.Object {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*object.Object, 0, len(h.byTok))
	for _, o := range h.byTok {
		out = append(out, o)
	}
	return out
}
