// Package middleware holds the ordered pre-build and post-build hook lists of a site.
package middleware

import "sync"

// Registry is an append-only pair of hook lists.
type Registry[H any] struct {
	mu   sync.RWMutex
	pre  []H
	post []H
}

// New returns an empty registry.
func New[H any]() *Registry[H] {
	return &Registry[H]{}
}

// RegisterPre appends a hook run before a build.
func (r *Registry[H]) RegisterPre(hook H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pre = append(r.pre, hook)
}

// RegisterPost appends a hook run after a build.
func (r *Registry[H]) RegisterPost(hook H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.post = append(r.post, hook)
}

// Pre returns the pre-build hooks in registration order.
func (r *Registry[H]) Pre() []H {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]H(nil), r.pre...)
}

// Post returns the post-build hooks in registration order.
func (r *Registry[H]) Post() []H {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]H(nil), r.post...)
}

// Len returns the number of pre and post hooks.
func (r *Registry[H]) Len() (pre, post int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pre), len(r.post)
}
