package main

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// Registry holds the open panel sessions. The least recently used session is
// discarded once the limit is reached.
type Registry struct {
	cache *lru.Cache[string, *Session]
}

func NewRegistry(size int) (*Registry, error) {
	cache, err := lru.NewWithEvict[string, *Session](size, func(id string, s *Session) {
		s.discard()
		log.Debug().Str("session", id).Msg("session discarded")
	})
	if err != nil {
		return nil, err
	}
	return &Registry{cache: cache}, nil
}

func (r *Registry) Put(s *Session) { r.cache.Add(s.ID, s) }

func (r *Registry) Get(id string) (*Session, bool) { return r.cache.Get(id) }

// Remove drops the session and returns it so the caller can notify the host.
func (r *Registry) Remove(id string) (*Session, bool) {
	s, ok := r.cache.Peek(id)
	if !ok {
		return nil, false
	}
	r.cache.Remove(id)
	return s, true
}

func (r *Registry) Len() int { return r.cache.Len() }

func (r *Registry) Purge() { r.cache.Purge() }
