package log

import (
	"io"
	"sync"
)

// Handler writes a Record somewhere.
type Handler interface {
	Log(r *Record) error
}

// FuncHandler turns a plain function into a Handler.
type FuncHandler func(r *Record) error

func (h FuncHandler) Log(r *Record) error { return h(r) }

// swapHandler wraps another Handler behind a mutex so it can be swapped at
// runtime by Logger.SetHandler without a data race, matching the
// teacher's swapHandler.
type swapHandler struct {
	mu sync.Mutex
	h  Handler
}

func (s *swapHandler) Log(r *Record) error {
	s.mu.Lock()
	h := s.h
	s.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.Log(r)
}

func (s *swapHandler) Swap(h Handler) {
	s.mu.Lock()
	s.h = h
	s.mu.Unlock()
}

func (s *swapHandler) Get() Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h
}

// LvlFilterHandler wraps h so that only records at or above maxLvl (i.e.
// more severe, since Lvl counts up from Crit) are forwarded.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		if r.Lvl > maxLvl {
			return nil
		}
		return h.Log(r)
	})
}

// MultiHandler fans a record out to every handler in hs, returning the
// first error encountered (after attempting all of them).
func MultiHandler(hs ...Handler) Handler {
	return FuncHandler(func(r *Record) error {
		var firstErr error
		for _, h := range hs {
			if err := h.Log(r); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})
}

// StreamHandler writes each record to w using format.
func StreamHandler(w io.Writer, format Format) Handler {
	var mu sync.Mutex
	return FuncHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := w.Write(format(r))
		return err
	})
}

// DiscardHandler drops every record; useful as a test default.
func DiscardHandler() Handler {
	return FuncHandler(func(r *Record) error { return nil })
}
