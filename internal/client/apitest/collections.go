package apitest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/prodauth/internal/client/models"
	"github.com/gorilla/mux"
)

// memStore keeps one administrative collection in insertion order.
type memStore[T models.Record, P any] struct {
	mu     sync.Mutex
	nextID int64
	order  []int64
	items  map[int64]T
	build  func(id int64, in P) T
}

func newMemStore[T models.Record, P any](build func(id int64, in P) T) *memStore[T, P] {
	return &memStore[T, P]{items: make(map[int64]T), build: build}
}

func (m *memStore[T, P]) list() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return out
}

func (m *memStore[T, P]) get(id int64) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[id]
	return v, ok
}

func (m *memStore[T, P]) create(in P) T {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.mu.Unlock()

	// build may consult other stores, so it runs unlocked.
	v := m.build(id, in)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = v
	m.order = append(m.order, id)
	return v
}

func (m *memStore[T, P]) update(id int64, in P) (T, bool) {
	m.mu.Lock()
	_, ok := m.items[id]
	m.mu.Unlock()
	if !ok {
		var zero T
		return zero, false
	}

	v := m.build(id, in)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = v
	return v, true
}

func (m *memStore[T, P]) delete(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return false
	}
	delete(m.items, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// mountCollection registers GET/POST /{name} and PUT/DELETE /{name}/{id}.
// All of them need a valid bearer token.
func mountCollection[T models.Record, P any](s *Server, r *mux.Router, name string, store *memStore[T, P]) {
	notFound := name + " record not found"

	r.HandleFunc("/"+name, s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.list())
	})).Methods(http.MethodGet)

	r.HandleFunc("/"+name, s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		var in P
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
			return
		}
		writeJSON(w, http.StatusCreated, store.create(in))
	})).Methods(http.MethodPost)

	r.HandleFunc("/"+name+"/{id:[0-9]+}", s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		var in P
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
			return
		}
		v, ok := store.update(id, in)
		if !ok {
			writeDetail(w, http.StatusNotFound, notFound)
			return
		}
		writeJSON(w, http.StatusOK, v)
	})).Methods(http.MethodPut)

	r.HandleFunc("/"+name+"/{id:[0-9]+}", s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if !store.delete(id) {
			writeDetail(w, http.StatusNotFound, notFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})).Methods(http.MethodDelete)
}
