package bookstore

import (
	"sort"
	"sync"
)

type Book struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

type role int

const (
	roleReader role = iota + 1
	roleAdmin
)

type account struct {
	password string
	role     role
}

// memoryStore holds the books. It is safe for concurrent use.
type memoryStore struct {
	books map[int]Book
	lock  sync.RWMutex
}

func newMemoryStore(books []Book) *memoryStore {
	s := &memoryStore{books: make(map[int]Book, len(books))}
	for _, b := range books {
		s.books[b.ID] = b
	}
	return s
}

func (s *memoryStore) get(id int) (Book, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	b, ok := s.books[id]
	return b, ok
}

func (s *memoryStore) list() []Book {
	s.lock.RLock()
	ret := make([]Book, 0, len(s.books))
	for _, b := range s.books {
		ret = append(ret, b)
	}
	s.lock.RUnlock()
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

// replace updates an existing book. It returns false if there is no book with that ID.
func (s *memoryStore) replace(b Book) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.books[b.ID]; !ok {
		return false
	}
	s.books[b.ID] = b
	return true
}
