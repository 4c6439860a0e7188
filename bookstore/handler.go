package bookstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
)

// Realm is sent in the WWW-Authenticate header of 401 responses.
const Realm = "bookstore"

const usersPerPage = 6

// DefaultBooks is the catalogue a new handler starts with.
var DefaultBooks = []Book{
	{ID: 1, Title: "A Family History", Author: "Vivian Gornick"},
}

var accounts = map[string]account{
	"admin": {password: "password", role: roleAdmin},
	"user":  {password: "password", role: roleReader},
}

type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

var users = []User{
	{1, "george.bluth@example.com", "George", "Bluth"},
	{2, "janet.weaver@example.com", "Janet", "Weaver"},
	{3, "emma.wong@example.com", "Emma", "Wong"},
	{4, "eve.holt@example.com", "Eve", "Holt"},
	{5, "charles.morris@example.com", "Charles", "Morris"},
	{6, "tracey.ramos@example.com", "Tracey", "Ramos"},
	{7, "michael.lawson@example.com", "Michael", "Lawson"},
	{8, "lindsay.ferguson@example.com", "Lindsay", "Ferguson"},
	{9, "tobias.funke@example.com", "Tobias", "Funke"},
	{10, "byron.fields@example.com", "Byron", "Fields"},
	{11, "george.edwards@example.com", "George", "Edwards"},
	{12, "rachel.howell@example.com", "Rachel", "Howell"},
}

type handler struct {
	store   *memoryStore
	loggers ldlog.Loggers
}

// NewHandler returns the bookstore API:
//
//     GET /api/users?page=N    public, paged user list
//     GET /api/books           any account
//     GET /api/books/{id}      any account
//     PUT /api/books/{id}      admin only; body must have an id and string title and author
//
// Accounts are admin:password and user:password, using HTTP Basic authentication.
func NewHandler(books []Book, loggers ldlog.Loggers) http.Handler {
	h := &handler{store: newMemoryStore(books), loggers: loggers}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(h.requestLog)
	r.Get("/api/users", h.listUsers)
	r.Route("/api/books", func(r chi.Router) {
		r.Use(h.requireAccount)
		r.Get("/", h.listBooks)
		r.Get("/{id}", h.getBook)
		r.With(h.requireAdmin).Put("/{id}", h.updateBook)
	})
	return r
}

func (h *handler) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.loggers.Debugf("%s %s -> %d", r.Method, r.URL, ww.Status())
	})
}

type accountKey struct{}

func withAccount(ctx context.Context, acct account) context.Context {
	return context.WithValue(ctx, accountKey{}, acct)
}

func accountFrom(ctx context.Context) (account, bool) {
	acct, ok := ctx.Value(accountKey{}).(account)
	return acct, ok
}

func (h *handler) requireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, password, ok := r.BasicAuth()
		acct, found := accounts[name]
		if !ok || !found || acct.password != password {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm="%s"`, Realm))
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(withAccount(r.Context(), acct)))
	})
}

func (h *handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if acct, ok := accountFrom(r.Context()); !ok || acct.role != roleAdmin {
			writeError(w, http.StatusForbidden, "only administrators can modify books")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}
	start := (page - 1) * usersPerPage
	end := start + usersPerPage
	if start > len(users) {
		start = len(users)
	}
	if end > len(users) {
		end = len(users)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":        page,
		"per_page":    usersPerPage,
		"total":       len(users),
		"total_pages": (len(users) + usersPerPage - 1) / usersPerPage,
		"data":        users[start:end],
	})
}

func (h *handler) listBooks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.list())
}

func (h *handler) getBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	book, found := h.store.get(id)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no book with id %d", id))
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *handler) updateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	if _, found := h.store.get(id); !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no book with id %d", id))
		return
	}
	book, problem := decodeBook(r)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}
	if book.ID != id {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("id %d in body does not match id %d in path", book.ID, id))
		return
	}
	if !h.store.replace(book) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no book with id %d", id))
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// decodeBook reads a complete book from the request body. Fields are checked one at a time so
// that a wrongly typed field gets a specific message.
func decodeBook(r *http.Request) (Book, string) {
	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil || fields == nil {
		return Book{}, "request body must be a JSON object"
	}
	var book Book
	switch id := fields["id"].(type) {
	case nil:
		return Book{}, "id is required"
	case float64:
		if id != float64(int(id)) {
			return Book{}, "id must be an integer"
		}
		book.ID = int(id)
	default:
		return Book{}, "id must be an integer"
	}
	for _, f := range []struct {
		name string
		dest *string
	}{{"title", &book.Title}, {"author", &book.Author}} {
		value, present := fields[f.name]
		if !present {
			return Book{}, f.name + " is required"
		}
		s, ok := value.(string)
		if !ok {
			return Book{}, f.name + " must be a string"
		}
		*f.dest = s
	}
	return book, ""
}

func bookID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "book id must be an integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
