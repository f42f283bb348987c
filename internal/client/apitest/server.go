// Package apitest runs an in-process fake of the product-authentication
// backend on an httptest server. It implements the endpoints the client uses
// with in-memory state, real JWT bearer tokens and bcrypt-hashed passwords,
// and lets tests inject failures or hold requests in flight.
package apitest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/prodauth/internal/client/models"
	"github.com/dmitrijs2005/prodauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

// RecordedRequest is what the server saw of one incoming request.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type account struct {
	user         models.User
	passwordHash []byte
}

type failure struct {
	status int
	detail string
}

type claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Server is the fake backend. The zero value is not usable; call NewServer.
type Server struct {
	*httptest.Server

	secret   []byte
	tokenTTL time.Duration

	mu       sync.Mutex
	nextID   int64
	accounts map[string]*account
	revoked  map[string]struct{}
	serials  map[string]models.VerificationResult
	stats    models.ScanStats
	failures map[string][]failure
	blocks   map[string]chan struct{}
	requests []RecordedRequest

	customers    *memStore[models.Customer, models.CustomerInput]
	products     *memStore[models.Product, models.ProductInput]
	certificates *memStore[models.Certificate, models.CertificateInput]
}

// NewServer starts a fake backend. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		secret:   []byte(uuid.NewString()),
		tokenTTL: time.Hour,
		accounts: make(map[string]*account),
		revoked:  make(map[string]struct{}),
		serials:  make(map[string]models.VerificationResult),
		failures: make(map[string][]failure),
		blocks:   make(map[string]chan struct{}),
	}

	s.customers = newMemStore(func(id int64, in models.CustomerInput) models.Customer {
		return models.Customer{ID: id, Name: in.Name, Email: in.Email, Phone: in.Phone, Company: in.Company, CreatedAt: time.Now().UTC()}
	})
	s.products = newMemStore(func(id int64, in models.ProductInput) models.Product {
		return models.Product{ID: id, Name: in.Name, SKU: in.SKU, Description: in.Description, CustomerID: in.CustomerID, CreatedAt: time.Now().UTC()}
	})
	s.certificates = newMemStore(s.issueCertificate)

	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.UseEncodedPath()
	r.Use(s.recordAndInject)

	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.requireAuth(s.handleLogout)).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", s.requireAuth(s.handleMe)).Methods(http.MethodGet)
	r.HandleFunc("/auth/refresh", s.requireAuth(s.handleRefresh)).Methods(http.MethodPost)

	r.HandleFunc("/verify/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/verify/{serial}", s.handleVerify).Methods(http.MethodGet)

	r.HandleFunc("/certificates/{id:[0-9]+}/pdf", s.requireAuth(s.handlePDF)).Methods(http.MethodGet)

	mountCollection(s, r, "customers", s.customers)
	mountCollection(s, r, "products", s.products)
	mountCollection(s, r, "certificates", s.certificates)

	return r
}

// AddUser registers an account and returns its public record.
func (s *Server) AddUser(username, password, role string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u := models.User{ID: s.nextID, Username: username, Role: role}
	s.accounts[username] = &account{user: u, passwordHash: hash}
	return u
}

// AddSerial makes serial verifiable with the given outcome.
func (s *Server) AddSerial(serial string, valid bool, cert *models.Certificate, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serials[serial] = models.VerificationResult{SerialNumber: serial, IsValid: valid, Certificate: cert, Error: errMsg}
}

// SetStats replaces the aggregate served by /verify/stats.
func (s *Server) SetStats(stats models.ScanStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
}

// IssueToken mints a token for an existing user with the given lifetime.
// A negative ttl yields an already expired token.
func (s *Server) IssueToken(username string, ttl time.Duration) string {
	s.mu.Lock()
	acc, ok := s.accounts[username]
	s.mu.Unlock()
	if !ok {
		panic("apitest: unknown user " + username)
	}
	tok, err := s.signToken(acc.user, ttl)
	if err != nil {
		panic(err)
	}
	return tok
}

// FailNext makes the next request matching method and escaped path answer
// with status and {"detail": detail}. Calls queue up.
func (s *Server) FailNext(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, detail: detail})
}

// Block holds requests matching method and escaped path until the returned
// release func is called (or the request is cancelled).
func (s *Server) Block(method, path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.blocks[method+" "+path] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.blocks, method+" "+path)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Customers, Products and Certificates expose the server-side state.
func (s *Server) Customers() []models.Customer       { return s.customers.list() }
func (s *Server) Products() []models.Product         { return s.products.list() }
func (s *Server) Certificates() []models.Certificate { return s.certificates.list() }

func (s *Server) recordAndInject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.EscapedPath()

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.EscapedPath(),
			Authorization: r.Header.Get(common.AuthorizationHeader),
			RequestID:     r.Header.Get(common.RequestIDHeader),
		})
		var injected *failure
		if queue := s.failures[key]; len(queue) > 0 {
			injected = &queue[0]
			s.failures[key] = queue[1:]
		}
		block := s.blocks[key]
		s.mu.Unlock()

		if block != nil {
			select {
			case <-block:
			case <-r.Context().Done():
				return
			}
		}

		if injected != nil {
			writeDetail(w, injected.status, injected.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func (s *Server) requireAuth(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeader), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		c, err := s.parseToken(raw)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		h(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, c)))
	}
}

func claimsFrom(r *http.Request) *claims {
	c, _ := r.Context().Value(ctxKey{}).(*claims)
	return c
}

func (s *Server) signToken(u models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: u.Username,
		Role:     u.Role,
	})
	return tok.SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (*claims, error) {
	c := &claims{}
	tok, err := jwt.ParseWithClaims(raw, c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	s.mu.Lock()
	_, revoked := s.revoked[c.ID]
	s.mu.Unlock()
	if revoked {
		return nil, errors.New("token revoked")
	}
	return c, nil
}

func (s *Server) revoke(c *claims) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[c.ID] = struct{}{}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[creds.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(creds.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	tok, err := s.signToken(acc.user, s.tokenTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "cannot sign token")
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{AccessToken: tok, TokenType: "bearer", User: acc.user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.revoke(claimsFrom(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r)
	s.mu.Lock()
	acc, ok := s.accounts[c.Username]
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "User no longer exists")
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r)
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	tok, err := s.signToken(models.User{ID: id, Username: c.Username, Role: c.Role}, s.tokenTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "cannot sign token")
		return
	}
	s.revoke(c)
	writeJSON(w, http.StatusOK, models.RefreshResponse{AccessToken: tok, TokenType: "bearer"})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	serial, err := url.PathUnescape(mux.Vars(r)["serial"])
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed serial number")
		return
	}

	s.mu.Lock()
	res, ok := s.serials[serial]
	s.stats.TotalScans++
	s.stats.TodayScans++
	if ok && res.IsValid {
		s.stats.VerifiedScans++
	} else {
		s.stats.InvalidScans++
	}
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Certificate not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := s.stats
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	cert, ok := s.certificates.get(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Certificate not found")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("%PDF-1.4\n% label " + cert.SerialNumber + "\n%%EOF\n"))
}

// issueCertificate builds a certificate with a serial in the canonical
// PREFIX-YYYYMMDDHHMMSS-XXXX-XXXX-XXXXXXXX shape and makes it verifiable.
func (s *Server) issueCertificate(id int64, in models.CertificateInput) models.Certificate {
	now := time.Now().UTC()
	hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	serial := "NS-" + now.Format("20060102150405") + "-" + hex[0:4] + "-" + hex[4:8] + "-" + hex[8:16]

	status := in.Status
	if status == "" {
		status = "active"
	}
	cert := models.Certificate{
		ID:           id,
		SerialNumber: serial,
		ProductID:    in.ProductID,
		CustomerID:   in.CustomerID,
		Status:       status,
		IssuedAt:     now,
	}
	if p, ok := s.products.get(in.ProductID); ok {
		cert.ProductName = p.Name
	}
	if c, ok := s.customers.get(in.CustomerID); ok {
		cert.CustomerName = c.Name
	}

	s.AddSerial(serial, true, &cert, "")
	return cert
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
