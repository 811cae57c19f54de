// Package apitest runs an in-process admin backend for tests. It issues real
// HS256 JWTs, tracks which tokens are live, and serves the endpoints the
// console consumes from in-memory fixtures.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/naveenspark/casedesk/pkg/domain"
	"github.com/shopspring/decimal"
)

var signingKey = []byte("casedesk-test-signing-key")

// Account is a login the fake backend accepts.
type Account struct {
	Password string
	User     domain.User
}

// Upload is the last attachment received by the reply endpoint.
type Upload struct {
	TicketID int64
	Body     string
	Filename string
	Data     []byte
}

type grant struct {
	userID int64
	exp    time.Time
}

// Server is a fake admin backend. All fixture methods are safe to call while
// requests are in flight.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	clock         func() time.Time
	accessTTL     time.Duration
	accounts      map[string]Account
	users         map[int64]domain.User
	access        map[string]grant
	refresh       map[string]int64
	seq           int
	hits          map[string]int
	headers       map[string]http.Header
	queries       map[string]url.Values
	overrides     map[string]http.HandlerFunc
	refreshGate   chan struct{}
	spins         map[int64]string
	bonusSpins    map[int64]string
	verifications map[string]domain.VerifyResult
	userRows      []domain.UserRow
	details       map[int64]domain.UserDetails
	tickets       []domain.Ticket
	lastUpload    *Upload
	dashboards    map[string]domain.Dashboard
	deposits      []domain.Deposit
	promocodes    []domain.Promocode
	activations   []domain.PromocodeActivation
	bonuses       []domain.ReferralBonus
	refLevels     []domain.RefLevel
	cashback      []domain.CashbackSetting
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		clock:         time.Now,
		accessTTL:     5 * time.Minute,
		accounts:      map[string]Account{},
		users:         map[int64]domain.User{},
		access:        map[string]grant{},
		refresh:       map[string]int64{},
		hits:          map[string]int{},
		headers:       map[string]http.Header{},
		queries:       map[string]url.Values{},
		overrides:     map[string]http.HandlerFunc{},
		spins:         map[int64]string{},
		bonusSpins:    map[int64]string{},
		verifications: map[string]domain.VerifyResult{},
		details:       map[int64]domain.UserDetails{},
		dashboards:    map[string]domain.Dashboard{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Post("/api/auth/login/", s.handleLogin)
	r.Post("/api/auth/refresh/", s.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/api/auth/me/", s.handleMe)

		r.Get("/api/cases/spins/{id}/", s.handleSpin(false))
		r.Get("/api/cases/spins/{id}/verify/", s.handleVerify)
		r.Get("/api/cases/bonus-spins/{id}/", s.handleSpin(true))
		r.Get("/api/cases/bonus-spins/{id}/verify/", s.handleVerify)

		r.Get("/api/admin/users/", s.handleUsers)
		r.Get("/api/admin/users/{id}/details/", s.handleUserDetails)

		r.Get("/api/support/tickets/", s.handleTickets)
		r.Post("/api/support/tickets/{id}/reply/", s.handleReply)
		r.Post("/api/support/tickets/{id}/close/", s.handleClose)
		r.Post("/api/support/tickets/{id}/mark-read/", s.handleMarkRead)

		r.Get("/api/admin/dashboard/", s.handleDashboard)
		r.Get("/api/admin/deposits/", s.handleDeposits)
		r.Get("/api/admin/referral-bonuses/", s.handleReferralBonuses)
		r.Get("/api/admin/promocodes/", s.handlePromocodes)
		r.Get("/api/admin/promocode-activations/", s.handleActivations)
		r.Get("/api/admin/ref-levels/", s.handleRefLevels)
		r.Get("/api/admin/cashback-settings/", s.handleCashback)
	})
	return r
}

func routeKey(method, path string) string { return method + " " + path }

// record counts hits, keeps the last request headers per route and applies
// any override registered with Handle.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r.Method, r.URL.Path)
		s.mu.Lock()
		s.hits[key]++
		s.headers[key] = r.Header.Clone()
		s.queries[key] = r.URL.Query()
		h := s.overrides[key]
		s.mu.Unlock()
		if h != nil {
			h(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		s.mu.Lock()
		g, live := s.access[token]
		now := s.clock()
		s.mu.Unlock()
		if !live || !now.Before(g.exp) {
			writeError(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- fixtures ---

// SetClock replaces the clock used to issue and expire tokens.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = now
}

// SetAccessTTL sets the lifetime of access tokens issued from now on.
func (s *Server) SetAccessTTL(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTTL = d
}

// AddAccount registers a login for email.
func (s *Server) AddAccount(email, password string, u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = Account{Password: password, User: u}
	s.users[u.ID] = u
}

// IssueTokens mints a live token pair for u without a login round trip.
func (s *Server) IssueTokens(u domain.User) (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return s.issueLocked(u.ID, s.clock().Add(s.accessTTL))
}

// IssueAccess mints a live access token for u expiring at exp.
func (s *Server) IssueAccess(u domain.User, exp time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	s.seq++
	tok := s.signLocked(u.ID, exp)
	s.access[tok] = grant{userID: u.ID, exp: exp}
	return tok
}

func (s *Server) issueLocked(userID int64, exp time.Time) (string, string) {
	s.seq++
	access := s.signLocked(userID, exp)
	s.access[access] = grant{userID: userID, exp: exp}
	refresh := fmt.Sprintf("refresh-%d-%d", userID, s.seq)
	s.refresh[refresh] = userID
	return access, refresh
}

func (s *Server) signLocked(userID int64, exp time.Time) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     exp.Unix(),
		"jti":     strconv.Itoa(s.seq),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return tok
}

// RevokeAccess makes every outstanding access token answer 401.
func (s *Server) RevokeAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = map[string]grant{}
}

// RevokeRefresh makes every outstanding refresh token unusable.
func (s *Server) RevokeRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = map[string]int64{}
}

// HoldRefresh blocks refresh requests until release is called.
func (s *Server) HoldRefresh() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.refreshGate = gate
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Handle replaces the route for method and path with h.
func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[routeKey(method, path)] = h
}

// Hits returns how many requests reached method and path.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[routeKey(method, path)]
}

// LastHeader returns the headers of the most recent request to method and path.
func (s *Server) LastHeader(method, path string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[routeKey(method, path)]
}

// AddSpin serves raw JSON at /api/cases/spins/{id}/.
func (s *Server) AddSpin(id int64, rawJSON string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spins[id] = rawJSON
}

// AddBonusSpin serves raw JSON at /api/cases/bonus-spins/{id}/.
func (s *Server) AddBonusSpin(id int64, rawJSON string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bonusSpins[id] = rawJSON
}

// SetVerification serves res at the verify path for the detail path.
func (s *Server) SetVerification(detailPath string, res domain.VerifyResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications[detailPath+"verify/"] = res
}

// SetUsers replaces the admin user list.
func (s *Server) SetUsers(rows []domain.UserRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userRows = rows
}

// SetUserDetails serves d at /api/admin/users/{id}/details/.
func (s *Server) SetUserDetails(id int64, d domain.UserDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[id] = d
}

// SetTickets replaces the support ticket list.
func (s *Server) SetTickets(t []domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = t
}

// Ticket returns a copy of the stored ticket.
func (s *Server) Ticket(id int64) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

// LastQuery returns the query string of the last request to method and path.
func (s *Server) LastQuery(method, path string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[routeKey(method, path)]
}

// SetDashboard serves d for preset. The "" entry answers any other query.
func (s *Server) SetDashboard(preset string, d domain.Dashboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboards[preset] = d
}

// SetDeposits replaces the deposit list. The handler pages it.
func (s *Server) SetDeposits(d []domain.Deposit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deposits = d
}

// SetPromocodes replaces the promo codes and their activation history.
func (s *Server) SetPromocodes(codes []domain.Promocode, acts []domain.PromocodeActivation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promocodes = codes
	s.activations = acts
}

// SetReferralBonuses replaces the referral commission list. The handler
// pages it and sums amount_usd.
func (s *Server) SetReferralBonuses(b []domain.ReferralBonus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bonuses = b
}

// SetReferralSettings replaces the level percents and cashback settings.
func (s *Server) SetReferralSettings(levels []domain.RefLevel, cashback []domain.CashbackSetting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refLevels = levels
	s.cashback = cashback
}

// LastUpload returns the last reply received, or nil.
func (s *Server) LastUpload() *Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpload
}

// --- handlers ---

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	s.mu.Lock()
	acct, ok := s.accounts[in.Email]
	if !ok || acct.Password != in.Password {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}
	access, refresh := s.issueLocked(acct.User.ID, s.clock().Add(s.accessTTL))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	gate := s.refreshGate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	var in struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	s.mu.Lock()
	userID, ok := s.refresh[in.Refresh]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	s.seq++
	exp := s.clock().Add(s.accessTTL)
	access := s.signLocked(userID, exp)
	s.access[access] = grant{userID: userID, exp: exp}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	u, ok := s.users[s.access[token].userID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleSpin(bonus bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusNotFound, "Not found.")
			return
		}
		s.mu.Lock()
		src := s.spins
		if bonus {
			src = s.bonusSpins
		}
		raw, ok := src[id]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, "Not found.")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, raw) //nolint:errcheck
	}
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res, ok := s.verifications[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	rows := append([]domain.UserRow{}, s.userRows...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleUserDetails(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	s.mu.Lock()
	d, ok := s.details[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleTickets(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	list := append([]domain.Ticket{}, s.tickets...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	up := &Upload{TicketID: id, Body: r.FormValue("body")}
	if f, hdr, err := r.FormFile("attachment"); err == nil {
		up.Filename = hdr.Filename
		up.Data, _ = io.ReadAll(f)
		f.Close() //nolint:errcheck
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpload = up
	for i := range s.tickets {
		if s.tickets[i].ID != id {
			continue
		}
		msg := domain.TicketMessage{
			ID:        int64(len(s.tickets[i].Messages) + 1),
			Body:      up.Body,
			CreatedAt: s.clock(),
		}
		if up.Filename != "" {
			msg.Attachment = "/media/tickets/" + up.Filename
		}
		s.tickets[i].Messages = append(s.tickets[i].Messages, msg)
		writeJSON(w, http.StatusCreated, msg)
		return
	}
	writeError(w, http.StatusNotFound, "Not found.")
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	s.updateTicket(w, r, func(t *domain.Ticket) { t.Status = domain.TicketClosed })
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	s.updateTicket(w, r, func(t *domain.Ticket) {
		t.UnreadForStaff = false
		t.UnreadCountForStaff = 0
	})
}

func (s *Server) updateTicket(w http.ResponseWriter, r *http.Request, fn func(*domain.Ticket)) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			fn(&s.tickets[i])
			writeJSON(w, http.StatusOK, s.tickets[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Not found.")
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := q.Get("preset")
	if q.Has("from") || q.Has("to") {
		key = "custom"
	}
	s.mu.Lock()
	d, ok := s.dashboards[key]
	if !ok {
		d = s.dashboards[""]
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, d)
}

// pageBounds returns the slice bounds of the requested page of n items.
func pageBounds(q url.Values, n int) (lo, hi, page, size int) {
	page, _ = strconv.Atoi(q.Get("page"))
	size, _ = strconv.Atoi(q.Get("page_size"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	lo = min((page-1)*size, n)
	hi = min(lo+size, n)
	return lo, hi, page, size
}

func (s *Server) handleDeposits(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	all := append([]domain.Deposit{}, s.deposits...)
	s.mu.Unlock()
	lo, hi, _, _ := pageBounds(r.URL.Query(), len(all))
	writeJSON(w, http.StatusOK, domain.DepositPage{
		Deposits: all[lo:hi],
		Total:    domain.Int(len(all)),
	})
}

func (s *Server) handleReferralBonuses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	all := append([]domain.ReferralBonus{}, s.bonuses...)
	s.mu.Unlock()
	q := r.URL.Query()
	lo, hi, page, size := pageBounds(q, len(all))
	sum := decimal.Zero
	for _, b := range all {
		sum = sum.Add(b.AmountUSD.Decimal)
	}
	from, _ := time.Parse(time.RFC3339, q.Get("from"))
	to, _ := time.Parse(time.RFC3339, q.Get("to"))
	writeJSON(w, http.StatusOK, domain.ReferralBonusPage{
		Items: all[lo:hi],
		Pagination: domain.Pagination{
			Page:       domain.Int(page),
			TotalPages: domain.Int((len(all) + size - 1) / size),
			TotalCount: domain.Int(len(all)),
		},
		TotalSumUSD: domain.Number{Decimal: sum, Valid: true},
		Period:      &domain.Period{From: domain.Timestamp{Time: from}, To: domain.Timestamp{Time: to}},
	})
}

func (s *Server) handlePromocodes(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	codes := append([]domain.Promocode{}, s.promocodes...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"results": codes})
}

func (s *Server) handleActivations(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	acts := append([]domain.PromocodeActivation{}, s.activations...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, acts)
}

func (s *Server) handleRefLevels(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	levels := append([]domain.RefLevel{}, s.refLevels...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, levels)
}

func (s *Server) handleCashback(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	cb := append([]domain.CashbackSetting{}, s.cashback...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, cb)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
