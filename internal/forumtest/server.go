// Package forumtest runs an in-process forum API for tests. It mints real
// HS256 token pairs, honors the header-based token exchange, and can be
// scripted to reject access tokens so the refresh and logout paths can be
// exercised deterministically.
package forumtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/openboard/openboard/forum"
	"github.com/openboard/openboard/session"
)

type account struct {
	password string
	profile  session.UserProfile
}

// Server is a fake forum backend bound to an httptest listener.
type Server struct {
	*httptest.Server

	// AccessTTL and RefreshTTL control the lifetime of minted tokens.
	// Change them before logging in.
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// ReissueDelay stalls /api/reissue before answering, widening the
	// window in which concurrent refreshes must coalesce.
	ReissueDelay time.Duration

	secret []byte

	mu          sync.Mutex
	accounts    map[string]account
	revoked     map[string]bool
	hits        map[string]int
	force401    int
	always401   bool
	failReissue bool
	posts       []forum.Post
	comments    map[int][]forum.Comment
	nextPostNum int
}

// New starts a fake forum server and shuts it down when the test ends.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		AccessTTL:   time.Minute,
		RefreshTTL:  time.Hour,
		secret:      []byte("forumtest-secret"),
		accounts:    make(map[string]account),
		revoked:     make(map[string]bool),
		hits:        make(map[string]int),
		comments:    make(map[int][]forum.Comment),
		nextPostNum: 1,
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// AddAccount registers a member who can log in with the given password.
func (s *Server) AddAccount(id, password string, profile session.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[id] = account{password: password, profile: profile}
}

// Hits reports how many requests a path has received.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// ForceUnauthorized makes the next n authenticated forum requests fail with
// 401 regardless of token validity. Identity endpoints are unaffected.
func (s *Server) ForceUnauthorized(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.force401 = n
}

// AlwaysUnauthorized makes every authenticated forum request fail with 401,
// simulating a revoked account. Identity endpoints are unaffected.
func (s *Server) AlwaysUnauthorized(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.always401 = v
}

// FailReissue makes /api/reissue reject every request with 401.
func (s *Server) FailReissue(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReissue = v
}

// MintToken signs a token for userID expiring after ttl. A negative ttl
// produces an already-expired token.
func (s *Server) MintToken(userID string, ttl time.Duration) string {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("forumtest: signing token: %v", err))
	}
	return raw
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.count)

	r.Post("/api/login", s.handleLogin)
	r.Post("/api/reissue", s.handleReissue)
	r.Post("/api/logout", s.handleLogout)
	r.Post("/api/register", s.handleRegister)

	r.Get("/api/normal/list", s.handleList)
	r.Get("/api/normal", s.handleGetPost)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/api/normal/create", s.handleCreatePost)
		r.Post("/api/normal/edit", s.handleEditPost)
		r.Get("/api/like", s.handleLikePost)
		r.Post("/api/comment/create", s.handleCreateComment)
		r.Post("/api/member/edit", s.handleEditMember)
		r.Post("/api/file/profile/upload", s.handleProfileUpload)
	})

	return r
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// requireAuth validates the bearer token, honoring scripted rejections first.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		reject := s.always401
		if !reject && s.force401 > 0 {
			s.force401--
			reject = true
		}
		s.mu.Unlock()
		if reject {
			writeError(w, http.StatusUnauthorized, "token rejected")
			return
		}
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if _, err := s.parseToken(raw); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) parseToken(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Server) issueTokens(w http.ResponseWriter, userID string) (access, refresh string) {
	access = s.MintToken(userID, s.AccessTTL)
	refresh = s.MintToken(userID, s.RefreshTTL)
	w.Header().Set("Authorization", "Bearer "+access)
	w.Header().Set("X-Refresh-Token", refresh)
	return access, refresh
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed credentials")
		return
	}
	s.mu.Lock()
	acct, ok := s.accounts[creds.ID]
	s.mu.Unlock()
	if !ok || acct.password != creds.Password {
		writeError(w, http.StatusUnauthorized, "bad credentials")
		return
	}
	s.issueTokens(w, creds.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": forum.StatusSuccess,
		"user":   acct.profile,
	})
}

func (s *Server) handleReissue(w http.ResponseWriter, r *http.Request) {
	if s.ReissueDelay > 0 {
		time.Sleep(s.ReissueDelay)
	}
	raw := r.Header.Get("X-Refresh-Token")

	s.mu.Lock()
	fail := s.failReissue || s.revoked[raw]
	s.mu.Unlock()
	if fail {
		writeError(w, http.StatusUnauthorized, "refresh token rejected")
		return
	}
	userID, err := s.parseToken(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "refresh token invalid")
		return
	}

	// Rotation: the presented refresh token is spent.
	s.mu.Lock()
	s.revoked[raw] = true
	s.mu.Unlock()

	s.issueTokens(w, userID)
	writeJSON(w, http.StatusOK, map[string]any{"status": forum.StatusSuccess})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if raw := r.Header.Get("X-Refresh-Token"); raw != "" {
		s.mu.Lock()
		s.revoked[raw] = true
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": forum.StatusSuccess})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in forum.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed registration")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[in.ID]; exists {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  forum.StatusError,
			"message": "id already taken",
		})
		return
	}
	s.accounts[in.ID] = account{
		password: in.Password,
		profile: session.UserProfile{
			ID:       in.ID,
			Nickname: in.Nickname,
			Email:    in.Email,
		},
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": forum.StatusSuccess})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	posts := make([]forum.Post, len(s.posts))
	copy(posts, s.posts)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": forum.StatusSuccess,
		"posts": forum.Page[forum.Post]{
			Content:    posts,
			First:      true,
			Last:       true,
			TotalPages: 1,
		},
	})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	num, _ := strconv.Atoi(r.URL.Query().Get("post"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.PostNum == num {
			writeJSON(w, http.StatusOK, map[string]any{
				"status": forum.StatusSuccess,
				"post":   p,
				"comments": forum.Page[forum.Comment]{
					Content: s.comments[num],
					First:   true,
					Last:    true,
				},
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, "no such post")
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var in forum.PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed post")
		return
	}
	s.mu.Lock()
	p := forum.Post{
		PostNum:     s.nextPostNum,
		Title:       in.Title,
		TextBody:    in.TextBody,
		PostingDate: time.Now().Format(time.RFC3339),
	}
	s.nextPostNum++
	s.posts = append(s.posts, p)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": forum.StatusSuccess})
}

func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	num, _ := strconv.Atoi(r.URL.Query().Get("post"))
	var in forum.PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed post")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].PostNum == num {
			s.posts[i].Title = in.Title
			s.posts[i].TextBody = in.TextBody
			writeJSON(w, http.StatusOK, map[string]any{"status": forum.StatusSuccess})
			return
		}
	}
	writeError(w, http.StatusNotFound, "no such post")
}

func (s *Server) handleLikePost(w http.ResponseWriter, r *http.Request) {
	num, _ := strconv.Atoi(r.URL.Query().Get("post"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].PostNum == num {
			if s.posts[i].IsLiked {
				s.posts[i].IsLiked = false
				s.posts[i].Like--
			} else {
				s.posts[i].IsLiked = true
				s.posts[i].Like++
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"status": forum.StatusSuccess,
				"post":   s.posts[i],
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, "no such post")
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	num, _ := strconv.Atoi(r.URL.Query().Get("post"))
	var in struct {
		CommentBody string `json:"commentBody"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed comment")
		return
	}
	s.mu.Lock()
	c := forum.Comment{
		CommentNum:     len(s.comments[num]) + 1,
		CommentBody:    in.CommentBody,
		CommentingDate: time.Now().Format(time.RFC3339),
	}
	s.comments[num] = append(s.comments[num], c)
	page := forum.Page[forum.Comment]{Content: s.comments[num], First: true, Last: true, TotalPages: 1}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   forum.StatusSuccess,
		"comments": page,
	})
}

func (s *Server) handleEditMember(w http.ResponseWriter, r *http.Request) {
	var edit forum.MemberEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		writeError(w, http.StatusBadRequest, "malformed edit")
		return
	}
	userID, _ := s.parseToken(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))

	s.mu.Lock()
	acct, ok := s.accounts[userID]
	if ok {
		if edit.Nickname != "" {
			acct.profile.Nickname = edit.Nickname
		}
		if edit.Email != "" {
			acct.profile.Email = edit.Email
		}
		s.accounts[userID] = acct
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "no such member")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": forum.StatusSuccess,
		"user":   acct.profile,
	})
}

func (s *Server) handleProfileUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "malformed upload")
		return
	}
	if _, _, err := r.FormFile("file"); err != nil {
		writeError(w, http.StatusBadRequest, "missing file part")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": forum.StatusSuccess})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"status":  forum.StatusError,
		"message": msg,
	})
}
