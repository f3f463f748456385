package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
)

type State string

const (
	SignedIn  State = "signed_in"
	SignedOut State = "signed_out"
)

// Session is the explicit, per-request session object. Nothing here is
// process-global; callers hold the Session they were given.
type Session struct {
	UserID    uint
	Role      string
	ExpiresAt time.Time
}

type Change struct {
	State   State
	Session *Session
}

type Manager struct {
	secret []byte

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Change)
}

func NewManager(secret string) *Manager {
	return &Manager{
		secret: []byte(secret),
		subs:   make(map[int]func(Change)),
	}
}

// InitializeSession verifies a bearer token and returns the session it
// carries.
func (m *Manager) InitializeSession(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, httperr.ErrBusiness("invalid_token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, httperr.ErrBusiness("invalid_token_claims")
	}

	userID, ok1 := claims["sub"].(float64)
	role, ok2 := claims["role"].(string)
	if !ok1 || !ok2 {
		return nil, httperr.ErrBusiness("invalid_token_payload")
	}

	sess := &Session{
		UserID: uint(userID),
		Role:   role,
	}
	if exp, ok := claims["exp"].(float64); ok {
		sess.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return sess, nil
}

func (m *Manager) IssueToken(userID uint, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// OnAuthStateChange registers a callback; the returned handle unsubscribes.
func (m *Manager) OnAuthStateChange(cb func(Change)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = cb
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Announce fans a state change out to the subscribers. Callbacks run on the
// caller's goroutine.
func (m *Manager) Announce(ch Change) {
	m.mu.Lock()
	cbs := make([]func(Change), 0, len(m.subs))
	for _, cb := range m.subs {
		cbs = append(cbs, cb)
	}
	m.mu.Unlock()

	for _, cb := range cbs {
		cb(ch)
	}
}
