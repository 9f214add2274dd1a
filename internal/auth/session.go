package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	SessionTTL    = 24 * time.Hour
	SessionCookie = "session_id"
)

// SessionStore maps opaque session tokens to user IDs in Redis. The value
// sent to the client is "token.signature" where the signature is an HMAC
// under the session secret; a bad signature is treated as no session.
type SessionStore struct {
	rdb    *redis.Client
	secret []byte
}

func NewSessionStore(rdb *redis.Client, secret string) *SessionStore {
	return &SessionStore{rdb: rdb, secret: []byte(secret)}
}

// Create stores a new session for userID and returns the signed cookie value.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	sid := uuid.New().String()
	if err := s.rdb.Set(ctx, "session:"+sid, userID, SessionTTL).Err(); err != nil {
		return "", err
	}
	return sid + "." + s.sign(sid), nil
}

// Get returns the userID for a signed cookie value, or "" if the signature
// is invalid or the session is missing / expired.
func (s *SessionStore) Get(ctx context.Context, token string) (string, error) {
	sid, ok := s.verify(token)
	if !ok {
		return "", nil
	}
	val, err := s.rdb.Get(ctx, "session:"+sid).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Delete invalidates the session server-side.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	sid, ok := s.verify(token)
	if !ok {
		return nil
	}
	return s.rdb.Del(ctx, "session:"+sid).Err()
}

func (s *SessionStore) sign(sid string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(sid))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *SessionStore) verify(token string) (string, bool) {
	sid, sig, found := strings.Cut(token, ".")
	if !found || sid == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(sid))) {
		return "", false
	}
	return sid, true
}

// SetSessionCookie attaches the signed session token to the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTTL / time.Second),
	})
}

// ClearSessionCookie expires the session cookie client-side.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
