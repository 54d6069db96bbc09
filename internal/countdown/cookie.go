package countdown

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
)

const defaultCookieMaxAge = 365 * 24 * time.Hour

// ErrInvalidCookieConfig indicates the codec was initialised with unusable keys.
var ErrInvalidCookieConfig = errors.New("countdown: invalid cookie config")

// CookieConfig controls how deadline cookies are signed and scoped.
type CookieConfig struct {
	HashKey  []byte
	BlockKey []byte
	MaxAge   time.Duration
	Path     string
	Secure   bool
}

// CookieCodec signs (and optionally encrypts) deadline cookies. The browser
// keeps them per origin across reloads, which is the persistence the countdown
// needs; the signature keeps visitors from granting themselves more time.
type CookieCodec struct {
	sc     *securecookie.SecureCookie
	maxAge time.Duration
	path   string
	secure bool
}

// NewCookieCodec validates cfg and returns a codec.
func NewCookieCodec(cfg CookieConfig) (*CookieCodec, error) {
	if len(cfg.HashKey) < 32 {
		return nil, ErrInvalidCookieConfig
	}
	switch len(cfg.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, ErrInvalidCookieConfig
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = defaultCookieMaxAge
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = "/"
	}

	var block []byte
	if len(cfg.BlockKey) > 0 {
		block = cfg.BlockKey
	}
	sc := securecookie.New(cfg.HashKey, block)
	sc.MaxAge(int(maxAge / time.Second))

	return &CookieCodec{sc: sc, maxAge: maxAge, path: path, secure: cfg.Secure}, nil
}

// Store binds the codec to one request/response pair.
func (c *CookieCodec) Store(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{codec: c, w: w, r: r, written: make(map[string]string)}
}

// CookieStore reads deadlines from request cookies and writes them as
// response cookies. Writes are visible to later reads on the same store.
type CookieStore struct {
	codec   *CookieCodec
	w       http.ResponseWriter
	r       *http.Request
	written map[string]string
}

// Get implements Store. Missing, tampered or expired cookies read as absent.
func (s *CookieStore) Get(_ context.Context, name string) (string, bool, error) {
	if v, ok := s.written[name]; ok {
		return v, true, nil
	}
	if s.r == nil {
		return "", false, nil
	}
	c, err := s.r.Cookie(cookieName(name))
	if err != nil || c.Value == "" {
		return "", false, nil
	}
	var value string
	if err := s.codec.sc.Decode(name, c.Value, &value); err != nil {
		return "", false, nil
	}
	return value, true, nil
}

// Set implements Store.
func (s *CookieStore) Set(_ context.Context, name, value string) error {
	encoded, err := s.codec.sc.Encode(name, value)
	if err != nil {
		return err
	}
	s.written[name] = value
	if s.w != nil {
		http.SetCookie(s.w, &http.Cookie{
			Name:     cookieName(name),
			Value:    encoded,
			Path:     s.codec.path,
			MaxAge:   int(s.codec.maxAge / time.Second),
			Expires:  time.Now().Add(s.codec.maxAge),
			HttpOnly: true,
			Secure:   s.codec.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return nil
}

// cookieName maps an entry name onto the cookie-name token charset.
func cookieName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
