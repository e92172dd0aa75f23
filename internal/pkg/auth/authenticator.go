package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// UserDirectory looks up active users by id. The pg adapter backs it with
// the accounts table; tests use an in-memory map.
type UserDirectory interface {
	FindByID(ctx context.Context, id int64) (Identity, error)
}

// Authenticator resolves a handshake token to an Identity. Resolution never
// fails the handshake: expired, malformed or unknown tokens all downgrade
// to Anonymous, and each channel decides for itself whether anonymous
// connections are acceptable.
//
// Two token formats are tried in order: the primary access-token format
// (HS256, claims token_type="access" and user_id) and a fallback plain
// HS256 token carrying only user_id, still issued by older signaling
// clients. The first format that validates wins.
type Authenticator struct {
	secret []byte
	dir    UserDirectory
	log    zerolog.Logger
}

// NewAuthenticator builds an Authenticator over the given signing secret
// and user directory.
func NewAuthenticator(secret string, dir UserDirectory, log zerolog.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), dir: dir, log: log}
}

// Resolve maps a raw token to an Identity, returning Anonymous on any
// failure.
func (a *Authenticator) Resolve(ctx context.Context, raw string) Identity {
	if raw == "" {
		return Anonymous
	}

	userID, ok := a.userIDFromAccessToken(raw)
	if !ok {
		userID, ok = a.userIDFromLegacyToken(raw)
	}
	if !ok {
		return Anonymous
	}

	ident, err := a.dir.FindByID(ctx, userID)
	if err != nil {
		a.log.Debug().Err(err).Int64("user_id", userID).Msg("auth: user lookup failed")
		return Anonymous
	}
	return ident
}

// userIDFromAccessToken validates the primary access-token format.
func (a *Authenticator) userIDFromAccessToken(raw string) (int64, bool) {
	claims, ok := a.parseHS256(raw)
	if !ok {
		return 0, false
	}
	if tokenType, _ := claims["token_type"].(string); tokenType != "access" {
		return 0, false
	}
	return userIDClaim(claims)
}

// userIDFromLegacyToken validates the fallback generic signed-token format.
func (a *Authenticator) userIDFromLegacyToken(raw string) (int64, bool) {
	claims, ok := a.parseHS256(raw)
	if !ok {
		return 0, false
	}
	return userIDClaim(claims)
}

func (a *Authenticator) parseHS256(raw string) (jwt.MapClaims, bool) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	tok, err := parser.Parse(raw, func(*jwt.Token) (any, error) { return a.secret, nil })
	if err != nil || !tok.Valid {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

func userIDClaim(claims jwt.MapClaims) (int64, bool) {
	switch v := claims["user_id"].(type) {
	case float64:
		return int64(v), v > 0
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil && id > 0
	default:
		return 0, false
	}
}

// TokenFromRequest extracts the bearer token from the handshake: the
// "token" query parameter first, then the websocket subprotocol header
// (used by clients that cannot set query parameters).
func TokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	proto := r.Header.Get("Sec-WebSocket-Protocol")
	if proto == "" {
		return ""
	}
	// Clients send a single protocol entry carrying the token.
	return strings.TrimSpace(strings.Split(proto, ",")[0])
}
