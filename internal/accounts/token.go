package accounts

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskledger/taskledger/internal/shared"
)

// Claims is the identity a verified token asserts.
type Claims struct {
	AccountID int64
	Scope     string
}

// TokenService issues and verifies signed bearer tokens. A token is
// base64url(JSON payload) + "." + base64url(HMAC-SHA256 of the encoded
// payload) under a process-wide secret injected at startup.
//
// Verify checks authenticity and expiry only. Whether the token is still
// live (not logged out) is the credential store's question, answered
// separately by FindByIDAndActiveToken.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type tokenPayload struct {
	AccountID int64  `json:"aid"`
	Scope     string `json:"scope"`
	JTI       string `json:"jti"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// NewTokenService constructs a TokenService. ttl bounds the lifetime of every
// issued token.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue mints a signed token for the account under the given scope. Each
// token carries a unique id, so two tokens issued in the same instant for the
// same account still differ.
func (s *TokenService) Issue(accountID int64, scope string) (string, time.Time, error) {
	issued := s.now().UTC()
	expires := issued.Add(s.ttl)
	payload := tokenPayload{
		AccountID: accountID,
		Scope:     scope,
		JTI:       uuid.NewString(),
		IssuedAt:  issued.Unix(),
		ExpiresAt: expires.Unix(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("accounts: encode token payload: %w", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(data)
	return encoded + "." + s.sign(encoded), expires, nil
}

// Verify validates the signature and expiry of token and returns the claims
// it asserts. Any structural defect, signature mismatch, or expiry yields
// shared.ErrTokenInvalid. Pure check: no store access.
func (s *TokenService) Verify(token string) (Claims, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || sig == "" {
		return Claims{}, shared.ErrTokenInvalid
	}
	if !hmac.Equal([]byte(s.sign(encoded)), []byte(sig)) {
		return Claims{}, shared.ErrTokenInvalid
	}
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Claims{}, shared.ErrTokenInvalid
	}
	var payload tokenPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Claims{}, shared.ErrTokenInvalid
	}
	if payload.AccountID <= 0 || payload.Scope == "" {
		return Claims{}, shared.ErrTokenInvalid
	}
	if payload.ExpiresAt > 0 && s.now().UTC().Unix() >= payload.ExpiresAt {
		return Claims{}, shared.ErrTokenInvalid
	}
	return Claims{AccountID: payload.AccountID, Scope: payload.Scope}, nil
}

func (s *TokenService) sign(encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
