package twilio

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultCapabilityTTL is the lifetime of a capability token when Generate
// is given a zero duration.
const DefaultCapabilityTTL = time.Hour

// CapabilityToken builds signed tokens that grant browser and mobile clients
// permission to make or receive calls on behalf of an account.
type CapabilityToken struct {
	AccountSID string
	AuthToken  string

	clientName  string
	incoming    bool
	outgoingApp string
	appParams   url.Values
	now         func() time.Time
}

// NewCapabilityToken returns a token builder for cfg's account.
func NewCapabilityToken(cfg Config) *CapabilityToken {
	return &CapabilityToken{AccountSID: cfg.AccountSID, AuthToken: cfg.AuthToken, now: time.Now}
}

// AllowClientIncoming lets the client receive calls addressed to name.
func (t *CapabilityToken) AllowClientIncoming(name string) *CapabilityToken {
	t.clientName = name
	t.incoming = true
	return t
}

// AllowClientOutgoing lets the client place calls through the application
// appSid. params are passed to the application on each call.
func (t *CapabilityToken) AllowClientOutgoing(appSid string, params map[string]any) *CapabilityToken {
	t.outgoingApp = appSid
	t.appParams = make(url.Values, len(params))
	for k, v := range params {
		if s, ok := stringify(v); ok {
			t.appParams.Set(k, s)
		}
	}
	return t
}

// Scopes returns the scope URIs the token grants, in a stable order.
func (t *CapabilityToken) Scopes() []string {
	var scopes []string
	if t.incoming {
		q := url.Values{"clientName": {t.clientName}}
		scopes = append(scopes, "scope:client:incoming?"+q.Encode())
	}
	if t.outgoingApp != "" {
		q := url.Values{"appSid": {t.outgoingApp}}
		if len(t.appParams) > 0 {
			q.Set("appParams", t.appParams.Encode())
		}
		if t.clientName != "" {
			q.Set("clientName", t.clientName)
		}
		scopes = append(scopes, "scope:client:outgoing?"+q.Encode())
	}
	sort.Strings(scopes)
	return scopes
}

type capabilityClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Generate signs the token with the account's auth token (HS256). A zero ttl
// uses DefaultCapabilityTTL.
func (t *CapabilityToken) Generate(ttl time.Duration) (string, error) {
	if t.AccountSID == "" || t.AuthToken == "" {
		return "", errors.New("capability token: account sid and auth token are required")
	}
	scopes := t.Scopes()
	if len(scopes) == 0 {
		return "", errors.New("capability token: no capabilities granted")
	}
	if ttl == 0 {
		ttl = DefaultCapabilityTTL
	}
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	claims := capabilityClaims{
		Scope: strings.Join(scopes, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.AccountSID,
			ExpiresAt: jwt.NewNumericDate(now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.AuthToken))
}

// ParseCapabilityToken verifies a token signed with authToken and returns
// its scopes.
func ParseCapabilityToken(token, authToken string) ([]string, error) {
	var claims capabilityClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(authToken), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return strings.Fields(claims.Scope), nil
}
