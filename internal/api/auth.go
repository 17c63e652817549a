package api

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	// DevTokenHeader carries the real dev identity when the Authorization
	// header is occupied by the anon key.
	DevTokenHeader = "X-Dev-Token"

	// DevCredentialPrefix marks a synthetic dev-mode credential.
	DevCredentialPrefix = "dev-"
)

// Regime is the authentication shape a credential belongs to.
type Regime string

const (
	RegimeNone   Regime = "none"
	RegimeNormal Regime = "normal"
	RegimeDev    Regime = "dev"
)

// Credential is an opaque bearer value issued by the auth collaborator.
// The client holds it in memory only.
type Credential string

// Regime derives the credential's regime from its shape.
func (c Credential) Regime() Regime {
	switch {
	case c == "":
		return RegimeNone
	case strings.HasPrefix(string(c), DevCredentialPrefix):
		return RegimeDev
	default:
		return RegimeNormal
	}
}

// String masks the credential so it never lands in logs verbatim.
func (c Credential) String() string {
	if len(c) <= 8 {
		return "****"
	}
	return string(c[:4]) + "****"
}

// DevAuthAvailable reports whether this binary was built with dev auth.
// Production builds (-tags production) always report false.
func DevAuthAvailable() bool {
	return devAuthCompiled
}

// HeaderBuilder produces auth headers for a credential.
type HeaderBuilder struct {
	AnonKey string
	// DevMode enables the dev regime. It has no effect in production builds.
	DevMode bool
}

// Build returns the header set for cred:
//   - dev regime: Authorization carries the anon key, X-Dev-Token the identity
//   - normal regime: Authorization carries the credential only
//   - no credential: Authorization carries the anon key
func (b HeaderBuilder) Build(cred Credential) (http.Header, error) {
	h := make(http.Header)

	switch cred.Regime() {
	case RegimeDev:
		if !devAuthCompiled || !b.DevMode {
			return nil, fmt.Errorf("%w: credential %s", ErrDevAuthDisabled, cred)
		}
		h.Set("Authorization", "Bearer "+b.AnonKey)
		h.Set(DevTokenHeader, string(cred))
	case RegimeNormal:
		h.Set("Authorization", "Bearer "+string(cred))
	default:
		if b.AnonKey != "" {
			h.Set("Authorization", "Bearer "+b.AnonKey)
		}
	}
	return h, nil
}
