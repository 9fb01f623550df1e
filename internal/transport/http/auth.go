package http

import (
	"net/http"
	"strings"

	"xyen-quiz-service/internal/domain"
)

// Authenticator resolves the user identity behind a request. Authentication
// itself is an external concern; the pipeline only needs the resulting user id.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// StaticTokenAuthenticator maps pre-issued bearer tokens to user ids. Good
// enough for demos and tests; production plugs in a real session service.
type StaticTokenAuthenticator struct {
	tokens map[string]string
}

func NewStaticTokenAuthenticator(tokens map[string]string) *StaticTokenAuthenticator {
	return &StaticTokenAuthenticator{tokens: tokens}
}

func (a *StaticTokenAuthenticator) Authenticate(r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", domain.ErrUnauthenticated
	}
	userID, ok := a.tokens[token]
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return userID, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
