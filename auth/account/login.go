package account

import (
	"context"
	"strconv"
	"strings"
	"unicode"
)

// LoginChecker is the one store capability login derivation needs.
type LoginChecker interface {
	LoginExists(ctx context.Context, login string) (bool, error)
}

// DeriveLogin picks a login for a first-time OAuth account. Candidates are
// tried in order: the provider-suggested login, the email local-part, then
// first+last name. Each is normalized to lowercase alphanumerics and must
// begin with a letter. A collision with an existing login gets an increasing
// numeric suffix until the result is free.
func DeriveLogin(ctx context.Context, logins LoginChecker, email, firstName, lastName, preferred string) (string, error) {
	localPart, _, _ := strings.Cut(email, "@")

	base := ""
	for _, candidate := range []string{preferred, localPart, firstName + lastName} {
		candidate = normalize(candidate)
		if validLogin(candidate) {
			base = candidate
			break
		}
	}
	if base == "" {
		base = "user"
	}

	login := base
	for suffix := 1; ; suffix++ {
		exists, err := logins.LoginExists(ctx, login)
		if err != nil {
			return "", err
		}
		if !exists {
			return login, nil
		}
		login = base + strconv.Itoa(suffix)
	}
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validLogin rejects empty candidates and ones that do not start with a
// letter, so an all-digit email local-part falls through to the name-based
// candidate.
func validLogin(s string) bool {
	for _, first := range s {
		return unicode.IsLetter(first)
	}
	return false
}
