// Package state issues and validates the short-lived CSRF tokens that
// correlate an outbound authorization redirect with its later callback.
//
// The external representation is "<id>.<redirect>": everything after the
// first dot is the post-login redirect target, which may itself contain dots,
// slashes and fragments.
package state

import (
	"context"
	"strings"
)

const keyPrefix = "oauth:state:"

// Store mints and consumes state tokens. A token validates at most once;
// concurrent replays of the same state must yield exactly one success.
type Store interface {
	Issue(ctx context.Context, redirect string) (string, error)
	Validate(ctx context.Context, rawState string) (redirect string, err error)
}

func encode(id, redirect string) string {
	if redirect == "" {
		return id
	}
	return id + "." + redirect
}

func decode(rawState string) (id, redirect string) {
	id, redirect, _ = strings.Cut(rawState, ".")
	return id, redirect
}
