// Package id generates prefixed, URL-safe record identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes used for Folio records.
const (
	PrefixUser   = "user"
	PrefixBook   = "book"
	PrefixReview = "review"
	PrefixToken  = "token"
)

// Generate returns prefix + "-" + a 21 character NanoID, e.g. "book-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is Generate for seed data and tests. It panics on entropy failure.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}
