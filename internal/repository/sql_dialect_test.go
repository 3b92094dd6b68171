package repository

import (
	"testing"
)

func TestLikeOperatorByDialect(t *testing.T) {
	if got := likeOperatorByDialect("sqlite"); got != "LIKE" {
		t.Fatalf("sqlite like operator want LIKE got %s", got)
	}
	if got := likeOperatorByDialect("postgres"); got != "ILIKE" {
		t.Fatalf("postgres like operator want ILIKE got %s", got)
	}
	if got := likeOperatorByDialect("unknown"); got != "LIKE" {
		t.Fatalf("unknown dialect like operator want LIKE got %s", got)
	}
}

func TestListCursorRoundTrip(t *testing.T) {
	encoded := encodeListCursor(listCursor{V: 19.99, ID: 42})
	if encoded == "" {
		t.Fatalf("encoded cursor should not be empty")
	}

	decoded, ok := decodeListCursor(encoded)
	if !ok {
		t.Fatalf("decode cursor failed")
	}
	if decoded.V != 19.99 || decoded.ID != 42 {
		t.Fatalf("cursor round trip want {19.99 42} got {%v %d}", decoded.V, decoded.ID)
	}
}

func TestDecodeListCursorRejectsGarbage(t *testing.T) {
	if _, ok := decodeListCursor("not-a-cursor!!"); ok {
		t.Fatalf("garbage cursor should not decode")
	}
	if _, ok := decodeListCursor(""); ok {
		t.Fatalf("empty cursor should not decode")
	}
}
