// Package favorites encodes a user's favorite dog IDs into short share codes.
//
// A code is base64url (unpadded) over a version byte followed by the sorted,
// de-duplicated IDs as uvarint deltas.
package favorites

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

const (
	codecVersion = 1
	MaxIDs       = 500
)

var (
	ErrInvalidCode = errors.New("favorites: invalid share code")
	ErrTooMany     = fmt.Errorf("favorites: more than %d ids", MaxIDs)
	ErrInvalidID   = errors.New("favorites: id out of range")
)

var enc = base64.RawURLEncoding

func Compress(ids []int) (string, error) {
	if len(ids) == 0 {
		return "", nil
	}
	set := slices.Clone(ids)
	slices.Sort(set)
	set = slices.Compact(set)
	if set[0] <= 0 || set[len(set)-1] > maxID {
		return "", ErrInvalidID
	}
	if len(set) > MaxIDs {
		return "", ErrTooMany
	}

	buf := make([]byte, 1, 1+len(set)*2)
	buf[0] = codecVersion
	prev := 0
	for _, id := range set {
		buf = binary.AppendUvarint(buf, uint64(id-prev))
		prev = id
	}
	return enc.EncodeToString(buf), nil
}

func Decompress(code string) ([]int, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	raw, err := enc.DecodeString(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	if len(raw) == 0 || raw[0] != codecVersion {
		return nil, fmt.Errorf("%w: unknown version", ErrInvalidCode)
	}

	raw = raw[1:]
	out := make([]int, 0, len(raw))
	prev := 0
	for len(raw) > 0 {
		d, n := binary.Uvarint(raw)
		if n <= 0 {
			return nil, fmt.Errorf("%w: truncated delta", ErrInvalidCode)
		}
		// zero delta would be a duplicate; encoder never emits it
		if d == 0 || d > uint64(maxID-prev) {
			return nil, fmt.Errorf("%w: bad delta", ErrInvalidCode)
		}
		prev += int(d)
		out = append(out, prev)
		if len(out) > MaxIDs {
			return nil, ErrTooMany
		}
		raw = raw[n:]
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidCode)
	}
	return out, nil
}

const maxID = 1<<31 - 1

// ShareURL returns base/favorites?shared=<code>, or base/favorites when ids is empty.
func ShareURL(base string, ids []int) (string, error) {
	code, err := Compress(ids)
	if err != nil {
		return "", err
	}
	u := strings.TrimRight(base, "/") + "/favorites"
	if code == "" {
		return u, nil
	}
	return u + "?shared=" + url.QueryEscape(code), nil
}
