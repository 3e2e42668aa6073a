package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// IDKind is the JSON type an ID was submitted as.
type IDKind uint8

const (
	KindInvalid IDKind = iota
	KindString
	KindNumber
	KindBool
)

func (k IDKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "invalid"
	}
}

// ID is a node identifier as sent by a client: a JSON string, number or
// boolean. IDs are comparable and usable as map keys.
//
// The kind is part of the identity, so the string "1" and the number 1 are
// different IDs. Numbers are canonicalised by exact value, so 1, 1.0 and 1e0
// are the same ID while integers beyond float64 precision stay distinct.
type ID struct {
	kind  IDKind
	value string
}

// StringID returns the ID for the JSON string s.
func StringID(s string) ID { return ID{kind: KindString, value: s} }

// NumberID returns the ID for the JSON number f.
// Non-finite values have no JSON form and yield an ID that cannot be marshaled.
func NumberID(f float64) ID {
	lit := strconv.FormatFloat(f, 'g', -1, 64)
	if v, err := canonicalNumber(lit); err == nil {
		lit = v
	}
	return ID{kind: KindNumber, value: lit}
}

// BoolID returns the ID for the JSON boolean b.
func BoolID(b bool) ID { return ID{kind: KindBool, value: strconv.FormatBool(b)} }

// Kind returns the JSON type of the ID.
func (id ID) Kind() IDKind { return id.kind }

// IsZero reports whether id is the zero value, which is never produced by
// decoding.
func (id ID) IsZero() bool { return id.kind == KindInvalid }

// String returns the ID's value without quoting.
func (id ID) String() string { return id.value }

// MarshalJSON encodes the ID as the JSON type it was decoded from.
func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case KindString:
		return json.Marshal(id.value)
	case KindNumber:
		if !json.Valid([]byte(id.value)) {
			return nil, fmt.Errorf("marshal number ID %s", id.value)
		}
		return []byte(id.value), nil
	case KindBool:
		return []byte(id.value), nil
	default:
		return nil, fmt.Errorf("marshal zero ID")
	}
}

// UnmarshalJSON decodes a JSON string, number or boolean. Null, objects and
// arrays are rejected.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty id")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*id = BoolID(b)
	case 'n':
		return fmt.Errorf("id must be a string, number or boolean, got null")
	case '{':
		return fmt.Errorf("id must be a string, number or boolean, got object")
	case '[':
		return fmt.Errorf("id must be a string, number or boolean, got array")
	default:
		v, err := canonicalNumber(string(data))
		if err != nil {
			return err
		}
		*id = ID{kind: KindNumber, value: v}
	}
	return nil
}

// Number IDs are compared by exact decimal value. Literals longer than
// maxNumberLen or with an exponent beyond ±maxNumberExponent are rejected so
// that expanding them stays cheap.
const (
	maxNumberLen      = 512
	maxNumberExponent = 1000
)

// canonicalNumber normalises a JSON number literal to its exact decimal value:
// integers as plain digits, everything else as a plain decimal fraction with
// no trailing zeros.
func canonicalNumber(lit string) (string, error) {
	if len(lit) > maxNumberLen {
		return "", fmt.Errorf("number id longer than %d characters", maxNumberLen)
	}
	if !json.Valid([]byte(lit)) {
		return "", fmt.Errorf("invalid number id %q", lit)
	}

	mant, exp := lit, 0
	if i := strings.IndexAny(lit, "eE"); i >= 0 {
		e, err := strconv.Atoi(lit[i+1:])
		if err != nil || e > maxNumberExponent || e < -maxNumberExponent {
			return "", fmt.Errorf("number id %q: exponent out of range", lit)
		}
		mant, exp = lit[:i], e
	}

	r, ok := new(big.Rat).SetString(lit)
	if !ok {
		return "", fmt.Errorf("invalid number id %q", lit)
	}
	if r.IsInt() {
		return r.Num().String(), nil
	}

	// A decimal literal has at most (fraction digits - exponent) places.
	places := -exp
	if i := strings.IndexByte(mant, '.'); i >= 0 {
		places += len(mant) - i - 1
	}
	s := strings.TrimRight(r.FloatString(places), "0")
	return strings.TrimSuffix(s, "."), nil
}
