package action

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
)

// ErrUnhashable reports an attribute or term value whose type cannot take
// part in an identity hash.
var ErrUnhashable = errors.New("action: unhashable value")

// Identity computes the order-independent identity hash for a set of find
// terms and attribute matchers.
//
// Each scalar is hashed with FNV-1a (64 bit) and the pieces are folded
// together with XOR. XOR is commutative and associative, so the same
// multiset of terms and the same key/value pairs always collide to the same
// result no matter the construction order. The hash of the empty string is
// the neutral element for empty terms and the accumulator seed for every
// attribute map, so an action with no terms and no attributes still has a
// fixed, well-defined identity.
//
// Equal inputs always hash equal; collisions between different actions are
// an accepted property of a non-cryptographic hash.
func Identity(terms []interface{}, attrs map[string]interface{}) (uint64, error) {
	termsHash := hashString("")
	if len(terms) > 0 {
		termsHash = 0
		for _, term := range terms {
			h, err := hashScalar(term)
			if err != nil {
				return 0, err
			}
			termsHash ^= h
		}
	}

	attrsHash, err := hashAttrs(attrs)
	if err != nil {
		return 0, err
	}

	return termsHash ^ attrsHash, nil
}

// hashAttrs folds one attribute map level. Nested maps recurse; every other
// value must be a hashable scalar.
func hashAttrs(attrs map[string]interface{}) (uint64, error) {
	acc := hashString("")
	for key, value := range attrs {
		var inner uint64
		var err error
		if nested, ok := value.(map[string]interface{}); ok {
			inner, err = hashAttrs(nested)
		} else {
			inner, err = hashScalar(value)
		}
		if err != nil {
			return 0, fmt.Errorf("attribute %q: %w", key, err)
		}
		acc ^= hashString(key) ^ inner
	}
	return acc, nil
}

// hashScalar hashes a single scalar value. A one-byte type tag keeps values
// of different types from colliding trivially (e.g. "1" vs 1 vs true).
func hashScalar(value interface{}) (uint64, error) {
	h := fnv.New64a()
	switch v := value.(type) {
	case string:
		h.Write([]byte{'s'})
		h.Write([]byte(v))
	case bool:
		if v {
			h.Write([]byte{'b', 1})
		} else {
			h.Write([]byte{'b', 0})
		}
	case int:
		writeInt(h, int64(v))
	case int8:
		writeInt(h, int64(v))
	case int16:
		writeInt(h, int64(v))
	case int32:
		writeInt(h, int64(v))
	case int64:
		writeInt(h, v)
	case uint:
		writeUint(h, uint64(v))
	case uint8:
		writeUint(h, uint64(v))
	case uint16:
		writeUint(h, uint64(v))
	case uint32:
		writeUint(h, uint64(v))
	case uint64:
		writeUint(h, v)
	case float32:
		writeFloat(h, float64(v))
	case float64:
		writeFloat(h, v)
	case nil:
		h.Write([]byte{'n'})
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnhashable, value)
	}
	return h.Sum64(), nil
}

type byteWriter interface {
	Write(p []byte) (int, error)
}

func writeInt(h byteWriter, v int64) {
	h.Write([]byte{'i'})
	h.Write([]byte(strconv.FormatInt(v, 10)))
}

func writeUint(h byteWriter, v uint64) {
	// Non-negative integers hash the same regardless of signedness, so a
	// caller mixing int and uint for the same logical value still agrees.
	if v <= math.MaxInt64 {
		writeInt(h, int64(v))
		return
	}
	h.Write([]byte{'u'})
	h.Write([]byte(strconv.FormatUint(v, 10)))
}

func writeFloat(h byteWriter, v float64) {
	// Integral floats hash like the matching integer. JSON decoding turns
	// every number into float64; without this, an action built in code with
	// int attributes would not match the same action decoded from JSON.
	// math.MaxInt64 rounds to 2^63 as a float64, so the bound is strict.
	if v == math.Trunc(v) && !math.IsInf(v, 0) && math.Abs(v) < math.MaxInt64 {
		writeInt(h, int64(v))
		return
	}
	h.Write([]byte{'f'})
	h.Write([]byte(strconv.FormatFloat(v, 'g', -1, 64)))
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte{'s'})
	h.Write([]byte(s))
	return h.Sum64()
}
