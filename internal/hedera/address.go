package hedera

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// HbarDecimals is the precision of HBAR amounts on the Hedera ledger (tinybar).
const HbarDecimals = 8

// WeibarDecimals is the precision the JSON-RPC relay expects for attached
// value (weibar, 18 decimals, mirroring wei).
const WeibarDecimals = 18

// TokenID is a parsed Hedera entity id (shard.realm.num).
type TokenID struct {
	Shard uint32
	Realm uint64
	Num   uint64
}

// ParseTokenID parses a "shard.realm.num" entity id string.
func ParseTokenID(s string) (TokenID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return TokenID{}, fmt.Errorf("invalid token id %q: want shard.realm.num", s)
	}
	shard, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return TokenID{}, fmt.Errorf("invalid token id %q: %w", s, err)
	}
	realm, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return TokenID{}, fmt.Errorf("invalid token id %q: %w", s, err)
	}
	num, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return TokenID{}, fmt.Errorf("invalid token id %q: %w", s, err)
	}
	return TokenID{Shard: uint32(shard), Realm: realm, Num: num}, nil
}

// EVMAddress maps a token identifier to its canonical 20-byte EVM address.
// A "0x"-prefixed identifier must already be a 20-byte hex address; a
// "shard.realm.num" identifier maps to the Hedera long-zero form
// (4-byte shard, 8-byte realm, 8-byte num, all big-endian).
func EVMAddress(token string) (common.Address, error) {
	if strings.HasPrefix(token, "0x") || strings.HasPrefix(token, "0X") {
		b := common.FromHex(token)
		if len(b) != common.AddressLength {
			return common.Address{}, fmt.Errorf("token %q is not a 20-byte address", token)
		}
		return common.BytesToAddress(b), nil
	}

	id, err := ParseTokenID(token)
	if err != nil {
		return common.Address{}, err
	}

	var out [common.AddressLength]byte
	binary.BigEndian.PutUint32(out[0:4], id.Shard)
	binary.BigEndian.PutUint64(out[4:12], id.Realm)
	binary.BigEndian.PutUint64(out[12:20], id.Num)
	return common.Address(out), nil
}

// NativeSet is the set of token identifiers treated as wrapped HBAR for
// routing. The first configured token is the canonical WHBAR used when a
// path must route through the wrapped-native token.
type NativeSet struct {
	ids       map[string]struct{}
	canonical string
}

// NewNativeSet builds the wrapped-HBAR set from configured token ids.
func NewNativeSet(tokens []string) (*NativeSet, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("at least one wrapped-HBAR token id is required")
	}
	ids := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, err := EVMAddress(t); err != nil {
			return nil, fmt.Errorf("wrapped-HBAR token: %w", err)
		}
		ids[t] = struct{}{}
	}
	return &NativeSet{ids: ids, canonical: tokens[0]}, nil
}

// Contains reports whether the token identifier is wrapped HBAR.
func (n *NativeSet) Contains(token string) bool {
	_, ok := n.ids[token]
	return ok
}

// Canonical returns the wrapped-HBAR token id used for path construction.
func (n *NativeSet) Canonical() string {
	return n.canonical
}
