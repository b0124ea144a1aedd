package chain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// keccak256 is the hash used for function selectors and address checksums.
func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// selector returns the 4-byte function selector for a canonical signature
// like "approve(address,uint256)".
func selector(signature string) []byte {
	return keccak256([]byte(signature))[:4]
}

// pack ABI-encodes a call: selector followed by each argument padded to a
// 32-byte word. Only the static types the contracts use are supported.
func pack(signature string, args ...any) ([]byte, error) {
	data := selector(signature)
	for i, arg := range args {
		var word [32]byte
		switch v := arg.(type) {
		case *big.Int:
			if v.Sign() < 0 {
				return nil, fmt.Errorf("abi: negative uint256 at arg %d", i)
			}
			if v.BitLen() > 256 {
				return nil, fmt.Errorf("abi: uint256 overflow at arg %d", i)
			}
			v.FillBytes(word[:])
		case string:
			b, err := parseAddress(v)
			if err != nil {
				return nil, fmt.Errorf("abi: arg %d: %w", i, err)
			}
			copy(word[12:], b)
		default:
			return nil, fmt.Errorf("abi: unsupported arg type %T", arg)
		}
		data = append(data, word[:]...)
	}
	return data, nil
}

// parseAddress decodes a 0x-prefixed 20-byte hex address.
func parseAddress(addr string) ([]byte, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")
	if len(s) != 40 {
		return nil, fmt.Errorf("invalid address %q", addr)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %v", addr, err)
	}
	return b, nil
}

// decodeUint256 parses an eth_call hex result into a big integer.
func decodeUint256(result string) (*big.Int, error) {
	s := strings.TrimPrefix(result, "0x")
	if s == "" {
		return big.NewInt(0), nil
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("abi: invalid uint256 result %q", result)
	}
	return n, nil
}

// decodeAddress parses an eth_call hex result whose single return value is an
// address (right-aligned in one 32-byte word).
func decodeAddress(result string) (string, error) {
	s := strings.TrimPrefix(result, "0x")
	if len(s) < 40 {
		return "", fmt.Errorf("abi: result %q too short for address", result)
	}
	return ChecksumAddress("0x" + s[len(s)-40:])
}

// ChecksumAddress applies the EIP-55 mixed-case checksum so addresses render
// the way wallets display them.
func ChecksumAddress(addr string) (string, error) {
	b, err := parseAddress(addr)
	if err != nil {
		return "", err
	}
	lower := hex.EncodeToString(b)
	hash := keccak256([]byte(lower))

	out := make([]byte, 40)
	for i, c := range []byte(lower) {
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if c >= 'a' && nibble&0x0f >= 8 {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "0x" + string(out), nil
}

// SameAddress compares two addresses case-insensitively. Ownership checks in
// the transfer flow are advisory; the contract enforces the real thing.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, "0x"), strings.TrimPrefix(b, "0x"))
}
