package router

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

const (
	addressLen = 20
	// feeHexLen is the fixed hex width of the fee tier inside a path:
	// 3 bytes, big-endian, zero-left-padded.
	feeHexLen = 6
)

// EncodePath builds the router's exact-input path for a single hop:
// 20-byte from-token address, 3-byte fee tier, 20-byte to-token address.
func EncodePath(from, to []byte, fee uint32) ([]byte, error) {
	if len(from) != addressLen {
		return nil, fmt.Errorf("from token address is %d bytes, want %d", len(from), addressLen)
	}
	if len(to) != addressLen {
		return nil, fmt.Errorf("to token address is %d bytes, want %d", len(to), addressLen)
	}

	feeHex, err := padHex(uint64(fee), feeHexLen)
	if err != nil {
		return nil, fmt.Errorf("fee tier %d: %w", fee, err)
	}
	feeBytes, err := hex.DecodeString(feeHex)
	if err != nil {
		return nil, fmt.Errorf("fee tier %d: %w", fee, err)
	}

	path := make([]byte, 0, addressLen+feeHexLen/2+addressLen)
	path = append(path, from...)
	path = append(path, feeBytes...)
	path = append(path, to...)
	return path, nil
}

// padHex renders v as a zero-left-padded hex string of exactly length chars,
// failing when the value does not fit.
func padHex(v uint64, length int) (string, error) {
	s := strconv.FormatUint(v, 16)
	if len(s) > length {
		return "", fmt.Errorf("hex value %s exceeds %d digits", s, length)
	}
	for len(s) < length {
		s = "0" + s
	}
	return s, nil
}
