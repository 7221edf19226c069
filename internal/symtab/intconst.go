package symtab

import (
	"math/big"
	"strconv"
)

// readIntConstant calls an integer constant's reader and picks the narrowest
// lossless representation for the result.
func readIntConstant(read IntReader) any {
	var bits uint64
	negative := read(&bits)
	return widenInt(bits, negative, strconv.IntSize)
}

// widenInt represents a 64-bit constant as a native int when it fits in
// intBits bits and as a *big.Int otherwise. When negative is set, bits holds
// the constant's two's complement.
func widenInt(bits uint64, negative bool, intBits int) any {
	maxInt := int64(uint64(1)<<(intBits-1) - 1)
	minInt := -maxInt - 1

	if !negative {
		if bits <= uint64(maxInt) {
			return int(bits)
		}
		return new(big.Int).SetUint64(bits)
	}

	signed := int64(bits)
	if signed >= minInt {
		return int(signed)
	}
	return big.NewInt(signed)
}
