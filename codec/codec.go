// Package codec implements the erasure-coding layer that turns an
// authenticated-encryption envelope into a set of fixed-size symbols, any
// K of which reconstruct the original bytes.
//
// Reed-Solomon (github.com/klauspost/reedsolomon) stands in for RaptorQ:
// no pure-Go RaptorQ implementation exists in this stack, and
// Reed-Solomon's maximum-distance-separable property gives a strictly
// stronger guarantee than RFC 6330's probabilistic one — any exactly-K
// surviving symbols decode deterministically, never merely "with high
// probability".
package codec

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
	"github.com/slackvfs/svfs/config"
	"github.com/slackvfs/svfs/vfserrors"
)

// Symbol is one fixed-size unit of encoded output.
type Symbol struct {
	ID      uint32
	Payload []byte
}

// EncodedData is the result of Encode: enough metadata to later read back
// an arbitrary subset of symbols and reconstruct the original bytes.
type EncodedData struct {
	OriginalLength uint64
	K              int
	R              int
	SymbolSize     uint16
	Symbols        []Symbol
}

// Encode splits data into K source symbols padded/grouped to SymbolSize,
// and produces R additional repair symbols, per params. Empty input
// yields K=R=0 and no symbols.
func Encode(data []byte, params config.EncodingParams) (EncodedData, error) {
	if len(data) == 0 {
		return EncodedData{OriginalLength: 0, K: 0, R: 0, SymbolSize: params.SymbolSize}, nil
	}
	if params.SymbolSize == 0 {
		return EncodedData{}, fmt.Errorf("%w: symbol size must be greater than zero", vfserrors.ErrSerialization)
	}

	symbolSize := int(params.SymbolSize)
	k := ceilDiv(len(data), symbolSize)
	r := ceilDiv(k*int(params.RedundancyRatio*1000), 1000)
	if r < 1 {
		r = 1
	}

	enc, err := reedsolomon.New(k, r)
	if err != nil {
		return EncodedData{}, fmt.Errorf("construct reed-solomon encoder (k=%d r=%d): %w", k, r, err)
	}

	shards := make([][]byte, k+r)
	padded := make([]byte, k*symbolSize)
	copy(padded, data)
	for i := 0; i < k; i++ {
		shards[i] = padded[i*symbolSize : (i+1)*symbolSize]
	}
	for i := k; i < k+r; i++ {
		shards[i] = make([]byte, symbolSize)
	}

	if err := enc.Encode(shards); err != nil {
		return EncodedData{}, fmt.Errorf("%w: reed-solomon encode: %v", vfserrors.ErrSerialization, err)
	}

	symbols := make([]Symbol, k+r)
	for i, shard := range shards {
		payload := make([]byte, symbolSize)
		copy(payload, shard)
		symbols[i] = Symbol{ID: uint32(i), Payload: payload}
	}

	return EncodedData{
		OriginalLength: uint64(len(data)),
		K:              k,
		R:              r,
		SymbolSize:     params.SymbolSize,
		Symbols:        symbols,
	}, nil
}

// Decode reconstructs the original bytes from encoded.Symbols, which may
// be a partial subset (missing entries represented as a nil Payload).
// Fails with InsufficientSymbolsError if fewer than K symbols survive.
func Decode(encoded EncodedData) ([]byte, error) {
	if encoded.K == 0 && encoded.R == 0 {
		return []byte{}, nil
	}

	total := encoded.K + encoded.R
	shards := make([][]byte, total)
	received := 0
	for _, sym := range encoded.Symbols {
		if int(sym.ID) >= total || sym.Payload == nil {
			continue
		}
		shards[sym.ID] = sym.Payload
		received++
	}
	if received < encoded.K {
		return nil, vfserrors.NewInsufficientSymbols(encoded.K, received)
	}

	dec, err := reedsolomon.New(encoded.K, encoded.R)
	if err != nil {
		return nil, fmt.Errorf("construct reed-solomon decoder (k=%d r=%d): %w", encoded.K, encoded.R, err)
	}
	if err := dec.Reconstruct(shards); err != nil {
		return nil, fmt.Errorf("%w: reed-solomon reconstruct: %v", vfserrors.ErrDataCorruption, err)
	}

	out := make([]byte, 0, encoded.K*int(encoded.SymbolSize))
	for i := 0; i < encoded.K; i++ {
		out = append(out, shards[i]...)
	}
	if uint64(len(out)) > encoded.OriginalLength {
		out = out[:encoded.OriginalLength]
	}
	return out, nil
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
