package codec

import (
	"bytes"
	"testing"

	"github.com/slackvfs/svfs/config"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	params := config.EncodingParams{SymbolSize: 16, RedundancyRatio: 0.5}
	data := []byte("the quick brown fox jumps over the lazy dog, twice for good measure")

	encoded, err := Encode(data, params)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded.K == 0 {
		t.Fatalf("expected nonzero K")
	}

	got, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip mismatch: got %q, want %q", got, data)
	}
}

func TestEncodeEmptyInput(t *testing.T) {
	params := config.EncodingParams{SymbolSize: 16, RedundancyRatio: 0.5}
	encoded, err := Encode([]byte{}, params)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded.K != 0 || encoded.R != 0 || len(encoded.Symbols) != 0 {
		t.Errorf("expected K=R=0 and no symbols for empty input, got K=%d R=%d symbols=%d", encoded.K, encoded.R, len(encoded.Symbols))
	}
	got, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty decode, got %d bytes", len(got))
	}
}

func TestDecodeFromSubsetOfSymbols(t *testing.T) {
	params := config.EncodingParams{SymbolSize: 8, RedundancyRatio: 1.0}
	data := []byte("0123456789abcdef0123456789abcdef")

	encoded, err := Encode(data, params)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Drop all but K symbols, keeping a mix of source and repair ids.
	kept := encoded.Symbols[encoded.K/2 : encoded.K/2+encoded.K]
	degraded := encoded
	degraded.Symbols = kept

	got, err := Decode(degraded)
	if err != nil {
		t.Fatalf("Decode from K symbols: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("degraded round trip mismatch: got %q, want %q", got, data)
	}
}

func TestDecodeInsufficientSymbols(t *testing.T) {
	params := config.EncodingParams{SymbolSize: 8, RedundancyRatio: 1.0}
	data := []byte("0123456789abcdef0123456789abcdef")

	encoded, err := Encode(data, params)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded.K < 2 {
		t.Skip("not enough symbols to test shortfall")
	}

	degraded := encoded
	degraded.Symbols = encoded.Symbols[:encoded.K-1]

	_, err = Decode(degraded)
	if err == nil {
		t.Fatalf("expected InsufficientSymbols error")
	}
}
