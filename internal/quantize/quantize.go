// Package quantize implements the byte-quantization primitives shared by the
// ranking pipeline (float<->byte conversion) and the O(n+256) bucket sort
// used to select top-K candidates from a byte-scored population without a
// comparison sort.
package quantize

import "math"

// FloatToByte clamps x to [0,1] and scales it to a byte: 0 maps to 0, 1 (or
// anything >= 1) maps to 255, and values in between are rounded to the
// nearest integer. Round-trip error against ByteToFloat is under 1/255.
func FloatToByte(x float64) uint8 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	scaled := math.Round(x * 255)
	if scaled > 255 {
		scaled = 255
	}
	if scaled < 0 {
		scaled = 0
	}
	return uint8(scaled)
}

// ByteToFloat is the inverse scaling of FloatToByte.
func ByteToFloat(b uint8) float64 {
	return float64(b) / 255
}

// ScoredID pairs an internal document id with a byte score. It is the
// common currency bucket sort operates on, and the shape candidates take
// when moving between Stage 1, Stage 2, and fusion.
type ScoredID struct {
	ID    int32
	Score uint8
}

// BucketSort buckets entries by score into 256 buckets and drains them from
// 255 down to 0, collecting at most limit entries. Within a bucket, entries
// are emitted in ascending internal-id order, which makes the overall
// output deterministic regardless of input order or bucket-population
// order. If limit <= 0, all entries are returned in sorted (non-increasing
// score, then ascending id) order.
//
// This is O(n + 256) when buckets are small: a single pass to bucket, then a
// bounded drain. Each non-empty bucket allocates its own backing slice, in
// addition to the output slice.
func BucketSort(entries []ScoredID, limit int) []ScoredID {
	if len(entries) == 0 {
		return nil
	}
	var buckets [256][]ScoredID
	for _, e := range entries {
		buckets[e.Score] = append(buckets[e.Score], e)
	}
	for score := uint8(255); ; score-- {
		bucket := buckets[score]
		if len(bucket) > 1 {
			insertionSortByID(bucket)
		}
		if score == 0 {
			break
		}
	}

	out := make([]ScoredID, 0, outputCap(entries, limit))
	for score := 255; score >= 0; score-- {
		for _, e := range buckets[score] {
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
	}
	return out
}

func outputCap(entries []ScoredID, limit int) int {
	if limit > 0 && limit < len(entries) {
		return limit
	}
	return len(entries)
}

// insertionSortByID sorts a (typically very small) bucket slice ascending
// by ID. Buckets are expected to be small relative to the corpus, so
// insertion sort avoids the overhead of a general-purpose sort for the
// common case while staying correct for larger ones.
func insertionSortByID(bucket []ScoredID) {
	for i := 1; i < len(bucket); i++ {
		v := bucket[i]
		j := i - 1
		for j >= 0 && bucket[j].ID > v.ID {
			bucket[j+1] = bucket[j]
			j--
		}
		bucket[j+1] = v
	}
}

// SaturatingAddByteProduct computes round((a*b)/255) and adds it to base,
// saturating at 255. This is the exact u8*u8/255 -> u8 contribution rule
// Stage 1 scoring uses: two byte-quantized weights multiply to a
// byte-quantized contribution without ever widening beyond a float
// intermediate for the single rounding step.
func SaturatingAddByteProduct(base uint8, a, b uint8) uint8 {
	// Rounds half-away-from-zero (math.Round), not banker's rounding.
	// §9's open question leaves the rounding mode implementation-defined
	// and flags it as a bit-exactness risk for cross-language parity;
	// this is a deliberate, documented choice, not an oversight.
	contribution := math.Round(float64(a) * float64(b) / 255)
	sum := float64(base) + contribution
	if sum > 255 {
		return 255
	}
	if sum < 0 {
		return 0
	}
	return uint8(sum)
}
