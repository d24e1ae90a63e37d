package storage

import (
	"math"
	"testing"
	"time"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/grantmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalGrant(t *testing.T) {
	closes := time.Date(2026, 11, 30, 12, 0, 0, 0, time.UTC)
	opens := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		grant *core.Grant
	}{
		{
			"full grant",
			&core.Grant{
				Id:           "vinnova-2026-014",
				Title:        "AI för hälsa",
				Description:  "Funding for applied AI in healthcare",
				Organization: "Vinnova",
				Eligibility:  "Swedish SMEs and research institutes",
				Evaluation:   "Novelty, feasibility, impact",
				Keywords:     []string{"ai", "hälsa", "healthcare"},
				Sectors:      []string{"health", "technology"},
				EligibleOrgs: []string{"SME", "university"},
				FundingMin:   500_000,
				FundingMax:   3_000_000,
				Currency:     "SEK",
				Embedding:    []float32{0.12, -0.5, 0.98, 0},
				OpensAt:      opens,
				ClosesAt:     closes,
			},
		},
		{
			"minimal grant",
			&core.Grant{
				Id:    "min-1",
				Title: "Minimal",
			},
		},
		{
			"open-ended closing date",
			&core.Grant{
				Id:      "open-1",
				Title:   "Rolling call",
				OpensAt: opens,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalGrant(tt.grant)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalGrant(data)
			require.NoError(t, err)
			assert.Equal(t, tt.grant, decoded)
		})
	}
}

func TestUnmarshalGrant_Invalid(t *testing.T) {
	t.Run("empty data", func(t *testing.T) {
		_, err := UnmarshalGrant([]byte{})
		assert.Error(t, err)
	})

	t.Run("garbage data", func(t *testing.T) {
		_, err := UnmarshalGrant([]byte{0xff, 0xff, 0xff})
		assert.Error(t, err)
	})

	// For a grant with no embedding and zero times, the record ends with
	// three single-byte varints: embedding count, OpensAt, ClosesAt. Splicing
	// a bogus count over the third-to-last byte corrupts only that field.
	spliceEmbeddingCount := func(count int) []byte {
		data := MarshalGrant(&core.Grant{Id: "c", Title: "Corrupt"})
		bogus := make([]byte, varint.Int.Size(count))
		varint.Int.Marshal(count, bogus)

		corrupt := append([]byte{}, data[:len(data)-3]...)
		corrupt = append(corrupt, bogus...)
		return append(corrupt, data[len(data)-2:]...)
	}

	t.Run("embedding count exceeding the data errors, no allocation", func(t *testing.T) {
		_, err := UnmarshalGrant(spliceEmbeddingCount(math.MaxInt))
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})

	t.Run("negative embedding count errors, no panic", func(t *testing.T) {
		_, err := UnmarshalGrant(spliceEmbeddingCount(-1))
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})
}

func TestUnmarshalStrings_CorruptCount(t *testing.T) {
	encodeCount := func(count int) []byte {
		buf := make([]byte, varint.Int.Size(count))
		varint.Int.Marshal(count, buf)
		return buf
	}

	t.Run("count exceeding the data", func(t *testing.T) {
		_, _, err := unmarshalStrings(encodeCount(1 << 40))
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})

	t.Run("negative count", func(t *testing.T) {
		_, _, err := unmarshalStrings(encodeCount(-1))
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})

	t.Run("plausible count with truncated payload still errors", func(t *testing.T) {
		// Count 2 but only one empty string follows.
		data := append(encodeCount(2), 0x00)
		_, _, err := unmarshalStrings(data)
		assert.Error(t, err)
	})
}

func TestGrantZeroTimesSurvive(t *testing.T) {
	g := &core.Grant{Id: "z", Title: "Zero times"}
	decoded, err := UnmarshalGrant(MarshalGrant(g))
	require.NoError(t, err)
	assert.True(t, decoded.OpensAt.IsZero())
	assert.True(t, decoded.ClosesAt.IsZero())
	assert.True(t, decoded.IsOpen(time.Now()))
}
