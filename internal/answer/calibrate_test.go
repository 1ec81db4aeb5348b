package answer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"swiftvisa/backend/internal/answer"
)

func TestPolicy_Apply(t *testing.T) {
	policy := answer.DefaultPolicy()

	t.Run("Yes Is Capped", func(t *testing.T) {
		a := policy.Apply(answer.Answer{Eligibility: answer.Yes, Confidence: ptr(0.95)})
		require.NotNil(t, a.Confidence)
		assert.Equal(t, 0.9, *a.Confidence)
	})

	t.Run("Yes Below Cap Unchanged", func(t *testing.T) {
		a := policy.Apply(answer.Answer{Eligibility: answer.Yes, Confidence: ptr(0.6)})
		require.NotNil(t, a.Confidence)
		assert.Equal(t, 0.6, *a.Confidence)
	})

	t.Run("No Is Capped", func(t *testing.T) {
		a := policy.Apply(answer.Answer{Eligibility: answer.No, Confidence: ptr(0.99)})
		require.NotNil(t, a.Confidence)
		assert.Equal(t, 0.85, *a.Confidence)
	})

	t.Run("Partial Pinned Regardless Of Raw", func(t *testing.T) {
		for _, raw := range []*float64{ptr(0.8), ptr(0.01), nil} {
			a := policy.Apply(answer.Answer{Eligibility: answer.Partial, Confidence: raw})
			require.NotNil(t, a.Confidence)
			assert.Equal(t, 0.3, *a.Confidence)
		}
	})

	t.Run("Unknown Pinned", func(t *testing.T) {
		a := policy.Apply(answer.Answer{Eligibility: answer.Unknown, Confidence: ptr(0.9)})
		require.NotNil(t, a.Confidence)
		assert.Equal(t, 0.3, *a.Confidence)
	})

	t.Run("Absent Stays Absent For Capped Verdicts", func(t *testing.T) {
		a := policy.Apply(answer.Answer{Eligibility: answer.Yes})
		assert.Nil(t, a.Confidence)
	})

	t.Run("Custom Table Is Swappable", func(t *testing.T) {
		custom := answer.NewPolicy(0.5, 0.5, 0.1)
		a := custom.Apply(answer.Answer{Eligibility: answer.Yes, Confidence: ptr(0.95)})
		require.NotNil(t, a.Confidence)
		assert.Equal(t, 0.5, *a.Confidence)

		a = custom.Apply(answer.Answer{Eligibility: answer.Partial, Confidence: ptr(0.95)})
		require.NotNil(t, a.Confidence)
		assert.Equal(t, 0.1, *a.Confidence)
	})

	t.Run("Input Not Mutated", func(t *testing.T) {
		in := answer.Answer{Eligibility: answer.Partial, Confidence: ptr(0.8)}
		_ = policy.Apply(in)
		assert.Equal(t, 0.8, *in.Confidence)
	})
}
