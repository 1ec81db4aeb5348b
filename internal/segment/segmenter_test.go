package segment_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"swiftvisa/backend/internal/segment"
)

func tokens(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestSegment(t *testing.T) {
	t.Run("Empty Document", func(t *testing.T) {
		chunks, err := segment.Segment("doc.pdf", "", 10, 2)
		assert.NoError(t, err)
		assert.Empty(t, chunks)

		chunks, err = segment.Segment("doc.pdf", "   \n\t  ", 10, 2)
		assert.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("Invalid Window", func(t *testing.T) {
		_, err := segment.Segment("doc.pdf", "a b c", 0, 0)
		assert.ErrorIs(t, err, segment.ErrInvalidWindow)

		_, err = segment.Segment("doc.pdf", "a b c", 10, 10)
		assert.ErrorIs(t, err, segment.ErrInvalidWindow)

		_, err = segment.Segment("doc.pdf", "a b c", 10, 15)
		assert.ErrorIs(t, err, segment.ErrInvalidWindow)

		_, err = segment.Segment("doc.pdf", "a b c", 10, 0)
		assert.ErrorIs(t, err, segment.ErrInvalidWindow)
	})

	t.Run("Single Short Window", func(t *testing.T) {
		chunks, err := segment.Segment("policy.pdf", "Applicants under 18 require a guardian co-signature for a tourist visa.", 10, 2)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "policy.pdf", chunks[0].Document)
		assert.Equal(t, 0, chunks[0].Sequence)
		assert.Contains(t, chunks[0].Text, "guardian co-signature")
	})

	t.Run("Overlapping Windows", func(t *testing.T) {
		chunks, err := segment.Segment("d", tokens(19), 10, 2)
		require.NoError(t, err)
		require.Len(t, chunks, 3)

		// Windows start at 0, 8, 16; overlap of 2 tokens between neighbours.
		assert.True(t, strings.HasPrefix(chunks[0].Text, "w0 "))
		assert.True(t, strings.HasPrefix(chunks[1].Text, "w8 "))
		assert.True(t, strings.HasPrefix(chunks[2].Text, "w16 "))
		assert.True(t, strings.HasSuffix(chunks[0].Text, "w9"))
		assert.True(t, strings.HasSuffix(chunks[2].Text, "w18"))

		for i, c := range chunks {
			assert.Equal(t, i, c.Sequence)
		}
	})

	t.Run("Last Window May Be Short", func(t *testing.T) {
		chunks, err := segment.Segment("d", tokens(11), 10, 2)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Len(t, strings.Fields(chunks[0].Text), 10)
		assert.Len(t, strings.Fields(chunks[1].Text), 3)
	})

	t.Run("Whitespace Normalization", func(t *testing.T) {
		a, err := segment.Segment("d", "one  two\tthree\n\nfour", 3, 1)
		require.NoError(t, err)
		b, err := segment.Segment("d", "one two three four", 3, 1)
		require.NoError(t, err)
		assert.Equal(t, b, a)
	})

	t.Run("Deterministic", func(t *testing.T) {
		text := tokens(137)
		a, err := segment.Segment("d", text, 30, 7)
		require.NoError(t, err)
		b, err := segment.Segment("d", text, 30, 7)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("Chunk Count Formula", func(t *testing.T) {
		cases := []struct {
			n, window, overlap int
		}{
			{1, 10, 2}, {9, 10, 2}, {10, 10, 2}, {11, 10, 2},
			{16, 10, 2}, {17, 10, 2}, {19, 10, 2}, {100, 10, 2},
			{300, 300, 50}, {301, 300, 50}, {1000, 300, 50},
			{12, 10, 8},
		}
		for _, tc := range cases {
			chunks, err := segment.Segment("d", tokens(tc.n), tc.window, tc.overlap)
			require.NoError(t, err)

			stride := tc.window - tc.overlap
			rest := tc.n - tc.window
			if rest < 0 {
				rest = 0
			}
			want := (rest+stride-1)/stride + 1
			assert.Len(t, chunks, want, "n=%d window=%d overlap=%d", tc.n, tc.window, tc.overlap)
		}
	})
}
