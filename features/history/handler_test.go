package history_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"swiftvisa/backend/features/history"
	"swiftvisa/backend/internal/answer"
	"swiftvisa/backend/internal/decision"
)

type stubStore struct {
	records []decision.Record
	err     error
}

func (s *stubStore) Read() ([]decision.Record, error) {
	return s.records, s.err
}

func record(id, question string) decision.Record {
	return decision.Record{
		ID:        id,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Question:  question,
		Answer:    answer.Answer{Eligibility: answer.Yes},
	}
}

func TestHandler_List(t *testing.T) {
	t.Run("Returns Records In Write Order", func(t *testing.T) {
		store := &stubStore{records: []decision.Record{record("1", "first"), record("2", "second")}}
		handler := history.NewHandler(store)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest("GET", "/decisions", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data []decision.Record `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "first", resp.Data[0].Question)
		assert.Equal(t, "second", resp.Data[1].Question)
	})

	t.Run("Limit Keeps Most Recent", func(t *testing.T) {
		store := &stubStore{records: []decision.Record{record("1", "a"), record("2", "b"), record("3", "c")}}
		handler := history.NewHandler(store)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest("GET", "/decisions?limit=2", nil))

		var resp struct {
			Data []decision.Record `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "b", resp.Data[0].Question)
		assert.Equal(t, "c", resp.Data[1].Question)
	})

	t.Run("Invalid Limit Rejected", func(t *testing.T) {
		handler := history.NewHandler(&stubStore{})
		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest("GET", "/decisions?limit=-1", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Empty History Returns Empty Array", func(t *testing.T) {
		handler := history.NewHandler(&stubStore{})
		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest("GET", "/decisions", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
	})

	t.Run("Read Failure Maps To 500", func(t *testing.T) {
		handler := history.NewHandler(&stubStore{err: errors.New("io error")})
		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest("GET", "/decisions", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestFileStore(t *testing.T) {
	t.Run("Missing File Is Empty", func(t *testing.T) {
		store := history.NewFileStore(filepath.Join(t.TempDir(), "absent.jsonl"))
		records, err := store.Read()
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
