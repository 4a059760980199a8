package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/SscSPs/club_management_app/internal/apperrors"
)

func TestWriteRoster_ClearsThenWrites(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
		body  struct {
			Values [][]any `json:"values"`
		}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		if strings.HasSuffix(r.URL.Path, ":clear") {
			_, _ = w.Write([]byte(`{"clearedRange":"Dues!A1:F10"}`))
			return
		}
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"updatedRows":2}`))
	}))
	defer srv.Close()

	w, err := NewRosterWriter(context.Background(), "sheet-1", "Dues!A1",
		option.WithEndpoint(srv.URL), option.WithoutAuthentication(), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	err = w.WriteRoster(context.Background(), []string{"Player", "Balance"}, [][]any{{"Ada Park", "37.50"}})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 2)
	assert.Equal(t, "POST /v4/spreadsheets/sheet-1/values/Dues:clear", calls[0])
	assert.True(t, strings.HasPrefix(calls[1], "PUT /v4/spreadsheets/sheet-1/values/Dues!A1"))
	assert.Equal(t, [][]any{{"Player", "Balance"}, {"Ada Park", "37.50"}}, body.Values)
}

func TestWriteRoster_RemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	}))
	defer srv.Close()

	w, err := NewRosterWriter(context.Background(), "sheet-1", "Dues!A1",
		option.WithEndpoint(srv.URL), option.WithoutAuthentication(), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	err = w.WriteRoster(context.Background(), []string{"Player"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrRemote)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Dues", sheetName("Dues!A1"))
	assert.Equal(t, "Dues", sheetName("Dues"))
}
