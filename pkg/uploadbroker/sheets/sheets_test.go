package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybergallery/upload-broker/pkg/uploadbroker"
)

type staticTokens string

func (t staticTokens) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

func TestAppendRow(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string][]string
	var gotBody struct {
		Values [][]string `json:"values"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient("sheet-123", staticTokens("tok"),
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithSheetName("Submissions"),
	)

	cells := []string{"id-1", "Title", "2024-03-15", "desc", "https://cdn.example/k.png"}
	require.NoError(t, client.AppendRow(context.Background(), cells))

	assert.Equal(t, "/v4/spreadsheets/sheet-123/values/Submissions!A:E:append", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, []string{"USER_ENTERED"}, gotQuery["valueInputOption"])
	assert.Equal(t, []string{"INSERT_ROWS"}, gotQuery["insertDataOption"])
	require.Len(t, gotBody.Values, 1)
	assert.Equal(t, cells, gotBody.Values[0])
}

func TestAppendRowMissingSpreadsheetID(t *testing.T) {
	client := NewClient("", staticTokens("tok"))

	err := client.AppendRow(context.Background(), []string{"a"})
	var configErr *uploadbroker.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "SPREADSHEET_ID", configErr.Key)
}

func TestAppendRowUpstreamRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":"PERMISSION_DENIED"}}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient("sheet-123", staticTokens("tok"),
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
	)

	err := client.AppendRow(context.Background(), []string{"a"})
	var upstream *uploadbroker.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	assert.Equal(t, "sheets", upstream.Service)
}

func TestAppendRowDefaultSheetName(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer server.Close()

	client := NewClient("sid", staticTokens("tok"),
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
	)
	require.NoError(t, client.AppendRow(context.Background(), []string{"a"}))
	assert.Equal(t, "/v4/spreadsheets/sid/values/Sheet1!A:E:append", gotPath)
}
