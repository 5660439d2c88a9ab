package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/mamadbah2/dairyfarm/internal/config"
	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

var summary = models.ProductionSummary{
	ID:              "2026-04-01",
	Date:            time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	TotalProduction: 20,
	NetProduction:   18,
	TotalSold:       15,
	FinalBalance:    3,
	ClosedAt:        time.Date(2026, 4, 1, 23, 0, 0, 0, time.UTC),
	Trigger:         models.TriggerAutomatic,
}

func TestSummaryRowColumns(t *testing.T) {
	row := SummaryRow(summary)
	require.Len(t, row, 12)
	require.Equal(t, "2026-04-01", row[0])
	require.Equal(t, 3.0, row[7])
	require.Equal(t, "AUTOMATIC", row[8])
	require.Equal(t, "2026-04-01T23:00:00Z", row[10])
}

func TestExporterAppendsThroughSheetsAPI(t *testing.T) {
	var body struct {
		Values [][]any `json:"values"`
	}
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	}))
	defer srv.Close()

	repo, err := NewGoogleSheetRepository(context.Background(), config.SheetsConfig{SpreadsheetID: "sheet-1"}, nil,
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication(), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	exporter := NewSummaryExporter(repo)
	require.Equal(t, "google_sheets", exporter.Name())
	require.NoError(t, exporter.Publish(context.Background(), summary))

	require.True(t, strings.HasPrefix(path, "/v4/spreadsheets/sheet-1/values/"), path)
	require.Len(t, body.Values, 1)
	require.Equal(t, "2026-04-01", body.Values[0][0])
}

func TestExporterSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	}))
	defer srv.Close()

	repo, err := NewGoogleSheetRepository(context.Background(), config.SheetsConfig{SpreadsheetID: "sheet-1"}, nil,
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication(), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	require.Error(t, NewSummaryExporter(repo).Publish(context.Background(), summary))
}
