package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFormSchema(t *testing.T) {
	s := newTestServer(t, nil)
	w := serve(s, httptestGet("/api/v1/resources/book/export/form"))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[FormSchemaResponse](t, w)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "is_streaming_export", resp.Data[0].Name)
	assert.Equal(t, "file_format", resp.Data[1].Name)
	assert.Len(t, resp.Data[1].Choices, 7)
}

func TestExportStreamingRule(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name      string
		format    string
		streaming string
		code      int
		errMsg    string
	}{
		{"json streaming rejected", "2", "on", http.StatusBadRequest, "json extension does not support exporting large datasets."},
		{"xlsx streaming rejected", "5", "true", http.StatusBadRequest, "xlsx extension does not support exporting large datasets."},
		{"jsonl streaming accepted", "3", "on", http.StatusOK, ""},
		{"json without streaming", "2", "", http.StatusOK, ""},
		{"bad ordinal skips rule", "abc", "on", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := url.Values{"file_format": {tt.format}}
			if tt.streaming != "" {
				values.Set("is_streaming_export", tt.streaming)
			}
			w := serve(s, postForm("/api/v1/resources/book/export", values))
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code != http.StatusOK {
				resp := decode[ErrorResponse](t, w)
				assert.Equal(t, tt.errMsg, resp.Errors.First("is_streaming_export"))
			}
		})
	}
}

func TestExportWithoutEngine(t *testing.T) {
	s := newTestServer(t, nil)
	w := serve(s, postForm("/api/v1/resources/book/export", url.Values{"file_format": {"3"}, "is_streaming_export": {"on"}}))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[ExportSelectionResponse](t, w)
	assert.Equal(t, "book", resp.Data.Resource)
	assert.Equal(t, "jsonl", resp.Data.Format.Name)
	assert.True(t, resp.Data.Streaming)
	assert.Equal(t, "book-2026-10-18.jsonl", resp.Data.FileName)
}

func TestExportWithEngine(t *testing.T) {
	var got *ExportRequest
	s := newTestServer(t, nil, WithExportHook(func(ctx context.Context, req *ExportRequest) error {
		got = req
		for i := 1; i <= 3; i++ {
			if _, err := fmt.Fprintf(req.Writer, "%d,row\n", i); err != nil {
				return err
			}
		}
		return nil
	}))

	w := serve(s, postForm("/api/v1/resources/book/export", url.Values{"file_format": {"0"}, "is_streaming_export": {"1"}}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1,row\n2,row\n3,row\n", w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="book-2026-10-18.csv"`, w.Header().Get("Content-Disposition"))

	require.NotNil(t, got)
	assert.True(t, got.Streaming)
	assert.Equal(t, "csv", got.Format.Name())
	assert.Empty(t, got.IDs)
}

func TestExportEngineFailure(t *testing.T) {
	s := newTestServer(t, nil, WithExportHook(func(context.Context, *ExportRequest) error {
		return errors.New("database unavailable")
	}))

	w := serve(s, postForm("/api/v1/resources/book/export", url.Values{"file_format": {"2"}}))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "database unavailable")
}

func TestExportActionDefaultsToFirstFormat(t *testing.T) {
	s := newTestServer(t, nil)
	values := url.Values{
		"action":           {"export_admin_action"},
		"_selected_action": {"3", "7"},
	}
	w := serve(s, postForm("/api/v1/resources/book/actions/export", values))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[ExportSelectionResponse](t, w)
	assert.Equal(t, "csv", resp.Data.Format.Name)
	assert.Equal(t, []string{"3", "7"}, resp.Data.IDs)
	assert.False(t, resp.Data.Streaming)
}

func TestExportActionChoice(t *testing.T) {
	s := newTestServer(t, nil)

	w := serve(s, postForm("/api/v1/resources/book/actions/export", url.Values{"file_format": {"4"}}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "yaml", decode[ExportSelectionResponse](t, w).Data.Format.Name)

	w = serve(s, postForm("/api/v1/resources/book/actions/export", url.Values{"file_format": {"9"}}))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Select a valid choice. 9 is not one of the available choices.",
		decode[ErrorResponse](t, w).Errors.First("file_format"))
}

func TestExportActionMultipartAboveUploadLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Upload.MaxSizeMB = 1
	s := newTestServer(t, cfg)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("file_format", "1"))
	require.NoError(t, mw.WriteField("action", strings.Repeat("x", 2<<20)))
	for _, id := range []string{"3", "7"} {
		require.NoError(t, mw.WriteField("_selected_action", id))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resources/book/actions/export", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	// The upload limit only guards the import route
	w := serve(s, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[ExportSelectionResponse](t, w)
	assert.Equal(t, "tsv", resp.Data.Format.Name)
	assert.Equal(t, []string{"3", "7"}, resp.Data.IDs)
}

func TestExportActionFormSchema(t *testing.T) {
	cfg := testConfig(t)
	cfg.Formats.Action = []string{"xlsx", "csv"}
	s := newTestServer(t, cfg)

	w := serve(s, httptestGet("/api/v1/resources/book/actions/export/form"))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[FormSchemaResponse](t, w)
	require.Len(t, resp.Data, 1)
	assert.False(t, resp.Data[0].Required)
	require.Len(t, resp.Data[0].Choices, 2, "no placeholder on the action form")
	assert.Equal(t, "Excel (XLSX)", resp.Data[0].Choices[0].Label)
}

func TestExportEmptyFormats(t *testing.T) {
	cfg := testConfig(t)
	cfg.Formats.Export = []string{}
	cfg.Formats.Action = []string{}
	s := newTestServer(t, cfg)

	w := serve(s, postForm("/api/v1/resources/book/export", url.Values{"file_format": {"0"}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(s, postForm("/api/v1/resources/book/actions/export", url.Values{}))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no export formats enabled", decode[ErrorResponse](t, w).Error)
}
