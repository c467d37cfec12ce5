package form

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tingly-dev/tingly-porter/internal/dataformat"
)

func newCSVJSONExportForm() *ExportForm {
	return NewExportForm(csvJSON, []dataformat.Format{dataformat.CSV})
}

func TestExportFormStreamingRule(t *testing.T) {
	tests := []struct {
		name      string
		streaming string
		format    string
		valid     bool
		errMsg    string
	}{
		{"streaming json rejected", "true", "1", false, "json extension does not support exporting large datasets."},
		{"streaming csv accepted", "true", "0", true, ""},
		{"checkbox on json rejected", "on", "1", false, "json extension does not support exporting large datasets."},
		{"no streaming json accepted", "false", "1", true, ""},
		{"no streaming csv accepted", "false", "0", true, ""},
		{"unchecked json accepted", "", "1", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCSVJSONExportForm()
			values := url.Values{"file_format": {tt.format}}
			if tt.streaming != "" {
				values.Set("is_streaming_export", tt.streaming)
			}
			got := f.Bind(postForm(t, values))
			assert.Equal(t, tt.valid, got, f.Errors.Error())
			assert.Equal(t, tt.errMsg, f.Errors.First("is_streaming_export"))
			if tt.valid {
				require.NotNil(t, f.Format())
			}
		})
	}
}

func TestExportFormNeverStreamingErrorWhenFlagOff(t *testing.T) {
	formats := dataformat.All()
	for i := range formats {
		f := NewExportForm(formats, nil)
		values := url.Values{"file_format": {FormatChoices(formats)[i+1].Value}, "is_streaming_export": {"false"}}
		assert.True(t, f.Bind(postForm(t, values)), f.Errors.Error())
		assert.False(t, f.Errors.Has("is_streaming_export"))
	}
}

func TestExportFormBadFileFormatDoesNotCrash(t *testing.T) {
	for _, value := range []string{"abc", "2", "-1", "1.5", "99999999999999999999", " "} {
		t.Run(value, func(t *testing.T) {
			f := newCSVJSONExportForm()
			values := url.Values{"file_format": {value}, "is_streaming_export": {"true"}}
			assert.NotPanics(t, func() {
				assert.False(t, f.Bind(postForm(t, values)))
			})
			assert.True(t, f.Errors.Has("file_format"))
			assert.False(t, f.Errors.Has("is_streaming_export"))
			assert.Nil(t, f.Format())
		})
	}
}

func TestExportFormMissingFileFormat(t *testing.T) {
	f := newCSVJSONExportForm()
	assert.False(t, f.Bind(postForm(t, url.Values{"is_streaming_export": {"true"}})))
	assert.Equal(t, "This field is required.", f.Errors.First("file_format"))
	assert.False(t, f.Errors.Has("is_streaming_export"))
}

func TestExportFormEmptyFormats(t *testing.T) {
	f := NewExportForm(nil, nil)
	assert.Empty(t, f.Choices())

	assert.NotPanics(t, func() {
		assert.False(t, f.Bind(postForm(t, url.Values{"file_format": {"0"}})))
	})
	assert.True(t, f.Errors.Has("file_format"))

	assert.False(t, f.Bind(postForm(t, url.Values{})))
	assert.True(t, f.Errors.Has("file_format"))
}

func TestExportFormStreamingMembershipByName(t *testing.T) {
	streaming := dataformat.StreamingSubset(dataformat.All())
	f := NewExportForm([]dataformat.Format{dataformat.XLSX, dataformat.JSONL}, streaming)

	assert.True(t, f.Bind(postForm(t, url.Values{"file_format": {"1"}, "is_streaming_export": {"1"}})), f.Errors.Error())
	assert.True(t, f.Streaming())
	assert.Equal(t, "jsonl", f.Format().Name())

	assert.False(t, f.Bind(postForm(t, url.Values{"file_format": {"0"}, "is_streaming_export": {"1"}})))
	assert.Equal(t, "xlsx extension does not support exporting large datasets.", f.Errors.First("is_streaming_export"))
}

func TestExportFormValidate(t *testing.T) {
	f := newCSVJSONExportForm()
	f.Data = ExportData{IsStreamingExport: true, FileFormat: "1"}
	assert.False(t, f.Validate())
	assert.True(t, f.Errors.Has("is_streaming_export"))

	f.Data.FileFormat = "0"
	assert.True(t, f.Validate())
	assert.Equal(t, "csv", f.Format().Name())

	f.Data.FileFormat = ""
	assert.False(t, f.Validate())
	assert.Equal(t, "This field is required.", f.Errors.First("file_format"))
}

func TestExportFormFields(t *testing.T) {
	fields := newCSVJSONExportForm().Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "is_streaming_export", fields[0].Name)
	assert.Equal(t, "Large datasets export", fields[0].Label)
	assert.False(t, fields[0].Required)
	assert.Equal(t, WidgetCheckbox, fields[0].Widget)
	assert.Equal(t, "file_format", fields[1].Name)
	assert.True(t, fields[1].Required)
}
