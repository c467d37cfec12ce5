package form

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmValues(importFileName string) url.Values {
	return url.Values{
		"import_file_name":   {importFileName},
		"original_file_name": {"books.csv"},
		"input_format":       {"0"},
	}
}

func TestConfirmImportFormStripsDirectories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "3f9c.csv", "3f9c.csv"},
		{"traversal", "/tmp/evil/../../etc/passwd", "passwd"},
		{"relative", "../secret.csv", "secret.csv"},
		{"windows separators", `C:\Users\x\..\y.csv`, "y.csv"},
		{"mixed separators", `a/b\c/d.csv`, "d.csv"},
		{"surrounding whitespace", " 3f9c.csv\n", "3f9c.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewConfirmImportForm()
			require.True(t, f.Bind(postForm(t, confirmValues(tt.input))), f.Errors.Error())
			assert.Equal(t, tt.want, f.Data.ImportFileName)
			assert.Equal(t, "books.csv", f.Data.OriginalFileName)
			assert.Equal(t, "0", f.Data.InputFormat)
		})
	}
}

func TestConfirmImportFormRejectsEmptyBaseName(t *testing.T) {
	for _, input := range []string{"/tmp/dir/", "..", "/a/..", "."} {
		f := NewConfirmImportForm()
		assert.False(t, f.Bind(postForm(t, confirmValues(input))), "input %q", input)
		assert.Equal(t, "Invalid file name.", f.Errors.First("import_file_name"))
	}
}

func TestConfirmImportFormRequired(t *testing.T) {
	f := NewConfirmImportForm()
	assert.False(t, f.Bind(postForm(t, url.Values{})))
	for _, field := range []string{"import_file_name", "original_file_name", "input_format"} {
		assert.Equal(t, "This field is required.", f.Errors.First(field), field)
	}
}

func TestConfirmImportFormTrimsHiddenValues(t *testing.T) {
	f := NewConfirmImportForm(WithFormats(csvJSON))
	values := url.Values{
		"import_file_name":   {"  abc.csv "},
		"original_file_name": {"\tbooks.csv"},
		"input_format":       {" 1 "},
	}
	require.True(t, f.Bind(postForm(t, values)), f.Errors.Error())
	assert.Equal(t, "abc.csv", f.Data.ImportFileName)
	assert.Equal(t, "books.csv", f.Data.OriginalFileName)
	assert.Equal(t, "1", f.Data.InputFormat)
	assert.Equal(t, "json", f.Format().Name())

	values.Set("original_file_name", "   ")
	f = NewConfirmImportForm()
	assert.False(t, f.Bind(postForm(t, values)))
	assert.Equal(t, []string{"This field is required."}, f.Errors.Get("original_file_name"))
}

func TestConfirmImportFormWithFormats(t *testing.T) {
	f := NewConfirmImportForm(WithFormats(csvJSON))
	values := confirmValues("x.csv")
	values.Set("input_format", "1")
	require.True(t, f.Bind(postForm(t, values)), f.Errors.Error())
	assert.Equal(t, "json", f.Format().Name())

	values.Set("input_format", "9")
	f = NewConfirmImportForm(WithFormats(csvJSON))
	assert.False(t, f.Bind(postForm(t, values)))
	assert.Equal(t, "Select a valid choice. 9 is not one of the available choices.", f.Errors.First("input_format"))
	assert.Nil(t, f.Format())
}

func TestConfirmImportFormWithoutFormatsKeepsOpaqueValue(t *testing.T) {
	f := NewConfirmImportForm()
	values := confirmValues("x.csv")
	values.Set("input_format", "anything")
	require.True(t, f.Bind(postForm(t, values)))
	assert.Nil(t, f.Format())
	assert.Equal(t, "anything", f.Data.InputFormat)
}

func TestConfirmImportFormInitialAndValidate(t *testing.T) {
	f := NewConfirmImportForm().Initial("/staging/abc.csv", "books.csv", "0")
	fields := f.Fields()
	require.Len(t, fields, 3)
	for _, field := range fields {
		assert.Equal(t, WidgetHidden, field.Widget)
	}
	assert.Equal(t, "/staging/abc.csv", fields[0].Value)

	require.True(t, f.Validate())
	assert.Equal(t, "abc.csv", f.Data.ImportFileName)

	empty := NewConfirmImportForm()
	assert.False(t, empty.Validate())
	assert.Len(t, empty.Errors.Fields(), 3)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "passwd", BaseName("/tmp/evil/../../etc/passwd"))
	assert.Equal(t, "", BaseName("dir/"))
	assert.Equal(t, "file", BaseName("file"))
	assert.Equal(t, "", BaseName(""))
}
