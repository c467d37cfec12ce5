package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tingly-dev/tingly-porter/internal/dataformat"
	"github.com/tingly-dev/tingly-porter/internal/form"
	"github.com/tingly-dev/tingly-porter/internal/obs/otel"
	"github.com/tingly-dev/tingly-porter/internal/tmpstore"
)

// ImportFormSchema returns the fields of the upload step
func (s *Server) ImportFormSchema(c *gin.Context) {
	f := form.NewImportForm(s.currentFormats().Import)
	c.JSON(http.StatusOK, FormSchemaResponse{Success: true, Data: f.Fields()})
}

// Upload validates an ImportForm and stages the file for confirmation
func (s *Server) Upload(c *gin.Context) {
	resource := c.Param("resource")
	maxBytes := s.maxUploadBytes()
	if c.Request.ContentLength > maxBytes {
		s.rejectTooLarge(c, maxBytes)
		return
	}
	// Chunked bodies carry no length, the reader enforces the limit while parsing
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	f := form.NewImportForm(s.currentFormats().Import)
	if !f.Bind(c.Request) {
		if f.TooLarge() {
			s.rejectTooLarge(c, maxBytes)
			return
		}
		s.recordSubmission(c, "import", false, nil, false, f.Errors)
		s.rejectImport(c, http.StatusBadRequest, "invalid import form", f.Errors)
		return
	}
	selected := f.Format()
	header := f.Data.ImportFile

	if !s.store.Allowed(header.Filename) {
		errs := form.Errors{"import_file": {form.T(form.MsgFileNotAllowed)}}
		s.recordSubmission(c, "import", false, selected, false, errs)
		s.rejectImport(c, http.StatusBadRequest, "invalid import form", errs)
		return
	}

	src, err := header.Open()
	if err != nil {
		logrus.Errorf("Failed to open uploaded file %q: %v", header.Filename, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Error: "failed to read upload"})
		return
	}
	defer src.Close()

	sample := make([]byte, dataformat.SniffSize)
	n, err := io.ReadFull(src, sample)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		logrus.Errorf("Failed to read uploaded file %q: %v", header.Filename, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Error: "failed to read upload"})
		return
	}
	sample = sample[:n]
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Error: "failed to read upload"})
		return
	}

	name, size, err := s.store.Save(c.Request.Context(), src, selected.Extension())
	if err != nil {
		logrus.Errorf("Failed to stage upload %q: %v", header.Filename, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Error: "failed to stage upload"})
		return
	}
	s.recordSubmission(c, "import", true, selected, false, nil)
	s.tracker.RecordUpload(c.Request.Context(), resource, selected.Name(), size)

	var warnings []string
	if detected := s.currentDetector().Detect(sample); detected != nil && !dataformat.Same(detected, selected) {
		warnings = append(warnings, form.T(form.MsgFormatMismatch, selected.Title(), detected.Title()))
	}

	confirm := form.NewConfirmImportForm().Initial(name, form.BaseName(header.Filename), f.Data.InputFormat)
	logrus.Infof("Staged %s upload %q for %s as %s", selected.Name(), header.Filename, resource, name)

	c.JSON(http.StatusCreated, UploadResponse{
		Success: true,
		Data: UploadData{
			Confirm: map[string]string{
				"import_file_name":   confirm.Data.ImportFileName,
				"original_file_name": confirm.Data.OriginalFileName,
				"input_format":       confirm.Data.InputFormat,
			},
			Fields:   confirm.Fields(),
			Format:   formatInfo(selected),
			Size:     size,
			Warnings: warnings,
		},
	})
}

// ConfirmImport validates the hidden values of the confirm step and runs the import
func (s *Server) ConfirmImport(c *gin.Context) {
	resource := c.Param("resource")
	f := form.NewConfirmImportForm(form.WithFormats(s.currentFormats().Import))
	if !f.Bind(c.Request) {
		s.recordSubmission(c, "confirm_import", false, nil, false, f.Errors)
		s.rejectImport(c, http.StatusBadRequest, "invalid confirm form", f.Errors)
		return
	}

	file, err := s.store.Open(f.Data.ImportFileName)
	if err != nil {
		errs := form.Errors{}
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, tmpstore.ErrInvalidName):
			errs.Add("import_file_name", form.T(form.MsgInvalidFileName))
		case os.IsNotExist(err):
			errs.Add("import_file_name", form.T(form.MsgStagedFileMissing))
			status = http.StatusGone
		default:
			logrus.Errorf("Failed to open staged file %s: %v", f.Data.ImportFileName, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Error: "failed to open staged file"})
			return
		}
		s.recordSubmission(c, "confirm_import", false, f.Format(), false, errs)
		s.rejectImport(c, status, "invalid confirm form", errs)
		return
	}
	defer file.Close()

	// The ordinal is resolved against the current list; a reload may have moved it
	if staged := tmpstore.Extension(f.Data.ImportFileName); staged != f.Format().Extension() {
		errs := form.Errors{"input_format": {form.T(form.MsgFormatChanged)}}
		logrus.Warnf("Staged file %s has extension %q but input_format resolves to %s",
			f.Data.ImportFileName, staged, f.Format().Name())
		s.recordSubmission(c, "confirm_import", false, nil, false, errs)
		s.rejectImport(c, http.StatusConflict, "invalid confirm form", errs)
		return
	}
	s.recordSubmission(c, "confirm_import", true, f.Format(), false, nil)

	if s.importHook == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{Success: false, Error: "no import engine configured"})
		return
	}

	result, err := s.importHook(c.Request.Context(), &ImportRequest{
		Resource:         resource,
		Format:           f.Format(),
		OriginalFileName: f.Data.OriginalFileName,
		StagedFileName:   f.Data.ImportFileName,
		File:             file,
	})
	if err != nil {
		logrus.Warnf("Import of %q into %s failed: %v", f.Data.OriginalFileName, resource, err)
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Success: false, Error: fmt.Sprintf("import failed: %v", err)})
		return
	}
	if result == nil {
		result = &ImportResult{}
	}

	file.Close()
	if err := s.store.Remove(f.Data.ImportFileName); err != nil {
		logrus.Warnf("Failed to remove staged file %s: %v", f.Data.ImportFileName, err)
	}
	logrus.Infof("Imported %q into %s: %d new, %d updated, %d skipped",
		f.Data.OriginalFileName, resource, result.New, result.Updated, result.Skipped)

	c.JSON(http.StatusOK, ImportResponse{Success: true, Data: result})
}

func (s *Server) rejectTooLarge(c *gin.Context, maxBytes int64) {
	errs := form.Errors{
		"import_file": {form.T(form.MsgFileTooLarge, strconv.FormatInt(maxBytes>>20, 10))},
	}
	s.recordSubmission(c, "import", false, nil, false, errs)
	s.rejectImport(c, http.StatusRequestEntityTooLarge, "upload too large", errs)
}

func (s *Server) rejectImport(c *gin.Context, status int, msg string, errs form.Errors) {
	c.JSON(status, ErrorResponse{Success: false, Error: msg, Errors: errs})
}

func (s *Server) recordSubmission(c *gin.Context, name string, valid bool, format dataformat.Format, streaming bool, errs form.Errors) {
	opts := otel.SubmissionOptions{
		Form:        name,
		Resource:    c.Param("resource"),
		Valid:       valid,
		Streaming:   streaming,
		ErrorFields: errs.Fields(),
	}
	if format != nil {
		opts.Format = format.Name()
	}
	s.tracker.RecordSubmission(c.Request.Context(), opts)
}
