package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tingly-dev/tingly-porter/internal/dataformat"
	"github.com/tingly-dev/tingly-porter/internal/form"
)

var contentTypes = map[string]string{
	"csv":    "text/csv; charset=utf-8",
	"tsv":    "text/tab-separated-values; charset=utf-8",
	"json":   "application/json",
	"jsonl":  "application/x-ndjson",
	"yaml":   "application/yaml",
	"xlsx":   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"base64": "text/plain; charset=utf-8",
}

// ExportFormSchema returns the fields of the export form
func (s *Server) ExportFormSchema(c *gin.Context) {
	formats := s.currentFormats()
	f := form.NewExportForm(formats.Export, formats.Streaming)
	c.JSON(http.StatusOK, FormSchemaResponse{Success: true, Data: f.Fields()})
}

// ExportActionFormSchema returns the field merged into the bulk action toolbar
func (s *Server) ExportActionFormSchema(c *gin.Context) {
	f := form.NewExportActionForm(form.ActionFormatChoices(s.currentFormats().Action))
	c.JSON(http.StatusOK, FormSchemaResponse{Success: true, Data: f.Fields()})
}

// Export validates an ExportForm and hands the selection to the export engine
func (s *Server) Export(c *gin.Context) {
	formats := s.currentFormats()
	f := form.NewExportForm(formats.Export, formats.Streaming)
	valid := f.Bind(c.Request)
	s.recordSubmission(c, "export", valid, f.Format(), bool(f.Data.IsStreamingExport), f.Errors)
	if !valid {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid export form", Errors: f.Errors})
		return
	}
	s.writeExport(c, f.Format(), f.Streaming(), nil)
}

// ExportAction runs the bulk export action. An unset format falls back to the
// first action format.
func (s *Server) ExportAction(c *gin.Context) {
	actionFormats := s.currentFormats().Action
	f := form.NewExportActionForm(form.ActionFormatChoices(actionFormats))
	if !f.Bind(c.Request) {
		s.recordSubmission(c, "export_action", false, nil, false, f.Errors)
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid export action", Errors: f.Errors})
		return
	}

	var selected dataformat.Format
	if value := f.FileFormat(); value == "" {
		if len(actionFormats) == 0 {
			errs := form.Errors{"file_format": {form.T(form.MsgRequired)}}
			s.recordSubmission(c, "export_action", false, nil, false, errs)
			c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "no export formats enabled", Errors: errs})
			return
		}
		selected = actionFormats[0]
	} else {
		format, err := form.ResolveFormat(actionFormats, value)
		if err != nil {
			errs := form.Errors{"file_format": {form.T(form.MsgInvalidChoice, value)}}
			s.recordSubmission(c, "export_action", false, nil, false, errs)
			c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid export action", Errors: errs})
			return
		}
		selected = format
	}
	s.recordSubmission(c, "export_action", true, selected, false, nil)

	s.writeExport(c, selected, false, c.PostFormArray("_selected_action"))
}

func (s *Server) exportFileName(resource string, f dataformat.Format) string {
	return fmt.Sprintf("%s-%s.%s", resource, s.now().Format("2006-01-02"), f.Extension())
}

func (s *Server) writeExport(c *gin.Context, f dataformat.Format, streaming bool, ids []string) {
	resource := c.Param("resource")
	fileName := s.exportFileName(resource, f)

	if s.exportHook == nil {
		c.JSON(http.StatusOK, ExportSelectionResponse{
			Success: true,
			Data: ExportSelection{
				Resource:  resource,
				Format:    formatInfo(f),
				Streaming: streaming,
				IDs:       ids,
				FileName:  fileName,
			},
		})
		return
	}

	contentType, ok := contentTypes[f.Name()]
	if !ok {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(fileName, `"`, "")))
	c.Status(http.StatusOK)

	w := c.Writer
	err := s.exportHook(c.Request.Context(), &ExportRequest{
		Resource:  resource,
		Format:    f,
		Streaming: streaming,
		IDs:       ids,
		Writer:    &flushWriter{w: w, flush: streaming},
	})
	if err != nil {
		logrus.Errorf("Export of %s as %s failed: %v", resource, f.Name(), err)
		if !w.Written() {
			c.Header("Content-Type", "")
			c.Header("Content-Disposition", "")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Error: fmt.Sprintf("export failed: %v", err)})
		}
		return
	}
	logrus.Infof("Exported %s as %s (streaming=%t, %d bytes)", resource, f.Name(), streaming, w.Size())
}

// flushWriter pushes each chunk to the client when streaming
type flushWriter struct {
	w     gin.ResponseWriter
	flush bool
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if fw.flush && err == nil {
		fw.w.Flush()
	}
	return n, err
}
