package ui

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"statview/adapters/export"
	"statview/adapters/ingest"
	"statview/adapters/render"
	"statview/domain/core"
	"statview/domain/plotspec"
	"statview/domain/stats"
	"statview/domain/table"
	"statview/internal/correlate"
	"statview/internal/describe"
	"statview/internal/errors"
	"statview/internal/plotbuild"
)

// handleCreateSession accepts an upload (multipart "file" field or raw
// body) and opens a session owning the parsed table.
func (s *Server) handleCreateSession(c *gin.Context) {
	t, fp, ok := s.parseUpload(c)
	if !ok {
		return
	}
	id := s.sessions.Create(t, fp)
	c.JSON(http.StatusCreated, gin.H{
		"session_id":  id,
		"rows":        t.RowCount(),
		"columns":     t.ColumnCount(),
		"numeric":     t.NumericNames(),
		"fingerprint": fp,
	})
}

// sessionID validates the :id path parameter before it reaches the
// session store
func (s *Server) sessionID(c *gin.Context) (core.SessionID, bool) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return "", false
	}
	return id, true
}

func (s *Server) columnName(c *gin.Context, raw string) (core.ColumnName, bool) {
	name, err := core.ParseColumnName(raw)
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return "", false
	}
	return name, true
}

// handleReplaceTable swaps a new upload into an existing session,
// discarding the previous table, subset, and cached matrix.
func (s *Server) handleReplaceTable(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	t, fp, ok := s.parseUpload(c)
	if !ok {
		return
	}
	if err := s.sessions.Replace(id, t, fp); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":  id,
		"rows":        t.RowCount(),
		"columns":     t.ColumnCount(),
		"numeric":     t.NumericNames(),
		"fingerprint": fp,
	})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	s.sessions.Delete(id)
	c.Status(http.StatusNoContent)
}

func (s *Server) parseUpload(c *gin.Context) (*table.Table, core.TableFingerprint, bool) {
	if err := s.uploads.Acquire(c.Request.Context(), 1); err != nil {
		s.respondError(c, errors.Wrap(err, "upload admission cancelled"))
		return nil, "", false
	}
	defer s.uploads.Release(1)

	raw, err := s.readUploadBytes(c)
	if err != nil {
		s.respondError(c, err)
		return nil, "", false
	}

	format := ingest.Format(c.DefaultQuery("format", string(ingest.FormatAuto)))
	t, err := s.loader.Load(raw, format)
	if err != nil {
		s.respondError(c, err)
		return nil, "", false
	}
	return t, core.NewTableFingerprint(raw), true
}

func (s *Server) readUploadBytes(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, errors.Wrap(err, "failed to open upload")
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, s.cfg.Data.MaxUploadBytes+1))
	}
	return io.ReadAll(io.LimitReader(c.Request.Body, s.cfg.Data.MaxUploadBytes+1))
}

// handleOverview reports table shape and per-column metadata
func (s *Server) handleOverview(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	t, err := s.sessions.Table(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	active, _ := s.sessions.ActiveColumns(id)
	fp, _ := s.sessions.Fingerprint(id)

	columns := make([]gin.H, 0, t.ColumnCount())
	for _, col := range t.Columns() {
		entry := gin.H{
			"name":    col.Name,
			"class":   col.Class,
			"missing": col.MissingCount(),
			"unique":  col.UniqueCount(),
		}
		if t.RowCount() > 0 {
			entry["missing_rate"] = float64(col.MissingCount()) / float64(t.RowCount())
		}
		if col.IsNumeric() {
			record := describe.Column(col)
			entry["min"] = record.Min
			entry["max"] = record.Max
		}
		columns = append(columns, entry)
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":           t.RowCount(),
		"columns":        columns,
		"numeric":        t.NumericNames(),
		"active_columns": active,
		"fingerprint":    fp,
	})
}

// handleSetColumns narrows the active numeric-column subset
func (s *Server) handleSetColumns(c *gin.Context) {
	var body struct {
		Columns []core.ColumnName `json:"columns"`
	}
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, errors.InvalidInput("body must be {\"columns\": [...]}"))
		return
	}
	if err := s.sessions.SetActiveColumns(id, body.Columns); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active_columns": body.Columns})
}

func (s *Server) activeTable(c *gin.Context) (*table.Table, bool) {
	id, ok := s.sessionID(c)
	if !ok {
		return nil, false
	}
	t, err := s.sessions.ActiveTable(id)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return t, true
}

func (s *Server) handleStats(c *gin.Context) {
	t, ok := s.activeTable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": describe.Summarize(t)})
}

func (s *Server) handleStatsCSV(c *gin.Context) {
	t, ok := s.activeTable(c)
	if !ok {
		return
	}
	payload, err := export.StatsCSV(describe.Summarize(t))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="statistical_summary.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

func (s *Server) handleStatsXLSX(c *gin.Context) {
	t, ok := s.activeTable(c)
	if !ok {
		return
	}
	payload, err := export.StatsXLSX(describe.Summarize(t))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="statistical_summary.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
}

func (s *Server) handleCorrelation(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	matrix, err := s.sessions.Correlation(id, stats.MethodPearson)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matrix)
}

func (s *Server) handleTopCorrelated(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	matrix, err := s.sessions.Correlation(id, stats.MethodPearson)
	if err != nil {
		s.respondError(c, err)
		return
	}

	k := s.cfg.Data.TopK
	if kStr := c.Query("k"); kStr != "" {
		parsed, err := strconv.Atoi(kStr)
		if err != nil || parsed < 1 {
			s.respondError(c, errors.InvalidInput("k must be a positive integer"))
			return
		}
		k = parsed
	}

	column, ok := s.columnName(c, c.Param("column"))
	if !ok {
		return
	}
	partners, err := correlate.TopCorrelated(matrix, column, k)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": column, "partners": partners})
}

func (s *Server) handleScatterPlot(c *gin.Context) {
	t, ok := s.activeTable(c)
	if !ok {
		return
	}
	x, ok := s.columnName(c, c.Query("x"))
	if !ok {
		return
	}
	y, ok := s.columnName(c, c.Query("y"))
	if !ok {
		return
	}
	spec, err := plotbuild.Scatter(t, x, y)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.servePNG(c, t, spec)
}

func (s *Server) handleBoxPlot(c *gin.Context) {
	t, ok := s.activeTable(c)
	if !ok {
		return
	}
	var names []core.ColumnName
	if raw := c.Query("columns"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			name, ok := s.columnName(c, strings.TrimSpace(part))
			if !ok {
				return
			}
			names = append(names, name)
		}
	} else {
		names = t.NumericNames()
	}
	spec, err := plotbuild.Box(t, names)
	if err != nil {
		s.respondError(c, err)
		return
	}
	for _, warning := range spec.Warnings {
		s.log.Warn("box plot: %s", warning)
	}
	s.servePNG(c, t, spec)
}

func (s *Server) handleHistogramPlot(c *gin.Context) {
	t, ok := s.activeTable(c)
	if !ok {
		return
	}
	bins := 0
	if binStr := c.Query("bins"); binStr != "" {
		parsed, err := strconv.Atoi(binStr)
		if err != nil || parsed < 1 {
			s.respondError(c, errors.InvalidInput("bins must be a positive integer"))
			return
		}
		bins = parsed
	}
	column, ok := s.columnName(c, c.Query("column"))
	if !ok {
		return
	}
	spec, err := plotbuild.Histogram(t, column, bins, s.cfg.Data.HistogramBins)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.servePNG(c, t, spec)
}

func (s *Server) handleSkewBarPlot(c *gin.Context) {
	t, ok := s.activeTable(c)
	if !ok {
		return
	}
	spec, err := plotbuild.SkewBar(t)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.servePNG(c, t, spec)
}

func (s *Server) servePNG(c *gin.Context, t *table.Table, spec *plotspec.Spec) {
	png, err := render.PNG(spec, t)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleReport(c *gin.Context) {
	t, ok := s.activeTable(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", export.Report(t, describe.Summarize(t)))
}

func (s *Server) handleReportHTML(c *gin.Context) {
	t, ok := s.activeTable(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", export.ReportHTML(t, describe.Summarize(t)))
}

// respondError maps pipeline errors onto HTTP statuses, keeping the
// structured code and offending-column detail in the body
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)

	switch {
	case core.IsParseError(err):
		status = http.StatusBadRequest
		code = errors.CodeParseError
	case core.IsRenderError(err):
		status = http.StatusConflict
		code = errors.CodeRenderError
	case stderrors.Is(err, core.ErrUnknownColumn):
		status = http.StatusNotFound
		code = errors.CodeUnknownColumn
	case core.IsSelectionError(err):
		status = http.StatusBadRequest
		code = errors.CodeInvalidColumn
	case code == errors.CodeNotFound:
		status = http.StatusNotFound
	case code == errors.CodeUnknownColumn:
		status = http.StatusNotFound
	case code == errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case code == errors.CodeRenderError:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	c.JSON(status, gin.H{"code": code, "error": err.Error()})
}
