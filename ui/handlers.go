package ui

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"calcdash/app"
	"calcdash/internal/errors"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleGetDashboard(c *gin.Context) {
	data, err := s.dashboard.GetAll(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (s *Server) handleGetClient(c *gin.Context) {
	view, err := s.dashboard.Client(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleGetSection(c *gin.Context) {
	payload, err := s.dashboard.GetSection(c.Request.Context(), c.Param("section"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleSaveSection(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.respondError(c, errors.InvalidInput("failed to read request body"))
		return
	}

	section := c.Param("section")
	payload, err := s.dashboard.SaveSection(c.Request.Context(), section, raw)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Section %s saved.", section),
		"section": section,
		"data":    payload,
	})
}

func (s *Server) handleReset(c *gin.Context) {
	if err := s.dashboard.Reset(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dashboard data reset to defaults."})
}

func (s *Server) handleExport(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.dashboard.Export(c.Request.Context(), &buf); err != nil {
		s.respondError(c, err)
		return
	}
	filename := fmt.Sprintf("calculus-dashboard-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (s *Server) handleUpload(c *gin.Context) {
	fileType, ok := app.ParseFileType(c.PostForm("file_type"))
	if !ok {
		s.respondError(c, errors.InvalidInput("Invalid file type. Expected institutions or courses."))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, errors.InvalidInput("No file uploaded."))
		return
	}
	limit := s.cfg.Upload.MaxFileSizeBytes()
	if header.Size > limit {
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("File is too large. Maximum size is %d MB.", s.cfg.Upload.MaxFileSizeMB)))
		return
	}

	f, err := header.Open()
	if err != nil {
		s.respondError(c, errors.InvalidInput("failed to open uploaded file"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		s.respondError(c, errors.InvalidInput("failed to read uploaded file"))
		return
	}

	result, err := s.uploads.Upload(c.Request.Context(), app.UploadRequest{
		FileType: fileType,
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleApply(c *gin.Context) {
	var req app.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput("invalid apply request: "+err.Error()))
		return
	}

	result, err := s.uploads.Apply(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if req.PreviewOnly && c.GetHeader("HX-Request") == "true" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", renderPreview(result.Mode, result.Preview))
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := s.dashboard.History(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applies": records})
}

// respondError writes err as {"error", "code"} with the status its code maps
// to. Missing-column errors also list what was missing and found.
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	body := gin.H{
		"error": errors.Message(err),
		"code":  errors.GetCode(err),
	}
	if mc, ok := errors.AsMissingColumns(err); ok {
		body["error"] = mc.Error()
		body["missing"] = mc.Missing
		body["found"] = mc.Found
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		body["error"] = "Internal server error"
	}
	c.AbortWithStatusJSON(status, body)
}
