package web

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/philipparndt/gobox/internal/controls"
	"github.com/philipparndt/gobox/internal/pipeline"
	"github.com/philipparndt/gobox/pkg/export"
	"github.com/philipparndt/gobox/pkg/preview"
	"github.com/philipparndt/gobox/version"
)

type downloadLink struct {
	URL      string
	Label    string
	FileName string
}

type pageData struct {
	Config         controls.Config
	Formats        []export.Format
	Tab            string
	PrimaryColor   string
	SecondaryColor string
	Preview        template.HTML
	Download       *downloadLink
	Notices        []pipeline.Notice
	Error          string
}

type renderResponse struct {
	Session    string             `json:"session,omitempty"`
	Idle       bool               `json:"idle"`
	Notices    []pipeline.Notice  `json:"notices"`
	Download   *pipeline.Download `json:"download,omitempty"`
	PreviewURL string             `json:"preview_url,omitempty"`
	ElapsedMS  int64              `json:"elapsed_ms"`
}

func (s *Server) handleIndex(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "invalid form")
		return
	}

	cfg, err := controls.FromValues(c.Request.Form)
	data := pageData{
		Config:  cfg,
		Formats: export.Formats,
		Tab:     selectedTab(c.Request.Form.Get("tab")),
	}
	data.PrimaryColor = colorInput(cfg.PrimaryColor, controls.DefaultPrimaryColor)
	data.SecondaryColor = colorInput(cfg.SecondaryColor, controls.DefaultSecondaryColor)

	if err != nil {
		data.Error = err.Error()
		c.HTML(http.StatusBadRequest, "index.html", data)
		return
	}

	result, err := s.pipeline.Run(c.Request.Context(), cfg)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, controls.ErrBelowMinimum) || errors.Is(err, controls.ErrInvalidColor) {
			status = http.StatusBadRequest
		}
		log.Printf("[web] render failed: %v", err)
		data.Error = err.Error()
		c.HTML(status, "index.html", data)
		return
	}
	if result.Idle {
		c.HTML(http.StatusOK, "index.html", data)
		return
	}

	svg, err := os.ReadFile(result.PreviewPath)
	if err != nil {
		result.Release()
		data.Error = fmt.Sprintf("failed to read preview: %v", err)
		c.HTML(http.StatusInternalServerError, "index.html", data)
		return
	}
	data.Preview = template.HTML(stripXMLProlog(string(svg)))
	data.Notices = result.Notices()

	if download, ok := result.Download(); ok {
		id := s.sessions.put(result)
		data.Download = &downloadLink{
			URL:      "/download/" + id,
			Label:    download.Label,
			FileName: download.FileName,
		}
	} else {
		result.Release()
	}

	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) handleDownload(c *gin.Context) {
	result, ok := s.sessions.take(c.Param("session"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	defer result.Release()

	download, ok := result.Download()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": pipeline.MeshErrorMessage})
		return
	}

	file, err := os.Open(download.Path)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": pipeline.MeshErrorMessage})
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read mesh"})
		return
	}

	c.DataFromReader(http.StatusOK, info.Size(), download.MIME, file, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.FileName),
	})
}

func (s *Server) handlePreview(c *gin.Context) {
	result, ok := s.sessions.get(c.Param("session"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.Header("Content-Type", "image/svg+xml")
	c.File(result.PreviewPath)
}

func (s *Server) handleRender(c *gin.Context) {
	cfg := controls.Defaults()
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json payload"})
		return
	}

	format, err := controls.ParseFormat(string(cfg.File.Format))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg.File.Format = format

	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.pipeline.Run(c.Request.Context(), cfg)
	if err != nil {
		log.Printf("[web] render failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := renderResponse{
		Idle:      result.Idle,
		Notices:   result.Notices(),
		ElapsedMS: result.Elapsed.Milliseconds(),
	}
	if resp.Notices == nil {
		resp.Notices = []pipeline.Notice{}
	}

	if !result.Idle {
		resp.Session = s.sessions.put(result)
		resp.PreviewURL = "/preview/" + resp.Session
		if download, ok := result.Download(); ok {
			resp.Download = &download
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"engine":   s.pipeline.Engine().Name(),
		"version":  version.Version,
		"sessions": s.sessions.len(),
	})
}

func selectedTab(tab string) string {
	switch tab {
	case "camera", "file":
		return tab
	}
	return "parameters"
}

// colorInput normalizes a color for <input type="color">, which only
// accepts lowercase #rrggbb
func colorInput(value, fallback string) string {
	rgb, err := preview.ParseHex(value)
	if err != nil {
		return fallback
	}
	return rgb.Hex()
}

func stripXMLProlog(svg string) string {
	if strings.HasPrefix(svg, "<?xml") {
		if i := strings.Index(svg, "?>"); i >= 0 {
			return strings.TrimLeft(svg[i+2:], "\r\n")
		}
	}
	return svg
}
