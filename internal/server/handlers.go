package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/analysis"
	"github.com/spigell/resume-ranker/internal/document"
	"github.com/spigell/resume-ranker/internal/extract"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/report"
	"github.com/spigell/resume-ranker/internal/storage"
	"github.com/spigell/resume-ranker/internal/tfidf"
)

const (
	NoMatchesMessage = "No matching resumes found."
	reportBaseName   = "resume_analysis_report"
)

type analyzeResult struct {
	Filename string         `json:"filename"`
	Score    float64        `json:"score"`
	Fields   extract.Fields `json:"fields"`
	Suitable bool           `json:"suitable"`
	Label    string         `json:"label"`
}

type analyzeResponse struct {
	BatchID         string          `json:"batch_id"`
	Threshold       float64         `json:"threshold"`
	ReferenceFields extract.Fields  `json:"reference_fields"`
	Results         []analyzeResult `json:"results"`
	Message         string          `json:"message,omitempty"`
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	jobDescription := strings.TrimSpace(c.PostForm("job_description"))
	if jobDescription == "" {
		abortWithError(c, http.StatusBadRequest, errors.New("job description is required"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("parsing form: %w", err))
		return
	}

	files := form.File["resumes"]
	if len(files) == 0 {
		abortWithError(c, http.StatusBadRequest, errors.New("please upload at least one PDF resume"))
		return
	}

	// Every upload is validated before any of them touches the upload directory.
	type staged struct {
		name string
		data []byte
	}
	uploads := make([]staged, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	for _, fh := range files {
		name := SanitizeFilename(fh.Filename)
		if name == "" {
			abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid file name %q", fh.Filename))
			return
		}
		if _, ok := seen[name]; ok {
			abortWithError(c, http.StatusBadRequest, fmt.Errorf("%w: %q", analysis.ErrDuplicateCandidate, name))
			return
		}
		seen[name] = struct{}{}

		data, err := readUpload(fh, s.cfg.MaxUploadBytes)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Errorf("reading %s: %w", fh.Filename, err))
			return
		}

		if !document.IsPDF(data) {
			abortWithError(c, http.StatusBadRequest, fmt.Errorf("%s is not a PDF file", fh.Filename))
			return
		}

		uploads = append(uploads, staged{name: name, data: data})
	}

	candidates := make([]analysis.Candidate, 0, len(uploads))
	for _, u := range uploads {
		if err := os.WriteFile(filepath.Join(s.cfg.UploadDir, u.name), u.data, 0o644); err != nil {
			abortWithError(c, http.StatusInternalServerError, fmt.Errorf("saving %s: %w", u.name, err))
			return
		}

		text, err := s.extractor.Text(u.name, u.data)
		if err != nil {
			abortWithError(c, http.StatusUnprocessableEntity, fmt.Errorf("extracting text from %s: %w", u.name, err))
			return
		}

		candidates = append(candidates, analysis.Candidate{ID: u.name, Text: text})
	}

	batch, err := s.ranker.Analyze(jobDescription, candidates)
	switch {
	case errors.Is(err, analysis.ErrDuplicateCandidate):
		abortWithError(c, http.StatusBadRequest, err)
		return
	case errors.Is(err, tfidf.ErrEmptyVocabulary):
		abortWithError(c, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		s.logger.Error("analysis failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, errors.New("analysis failed"))
		return
	}

	meta, err := s.store.SaveBatch(c.Request.Context(), batch)
	if err != nil {
		s.logger.Error("storing batch failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, errors.New("storing results failed"))
		return
	}

	resp := analyzeResponse{
		BatchID:         meta.ID,
		Threshold:       s.classifier.Classify(0).Threshold,
		ReferenceFields: batch.ReferenceFields,
		Results:         make([]analyzeResult, 0, batch.Len()),
	}
	for _, doc := range batch.Documents {
		assessment := s.classifier.Classify(doc.Score)
		resp.Results = append(resp.Results, analyzeResult{
			Filename: doc.ID,
			Score:    doc.Score,
			Fields:   doc.Fields,
			Suitable: assessment.Suitable,
			Label:    assessment.Label,
		})
	}
	if batch.AllZero() {
		resp.Message = NoMatchesMessage
	}

	s.logger.Info("batch ranked", append(logger.BatchFields(meta.ID, "http"), zap.Int("candidates", len(candidates)))...)
	c.JSON(http.StatusOK, resp)
}

func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return buf.Bytes(), nil
}

func (s *Server) handleDownload(c *gin.Context) {
	name := SanitizeFilename(c.Param("filename"))
	if name == "" {
		abortWithError(c, http.StatusBadRequest, errors.New("invalid file name"))
		return
	}

	path := filepath.Join(s.cfg.UploadDir, name)
	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("resume %s not found", name))
		return
	}

	c.FileAttachment(path, name)
}

func (s *Server) handleReport(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	meta, rows, err := s.store.LatestResults(c.Request.Context())
	if errors.Is(err, storage.ErrNoResults) {
		abortWithError(c, http.StatusNotFound, errors.New("no analysis data available to export"))
		return
	}
	if err != nil {
		s.logger.Error("loading latest results failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, errors.New("loading results failed"))
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, rows); err != nil {
		s.logger.Error("writing report failed", zap.Error(err), zap.String(logger.FieldBatch, meta.ID))
		abortWithError(c, http.StatusInternalServerError, errors.New("writing report failed"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s%s", reportBaseName, format.Extension()))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// SanitizeFilename reduces name to a safe base name: path elements are
// dropped, spaces become underscores, characters outside letters, digits,
// dot, dash and underscore are removed, and leading dots or underscores are
// trimmed. The result may be empty.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range strings.Join(strings.Fields(name), "_") {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}

	return strings.TrimLeft(b.String(), "._")
}
