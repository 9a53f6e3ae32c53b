package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ccollicutt/crashlog/pkg/output"
	"github.com/ccollicutt/crashlog/pkg/parser"
	"github.com/ccollicutt/crashlog/pkg/webhook"
)

// UploadResponse is returned for every accepted upload.
type UploadResponse struct {
	RequestID  string           `json:"request_id"`
	Valid      bool             `json:"valid"`
	Version    string           `json:"version,omitempty"`
	Platform   string           `json:"platform"`
	Signature  string           `json:"signature,omitempty"`
	Deliveries []DeliveryStatus `json:"deliveries"`
}

// DeliveryStatus summarizes one webhook delivery.
type DeliveryStatus struct {
	Webhook string `json:"webhook"`
	Status  int    `json:"status"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleUpload(c *gin.Context) {
	if s.maxLogSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxLogSize+multipartOverhead)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reject(c, http.StatusRequestEntityTooLarge, "crash log too large")
			return
		}
		s.reject(c, http.StatusBadRequest, "missing file")
		return
	}
	if fh.Filename == "" {
		s.reject(c, http.StatusBadRequest, "missing file name")
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.reject(c, http.StatusBadRequest, "unreadable file")
		return
	}
	defer f.Close()

	var raw bytes.Buffer
	fr, err := s.analyzer.AnalyzeReader(c.Request.Context(), fh.Filename, io.TeeReader(f, &raw))
	if err != nil {
		if errors.Is(err, parser.ErrLogTooLarge) {
			s.reject(c, http.StatusRequestEntityTooLarge, "crash log too large")
			return
		}
		s.reject(c, http.StatusBadRequest, "unreadable file")
		return
	}

	s.metrics.ParseDuration.Observe(fr.Duration.Seconds())
	if fr.Valid() {
		s.metrics.Uploads.WithLabelValues(resultValid).Inc()
	} else {
		s.metrics.Uploads.WithLabelValues(resultInvalid).Inc()
	}

	attachment := webhook.NewAttachment(fh.Filename, raw.Bytes())
	if ct := fh.Header.Get("Content-Type"); attachment != nil && ct != "" {
		attachment.ContentType = ct
	}

	report := output.NewReport(fr)
	deliveries := s.dispatcher.Deliver(c.Request.Context(), report, attachment)

	resp := UploadResponse{
		RequestID:  c.GetString(requestIDKey),
		Valid:      fr.Valid(),
		Platform:   fr.Platform,
		Signature:  fr.Report.Signature(),
		Deliveries: make([]DeliveryStatus, 0, len(deliveries)),
	}
	if fr.Valid() {
		resp.Version = fr.Report.Version
	}

	for _, d := range deliveries {
		s.metrics.Deliveries.WithLabelValues(d.Webhook, d.Outcome()).Inc()
		status := DeliveryStatus{Webhook: d.Webhook, Status: d.StatusCode}
		if d.Err != nil {
			status.Error = d.Err.Error()
		}
		resp.Deliveries = append(resp.Deliveries, status)
	}

	s.logger.Info("crash log received",
		zap.String("source", fh.Filename),
		zap.Bool("valid", resp.Valid),
		zap.String("platform", resp.Platform),
		zap.Int("deliveries", len(deliveries)),
		zap.String(requestIDKey, resp.RequestID),
	)

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) reject(c *gin.Context, status int, msg string) {
	s.metrics.Uploads.WithLabelValues(resultRejected).Inc()
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
