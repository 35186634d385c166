package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/tally/internal/ocr"
	"github.com/MeKo-Tech/tally/internal/receipt"
	"github.com/MeKo-Tech/tally/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// receiptHandler accepts one or more screenshot uploads in the "images"
// form field, runs them through the detection engine in upload order, and
// returns the parsed order record.
func (s *Server) receiptHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeErrorResponse(w, "Upload too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		s.writeErrorResponse(w, "No image files provided", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
	defer cancel()

	start := time.Now()
	images := make([][]receipt.Token, 0, len(files))
	rawText := make([]string, 0, 64)
	for _, header := range files {
		tokens, rows, err := s.detectFile(ctx, header)
		if err != nil {
			ocrRequestsTotal.WithLabelValues("image", "error").Inc()
			s.writeErrorResponse(w, fmt.Sprintf("Detection failed for %s: %v", header.Filename, err), http.StatusBadGateway)
			return
		}
		images = append(images, tokens)
		rawText = append(rawText, rows...)
	}
	ocrRequestsTotal.WithLabelValues("image", "success").Inc()
	ocrProcessingDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())

	s.writeParseResponse(w, images, rawText)
}

// detectFile uploads one screenshot to the engine and returns its
// normalized tokens plus the raw row texts for debugging.
func (s *Server) detectFile(ctx context.Context, header *multipart.FileHeader) ([]receipt.Token, []string, error) {
	if header.Size > s.maxUploadMB*1024*1024 {
		return nil, nil, fmt.Errorf("file too large: %d bytes", header.Size)
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	uploadSizeBytes.Observe(float64(len(data)))

	prepared, err := ocr.PrepareImage(data, s.maxImageWidth)
	if err != nil {
		return nil, nil, err
	}

	res, err := s.engine.DetectImage(ctx, prepared, header.Filename)
	if err != nil {
		return nil, nil, err
	}
	detectionsPerImage.Observe(float64(len(res.Detections)))

	tokens := receipt.Normalize(res.Detections)
	return tokens, s.parser.RowTexts(tokens), nil
}

// regionsHandler parses pre-computed detection results posted as JSON,
// so captured engine responses can be replayed without the engine.
func (s *Server) regionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	var req RegionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Images) == 0 {
		s.writeErrorResponse(w, "No detection results provided", http.StatusBadRequest)
		return
	}

	images := make([][]receipt.Token, 0, len(req.Images))
	rawText := make([]string, 0, 64)
	for _, img := range req.Images {
		tokens := receipt.Normalize(img.Detections)
		images = append(images, tokens)
		rawText = append(rawText, s.parser.RowTexts(tokens)...)
	}
	ocrRequestsTotal.WithLabelValues("regions", "success").Inc()

	s.writeParseResponse(w, images, rawText)
}

// writeParseResponse runs the parser and writes the JSON response.
func (s *Server) writeParseResponse(w http.ResponseWriter, images [][]receipt.Token, rawText []string) {
	result := s.parser.Parse(images)
	receiptsParsed.WithLabelValues(validityLabel(result.IsValid)).Inc()
	itemsPerReceipt.Observe(float64(len(result.Items)))

	w.Header().Set("Content-Type", "application/json")
	response := ReceiptResponse{
		Success: true,
		Result:  &result,
		RawText: rawText,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode receipt response", "error", err)
	}
}

func validityLabel(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ReceiptResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
