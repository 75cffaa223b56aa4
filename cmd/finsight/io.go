package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dvloznov/finsight/internal/analysis"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/pipeline"
)

// readAttachment loads a statement file, taking the MIME type from the
// extension and falling back to content sniffing.
func readAttachment(path string) (*pipeline.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statement file: %w", err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return &pipeline.Attachment{MIMEType: mimeType, Data: data}, nil
}

// loadResult reads an analysis snapshot written by "finsight analyze".
func loadResult(path string) (*domain.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", path, err)
	}
	if err := analysis.ValidateResult(&result); err != nil {
		return nil, fmt.Errorf("analysis %s: %w", path, err)
	}
	return &result, nil
}

func loadTransaction(path string) (domain.Transaction, error) {
	var txn domain.Transaction
	data, err := os.ReadFile(path)
	if err != nil {
		return txn, fmt.Errorf("read transaction: %w", err)
	}
	if err := json.Unmarshal(data, &txn); err != nil {
		return txn, fmt.Errorf("decode transaction %s: %w", path, err)
	}
	return txn, nil
}

// writeJSON writes v indented to path, or to stdout when path is empty or "-".
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// parseLimits turns Category=Amount pairs into a limits map. The category is
// everything before the last '=' so names may contain '='.
func parseLimits(pairs []string) (map[string]float64, error) {
	limits := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		i := strings.LastIndex(pair, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid limit %q, want Category=Amount", pair)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(pair[i+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid limit amount in %q: %w", pair, err)
		}
		limits[strings.TrimSpace(pair[:i])] = amount
	}
	return limits, nil
}
