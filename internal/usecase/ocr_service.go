package usecase

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/listcart/backend/internal/domain"
)

// DemoText is served when no real text could be read and the demo fallback is enabled
const DemoText = "Apple 2kg\nBanana\nTomato 1kg\nPotato 500g\nSalt\nMilk 1L\nRice 5kg\nSugar"

const (
	mimePDF         = "application/pdf"
	mimeMSWord      = "application/msword"
	mimeWordXML     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeOctetStream = "application/octet-stream"

	msgOCRSuccess  = "OCR completed successfully"
	msgPDFText     = "Text extracted from PDF"
	msgPDFDemo     = "PDF has no embedded text. For best results upload a photo of the list. Using demo items for now."
	msgOCRDemo     = "OCR unavailable, using demo items. Configure the OCR service for real extraction."
	msgUnsupported = "Word documents are not supported. Upload an image of the shopping list instead."
)

// OCRConfig holds OCR boundary settings
type OCRConfig struct {
	Timeout      time.Duration
	DemoFallback bool
	PDFText      bool
	MinLineLen   int
}

// OCRService turns an uploaded file into candidate shopping-list lines
type OCRService struct {
	images domain.OCRClient
	pdfs   domain.OCRClient
	config OCRConfig
	logger zerolog.Logger
}

// NewOCRService creates a new OCR service. pdfs may be nil, in which case
// PDFs always take the demo path.
func NewOCRService(images, pdfs domain.OCRClient, config OCRConfig, logger zerolog.Logger) *OCRService {
	if config.MinLineLen <= 0 {
		config.MinLineLen = DefaultMinLineLength
	}
	return &OCRService{
		images: images,
		pdfs:   pdfs,
		config: config,
		logger: logger.With().Str("component", "ocr").Logger(),
	}
}

// Extract reads text from an uploaded image or PDF
func (s *OCRService) Extract(ctx context.Context, fileName string, data []byte, declaredMIME string) (*domain.UploadResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no file uploaded", domain.ErrInvalidRequest)
	}

	mimeType := DetectMIME(data, declaredMIME)
	info := domain.FileInfo{FileName: fileName, MimeType: mimeType}

	switch {
	case mimeType == mimeMSWord || mimeType == mimeWordXML:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, msgUnsupported)
	case mimeType == mimePDF:
		info.Type = domain.FileKindPDF
		return s.extractPDF(ctx, data, info), nil
	case strings.HasPrefix(mimeType, "image/"):
		info.Type = domain.FileKindImage
		return s.extractImage(ctx, data, info)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, mimeType)
	}
}

// CleanLines splits raw OCR text into normalized, non-degenerate lines
func (s *OCRService) CleanLines(raw string) []string {
	lines := []string{}
	for _, line := range strings.Split(raw, "\n") {
		normalized := NormalizeLine(line)
		if IsDegenerate(normalized, s.config.MinLineLen) {
			continue
		}
		lines = append(lines, normalized)
	}
	return lines
}

func (s *OCRService) extractPDF(ctx context.Context, data []byte, info domain.FileInfo) *domain.UploadResult {
	if s.config.PDFText && s.pdfs != nil {
		text, err := s.pdfs.ExtractText(ctx, data, info.MimeType)
		if err == nil && strings.TrimSpace(text) != "" {
			return s.result(text, msgPDFText, false, info)
		}
		s.logger.Debug().Err(err).Str("file", info.FileName).Msg("no embedded pdf text")
	}
	return s.result(DemoText, msgPDFDemo, true, info)
}

func (s *OCRService) extractImage(ctx context.Context, data []byte, info domain.FileInfo) (*domain.UploadResult, error) {
	text, err := s.recognize(ctx, data, info.MimeType)
	if err == nil {
		return s.result(text, msgOCRSuccess, false, info), nil
	}

	if !s.config.DemoFallback {
		return nil, err
	}

	s.logger.Warn().Err(err).Str("file", info.FileName).Msg("ocr failed, serving demo text")
	return s.result(DemoText, msgOCRDemo, true, info), nil
}

func (s *OCRService) recognize(ctx context.Context, data []byte, mimeType string) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("%w: no ocr provider configured", domain.ErrOCRFailed)
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.images.ExtractText(ctx, data, mimeType)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrOCRTimeout) {
			return "", fmt.Errorf("%w: %v", domain.ErrOCRTimeout, err)
		}
		if errors.Is(err, domain.ErrOCRFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrOCRFailed, err)
	}

	if strings.TrimSpace(text) == "" {
		return "", domain.ErrNoTextDetected
	}

	s.logger.Debug().Dur("elapsed", time.Since(start)).Int("chars", len(text)).Msg("ocr completed")
	return text, nil
}

func (s *OCRService) result(raw, message string, demo bool, info domain.FileInfo) *domain.UploadResult {
	lines := s.CleanLines(raw)
	return &domain.UploadResult{
		RawText:      raw,
		CleanedLines: lines,
		Message:      message,
		IsDemoData:   demo,
		ItemCount:    len(lines),
		FileInfo:     info,
	}
}

// DetectMIME sniffs the content type. The declared type is only trusted
// when sniffing is inconclusive.
func DetectMIME(data []byte, declared string) string {
	sniffed := baseMIME(mimetype.Detect(data).String())
	if sniffed != mimeOctetStream && sniffed != "application/zip" && !strings.HasPrefix(sniffed, "text/") {
		return sniffed
	}
	if d := baseMIME(declared); d != "" {
		return d
	}
	return sniffed
}

func baseMIME(value string) string {
	if value == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return mediaType
}
