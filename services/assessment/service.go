package assessment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"scrap-collect/logger"
	assessmentModel "scrap-collect/models/assessment"
	listingModel "scrap-collect/models/listing"
	userModel "scrap-collect/models/user"
	"scrap-collect/services/pricing"
	"scrap-collect/services/upload"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrDisabled          = errors.New("material assessment is not configured")
	ErrInvalidSuggestion = errors.New("model returned an unusable suggestion")
)

// Service records and runs advisory photo assessments. It never touches listings.
type Service struct {
	DB       *gorm.DB
	analyzer Analyzer
	prices   pricing.Table
}

// NewService returns a service; a nil analyzer disables assessments.
func NewService(db *gorm.DB, analyzer Analyzer, prices pricing.Table) *Service {
	return &Service{DB: db, analyzer: analyzer, prices: prices}
}

func (s *Service) Enabled() bool {
	return s.analyzer != nil
}

// Image is an uploaded photo awaiting assessment
type Image struct {
	FileName string
	MimeType string
	Data     []byte
}

func (s *Service) Assess(ctx context.Context, caller userModel.Caller, img Image) (*assessmentModel.Suggestion, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if err := upload.ValidateImage(img.MimeType, int64(len(img.Data))); err != nil {
		return nil, err
	}

	startTime := time.Now()
	record := &assessmentModel.MaterialAssessment{
		RequestID:        uuid.NewString(),
		CallerID:         caller.ID,
		OriginalFileName: img.FileName,
		FileHash:         fileHash(img.Data),
		FileSize:         int64(len(img.Data)),
		MimeType:         img.MimeType,
		Status:           assessmentModel.StatusProcessing,
	}
	if err := s.DB.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create assessment request: %w", err)
	}

	raw, err := s.analyzer.Analyze(ctx, img.Data, img.MimeType)
	if err == nil {
		var suggestion *assessmentModel.Suggestion
		suggestion, err = s.toSuggestion(raw)
		if err == nil {
			suggestion.RequestID = record.RequestID
			elapsed := time.Since(startTime).Milliseconds()
			if saveErr := record.MarkAsSuccess(s.DB.WithContext(ctx), suggestion, elapsed); saveErr != nil {
				logger.Error(fmt.Sprintf("Failed to save assessment result %s", record.RequestID), saveErr)
			}
			logger.Success(fmt.Sprintf("Assessment %s suggested %s (%s kg) in %dms",
				record.RequestID, suggestion.Category, suggestion.EstimatedKg.String(), elapsed))
			return suggestion, nil
		}
	}

	elapsed := time.Since(startTime).Milliseconds()
	if saveErr := record.MarkAsFailed(s.DB.WithContext(ctx), err.Error(), elapsed); saveErr != nil {
		logger.Error(fmt.Sprintf("Failed to save assessment failure %s", record.RequestID), saveErr)
	}
	logger.Error(fmt.Sprintf("Assessment %s failed", record.RequestID), err)
	return nil, err
}

func (s *Service) toSuggestion(raw *RawSuggestion) (*assessmentModel.Suggestion, error) {
	category := listingModel.ScrapType(strings.ToUpper(strings.TrimSpace(raw.Category)))
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidSuggestion, raw.Category)
	}
	kg := decimal.NewFromFloat(raw.EstimatedKg).Round(3)
	if !kg.IsPositive() {
		return nil, fmt.Errorf("%w: weight must be positive", ErrInvalidSuggestion)
	}

	price, err := s.prices.PriceForCategory(category)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = category.DisplayName() + " scrap"
	}

	return &assessmentModel.Suggestion{
		Category:    string(category),
		Title:       title,
		EstimatedKg: kg,
		PricePerKg:  price,
	}, nil
}

func categoryNames() []string {
	all := listingModel.GetAllScrapTypes()
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = string(c)
	}
	return names
}

func fileHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
