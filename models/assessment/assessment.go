package assessment

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusProcessing = "processing"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
)

// MaterialAssessment records one photo assessment request and its outcome
type MaterialAssessment struct {
	ID               uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	RequestID        string `json:"request_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	CallerID         string `json:"caller_id" gorm:"type:varchar(36);index;not null"`
	OriginalFileName string `json:"original_file_name" gorm:"type:varchar(255);not null"`
	FileHash         string `json:"file_hash" gorm:"type:varchar(128);index"`
	FileSize         int64  `json:"file_size" gorm:"not null"`
	MimeType         string `json:"mime_type" gorm:"type:varchar(100);not null"`
	Status           string `json:"status" gorm:"type:varchar(20);not null;default:'processing';index"`
	ProcessingTimeMs int64  `json:"processing_time_ms" gorm:"default:0"`

	// Suggestion returned by the model
	Category    string              `json:"category" gorm:"type:varchar(30);default:''"`
	Title       string              `json:"title" gorm:"type:varchar(255);default:''"`
	EstimatedKg decimal.NullDecimal `json:"estimated_kg" gorm:"type:numeric(12,3)"`

	ErrorMessage string `json:"error_message" gorm:"type:text;default:''"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for MaterialAssessment
func (MaterialAssessment) TableName() string {
	return "material_assessments"
}

// BeforeCreate hook to set default values
func (ma *MaterialAssessment) BeforeCreate(tx *gorm.DB) error {
	if ma.Status == "" {
		ma.Status = StatusProcessing
	}
	return nil
}

// MarkAsSuccess stores the suggestion and flips the status
func (ma *MaterialAssessment) MarkAsSuccess(db *gorm.DB, suggestion *Suggestion, processingTime int64) error {
	ma.Status = StatusSuccess
	ma.Category = suggestion.Category
	ma.Title = suggestion.Title
	ma.EstimatedKg = decimal.NewNullDecimal(suggestion.EstimatedKg)
	ma.ProcessingTimeMs = processingTime

	return db.Save(ma).Error
}

// MarkAsFailed marks the request as failed with error message
func (ma *MaterialAssessment) MarkAsFailed(db *gorm.DB, errorMsg string, processingTime int64) error {
	ma.Status = StatusFailed
	ma.ErrorMessage = errorMsg
	ma.ProcessingTimeMs = processingTime

	return db.Save(ma).Error
}

// Suggestion is the advisory result handed back to the seller
type Suggestion struct {
	RequestID   string          `json:"request_id"`
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	EstimatedKg decimal.Decimal `json:"estimated_kg"`
	PricePerKg  int64           `json:"price_per_kg"`
}
