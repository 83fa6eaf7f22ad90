package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"scrap-collect/logger"

	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted photo in bytes
const MaxImageSize = int64(10 * 1024 * 1024)

var (
	ErrUnsupportedType = errors.New("only JPEG, PNG and WebP images are allowed")
	ErrTooLarge        = errors.New("image exceeds the 10MB limit")
	ErrEmpty           = errors.New("image is empty")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ValidateImage checks the declared content type and size of an upload
func ValidateImage(mimeType string, size int64) error {
	if _, ok := extensions[mimeType]; !ok {
		return ErrUnsupportedType
	}
	if size <= 0 {
		return ErrEmpty
	}
	if size > MaxImageSize {
		return ErrTooLarge
	}
	return nil
}

// StoredImage describes a saved listing photo
type StoredImage struct {
	Reference        string `json:"reference"`
	OriginalFileName string `json:"original_file_name"`
	FileHash         string `json:"file_hash"`
	FileSize         int64  `json:"file_size"`
	MimeType         string `json:"mime_type"`
}

// Service stores listing photos on local disk
type Service struct {
	UploadDir string
}

func NewService(uploadDir string) *Service {
	return &Service{UploadDir: uploadDir}
}

// SaveListingImage writes data under <UploadDir>/listings/<sellerID>/ and returns its public reference.
func (s *Service) SaveListingImage(sellerID, originalFileName, mimeType string, data []byte) (*StoredImage, error) {
	if err := ValidateImage(mimeType, int64(len(data))); err != nil {
		return nil, err
	}
	if sellerID == "" || filepath.Base(sellerID) != sellerID {
		return nil, fmt.Errorf("invalid seller id %q", sellerID)
	}

	dir := filepath.Join(s.UploadDir, "listings", sellerID)
	if err := s.ensureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	hash := sha256.Sum256(data)
	fileHash := hex.EncodeToString(hash[:])

	savedFileName := uuid.NewString() + extensions[mimeType]
	filePath := filepath.Join(dir, savedFileName)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	logger.Success(fmt.Sprintf("Image saved for seller %s: %s", sellerID, savedFileName))
	return &StoredImage{
		Reference:        path.Join("/uploads", "listings", sellerID, savedFileName),
		OriginalFileName: originalFileName,
		FileHash:         fileHash,
		FileSize:         int64(len(data)),
		MimeType:         mimeType,
	}, nil
}

// ensureDir creates the directory if it doesn't exist
func (s *Service) ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("Created upload directory: %s", dir))
	}
	return nil
}
