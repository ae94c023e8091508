package services

import (
	"context"

	"spotmarket/internal/domain"
	"spotmarket/internal/guard"
	"spotmarket/internal/plates"
	"spotmarket/internal/utils"
)

// PlateService reads a license plate from an uploaded image.
type PlateService struct {
	Recognizer plates.Recognizer
	Guard      *guard.Breaker
	MaxBytes   int64
	RequestID  string
}

func (s PlateService) Read(ctx context.Context, image []byte, filename string) (plates.Reading, error) {
	if len(image) == 0 {
		return plates.Reading{}, domain.ImageError{Msg: "image is empty"}
	}
	if s.MaxBytes > 0 && int64(len(image)) > s.MaxBytes {
		return plates.Reading{}, domain.ImageError{Msg: "image is too large"}
	}

	var reading plates.Reading
	err := s.Guard.Do(ctx, func(ctx context.Context) error {
		var err error
		reading, err = s.Recognizer.Recognize(ctx, image, filename)
		return err
	})
	if err != nil {
		if !domain.IsImage(err) {
			utils.LogFailure(s.RequestID, "bounty", "recognize", err)
		}
		return plates.Reading{}, err
	}

	utils.LogEvent(s.RequestID, "bounty", "recognize", "read plate "+reading.LicenseInfo)
	return reading, nil
}
