package plates

import (
	"context"
	"errors"

	"spotmarket/internal/domain"
	"spotmarket/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// TextDetector is the part of the Rekognition client used here.
type TextDetector interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// Rekognition reads plates with AWS Rekognition text detection.
type Rekognition struct {
	Client TextDetector
}

// NewRekognition builds a client from the default AWS credential chain.
func NewRekognition(ctx context.Context, region string) (*Rekognition, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &Rekognition{Client: rekognition.NewFromConfig(cfg)}, nil
}

func (r *Rekognition) Recognize(ctx context.Context, image []byte, _ string) (Reading, error) {
	if len(image) == 0 {
		return Reading{}, domain.ImageError{Msg: "image is empty"}
	}

	out, err := r.Client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		var badFormat *types.InvalidImageFormatException
		var tooLarge *types.ImageTooLargeException
		switch {
		case errors.As(err, &badFormat), errors.As(err, &tooLarge):
			return Reading{}, domain.ImageError{Msg: "image is bad", Err: err}
		case errors.Is(err, context.DeadlineExceeded):
			return Reading{}, domain.TimeoutError{Service: "rekognition", Err: err}
		}
		return Reading{}, domain.DependencyError{Service: "rekognition", Err: err}
	}

	cands := make([]Candidate, 0)
	for _, td := range out.TextDetections {
		if td.Type != types.TextTypesLine && td.Type != types.TextTypesWord {
			continue
		}
		txt := utils.NormalizePlate(aws.ToString(td.DetectedText))
		if !looksLikePlate(txt) {
			continue
		}
		cands = append(cands, Candidate{Plate: txt, Score: float64(aws.ToFloat32(td.Confidence)) / 100})
	}

	reading, ok := best(cands)
	if !ok {
		utils.Logger().Debugw("no plate in detected text", "detections", len(out.TextDetections))
		return Reading{}, domain.ImageError{Msg: "no license plate found in image"}
	}
	return reading, nil
}
