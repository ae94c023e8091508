package plates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"spotmarket/internal/domain"
)

const DefaultPlateRecognizerURL = "https://api.platerecognizer.com/v1/plate-reader/"

// PlateRecognizer calls the platerecognizer.com plate-reader API.
type PlateRecognizer struct {
	URL     string
	Token   string
	Regions string
	HTTP    *http.Client
}

func NewPlateRecognizer(url, token, regions string, timeout time.Duration) *PlateRecognizer {
	if url == "" {
		url = DefaultPlateRecognizerURL
	}
	return &PlateRecognizer{
		URL:     url,
		Token:   token,
		Regions: regions,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type prResponse struct {
	Results []struct {
		Plate      string  `json:"plate"`
		Score      float64 `json:"score"`
		Candidates []struct {
			Plate string  `json:"plate"`
			Score float64 `json:"score"`
		} `json:"candidates"`
	} `json:"results"`
}

func (p *PlateRecognizer) Recognize(ctx context.Context, image []byte, filename string) (Reading, error) {
	if len(image) == 0 {
		return Reading{}, domain.ImageError{Msg: "image is empty"}
	}
	if filename == "" {
		filename = "upload.jpg"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("upload", filename)
	if err != nil {
		return Reading{}, err
	}
	if _, err := fw.Write(image); err != nil {
		return Reading{}, err
	}
	if p.Regions != "" {
		if err := mw.WriteField("regions", p.Regions); err != nil {
			return Reading{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return Reading{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, &body)
	if err != nil {
		return Reading{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if p.Token != "" {
		req.Header.Set("Authorization", "Token "+p.Token)
	}

	resp, err := p.HTTP.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Reading{}, domain.TimeoutError{Service: "plate recognizer", Err: err}
		}
		return Reading{}, domain.DependencyError{Service: "plate recognizer", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Reading{}, domain.DependencyError{Service: "plate recognizer", Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))}
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Reading{}, domain.ImageError{Msg: "image is bad", Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))}
	}

	var out prResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Reading{}, domain.DependencyError{Service: "plate recognizer", Err: fmt.Errorf("decode response: %w", err)}
	}

	cands := make([]Candidate, 0, len(out.Results))
	for _, r := range out.Results {
		cands = append(cands, Candidate{Plate: r.Plate, Score: r.Score})
	}

	reading, ok := best(cands)
	if !ok {
		return Reading{}, domain.ImageError{Msg: "no license plate found in image"}
	}
	return reading, nil
}
