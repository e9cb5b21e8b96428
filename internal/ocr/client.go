package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"pantrybill/internal/config"
)

// Client talks to an OCR.space-compatible image-to-text endpoint. OCR itself
// is an external collaborator; only its transcript matters to the parser.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type parseResult struct {
	ParsedText        string `json:"ParsedText"`
	FileParseExitCode int    `json:"FileParseExitCode"`
}

type apiResponse struct {
	ParsedResults         []parseResult   `json:"ParsedResults"`
	OCRExitCode           int             `json:"OCRExitCode"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.OCRTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.OCRRateLimitRPS),
	}
}

// ParseImage uploads one receipt image and returns the recognized text of all
// result pages joined in order.
func (c *Client) ParseImage(ctx context.Context, filename string, image []byte) (string, error) {
	if strings.TrimSpace(c.cfg.OCRAPIKey) == "" {
		return "", errors.New("missing OCR_API_KEY")
	}

	endpoint := strings.TrimRight(c.cfg.OCRAPIBaseURL, "/") + "/parse/image"

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		body, contentType, err := buildForm(filename, image, c.cfg.OCRLanguage)
		if err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
		if err != nil {
			return "", err
		}
		req.Header.Set("apikey", c.cfg.OCRAPIKey)
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("ocr status %d", resp.StatusCode)
				continue
			}
			return "", fmt.Errorf("ocr api error: status=%d body=%s", resp.StatusCode, string(respBody))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return "", err
		}
		if apiResp.IsErroredOnProcessing {
			return "", fmt.Errorf("ocr processing failed: %s", string(apiResp.ErrorMessage))
		}

		texts := make([]string, 0, len(apiResp.ParsedResults))
		for _, result := range apiResp.ParsedResults {
			if strings.TrimSpace(result.ParsedText) != "" {
				texts = append(texts, result.ParsedText)
			}
		}
		return strings.Join(texts, "\n"), nil
	}

	if lastErr == nil {
		lastErr = errors.New("ocr request failed")
	}
	return "", lastErr
}

func buildForm(filename string, image []byte, language string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	form := multipart.NewWriter(buf)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := form.WriteField("language", language); err != nil {
		return nil, "", err
	}
	if err := form.WriteField("scale", "true"); err != nil {
		return nil, "", err
	}
	if err := form.Close(); err != nil {
		return nil, "", err
	}

	return buf, form.FormDataContentType(), nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
