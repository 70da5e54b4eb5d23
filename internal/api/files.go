package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	apierrors "github.com/acejesus/aceai/internal/errors"
	"github.com/acejesus/aceai/internal/models"
)

const filesPath = "/files"

// uploadPurpose is the purpose tag attached to every uploaded file.
const uploadPurpose = "batch"

// UploadedFile mirrors the file service's record shape.
type UploadedFile struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Bytes     int64  `json:"bytes"`
	Purpose   string `json:"purpose"`
	CreatedAt int64  `json:"created_at"`
}

// UploadFile uploads a file for later analysis.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader) (*UploadedFile, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := mw.WriteField("purpose", uploadPurpose); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(filesPath), &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var file UploadedFile
	if err := c.doJSON(req, filesPath, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ListFiles returns all server-held files.
func (c *Client) ListFiles(ctx context.Context) ([]UploadedFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(filesPath), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")

	var listing struct {
		Data []UploadedFile `json:"data"`
	}
	if err := c.doJSON(req, filesPath, &listing); err != nil {
		return nil, err
	}
	return listing.Data, nil
}

// DeleteFile removes a server-held file.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	endpoint := filesPath + "/" + fileID
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint(endpoint), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apierrors.NewAPIError(resp.StatusCode, endpoint, apiErrorMessage(body))
	}
	return nil
}

// AnalyzeFile asks the model a question about an uploaded file and returns
// the answer text. Analysis is a plain completion, not a stream.
func (c *Client) AnalyzeFile(ctx context.Context, fileID, question string) (string, error) {
	preamble := fmt.Sprintf(`You are AceAI V2.0, an AI assistant that specializes in analyzing files.
The user has uploaded a file with ID %s.
Analyze the file content and answer the user's question about it.`, fileID)

	return c.Complete(ctx, []models.CompletionMessage{
		{Role: models.RoleSystem, Content: preamble},
		{Role: models.RoleUser, Content: fmt.Sprintf("I've uploaded a file and would like you to analyze it. Here's my question: %s", question)},
	})
}

// doJSON executes a request and decodes a JSON response into out.
func (c *Client) doJSON(req *http.Request, endpoint string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apierrors.NewAPIError(resp.StatusCode, endpoint, apiErrorMessage(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apierrors.NewParseError(err.Error(), endpoint)
	}
	return nil
}

// FileInfo converts a service record into the client-side metadata shape.
func (f UploadedFile) FileInfo() models.UploadedFileInfo {
	info := models.UploadedFileInfo{
		ID:   f.ID,
		Name: f.Filename,
		Size: f.Bytes,
	}
	if f.CreatedAt != 0 {
		info.UploadedAt = time.Unix(f.CreatedAt, 0)
	}
	return info
}
