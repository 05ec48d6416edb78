package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"yt-clipper/domain/video"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// maxCookieFileSize caps the size of the cookie export stored on Drive
const maxCookieFileSize = 1 << 20

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	GetFile(ctx context.Context, fileID string, fields string) (*drive.File, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// GetFile returns file metadata
func (s *GoogleDriveService) GetFile(ctx context.Context, fileID string, fields string) (*drive.File, error) {
	return s.service.Files.Get(fileID).
		Fields(googleapi.Field(fields)).
		Context(ctx).
		Do()
}

// Download opens the file contents
func (s *GoogleDriveService) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := s.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Client downloads the cookie export from Google Drive.
// It satisfies the cookie store's Source interface.
type Client struct {
	driveService DriveService
	fileID       string
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// NewClient creates a new Google Drive client for the cookie file fileID
// If no options are provided, it initializes a real Google Drive service
func NewClient(ctx context.Context, credentialsPath, fileID string, opts ...ClientOption) (*Client, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: drive file id is required", video.ErrConfiguration)
	}

	c := &Client{fileID: fileID}

	for _, opt := range opts {
		opt(c)
	}

	// If no custom drive service was provided, create a real one
	if c.driveService == nil {
		svc, err := newGoogleDriveService(ctx, credentialsPath)
		if err != nil {
			return nil, err
		}
		c.driveService = svc
	}

	return c, nil
}

// newGoogleDriveService creates a production Google Drive service
func newGoogleDriveService(ctx context.Context, credentialsPath string) (*GoogleDriveService, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read credentials file: %v", video.ErrConfiguration, err)
	}

	config, err := google.JWTConfigFromJSON(b, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to parse credentials: %v", video.ErrConfiguration, err)
	}

	client := config.Client(ctx)
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &GoogleDriveService{service: srv}, nil
}

// Fetch downloads the cookie export
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	f, err := c.driveService.GetFile(ctx, c.fileID, "id, name, mimeType, size, trashed")
	if err != nil {
		return nil, fmt.Errorf("failed to get cookie file: %w", err)
	}
	if f.Trashed {
		return nil, fmt.Errorf("%w: cookie file %s is in the trash", video.ErrConfiguration, f.Name)
	}
	if strings.HasPrefix(f.MimeType, "application/vnd.google-apps.") {
		return nil, fmt.Errorf("%w: cookie file %s is a Google document, upload the raw JSON export", video.ErrConfiguration, f.Name)
	}
	if f.Size > maxCookieFileSize {
		return nil, fmt.Errorf("cookie file %s is too large (%d bytes)", f.Name, f.Size)
	}

	body, err := c.driveService.Download(ctx, c.fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to download cookie file: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxCookieFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}
	return data, nil
}
