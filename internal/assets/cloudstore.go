package assets

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"novelhub/internal/apperr"
	"novelhub/pkg/utils"
)

// Cover transform applied server-side on upload.
const (
	coverWidth  = 440
	coverHeight = 620
)

// CloudStore talks to a Cloudinary-style image service over HTTP.
type CloudStore struct {
	client *resty.Client
}

func NewCloudStore(cfg utils.AssetConfig) *CloudStore {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &CloudStore{client: client}
}

func (s *CloudStore) Upload(ctx context.Context, data []byte, folder string) (Asset, error) {
	var out Asset
	resp, err := s.client.R().
		SetContext(ctx).
		SetFileReader("file", "cover", bytes.NewReader(data)).
		SetFormData(map[string]string{
			"folder":         folder,
			"transformation": fmt.Sprintf("w_%d,h_%d,c_fill,q_auto,f_auto", coverWidth, coverHeight),
		}).
		SetResult(&out).
		Post("/image/upload")
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %v", apperr.ErrAssetUpload, err)
	}
	if resp.IsError() {
		return Asset{}, fmt.Errorf("%w: status %d", apperr.ErrAssetUpload, resp.StatusCode())
	}
	if out.RemoteID == "" || out.URL == "" {
		return Asset{}, fmt.Errorf("%w: incomplete response", apperr.ErrAssetUpload)
	}
	return out, nil
}

func (s *CloudStore) Delete(ctx context.Context, remoteID string) error {
	if remoteID == "" {
		return fmt.Errorf("%w: missing remote id", apperr.ErrAssetDelete)
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"public_id": remoteID}).
		Post("/image/destroy")
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrAssetDelete, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", apperr.ErrAssetDelete, resp.StatusCode())
	}
	return nil
}
