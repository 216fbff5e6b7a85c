package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	ProfileFolder  = "educonnect_profiles"
	MaterialFolder = "educonnect_materials"
)

var ErrMediaNotConfigured = errors.New("media storage is not configured")

// UploadSignature lets the browser upload straight to Cloudinary.
type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
	Folder    string `json:"folder"`
}

// MediaUploader stores a file and returns its public URL.
type MediaUploader interface {
	Upload(ctx context.Context, file interface{}, folder, publicID string) (string, error)
}

type CloudinaryMedia struct {
	cld *cloudinary.Cloudinary
	now func() time.Time
}

// NewCloudinaryMedia returns nil, nil when no URL is configured.
func NewCloudinaryMedia(cloudinaryURL string) (*CloudinaryMedia, error) {
	if cloudinaryURL == "" {
		return nil, nil
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryMedia{cld: cld, now: time.Now}, nil
}

// Sign produces the parameters a signed upload into folder needs.
func (m *CloudinaryMedia) Sign(folder string) (UploadSignature, error) {
	if m == nil {
		return UploadSignature{}, ErrMediaNotConfigured
	}
	paramsToSign, err := api.StructToParams(uploader.UploadParams{Folder: folder})
	if err != nil {
		return UploadSignature{}, err
	}
	timestamp := m.now().Unix()
	paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(paramsToSign, m.cld.Config.Cloud.APISecret)
	if err != nil {
		return UploadSignature{}, err
	}
	return UploadSignature{
		Signature: signature,
		Timestamp: timestamp,
		APIKey:    m.cld.Config.Cloud.APIKey,
		CloudName: m.cld.Config.Cloud.CloudName,
		Folder:    folder,
	}, nil
}

func (m *CloudinaryMedia) Upload(ctx context.Context, file interface{}, folder, publicID string) (string, error) {
	if m == nil {
		return "", ErrMediaNotConfigured
	}
	res, err := m.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   folder,
		PublicID: publicID,
	})
	if err != nil {
		return "", upstreamFailure("upload file", err)
	}
	if res.Error.Message != "" {
		return "", upstreamFailure("upload file", errors.New(res.Error.Message))
	}
	return res.SecureURL, nil
}
