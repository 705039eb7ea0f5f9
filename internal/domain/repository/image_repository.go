package repository

import (
	"context"
	"io"
)

// Image is an uploaded file ready to be stored
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ImageRepository stores images in object storage
type ImageRepository interface {
	// Upload stores the image under folder and returns its public URL
	Upload(ctx context.Context, folder string, image Image) (string, error)
	// Delete removes the object behind a URL returned by Upload
	Delete(ctx context.Context, url string) error
}
