package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongodb "realestate-service/internal/mongo"
)

// GridFSPhotoRepository keeps listing photos in a GridFS bucket.
type GridFSPhotoRepository struct {
	DB *mongo.Database
}

func NewGridFSPhotoRepository(db *mongo.Database) *GridFSPhotoRepository {
	return &GridFSPhotoRepository{DB: db}
}

func (r *GridFSPhotoRepository) bucket() (*gridfs.Bucket, error) {
	return gridfs.NewBucket(r.DB, options.GridFSBucket().SetName(mongodb.PhotoBucket))
}

func (r *GridFSPhotoRepository) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	bucket, err := r.bucket()
	if err != nil {
		return "", err
	}

	stream, err := bucket.OpenUploadStream(filename)
	if err != nil {
		return "", fmt.Errorf("open upload stream: %w", err)
	}
	defer stream.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	if _, err := io.Copy(stream, file); err != nil {
		_ = stream.Abort()
		return "", fmt.Errorf("write photo: %w", err)
	}

	return stream.FileID.(primitive.ObjectID).Hex(), nil
}

func (r *GridFSPhotoRepository) Download(ctx context.Context, photoID string) ([]byte, error) {
	bucket, err := r.bucket()
	if err != nil {
		return nil, err
	}

	oid, err := objectID(photoID)
	if err != nil {
		return nil, err
	}

	stream, err := bucket.OpenDownloadStream(oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open download stream: %w", err)
	}
	defer stream.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	return data, nil
}
