package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"vocaman_backend/internal/config"
	"vocaman_backend/internal/util"
	"vocaman_backend/pkg/logger"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider stores audio objects under a flat name.
type StorageProvider interface {
	UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error)
	Delete(ctx context.Context, filename string) error
	GetURL(filename string) string
}

// LocalStorageProvider keeps files under Storage.LocalPath and serves them itself.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error) {
	dst := p.Path(filename)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}
	if localPath == dst {
		return p.GetURL(filename), nil
	}

	srcFile, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, filename string) error {
	return os.Remove(p.Path(filename))
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return "/api/v2/audio/" + filename
}

func (p *LocalStorageProvider) Path(filename string) string {
	return filepath.Join(p.Config.LocalPath, filename)
}

type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error) {
	_, err := p.Client.FPutObject(ctx, p.Config.MinioBucket, filename, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, filename string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, filename, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	scheme := "http"
	if p.Config.MinioUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, p.Config.MinioEndpoint, p.Config.MinioBucket, filename)
}

type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}

	if err := bucket.PutObjectFromFile(filename, localPath, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *OSSStorageProvider) Delete(ctx context.Context, filename string) error {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	return bucket.DeleteObject(filename)
}

func (p *OSSStorageProvider) GetURL(filename string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, filename)
}

// AudioProber extracts metadata from an uploaded file.
type AudioProber func(path string) (*util.AudioInfo, error)

type StorageService struct {
	Provider StorageProvider
	Probe    AudioProber
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("minio unavailable, falling back to local storage", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("oss unavailable, falling back to local storage", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider, Probe: util.GetAudioInfo}
}

type UploadedAudio struct {
	AudioRef        string  `json:"audioRef"`
	URL             string  `json:"url"`
	ContentType     string  `json:"contentType"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// UploadAudio validates an audio upload, probes its duration and stores it
// under a random name that becomes the term's audio_ref.
func (s *StorageService) UploadAudio(ctx context.Context, originalName string, src io.Reader) (*UploadedAudio, error) {
	ext, ok := util.AudioExtension(originalName)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported extension", util.ErrInvalidFileType)
	}

	tmp, err := os.CreateTemp("", "audio-*"+ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	mimeType, err := util.ValidateMimeType(tmp, util.AllowedAudioMimeTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrInvalidFileType, mimeType)
	}

	uploaded := &UploadedAudio{ContentType: mimeType}
	if s.Probe != nil {
		info, err := s.Probe(tmp.Name())
		switch {
		case errors.Is(err, util.ErrInvalidFileType):
			return nil, fmt.Errorf("%w: no audio stream", util.ErrInvalidFileType)
		case err != nil:
			// ffprobe missing or failing is not the uploader's fault
			logger.Log.Warn("audio probe failed", zap.String("file", originalName), zap.Error(err))
		default:
			uploaded.DurationSeconds = info.Duration
		}
	}

	name := uuid.NewString() + ext
	url, err := s.Provider.UploadFile(ctx, name, tmp.Name(), mimeType)
	if err != nil {
		return nil, err
	}
	uploaded.AudioRef = name
	uploaded.URL = url

	logger.Log.Info("audio uploaded", zap.String("audio_ref", name), zap.Float64("duration", uploaded.DurationSeconds))
	return uploaded, nil
}

var audioRefPattern = regexp.MustCompile(`^[0-9a-fA-F-]{36}\.[a-z0-9]{2,5}$`)

// ResolveAudio returns either a local file path or a remote URL for audioRef.
func (s *StorageService) ResolveAudio(audioRef string) (localPath string, url string, err error) {
	if !audioRefPattern.MatchString(audioRef) {
		return "", "", util.ErrAudioNotFound
	}
	if local, ok := s.Provider.(*LocalStorageProvider); ok {
		path := local.Path(audioRef)
		if _, err := os.Stat(path); err != nil {
			return "", "", util.ErrAudioNotFound
		}
		return path, "", nil
	}
	return "", s.Provider.GetURL(audioRef), nil
}

func (s *StorageService) DeleteAudio(ctx context.Context, audioRef string) error {
	if !audioRefPattern.MatchString(audioRef) {
		return util.ErrAudioNotFound
	}
	return s.Provider.Delete(ctx, audioRef)
}
