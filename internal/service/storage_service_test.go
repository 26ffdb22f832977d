package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"vocaman_backend/internal/config"
	"vocaman_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mp3Header = []byte("ID3\x03\x00\x00\x00\x00\x00\x00 fake frames")

func newLocalStorage(t *testing.T, probe AudioProber) (*StorageService, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: dir}})
	svc.Probe = probe
	return svc, dir
}

func TestUploadAudioStoresLocally(t *testing.T) {
	svc, dir := newLocalStorage(t, func(string) (*util.AudioInfo, error) {
		return &util.AudioInfo{Duration: 1.5}, nil
	})

	uploaded, err := svc.UploadAudio(context.Background(), "Cat.MP3", bytes.NewReader(mp3Header))
	require.NoError(t, err)

	assert.Equal(t, "audio/mpeg", uploaded.ContentType)
	assert.Equal(t, 1.5, uploaded.DurationSeconds)
	assert.Equal(t, ".mp3", filepath.Ext(uploaded.AudioRef))
	assert.Equal(t, "/api/v2/audio/"+uploaded.AudioRef, uploaded.URL)

	stored, err := os.ReadFile(filepath.Join(dir, uploaded.AudioRef))
	require.NoError(t, err)
	assert.Equal(t, mp3Header, stored)

	path, url, err := svc.ResolveAudio(uploaded.AudioRef)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, uploaded.AudioRef), path)
	assert.Empty(t, url)

	require.NoError(t, svc.DeleteAudio(context.Background(), uploaded.AudioRef))
	_, _, err = svc.ResolveAudio(uploaded.AudioRef)
	assert.ErrorIs(t, err, util.ErrAudioNotFound)
}

func TestUploadAudioRejections(t *testing.T) {
	svc, _ := newLocalStorage(t, nil)

	_, err := svc.UploadAudio(context.Background(), "notes.txt", bytes.NewReader(mp3Header))
	assert.ErrorIs(t, err, util.ErrInvalidFileType)

	_, err = svc.UploadAudio(context.Background(), "cat.mp3", bytes.NewReader([]byte("plain text pretending")))
	assert.ErrorIs(t, err, util.ErrInvalidFileType)
}

func TestUploadAudioProbeFailures(t *testing.T) {
	noStream, _ := newLocalStorage(t, func(string) (*util.AudioInfo, error) {
		return nil, util.ErrInvalidFileType
	})
	_, err := noStream.UploadAudio(context.Background(), "cat.mp3", bytes.NewReader(mp3Header))
	assert.ErrorIs(t, err, util.ErrInvalidFileType)

	// a broken prober does not block the upload
	broken, _ := newLocalStorage(t, func(string) (*util.AudioInfo, error) {
		return nil, errors.New("ffprobe not installed")
	})
	uploaded, err := broken.UploadAudio(context.Background(), "cat.mp3", bytes.NewReader(mp3Header))
	require.NoError(t, err)
	assert.Zero(t, uploaded.DurationSeconds)
}

func TestResolveAudioRejectsUnsafeNames(t *testing.T) {
	svc, _ := newLocalStorage(t, nil)

	for _, ref := range []string{"../config.yaml", "cat.mp3", "", "00000000-0000-0000-0000-000000000000.mp3/x"} {
		_, _, err := svc.ResolveAudio(ref)
		assert.ErrorIs(t, err, util.ErrAudioNotFound, ref)
	}
	assert.ErrorIs(t, svc.DeleteAudio(context.Background(), "../x"), util.ErrAudioNotFound)
}
