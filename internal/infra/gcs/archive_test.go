package gcs

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{uri: "gs://bucket/statements/a.pdf", wantBucket: "bucket", wantObject: "statements/a.pdf"},
		{uri: "gs://bucket/a", wantBucket: "bucket", wantObject: "a"},
		{uri: "https://bucket/a", wantErr: true},
		{uri: "gs://bucket", wantErr: true},
		{uri: "gs://bucket/", wantErr: true},
		{uri: "gs:///object", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestObjectName(t *testing.T) {
	now := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)

	name := ObjectName("s-1", "application/pdf", now)

	assert.True(t, strings.HasPrefix(name, "statements/s-1/2025-01-31/"), name)
	assert.True(t, strings.HasSuffix(name, ".pdf"), name)
	assert.NotEqual(t, name, ObjectName("s-1", "application/pdf", now))
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"application/pdf":          ".pdf",
		"IMAGE/PNG":                ".png",
		"image/jpeg":               ".jpg",
		"text/plain; charset=utf-8": ".txt",
		"application/octet-stream": ".bin",
		"":                         ".bin",
	}
	for mt, want := range tests {
		assert.Equal(t, want, extension(mt), mt)
	}
}
