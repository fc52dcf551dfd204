package keycodec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()
	c, err := New("b", opts...)
	require.NoError(t, err)
	return c
}

func TestExtractKeyShapes(t *testing.T) {
	c := newCodec(t)

	tests := []struct {
		name    string
		locator string
	}{
		{"virtual-hosted", "https://b.s3.amazonaws.com/k.png"},
		{"virtual-hosted regional", "https://b.s3.us-east-1.amazonaws.com/k.png"},
		{"uri scheme", "s3://b/k.png"},
		{"path-style", "https://s3.amazonaws.com/b/k.png"},
		{"path-style custom endpoint", "http://localhost:9000/b/k.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := c.ExtractKey(tt.locator)
			require.NoError(t, err)
			assert.Equal(t, "k.png", key)
		})
	}
}

func TestExtractKeyMalformed(t *testing.T) {
	c := newCodec(t)

	for _, locator := range []string{
		"",
		"k.png",
		"https://other.s3.amazonaws.com/k.png",
		"s3://other/k.png",
		"https://s3.amazonaws.com/other/k.png",
		"https://b.s3.amazonaws.com/",
		"s3://b/",
		"://broken",
	} {
		t.Run(locator, func(t *testing.T) {
			_, err := c.ExtractKey(locator)
			assert.ErrorIs(t, err, ErrMalformedLocator)
		})
	}
}

func TestLocatorRoundTrip(t *testing.T) {
	c := newCodec(t)
	key := c.DeriveKey("report.pdf")

	locator := c.Locator(key)
	assert.Equal(t, "https://b.s3.amazonaws.com/"+key, locator)

	got, err := c.ExtractKey(locator)
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestLocatorWithEndpoint(t *testing.T) {
	c := newCodec(t, WithEndpoint("http://minio:9000/ignored"))

	locator := c.Locator("k.png")
	assert.Equal(t, "http://minio:9000/b/k.png", locator)

	key, err := c.ExtractKey(locator)
	require.NoError(t, err)
	assert.Equal(t, "k.png", key)
}

func TestLocatorWithEndpointNamedAfterBucket(t *testing.T) {
	c, err := New("files", WithEndpoint("http://files.internal:9000"))
	require.NoError(t, err)

	locator := c.Locator("abc.png")
	assert.Equal(t, "http://files.internal:9000/files/abc.png", locator)

	key, err := c.ExtractKey(locator)
	require.NoError(t, err)
	assert.Equal(t, "abc.png", key)

	// virtual-hosted against the endpoint is still understood
	key, err = c.ExtractKey("http://files.files.internal:9000/abc.png")
	require.NoError(t, err)
	assert.Equal(t, "abc.png", key)
}

func TestExtractKeyBucketNamedLikeHost(t *testing.T) {
	c, err := New("s3")
	require.NoError(t, err)

	tests := []struct {
		name    string
		locator string
		want    string
	}{
		{"path-style", "https://s3.amazonaws.com/s3/k.png", "k.png"},
		{"path-style regional", "https://s3.eu-west-1.amazonaws.com/s3/k.png", "k.png"},
		{"virtual-hosted", "https://s3.s3.amazonaws.com/k.png", "k.png"},
		{"virtual-hosted nested key", "https://s3.s3.amazonaws.com/s3/k.png", "s3/k.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := c.ExtractKey(tt.locator)
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestExtractKeyIgnoresLookalikeHosts(t *testing.T) {
	c := newCodec(t)

	// b.example.com is not an object store host, so this is read path-style
	_, err := c.ExtractKey("https://b.example.com/k.png")
	assert.ErrorIs(t, err, ErrMalformedLocator)

	key, err := c.ExtractKey("https://b.example.com/b/k.png")
	require.NoError(t, err)
	assert.Equal(t, "k.png", key)
}

func TestWithEndpointInvalid(t *testing.T) {
	_, err := New("b", WithEndpoint("not a url"))
	assert.Error(t, err)

	_, err = New("")
	assert.Error(t, err)
}

func TestDeriveKey(t *testing.T) {
	c := newCodec(t)

	tests := []struct {
		name string
		in   string
		ext  string
	}{
		{"simple", "a.txt", ".txt"},
		{"double extension", "archive.tar.gz", ".gz"},
		{"no extension", "README", ""},
		{"trailing dot", "name.", ""},
		{"hidden file", ".env", ".env"},
		{"path separators", "../../etc/passwd", ""},
		{"windows path", `C:\docs\plan.docx`, ".docx"},
		{"unsafe characters", "x.p/n g", ""},
		{"strips spaces", "photo.j pg", ".jpg"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := c.DeriveKey(tt.in)
			assert.True(t, strings.HasSuffix(key, tt.ext), "key %q should end with %q", key, tt.ext)
			assert.Len(t, key, 36+len(tt.ext))
			assert.NotContains(t, key, "/")
		})
	}
}

func TestDeriveKeyUnique(t *testing.T) {
	c := newCodec(t)

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		key := c.DeriveKey("same.png")
		_, dup := seen[key]
		require.False(t, dup, "duplicate key %q", key)
		seen[key] = struct{}{}
	}
}

func TestExtractKeyOrRaw(t *testing.T) {
	strict := newCodec(t)
	_, err := strict.ExtractKeyOrRaw("legacy-key.png")
	assert.ErrorIs(t, err, ErrMalformedLocator)

	var buf bytes.Buffer
	lenient := newCodec(t, WithRawFallback(zerolog.New(&buf)))

	key, err := lenient.ExtractKeyOrRaw("legacy-key.png")
	require.NoError(t, err)
	assert.Equal(t, "legacy-key.png", key)
	assert.Contains(t, buf.String(), "raw locator")

	key, err = lenient.ExtractKeyOrRaw("s3://b/k.png")
	require.NoError(t, err)
	assert.Equal(t, "k.png", key)

	_, err = lenient.ExtractKeyOrRaw("")
	assert.ErrorIs(t, err, ErrMalformedLocator)
}
