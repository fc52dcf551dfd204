// Package keycodec derives object keys for uploads and recovers them from the
// locators the object store hands back.
//
// Three locator shapes are understood for the configured bucket:
//
//	https://{bucket}.{host}/{key}   virtual-hosted
//	{scheme}://{bucket}/{key}       URI scheme, e.g. s3://
//	https://{host}/{bucket}/{key}   path-style
package keycodec

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrMalformedLocator is returned when a locator matches none of the known shapes.
var ErrMalformedLocator = errors.New("malformed locator")

const (
	defaultHost     = "s3.amazonaws.com"
	maxExtensionLen = 16
)

type Codec struct {
	bucket   string
	endpoint *url.URL

	rawFallback bool
	log         zerolog.Logger
}

type Option func(*Codec) error

// WithEndpoint makes Locator emit path-style locators against a custom
// endpoint such as MinIO.
func WithEndpoint(endpoint string) Option {
	return func(c *Codec) error {
		if endpoint == "" {
			return nil
		}
		u, err := url.Parse(endpoint)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid endpoint %q", endpoint)
		}
		c.endpoint = &url.URL{Scheme: u.Scheme, Host: u.Host}
		return nil
	}
}

// WithRawFallback lets ExtractKeyOrRaw treat an unrecognised locator as the
// key itself. Every fallback is logged at warn level.
func WithRawFallback(log zerolog.Logger) Option {
	return func(c *Codec) error {
		c.rawFallback = true
		c.log = log
		return nil
	}
}

func New(bucket string, opts ...Option) (*Codec, error) {
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}

	c := &Codec{bucket: bucket, log: zerolog.Nop()}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Codec) Bucket() string {
	return c.bucket
}

// DeriveKey returns a fresh key for an upload named originalName: a random
// UUID followed by the original extension, if it has a usable one.
func (c *Codec) DeriveKey(originalName string) string {
	return uuid.NewString() + extension(originalName)
}

// Locator returns the canonical locator for key.
func (c *Codec) Locator(key string) string {
	if c.endpoint != nil {
		u := url.URL{Scheme: c.endpoint.Scheme, Host: c.endpoint.Host, Path: "/" + c.bucket + "/" + key}
		return u.String()
	}

	u := url.URL{Scheme: "https", Host: c.bucket + "." + defaultHost, Path: "/" + key}
	return u.String()
}

// ExtractKey recovers the key from locator. A locator on the configured
// endpoint is always read path-style; otherwise a host of the form
// {bucket}.{s3 host} is virtual-hosted and anything else is path-style.
func (c *Codec) ExtractKey(locator string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(locator))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedLocator, locator)
	}

	host := strings.ToLower(u.Host)
	p := strings.TrimPrefix(u.Path, "/")
	var key string

	switch scheme := strings.ToLower(u.Scheme); {
	case scheme != "http" && scheme != "https":
		if u.Host == c.bucket {
			key = p
		}
	case c.endpoint != nil && host == strings.ToLower(c.endpoint.Host):
		key = c.pathStyleKey(p)
	case strings.HasPrefix(host, c.bucket+".") && c.isObjectStoreHost(strings.TrimPrefix(host, c.bucket+".")):
		key = p
	default:
		key = c.pathStyleKey(p)
	}

	if key == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedLocator, locator)
	}
	return key, nil
}

func (c *Codec) pathStyleKey(p string) string {
	if !strings.HasPrefix(p, c.bucket+"/") {
		return ""
	}
	return strings.TrimPrefix(p, c.bucket+"/")
}

// isObjectStoreHost reports whether host can follow "{bucket}." in a
// virtual-hosted locator: an AWS S3 endpoint or the configured endpoint.
func (c *Codec) isObjectStoreHost(host string) bool {
	if c.endpoint != nil && host == strings.ToLower(c.endpoint.Host) {
		return true
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if !strings.HasSuffix(host, ".amazonaws.com") && !strings.HasSuffix(host, ".amazonaws.com.cn") {
		return false
	}
	return strings.HasPrefix(host, "s3.") || strings.HasPrefix(host, "s3-")
}

// ExtractKeyOrRaw behaves like ExtractKey, except that with WithRawFallback a
// malformed locator is returned unchanged as the key.
func (c *Codec) ExtractKeyOrRaw(locator string) (string, error) {
	key, err := c.ExtractKey(locator)
	if err == nil || !c.rawFallback || locator == "" {
		return key, err
	}

	c.log.Warn().Str("locator", locator).Msg("could not extract key from locator, using raw locator as key")
	return locator, nil
}

func extension(name string) string {
	ext := path.Ext(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if ext == "" || ext == "." {
		return ""
	}

	var b strings.Builder
	b.WriteByte('.')
	for _, r := range ext[1:] {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	if b.Len() == 1 || b.Len() > maxExtensionLen+1 {
		return ""
	}
	return b.String()
}
