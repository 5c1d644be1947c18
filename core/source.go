package core

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

// Compression is the container format of a source stream.
type Compression byte

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZip
	CompressionXZ
	CompressionZlib
	CompressionBZip2
)

var compressionSigs = []struct {
	kind Compression
	sig  []byte
}{
	{CompressionGzip, []byte{0x1f, 0x8b, 0x08}},
	{CompressionZip, []byte{0x50, 0x4b, 0x03, 0x04}},
	{CompressionXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{CompressionZlib, []byte{0x78, 0x9c}},
	{CompressionZlib, []byte{0x78, 0x01}},
	{CompressionZlib, []byte{0x78, 0xda}},
	{CompressionBZip2, []byte{0x42, 0x5a, 0x68}},
}

// DetectCompression matches the leading bytes of a stream against known
// signatures. Short or unknown headers mean no compression.
func DetectCompression(head []byte) Compression {
	for _, s := range compressionSigs {
		if bytes.HasPrefix(head, s.sig) {
			return s.kind
		}
	}
	return CompressionNone
}

// IsGCSPath reports whether path names a Google Cloud Storage object.
func IsGCSPath(path string) bool {
	return strings.HasPrefix(path, "gs://")
}

func splitGCSPath(path string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(path, "gs://")
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid gcs path %q: want gs://bucket/object", path)
	}
	return bucket, object, nil
}

// OpenRawSource opens a local file or a gs://bucket/object as stored.
// gcs may be nil when path is local.
func OpenRawSource(ctx context.Context, path string, gcs *storage.Client) (io.ReadCloser, error) {
	if !IsGCSPath(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		return f, nil
	}

	if gcs == nil {
		return nil, fmt.Errorf("no storage client for %s", path)
	}
	bucket, object, err := splitGCSPath(path)
	if err != nil {
		return nil, err
	}
	r, err := gcs.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return r, nil
}

// OpenSource is OpenRawSource with transparent decompression.
func OpenSource(ctx context.Context, path string, gcs *storage.Client) (io.ReadCloser, error) {
	raw, err := OpenRawSource(ctx, path, gcs)
	if err != nil {
		return nil, err
	}

	rc, err := maybeDecompress(raw)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	return rc, nil
}

func maybeDecompress(raw io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(raw)
	head, err := br.Peek(6)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}

	var r io.Reader
	switch DetectCompression(head) {
	case CompressionGzip:
		r, err = gzip.NewReader(br)
	case CompressionZip:
		zr := zipstream.NewReader(br)
		// The table is the first entry of the archive.
		if _, err = zr.Next(); err == nil {
			r = zr
		}
	case CompressionBZip2:
		r = bzip2.NewReader(br)
	case CompressionXZ:
		r, err = xz.NewReader(br, 0)
	case CompressionZlib:
		r, err = zlib.NewReader(br)
	default:
		r = br
	}
	if err != nil {
		return nil, err
	}
	return &sourceReader{Reader: r, closer: raw}, nil
}

// sourceReader reads the decompressed stream and closes the underlying one.
type sourceReader struct {
	io.Reader
	closer io.Closer
}

func (s *sourceReader) Close() error {
	if c, ok := s.Reader.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.closer.Close()
			return err
		}
	}
	return s.closer.Close()
}
