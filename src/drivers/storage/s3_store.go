package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// deleteBatchSize is the DeleteObjects per-request limit.
const deleteBatchSize = 1000

var ErrURLSigningUnsupported = errors.New("url signing not configured")

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Options configures NewS3Store. Empty credentials fall back to the default
// AWS credential chain.
type S3Options struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// S3Store maps a bucket (optionally below a key prefix) onto a directory tree.
// Directories are implied by key prefixes; empty ones are kept alive with a
// zero-byte "dir/" marker object.
type S3Store struct {
	client  S3API
	presign *s3.PresignClient
	bucket  string
	prefix  string
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 store: bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})

	store := NewS3StoreWithClient(client, opts.Bucket, opts.Prefix)
	store.presign = s3.NewPresignClient(client)
	return store, nil
}

// NewS3StoreWithClient builds a store over an existing client. URL signing is
// unavailable on stores built this way.
func NewS3StoreWithClient(client S3API, bucket, prefix string) *S3Store {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) key(p string) string {
	return s.prefix + strings.TrimPrefix(p, "/")
}

// dirKey is the listing prefix of directory p; empty for the bucket root.
func (s *S3Store) dirKey(p string) string {
	k := s.key(p)
	if k == "" || strings.HasSuffix(k, "/") {
		return k
	}
	return k + "/"
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

func (s *S3Store) Stat(ctx context.Context, p string) (*Entry, error) {
	if err := checkPath(p); err != nil {
		return nil, err
	}
	if p == "/" {
		return &Entry{Path: "/", IsDir: true}, nil
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err == nil {
		return &Entry{
			Name:    path.Base(p),
			Path:    p,
			Size:    aws.ToInt64(head.ContentLength),
			ModTime: aws.ToTime(head.LastModified),
		}, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("head %s: %w", p, err)
	}

	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.dirKey(p)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p, err)
	}
	if len(out.Contents) == 0 && len(out.CommonPrefixes) == 0 {
		return nil, fmt.Errorf("stat %s: %w", p, fs.ErrNotExist)
	}
	return &Entry{Name: path.Base(p), Path: p, IsDir: true}, nil
}

func (s *S3Store) requireDir(ctx context.Context, dir string) error {
	e, err := s.Stat(ctx, dir)
	if err != nil {
		return err
	}
	if !e.IsDir {
		return fmt.Errorf("%s: %w", dir, ErrNotDir)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := s.requireDir(ctx, dir); err != nil {
		return nil, err
	}

	prefix := s.dirKey(dir)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var items []Entry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}

		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name == "" {
				continue
			}
			items = append(items, Entry{Name: name, Path: path.Join(dir, name), IsDir: true})
		}

		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name == "" || strings.Contains(name, "/") {
				continue // directory marker
			}
			items = append(items, Entry{
				Name:    name,
				Path:    path.Join(dir, name),
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}
	return items, nil
}

func (s *S3Store) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	e, err := s.Stat(ctx, p)
	if err != nil {
		return nil, err
	}
	if e.IsDir {
		return nil, fmt.Errorf("%s: %w", p, ErrIsDir)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("get %s: %w", p, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("get %s: %w", p, err)
	}
	return out.Body, nil
}

// WriteFile buffers the body so PutObject gets a seekable reader with a known length.
func (s *S3Store) WriteFile(ctx context.Context, p string, data io.Reader) (int64, error) {
	if err := checkPath(p); err != nil {
		return 0, err
	}
	if p == "/" {
		return 0, fmt.Errorf("%s: %w", p, ErrIsDir)
	}
	if err := s.requireDir(ctx, path.Dir(p)); err != nil {
		return 0, err
	}
	if e, err := s.Stat(ctx, p); err == nil && e.IsDir {
		return 0, fmt.Errorf("%s: %w", p, ErrIsDir)
	}

	body, err := io.ReadAll(data)
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(p)),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, fmt.Errorf("put %s: %w", p, err)
	}
	return int64(len(body)), nil
}

func (s *S3Store) putMarker(ctx context.Context, p string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.dirKey(p)),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		return fmt.Errorf("mkdir %s: %w", p, err)
	}
	return nil
}

func (s *S3Store) Mkdir(ctx context.Context, p string) error {
	if err := checkPath(p); err != nil {
		return err
	}
	if _, err := s.Stat(ctx, p); err == nil {
		return fmt.Errorf("mkdir %s: %w", p, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := s.requireDir(ctx, path.Dir(p)); err != nil {
		return err
	}
	return s.putMarker(ctx, p)
}

// keysUnder returns every object key below directory p, markers included.
func (s *S3Store) keysUnder(ctx context.Context, p string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.dirKey(p)),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", p, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (s *S3Store) Remove(ctx context.Context, p string) error {
	if err := checkPath(p); err != nil {
		return err
	}
	if p == "/" {
		return fmt.Errorf("remove storage root: %w", fs.ErrPermission)
	}
	e, err := s.Stat(ctx, p)
	if err != nil {
		return err
	}

	if !e.IsDir {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(p)),
		})
		if err != nil {
			return fmt.Errorf("delete %s: %w", p, err)
		}
		return nil
	}

	keys, err := s.keysUnder(ctx, p)
	if err != nil {
		return err
	}
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))
		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
		}
		_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("delete %s: %w", p, err)
		}
	}
	return nil
}

// copySource formats the CopySource header value, escaping each key segment.
func (s *S3Store) copySource(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return s.bucket + "/" + strings.Join(parts, "/")
}

func (s *S3Store) copyObject(ctx context.Context, srcKey, dstKey string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(s.copySource(srcKey)),
	})
	if err != nil {
		return fmt.Errorf("copy %s: %w", srcKey, err)
	}
	return nil
}

func (s *S3Store) Copy(ctx context.Context, src, dst string) error {
	if err := checkPath(dst); err != nil {
		return err
	}
	if src == "/" || dst == "/" {
		return fmt.Errorf("transfer storage root: %w", fs.ErrPermission)
	}
	e, err := s.Stat(ctx, src)
	if err != nil {
		return err
	}
	if IsWithin(dst, src) {
		return fmt.Errorf("%s into %s: %w", src, dst, fs.ErrInvalid)
	}
	if _, err := s.Stat(ctx, dst); err == nil {
		return fmt.Errorf("%s: %w", dst, fs.ErrExist)
	}
	if err := s.requireDir(ctx, path.Dir(dst)); err != nil {
		return err
	}

	if !e.IsDir {
		return s.copyObject(ctx, s.key(src), s.key(dst))
	}

	srcPrefix, dstPrefix := s.dirKey(src), s.dirKey(dst)
	keys, err := s.keysUnder(ctx, src)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.copyObject(ctx, k, dstPrefix+strings.TrimPrefix(k, srcPrefix)); err != nil {
			return err
		}
	}
	// Source may exist only through nested keys; always leave a marker.
	return s.putMarker(ctx, dst)
}

// Move is a server-side copy followed by removal of the source.
func (s *S3Store) Move(ctx context.Context, src, dst string) error {
	if err := s.Copy(ctx, src, dst); err != nil {
		return err
	}
	return s.Remove(ctx, src)
}

func (s *S3Store) SignedURL(ctx context.Context, p string, ttl time.Duration) (string, error) {
	if s.presign == nil {
		return "", ErrURLSigningUnsupported
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", p, err)
	}
	return req.URL, nil
}
