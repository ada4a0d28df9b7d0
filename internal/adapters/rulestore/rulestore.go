// Package rulestore fetches the quality rule document from S3 and caches it
// for the lifetime of the process.
package rulestore

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vsm/qualitycheck/internal/domain/rules"
	"github.com/vsm/qualitycheck/pkg/logger"
	"github.com/vsm/qualitycheck/pkg/metrics"
)

const schemaURL = "https://schemas.vsm.dev/quality/rules.schema.json"

//go:embed rules.schema.json
var schemaDocument string

// Load results recorded in metrics.
const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// ObjectGetter is the part of the S3 client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// snapshot is the immutable cached state. It is replaced, never mutated.
// A snapshot taken before the latest Invalidate is stale.
type snapshot struct {
	raw        map[string]any
	generation uint64
}

// Loader is a read-through cache over one rule document.
type Loader struct {
	client ObjectGetter
	bucket string
	key    string
	schema *jsonschema.Schema
	logger logger.Logger

	current    atomic.Pointer[snapshot]
	generation atomic.Uint64
	fetchMu    sync.Mutex
}

// New creates a loader for s3://bucket/key.
func New(client ObjectGetter, bucket, key string, opts ...Option) (*Loader, error) {
	if client == nil {
		return nil, errors.New("rulestore: nil S3 client")
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	l := &Loader{
		client: client,
		bucket: bucket,
		key:    key,
		schema: schema,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("rulestore")
	}
	return l, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader([]byte(schemaDocument))); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// Load returns the normalized rule configuration. The document is fetched
// on the first call and after Invalidate; other calls re-normalize the
// cached document without any I/O.
func (l *Loader) Load(ctx context.Context) (rules.Config, error) {
	if snap := l.cached(); snap != nil {
		metrics.RecordRulesLoad(resultHit)
		return rules.FromDocument(snap.raw), nil
	}

	l.fetchMu.Lock()
	defer l.fetchMu.Unlock()

	if snap := l.cached(); snap != nil {
		metrics.RecordRulesLoad(resultHit)
		return rules.FromDocument(snap.raw), nil
	}

	gen := l.generation.Load()
	raw, err := l.fetch(ctx)
	if err != nil {
		metrics.RecordRulesLoad(resultError)
		return rules.Config{}, err
	}
	metrics.RecordRulesLoad(resultMiss)

	// Stored under the generation seen before the fetch. If Invalidate ran
	// in the meantime the snapshot is already stale and is never served.
	l.current.Store(&snapshot{raw: raw, generation: gen})
	return rules.FromDocument(raw), nil
}

// cached returns the current snapshot, or nil when there is none or it
// predates the last Invalidate.
func (l *Loader) cached() *snapshot {
	snap := l.current.Load()
	if snap == nil || snap.generation != l.generation.Load() {
		return nil
	}
	return snap
}

// Invalidate drops the cached document so the next Load fetches it again.
func (l *Loader) Invalidate() {
	l.generation.Add(1)
	l.current.Store(nil)
}

func (l *Loader) fetch(ctx context.Context) (map[string]any, error) {
	location := fmt.Sprintf("s3://%s/%s", l.bucket, l.key)

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(l.key),
	})
	if err != nil {
		fields := []logger.Field{logger.String("location", location), logger.Error(err)}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			fields = append(fields, logger.String("code", apiErr.ErrorCode()))
		}
		l.logger.Error(ctx, "failed to download quality rules", fields...)
		return nil, fmt.Errorf("%w: download %s: %w", ErrConfiguration, location, err)
	}
	if out == nil || out.Body == nil {
		return nil, fmt.Errorf("%w: %s was empty", ErrConfiguration, location)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfiguration, location, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s was empty", ErrConfiguration, location)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s must contain valid JSON: %w", ErrConfiguration, location, err)
	}
	if err := l.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s must be a JSON object", ErrConfiguration, location)
	}
	raw, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a JSON object", ErrConfiguration, location)
	}

	l.logger.Info(ctx, "quality rules loaded", logger.String("location", location), logger.Int("keys", len(raw)))
	return raw, nil
}
