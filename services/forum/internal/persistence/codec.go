package persistence

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/example/learnhub/services/forum/internal/forum"
)

//go:embed schema/forest.schema.json
var forestSchemaJSON []byte

const forestSchemaURL = "https://learnhub.example/schemas/forest.schema.json"

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func forestSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(forestSchemaURL, bytes.NewReader(forestSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(forestSchemaURL)
	})
	return schema, schemaErr
}

// Compression selects how blobs are written. Reads detect the format.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

// ParseCompression maps a config value to a Compression; anything but
// "zstd" means none.
func ParseCompression(s string) Compression {
	if s == string(CompressionZstd) {
		return CompressionZstd
	}
	return CompressionNone
}

// Codec turns a forest into a stored blob and back.
type Codec struct {
	Compression Compression

	encOnce sync.Once
	enc     *zstd.Encoder
	decOnce sync.Once
	dec     *zstd.Decoder
	initErr error
}

// Encode serializes f as a JSON array. Empty comment and reply lists are
// written as [] so that decoding and re-encoding is byte-stable.
func (c *Codec) Encode(f forum.Forest) ([]byte, error) {
	raw, err := json.Marshal(forum.Normalize(f))
	if err != nil {
		return nil, err
	}
	if c.Compression != CompressionZstd {
		return raw, nil
	}
	c.encOnce.Do(func() {
		c.enc, c.initErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	if c.enc == nil {
		return nil, fmt.Errorf("zstd encoder: %w", c.initErr)
	}
	return c.enc.EncodeAll(raw, nil), nil
}

// Decode parses a blob written by Encode with any compression setting. The
// blob is rejected as a whole if it fails the JSON schema or the forest
// invariants.
func (c *Codec) Decode(blob []byte) (forum.Forest, error) {
	if bytes.HasPrefix(blob, zstdMagic) {
		c.decOnce.Do(func() {
			c.dec, c.initErr = zstd.NewReader(nil)
		})
		if c.dec == nil {
			return nil, fmt.Errorf("zstd decoder: %w", c.initErr)
		}
		raw, err := c.dec.DecodeAll(blob, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		blob = raw
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	sch, err := forestSchema()
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var f forum.Forest
	if err := json.Unmarshal(blob, &f); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if err := forum.Validate(f); err != nil {
		return nil, err
	}
	return forum.Normalize(f), nil
}
