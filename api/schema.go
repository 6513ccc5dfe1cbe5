package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

// loadSchemas compiles every embedded request schema, keyed by file name
// without extension.
func loadSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		entries, err := schemaFS.ReadDir("schemas")
		if err != nil {
			schemasErr = err
			return
		}
		out := make(map[string]*jsonschema.Schema, len(entries))
		for _, e := range entries {
			b, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
			if err != nil {
				schemasErr = err
				return
			}
			rs := &jsonschema.Schema{}
			if err := json.Unmarshal(b, rs); err != nil {
				schemasErr = fmt.Errorf("compile schema %s: %w", e.Name(), err)
				return
			}
			out[strings.TrimSuffix(e.Name(), ".json")] = rs
		}
		schemas = out
	})
	return schemas, schemasErr
}

// shapeError describes a request body that does not match its schema.
type shapeError struct {
	Field   string
	Message string
}

func (e *shapeError) Error() string { return e.Message }

// decodeBody reads the request body, validates it against the named schema
// and decodes it into dst.
func decodeBody(ctx context.Context, r *http.Request, schema string, dst any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return &shapeError{Message: "unreadable request body"}
	}
	if !json.Valid(data) {
		return &shapeError{Message: "request body must be valid JSON"}
	}

	all, err := loadSchemas()
	if err != nil {
		return err
	}
	rs, ok := all[schema]
	if !ok {
		return fmt.Errorf("unknown schema %q", schema)
	}
	keyErrs, err := rs.ValidateBytes(ctx, data)
	if err != nil {
		return &shapeError{Message: "request body must be valid JSON"}
	}
	if len(keyErrs) > 0 {
		ke := keyErrs[0]
		return &shapeError{Field: strings.TrimPrefix(ke.PropertyPath, "/"), Message: ke.Message}
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return &shapeError{Message: "request body does not match the expected shape"}
	}
	return nil
}

// writeDecodeError renders a decodeBody failure.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	if se, ok := err.(*shapeError); ok {
		writeErrorBody(w, http.StatusBadRequest, "invalid_input", se.Message, se.Field)
		return
	}
	writeError(w, r, err)
}
