package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// Encoding is a document file format.
type Encoding string

const (
	TOML Encoding = "toml"
	YAML Encoding = "yaml"
	JSON Encoding = "json"
)

var extensions = map[string]Encoding{
	".toml": TOML,
	".yaml": YAML,
	".yml":  YAML,
	".json": JSON,
}

// EncodingFor picks the encoding from the file extension.
func EncodingFor(path string) (Encoding, error) {
	if enc, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return enc, nil
	}
	return "", errs.New(errs.ErrCodeInvalidDocument, "unsupported document type %q (use .toml, .yaml, .yml or .json)", filepath.Ext(path))
}

// Read decodes a document from r.
func Read(r io.Reader, enc Encoding) (*Document, error) {
	var doc Document
	var err error
	switch enc {
	case TOML:
		_, err = toml.NewDecoder(r).Decode(&doc)
	case YAML:
		err = yaml.NewDecoder(r).Decode(&doc)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case JSON:
		err = json.NewDecoder(r).Decode(&doc)
	default:
		return nil, errs.New(errs.ErrCodeInvalidDocument, "unknown encoding %q", enc)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidDocument, err, "decode %s", enc)
	}
	return &doc, nil
}

// Write encodes doc to w.
func Write(w io.Writer, doc *Document, enc Encoding) error {
	var err error
	switch enc {
	case TOML:
		err = toml.NewEncoder(w).Encode(doc)
	case YAML:
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err = e.Encode(doc); err == nil {
			err = e.Close()
		}
	case JSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		err = e.Encode(doc)
	default:
		return errs.New(errs.ErrCodeInvalidDocument, "unknown encoding %q", enc)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", enc, err)
	}
	return nil
}

// Load reads the document at path.
func Load(path string) (*Document, error) {
	enc, err := EncodingFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "document %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, enc)
}

// LoadOrNew reads the document at path, or returns an empty one if the
// file does not exist yet.
func LoadOrNew(path string) (*Document, error) {
	doc, err := Load(path)
	if errs.Is(err, errs.ErrCodeFileNotFound) {
		return New(), nil
	}
	return doc, err
}

// Save writes doc to path atomically.
func Save(path string, doc *Document) error {
	enc, err := EncodingFor(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Write(tmp, doc, enc); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
