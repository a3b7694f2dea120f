// Package mapping builds the deployable lookup artifact that maps resource
// names to identifiers.
package mapping

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
)

// SourceFile is the name of the generated source file inside the archive.
const SourceFile = "index.js"

// archiveTime is stamped on every archive entry so equal manifests produce
// equal archives.
var archiveTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

var shim = template.Must(template.New(SourceFile).Parse(`// Code generated by connectsync. DO NOT EDIT.
"use strict";

const MAPPING = {{.Mapping}};

exports.handler = async (_event) => {
  return MAPPING;
};
`))

// Artifact is a packaged mapping ready to upload.
type Artifact struct {
	Source  []byte
	Archive []byte
	Entries int
	SHA256  string
}

// Builder renders manifests into the runtime shim and packages them.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With("component", "mapping")}
}

// Render validates every entry and returns the generated source.
func (b *Builder) Render(m *Manifest) ([]byte, error) {
	if m == nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: nil manifest", errors.ErrArtifactBuild), "mapping", "Render", "validate manifest")
	}
	for _, e := range m.entries {
		if err := ValidateEntry(e); err != nil {
			return nil, err
		}
	}

	body, err := m.MarshalJSON()
	if err != nil {
		return nil, errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrArtifactBuild, err), "mapping", "Render", "encode manifest")
	}

	var src bytes.Buffer
	if err := shim.Execute(&src, struct{ Mapping string }{string(body)}); err != nil {
		return nil, errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrArtifactBuild, err), "mapping", "Render", "execute template")
	}
	return src.Bytes(), nil
}

// Build renders the manifest and zips it into a single-file archive.
func (b *Builder) Build(m *Manifest) (*Artifact, error) {
	src, err := b.Render(m)
	if err != nil {
		return nil, err
	}

	archive, err := Package(SourceFile, src)
	if err != nil {
		return nil, errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrArtifactBuild, err), "mapping", "Build", "package archive")
	}

	sum := sha256.Sum256(archive)
	a := &Artifact{
		Source:  src,
		Archive: archive,
		Entries: m.Len(),
		SHA256:  hex.EncodeToString(sum[:]),
	}
	b.logger.Info("Mapping artifact built", "entries", a.Entries, "bytes", len(archive), "sha256", a.SHA256)
	return a, nil
}

// Package writes data into a deflated zip archive holding one file.
func Package(name string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: archiveTime,
	}
	hdr.SetMode(0o644)

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
