// Package export submits a finished CV for PDF generation and saves the result.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/cv-editor/internal/config"
	"github.com/jonathan/cv-editor/internal/confirm"
	"github.com/jonathan/cv-editor/internal/logger"
	"github.com/jonathan/cv-editor/internal/store"
	"github.com/jonathan/cv-editor/internal/types"
)

// ConfirmQuestion is asked before anything is sent for generation.
const ConfirmQuestion = "Is this CV correct?"

// ErrDeclined is returned when the user does not confirm the submission.
var ErrDeclined = errors.New("submission declined")

// MissingFieldsError lists required fields that are empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("required fields are empty: %s", strings.Join(e.Fields, ", "))
}

// Service generates artifacts and serves their bytes.
type Service interface {
	Generate(ctx context.Context, doc types.CV) (*store.Artifact, error)
	Download(ctx context.Context, ref string, w io.Writer) (int64, error)
}

// Options configures an Exporter.
type Options struct {
	Service   Service
	Confirmer confirm.Confirmer
	OutputDir string
	Logger    *logger.Logger
}

// Exporter runs the submission flow.
type Exporter struct {
	service   Service
	confirmer confirm.Confirmer
	outputDir string
	log       *logger.Logger
	validate  *validator.Validate
}

// Result describes a saved artifact.
type Result struct {
	Path     string
	Artifact string
	Bytes    int64
}

// New creates an exporter.
func New(opts Options) *Exporter {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	return &Exporter{
		service:   opts.Service,
		confirmer: opts.Confirmer,
		outputDir: outputDir,
		log:       logger.OrNop(opts.Logger),
		validate:  v,
	}
}

// Validate reports the required fields doc is missing.
func (e *Exporter) Validate(doc types.CV) error {
	err := e.validate.Struct(doc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate document: %w", err)
	}
	missing := &MissingFieldsError{}
	for _, fe := range verrs {
		missing.Fields = append(missing.Fields, fe.Field())
	}
	return missing
}

// Submit validates doc, asks for confirmation, requests generation and writes the
// artifact into the output directory. Nothing is sent when validation fails or the
// user declines.
func (e *Exporter) Submit(ctx context.Context, doc types.CV) (*Result, error) {
	if err := e.Prepare(ctx, doc); err != nil {
		return nil, err
	}
	return e.Generate(ctx, doc)
}

// Prepare runs the local part of a submission: presence validation, then the
// confirmation gate. It makes no network calls.
func (e *Exporter) Prepare(ctx context.Context, doc types.CV) error {
	if err := e.Validate(doc); err != nil {
		return err
	}
	if e.confirmer == nil {
		return nil
	}

	ok, err := e.confirmer.Confirm(ctx, ConfirmQuestion)
	if err != nil {
		return fmt.Errorf("failed to confirm submission: %w", err)
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

// Generate requests generation of doc and downloads the artifact. Callers run
// Prepare first.
func (e *Exporter) Generate(ctx context.Context, doc types.CV) (*Result, error) {
	artifact, err := e.service.Generate(ctx, doc)
	if err != nil {
		e.log.Error("failed to generate cv", "cv_id", doc.ID, "error", err)
		return nil, fmt.Errorf("failed to generate CV: %w", err)
	}

	target := filepath.Join(e.outputDir, ArtifactName(doc.FileName))
	n, err := e.save(ctx, artifact.Path, target)
	if err != nil {
		e.log.Error("failed to download cv", "cv_id", doc.ID, "artifact", artifact.Path, "error", err)
		return nil, err
	}

	e.log.Info("cv generated", "cv_id", doc.ID, "path", target, "bytes", n)
	return &Result{Path: target, Artifact: artifact.Path, Bytes: n}, nil
}

func (e *Exporter) save(ctx context.Context, ref, target string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(target), ".cvctl-*.pdf")
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	n, err := e.service.Download(ctx, ref, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to download CV: %w", err)
	}

	if err := os.Rename(tmp, target); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", target, err)
	}
	return n, nil
}

// ArtifactName derives the download file name from a document title.
func ArtifactName(fileName string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return -1
		}
		return r
	}, strings.TrimSpace(fileName))
	name = strings.Trim(name, ". ")
	if name == "" {
		return config.DefaultArtifactName
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
