package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"portfolioapi/internal/encoder"
	"portfolioapi/internal/model"
	"portfolioapi/internal/notify"
	"portfolioapi/internal/storage"
	"portfolioapi/internal/validator"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrBodyNil      = errors.New("upload body is nil")
)

// Operation names a portfolio mutation.
type Operation string

const (
	OpUpload   Operation = "upload"
	OpReplace  Operation = "replace"
	OpDelete   Operation = "delete"
	OpClearAll Operation = "clear_all"
)

// allCategories marks operations that are not about a single category.
const allCategories = model.Category(model.CategoryCount)

var operationTitles = map[Operation]string{
	OpUpload:   "Upload failed",
	OpReplace:  "Replace failed",
	OpDelete:   "Delete failed",
	OpClearAll: "Clear failed",
}

// OperationError reports a failed mutation together with the file it was about.
type OperationError struct {
	Op       Operation
	Category model.Category
	FileName string
	Err      error
}

func (e *OperationError) Error() string {
	return e.Title() + ": " + e.Description()
}

func (e *OperationError) Unwrap() error { return e.Err }

// Title is the short heading shown to the user.
func (e *OperationError) Title() string {
	if t, ok := operationTitles[e.Op]; ok {
		return t
	}
	return "Operation failed"
}

// Description is the human readable reason. Validation messages are passed through as-is.
func (e *OperationError) Description() string {
	var ve *validator.ValidationError
	if errors.As(e.Err, &ve) {
		return ve.Message
	}
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

// Upload is a file handed to the service by the presentation layer.
type Upload struct {
	Name      string
	MediaType string
	Size      int64
	Body      io.Reader
}

// Recorder receives operation metrics.
type Recorder interface {
	ObserveOperation(op, category string, err error, elapsed time.Duration)
	SetFiles(rec *model.PortfolioRecord)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string, error, time.Duration) {}
func (nopRecorder) SetFiles(*model.PortfolioRecord)                       {}

// PortfolioService owns the portfolio record and keeps it in sync with its storage slot.
type PortfolioService interface {
	// Files returns a copy of the current record.
	Files() *model.PortfolioRecord

	// IsUploading reports whether an upload or replace is in flight.
	IsUploading() bool

	// Upload validates and encodes u, places it into category and persists the record.
	// Profile and resume replace the existing file; projects are appended.
	Upload(ctx context.Context, u Upload, category model.Category) (*model.FileRecord, error)

	// Delete removes a file. Profile and resume are cleared whatever the id; an unknown project id is a no-op.
	Delete(ctx context.Context, id string, category model.Category) error

	// Replace overwrites the project with the given id in place, keeping its id and position.
	// Without an id, or for profile and resume, it behaves like Upload.
	// An unknown project id returns a nil record and no error.
	Replace(ctx context.Context, u Upload, category model.Category, id string) (*model.FileRecord, error)

	// ClearAll discards the persisted record and resets to empty.
	ClearAll(ctx context.Context) error

	// Content returns the file with the given id and its decoded bytes.
	Content(ctx context.Context, id string) (*model.FileRecord, []byte, error)

	// Ping checks the storage slot.
	Ping(ctx context.Context) error
}

// Option configures the portfolio service.
type Option func(*portfolioService)

func WithNotifier(n notify.Notifier) Option {
	return func(s *portfolioService) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *portfolioService) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *portfolioService) { s.newID = gen }
}

func WithRecorder(r Recorder) Option {
	return func(s *portfolioService) { s.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *portfolioService) { s.logger = l }
}

// WithEncodeTimeout bounds the encoding step of a single upload. Zero disables the bound.
func WithEncodeTimeout(d time.Duration) Option {
	return func(s *portfolioService) { s.encodeTimeout = d }
}

type portfolioService struct {
	slot storage.Slot

	mu    sync.Mutex
	files *model.PortfolioRecord

	inFlight atomic.Int32

	notifier      notify.Notifier
	recorder      Recorder
	logger        *slog.Logger
	tracer        trace.Tracer
	now           func() time.Time
	newID         func() string
	encodeTimeout time.Duration
}

// NewPortfolioService loads the current record from slot and returns a service around it.
func NewPortfolioService(ctx context.Context, slot storage.Slot, opts ...Option) (PortfolioService, error) {
	s := &portfolioService{
		slot:     slot,
		notifier: notify.Discard,
		recorder: nopRecorder{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("portfolioapi/internal/service"),
		now:      time.Now,
		newID:    newFileID,
	}
	for _, opt := range opts {
		opt(s)
	}

	rec, err := slot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	s.files = rec
	s.recorder.SetFiles(rec)
	return s, nil
}

func (s *portfolioService) Files() *model.PortfolioRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Clone()
}

func (s *portfolioService) IsUploading() bool {
	return s.inFlight.Load() > 0
}

func (s *portfolioService) Upload(ctx context.Context, u Upload, category model.Category) (*model.FileRecord, error) {
	ctx, done := s.begin(ctx, OpUpload, category, u.Name)
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	f, err := s.upload(ctx, u, category)
	done(err)
	if err != nil {
		return nil, s.fail(ctx, OpUpload, category, u.Name, err)
	}

	s.notifier.Notify(ctx, notify.Notification{
		Title:       "File uploaded successfully",
		Description: fmt.Sprintf("%s has been uploaded.", u.Name),
	})
	return f, nil
}

func (s *portfolioService) upload(ctx context.Context, u Upload, category model.Category) (*model.FileRecord, error) {
	f, err := s.prepare(ctx, u, category, "")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.files.Clone()
	if category.Singleton() {
		next.SetSingleton(category, f)
	} else {
		next.Projects = append(next.Projects, *f)
	}
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	out := *f
	return &out, nil
}

func (s *portfolioService) Delete(ctx context.Context, id string, category model.Category) error {
	id = strings.Clone(id)
	ctx, done := s.begin(ctx, OpDelete, category, id)

	err := s.delete(ctx, id, category)
	done(err)
	if err != nil {
		return s.fail(ctx, OpDelete, category, "", err)
	}

	s.notifier.Notify(ctx, notify.Notification{
		Title:       "File deleted",
		Description: "File has been removed from your portfolio.",
	})
	return nil
}

func (s *portfolioService) delete(ctx context.Context, id string, category model.Category) error {
	if !category.Valid() {
		return model.ErrUnknownCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.files.Clone()
	if category.Singleton() {
		next.SetSingleton(category, nil)
	} else if i := next.ProjectIndex(id); i >= 0 {
		next.Projects = append(next.Projects[:i], next.Projects[i+1:]...)
	} else {
		s.logger.InfoContext(ctx, "portfolio_delete_no_match",
			slog.String("component", "service"),
			slog.String("category", category.String()),
			slog.String("file_id", id),
		)
	}
	return s.commit(ctx, next)
}

func (s *portfolioService) Replace(ctx context.Context, u Upload, category model.Category, id string) (*model.FileRecord, error) {
	if category != model.Project || id == "" {
		return s.Upload(ctx, u, category)
	}

	ctx, done := s.begin(ctx, OpReplace, category, u.Name)
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	f, err := s.replace(ctx, u, category, id)
	done(err)
	if err != nil {
		return nil, s.fail(ctx, OpReplace, category, u.Name, err)
	}
	if f == nil {
		return nil, nil
	}

	s.notifier.Notify(ctx, notify.Notification{
		Title:       "File replaced successfully",
		Description: fmt.Sprintf("%s has been updated.", u.Name),
	})
	return f, nil
}

func (s *portfolioService) replace(ctx context.Context, u Upload, category model.Category, id string) (*model.FileRecord, error) {
	f, err := s.prepare(ctx, u, category, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.files.Clone()
	i := next.ProjectIndex(id)
	if i < 0 {
		s.logger.InfoContext(ctx, "portfolio_replace_no_match",
			slog.String("component", "service"),
			slog.String("file_id", id),
		)
		return nil, nil
	}
	next.Projects[i] = *f
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	out := *f
	return &out, nil
}

func (s *portfolioService) ClearAll(ctx context.Context) error {
	ctx, done := s.begin(ctx, OpClearAll, allCategories, "")

	s.mu.Lock()
	err := s.slot.Clear(ctx)
	if err == nil {
		s.files = model.NewPortfolioRecord()
		s.recorder.SetFiles(s.files)
	}
	s.mu.Unlock()

	done(err)
	if err != nil {
		return s.fail(ctx, OpClearAll, allCategories, "", err)
	}

	s.notifier.Notify(ctx, notify.Notification{
		Title:       "Portfolio cleared",
		Description: "All files have been removed from your portfolio.",
	})
	return nil
}

func (s *portfolioService) Content(ctx context.Context, id string) (*model.FileRecord, []byte, error) {
	_, span := s.tracer.Start(ctx, "portfolio.Content", trace.WithAttributes(attribute.String("portfolio.file_id", id)))
	defer span.End()

	s.mu.Lock()
	f, ok := s.files.Find(id)
	var rec model.FileRecord
	if ok {
		rec = *f
	}
	s.mu.Unlock()

	if !ok {
		return nil, nil, ErrFileNotFound
	}
	_, data, err := encoder.Decode(rec.Content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return &rec, data, nil
}

func (s *portfolioService) Ping(ctx context.Context) error {
	return s.slot.Ping(ctx)
}

// prepare runs validation and encoding. Nothing is mutated here.
func (s *portfolioService) prepare(ctx context.Context, u Upload, category model.Category, id string) (*model.FileRecord, error) {
	if !category.Valid() {
		return nil, model.ErrUnknownCategory
	}
	if err := validator.Validate(validator.FileDescriptor{MediaType: u.MediaType, SizeBytes: u.Size}, category); err != nil {
		return nil, err
	}
	if u.Body == nil {
		return nil, fmt.Errorf("%w: %w", encoder.ErrEncodingFailure, ErrBodyNil)
	}

	encCtx := ctx
	if s.encodeTimeout > 0 {
		var cancel context.CancelFunc
		encCtx, cancel = context.WithTimeout(ctx, s.encodeTimeout)
		defer cancel()
	}
	content, err := encoder.Encode(encCtx, u.Body, u.MediaType, u.Size)
	if err != nil {
		return nil, err
	}

	// The record outlives the call; callers may pass strings backed by reused buffers.
	if id == "" {
		id = s.newID()
	} else {
		id = strings.Clone(id)
	}
	return &model.FileRecord{
		ID:         id,
		Name:       strings.Clone(u.Name),
		MediaType:  strings.Clone(u.MediaType),
		SizeBytes:  u.Size,
		Content:    content,
		Category:   category,
		UploadedAt: s.now().UTC(),
	}, nil
}

// commit persists next and only then makes it the current record. Callers hold s.mu.
func (s *portfolioService) commit(ctx context.Context, next *model.PortfolioRecord) error {
	if err := s.slot.Save(ctx, next); err != nil {
		return err
	}
	s.files = next
	s.recorder.SetFiles(next)
	return nil
}

// begin opens the span for op and returns a func that closes it, records metrics and logs the outcome.
func (s *portfolioService) begin(ctx context.Context, op Operation, category model.Category, subject string) (context.Context, func(error)) {
	start := time.Now()
	cat := ""
	if category.Valid() {
		cat = category.String()
	}

	ctx, span := s.tracer.Start(ctx, "portfolio."+string(op), trace.WithAttributes(
		attribute.String("portfolio.operation", string(op)),
		attribute.String("portfolio.category", cat),
		attribute.String("portfolio.subject", subject),
	))

	return ctx, func(err error) {
		elapsed := time.Since(start)
		s.recorder.ObserveOperation(string(op), cat, err, elapsed)

		attrs := []any{
			slog.String("component", "service"),
			slog.String("operation", string(op)),
			slog.String("category", cat),
			slog.String("subject", subject),
			slog.Int64("duration_ms", elapsed.Milliseconds()),
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.WarnContext(ctx, "portfolio_operation_failed", append(attrs, slog.String("error", err.Error()))...)
		} else {
			s.logger.InfoContext(ctx, "portfolio_operation", attrs...)
		}
		span.End()
	}
}

// fail wraps err as an OperationError and emits the destructive notification.
func (s *portfolioService) fail(ctx context.Context, op Operation, category model.Category, name string, err error) error {
	opErr := &OperationError{Op: op, Category: category, FileName: name, Err: err}
	s.notifier.Notify(ctx, notify.Notification{
		Title:       opErr.Title(),
		Description: opErr.Description(),
		Variant:     notify.VariantDestructive,
	})
	return opErr
}

func newFileID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
