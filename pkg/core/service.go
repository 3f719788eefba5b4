package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ServiceConfig wires the collaborators of a Service.
type ServiceConfig struct {
	Notes     NoteRepository
	Records   RecordStore
	Distiller Distiller
	Generator QuizGenerator

	// Locker guards sidecar writes across processes. Optional.
	Locker Locker
	// Notifier receives user-facing notices. Defaults to logging them.
	Notifier Notifier
	Logger   *slog.Logger

	// AlwaysRedistill forces distillation on every run.
	AlwaysRedistill bool
	// Concurrency bounds how many notes Summarize processes at once. Defaults to 1.
	Concurrency int
}

// Service runs the note -> distilled content -> quiz pipeline.
//
// Only one run per note is allowed at a time; a second run for the same note
// while the first is in flight fails with ErrBusy instead of interleaving
// writes to the same sidecar.
type Service struct {
	notes     NoteRepository
	records   RecordStore
	distiller Distiller
	generator QuizGenerator
	locker    Locker
	notifier  Notifier
	logger    *slog.Logger

	alwaysRedistill bool
	concurrency     int

	mu     sync.RWMutex
	active map[string]time.Time
}

// NewService creates a new Service.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		notes:           cfg.Notes,
		records:         cfg.Records,
		distiller:       cfg.Distiller,
		generator:       cfg.Generator,
		locker:          cfg.Locker,
		notifier:        notifier,
		logger:          logger,
		alwaysRedistill: cfg.AlwaysRedistill,
		concurrency:     concurrency,
		active:          make(map[string]time.Time),
	}
}

// PrepareOptions tunes a single PrepareQuiz run.
type PrepareOptions struct {
	// Force regenerates the distilled content even if it is fresh.
	Force bool
}

// QuizResult is the outcome of a successful PrepareQuiz run.
type QuizResult struct {
	Path      string
	Record    NoteRecord
	Questions []Question
}

// PrepareQuiz runs the full pipeline for one note: identity, sidecar,
// staleness check, optional distillation and quiz generation.
//
// A failed distillation is tolerated when older distilled content exists; the
// quiz is then generated from that content. A failed quiz generation aborts
// the run and the caller must not open a quiz.
func (s *Service) PrepareQuiz(ctx context.Context, notePath string, opts PrepareOptions) (QuizResult, error) {
	name := displayName(notePath)

	release, err := s.acquire(notePath)
	if err != nil {
		s.notifier.Notify(NoticeWarn, fmt.Sprintf("Already processing %s", name))
		return QuizResult{}, err
	}
	defer release()

	s.notifier.Notify(NoticeInfo, fmt.Sprintf("Processing %s...", name))

	record, unlock, err := s.openRecord(ctx, notePath)
	if err != nil {
		s.fail("Failed to process note", notePath, err)
		return QuizResult{}, err
	}
	defer unlock()

	record, err = s.refresh(ctx, notePath, record, opts.Force || s.alwaysRedistill)
	if err != nil && record.Distilled.IsEmpty() {
		return QuizResult{Path: notePath, Record: record}, err
	}

	s.notifier.Notify(NoticeInfo, fmt.Sprintf("Generating quiz questions for %s...", name))
	updated, questions, err := s.generator.Generate(ctx, record)
	if err != nil {
		s.fail("Failed to generate quiz questions", notePath, err)
		return QuizResult{Path: notePath, Record: record}, err
	}
	if len(questions) == 0 {
		s.fail("Failed to generate quiz questions", notePath, ErrNoQuestions)
		return QuizResult{Path: notePath, Record: record}, &QuizGenerationError{Err: ErrNoQuestions}
	}

	s.notifier.Notify(NoticeInfo, fmt.Sprintf("Quiz with %d questions created for %s", len(questions), name))
	return QuizResult{Path: notePath, Record: updated, Questions: questions}, nil
}

// Redistill is PrepareQuiz with forced distillation.
func (s *Service) Redistill(ctx context.Context, notePath string) (QuizResult, error) {
	return s.PrepareQuiz(ctx, notePath, PrepareOptions{Force: true})
}

// Distill refreshes the distilled content of one note without generating a quiz.
func (s *Service) Distill(ctx context.Context, notePath string, force bool) (NoteRecord, error) {
	release, err := s.acquire(notePath)
	if err != nil {
		return NoteRecord{}, err
	}
	defer release()

	record, unlock, err := s.openRecord(ctx, notePath)
	if err != nil {
		s.fail("Failed to process note", notePath, err)
		return NoteRecord{}, err
	}
	defer unlock()

	return s.refresh(ctx, notePath, record, force || s.alwaysRedistill)
}

// openRecord ensures the note identity, takes the per-identifier lock and
// loads (or creates) the sidecar record.
func (s *Service) openRecord(ctx context.Context, notePath string) (NoteRecord, func(), error) {
	id, err := s.notes.EnsureIdentifier(ctx, notePath)
	if err != nil {
		return NoteRecord{}, nil, err
	}

	unlock := func() {}
	if s.locker != nil {
		unlock, err = s.locker.TryLock(id)
		if err != nil {
			return NoteRecord{}, nil, err
		}
	}

	record, err := s.records.LoadOrCreate(ctx, id, notePath)
	if err != nil {
		unlock()
		return NoteRecord{}, nil, err
	}
	return record, unlock, nil
}

// refresh distills the note when the staleness policy says so. On failure the
// returned record is the unchanged input.
func (s *Service) refresh(ctx context.Context, notePath string, record NoteRecord, force bool) (NoteRecord, error) {
	name := displayName(notePath)

	modified, err := s.notes.ModTime(ctx, notePath)
	if err != nil {
		s.fail("Failed to process note", notePath, err)
		return record, err
	}

	reason := RedistillReason(record, modified, force)
	if reason == "" {
		s.notifier.Notify(NoticeInfo, fmt.Sprintf("Using existing distilled content for %s", name))
		return record, nil
	}

	s.notifier.Notify(NoticeInfo, fmt.Sprintf("Distilling content for %s (%s)...", name, reason))
	note, err := s.notes.Read(ctx, notePath)
	if err != nil {
		s.fail("Failed to read note", notePath, err)
		return record, err
	}

	updated, err := s.distiller.Distill(ctx, note.Content, record)
	if err != nil {
		s.fail("Failed to distill note content", notePath, err)
		return record, err
	}
	return updated, nil
}

// NoteSummary is one entry of the summary list.
type NoteSummary struct {
	Path      string
	Title     string
	ID        string
	KeyPoints []string
	// Skipped is set for empty notes.
	Skipped bool
	Err     error
}

// Summarize distills every stale note of the vault and returns their key
// points. A failure on one note is reported in its entry and does not stop
// the others.
func (s *Service) Summarize(ctx context.Context) ([]NoteSummary, error) {
	s.notifier.Notify(NoticeInfo, "Summarizing notes...")

	infos, err := s.notes.List(ctx)
	if err != nil {
		s.fail("Failed to list notes", "", err)
		return nil, err
	}

	summaries := make([]NoteSummary, len(infos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, info := range infos {
		g.Go(func() error {
			summaries[i] = s.summarizeNote(gctx, info)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	done := 0
	for _, sum := range summaries {
		if !sum.Skipped && sum.Err == nil {
			done++
		}
	}
	s.notifier.Notify(NoticeInfo, fmt.Sprintf("Summarized %d notes", done))
	return summaries, ctx.Err()
}

func (s *Service) summarizeNote(ctx context.Context, info NoteInfo) NoteSummary {
	summary := NoteSummary{Path: info.Path, Title: info.Title, ID: info.ID}
	if err := ctx.Err(); err != nil {
		summary.Err = err
		return summary
	}

	note, err := s.notes.Read(ctx, info.Path)
	if err != nil {
		summary.Err = err
		return summary
	}
	if strings.TrimSpace(note.Content) == "" {
		summary.Skipped = true
		return summary
	}

	release, err := s.acquire(info.Path)
	if err != nil {
		summary.Err = err
		return summary
	}
	defer release()

	record, unlock, err := s.openRecord(ctx, info.Path)
	if err != nil {
		summary.Err = err
		return summary
	}
	defer unlock()

	summary.ID = record.ID
	record, err = s.refresh(ctx, info.Path, record, s.alwaysRedistill)
	if err != nil {
		summary.Err = err
	}
	summary.KeyPoints = record.Distilled.KeyPoints
	return summary
}

// Record returns the sidecar of a note without modifying the note.
func (s *Service) Record(ctx context.Context, notePath string) (NoteRecord, error) {
	id, err := s.notes.LookupIdentifier(ctx, notePath)
	if err != nil {
		return NoteRecord{}, err
	}
	return s.records.Load(ctx, id)
}

// Check reports whether a note's cached content is stale. It returns an empty
// reason for fresh notes and ReasonNoContent for notes never processed.
func (s *Service) Check(ctx context.Context, notePath string) (string, error) {
	modified, err := s.notes.ModTime(ctx, notePath)
	if err != nil {
		return "", err
	}
	record, err := s.Record(ctx, notePath)
	if errors.Is(err, ErrNotFound) {
		return ReasonNoContent, nil
	}
	if err != nil {
		return "", err
	}
	return RedistillReason(record, modified, false), nil
}

// Watch forwards note change events if the note repository supports it.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.notes.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	return w.Watch(ctx, pattern)
}

// Notes returns the vault listing.
func (s *Service) Notes(ctx context.Context) ([]NoteInfo, error) {
	return s.notes.List(ctx)
}

func (s *Service) acquire(notePath string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.active[notePath]; busy {
		return nil, fmt.Errorf("%s: %w", notePath, ErrBusy)
	}
	s.active[notePath] = time.Now()
	return func() {
		s.mu.Lock()
		delete(s.active, notePath)
		s.mu.Unlock()
	}, nil
}

func (s *Service) fail(msg, notePath string, err error) {
	s.logger.Error(msg, "path", notePath, "error", err)
	if notePath != "" {
		msg = fmt.Sprintf("%s: %s", msg, displayName(notePath))
	}
	s.notifier.Notify(NoticeError, msg)
}

func displayName(notePath string) string {
	return strings.TrimSuffix(path.Base(notePath), path.Ext(notePath))
}

// LogNotifier writes notices to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(level NoticeLevel, msg string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch level {
	case NoticeError:
		logger.Error(msg)
	case NoticeWarn:
		logger.Warn(msg)
	default:
		logger.Info(msg)
	}
}
