package distill

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/aretw0/learn/pkg/core"
)

// Distiller extracts facts, definitions, quotes and key points from a note
// through a single completion call.
type Distiller struct {
	completer core.Completer
	store     core.RecordStore
	cfg       config
}

// NewDistiller creates a Distiller that persists results into store.
func NewDistiller(completer core.Completer, store core.RecordStore, opts ...Option) *Distiller {
	return &Distiller{completer: completer, store: store, cfg: newConfig(opts)}
}

// Distill replaces the distilled content of record with what the model
// extracts from noteContent and persists it. On any failure the input record
// is returned unchanged together with a *core.DistillationError.
func (d *Distiller) Distill(ctx context.Context, noteContent string, record core.NoteRecord) (core.NoteRecord, error) {
	start := time.Now()
	log := d.cfg.logger.With("id", record.ID, "path", record.SourcePath)

	out, err := complete(ctx, d.completer, d.cfg, BuildDistillPrompt(noteContent))
	if err != nil {
		log.Warn("distillation call failed", "error", err)
		return record, &core.DistillationError{Err: err}
	}

	content, err := ParseDistilled(out)
	if err != nil {
		log.Warn("distillation response rejected", "error", err)
		return record, &core.DistillationError{Err: err}
	}

	updated := record
	updated.Distilled = content
	updated.Touch(d.cfg.now())
	if err := d.store.Persist(ctx, updated); err != nil {
		return record, &core.DistillationError{Err: err}
	}

	log.Debug("distilled note",
		"facts", len(content.Facts),
		"definitions", len(content.Definitions),
		"quotes", len(content.Quotes),
		"key_points", len(content.KeyPoints),
		"latency_ms", time.Since(start).Milliseconds())
	return updated, nil
}

// ParseDistilled extracts and decodes a distillation response.
// Unknown fields are ignored and missing collections become empty.
func ParseDistilled(response string) (core.DistilledContent, error) {
	payload := bytes.TrimSpace([]byte(ExtractPayload(response)))
	if len(payload) == 0 || payload[0] != '{' {
		return core.DistilledContent{}, &core.SchemaError{Reason: "expected a JSON object with facts, definitions, quotes and keyPoints"}
	}

	var content core.DistilledContent
	if err := json.Unmarshal(payload, &content); err != nil {
		return core.DistilledContent{}, &core.SchemaError{Reason: "invalid distilled content", Err: err}
	}
	return content.Normalize(), nil
}
