package simplesite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// SaveFailedMessage is the per-key error reported when a valid write could not
// be stored
const SaveFailedMessage = "failed to save"

// GetAllContent returns every stored content value keyed by content key.
// Storage failures are logged and yield an empty map so that public pages
// can still render with fallbacks.
func (s *service) GetAllContent(ctx context.Context) map[string]string {
	entries, err := s.repository.ListContent(ctx)
	if err != nil {
		slog.Error("Failed to load content", "err", err)
		return map[string]string{}
	}

	content := make(map[string]string, len(entries))
	for _, e := range entries {
		content[e.Key] = e.Value
	}
	return content
}

func (s *service) ListContentEntries(ctx context.Context) ([]*ContentEntry, error) {
	entries, err := s.repository.ListContent(ctx)
	if err != nil {
		return nil, &ContentError{Op: "list", Err: err}
	}
	return entries, nil
}

// UpdateContent upserts each entry by key and reports the outcome per key.
//
// Invalid entries are skipped with an error result. The remaining entries are
// written in one transaction; if that fails they are retried one at a time
// and each key reports its own outcome. Results are ordered by key.
func (s *service) UpdateContent(ctx context.Context, updates map[string]ContentFieldUpdate) []UpdateResult {
	results := make([]UpdateResult, 0, len(updates))
	if len(updates) == 0 {
		return results
	}

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := s.timestamp()
	upserts := make([]ContentUpsert, 0, len(keys))
	for _, key := range keys {
		update := updates[key]
		if err := ValidateContentUpdate(key, update); err != nil {
			results = append(results, UpdateResult{Key: key, Error: err.Error()})
			continue
		}
		upserts = append(upserts, ContentUpsert{Key: key, ContentFieldUpdate: update, UpdatedAt: now})
	}

	if len(upserts) > 0 {
		if err := s.applyBatch(ctx, upserts); err == nil {
			for _, u := range upserts {
				results = append(results, UpdateResult{Key: u.Key, Success: true})
			}
		} else {
			slog.Warn("Batch content update failed, applying keys individually", "keys", len(upserts), "err", err)
			for _, u := range upserts {
				if _, err := s.repository.UpsertContent(ctx, u); err != nil {
					slog.Error("Failed to update content", "key", u.Key, "err", err)
					results = append(results, UpdateResult{Key: u.Key, Error: SaveFailedMessage})
					continue
				}
				results = append(results, UpdateResult{Key: u.Key, Success: true})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Key < results[j].Key })
	return results
}

func (s *service) applyBatch(ctx context.Context, upserts []ContentUpsert) error {
	if batcher, ok := s.repository.(ContentBatcher); ok {
		return batcher.UpsertContentBatch(ctx, upserts)
	}
	return s.repository.WithTx(ctx, func(tx Repository) error {
		for _, u := range upserts {
			if _, err := tx.UpsertContent(ctx, u); err != nil {
				return &ContentError{Key: u.Key, Op: "upsert", Err: err}
			}
		}
		return nil
	})
}

// UpdateContentValues is UpdateContent for value-only writes
func (s *service) UpdateContentValues(ctx context.Context, values map[string]string) []UpdateResult {
	updates := make(map[string]ContentFieldUpdate, len(values))
	for k, v := range values {
		updates[k] = ContentFieldUpdate{Value: v}
	}
	return s.UpdateContent(ctx, updates)
}

// ReorderSections validates and stores a new home-page section order
func (s *service) ReorderSections(ctx context.Context, order string) ([]SectionID, error) {
	ids, err := ValidateSectionOrder(order)
	if err != nil {
		return nil, NewValidationError(SectionOrderKey, err.Error())
	}
	if len(ids) == 0 {
		return nil, NewValidationError(SectionOrderKey, "at least one section is required")
	}

	results := s.UpdateContentValues(ctx, map[string]string{SectionOrderKey: FormatSectionOrder(ids)})
	if err := FirstFailure(results); err != nil {
		return nil, err
	}
	return ids, nil
}

// SeedDefaults writes the default content for keys that are missing or empty
func (s *service) SeedDefaults(ctx context.Context) (*SeedResult, error) {
	entries, err := s.repository.ListContent(ctx)
	if err != nil {
		return nil, &ContentError{Op: "seed", Err: err}
	}
	existing := make(map[string]string, len(entries))
	for _, e := range entries {
		existing[e.Key] = e.Value
	}

	missing := make(map[string]string)
	for k, v := range seedContent {
		if existing[k] == "" {
			missing[k] = v
		}
	}
	if len(missing) == 0 {
		return &SeedResult{Written: []string{}, Message: "Default content already exists. No action taken."}, nil
	}

	results := s.UpdateContentValues(ctx, missing)
	if err := FirstFailure(results); err != nil {
		return nil, &ContentError{Op: "seed", Err: err}
	}

	written := make([]string, 0, len(results))
	for _, r := range results {
		written = append(written, r.Key)
	}
	return &SeedResult{
		Written: written,
		Message: fmt.Sprintf("Successfully seeded %d missing content items.", len(written)),
	}, nil
}

// FirstFailure returns an error for the first failed result, or nil
func FirstFailure(results []UpdateResult) error {
	for _, r := range results {
		if !r.Success {
			return &ContentError{Key: r.Key, Op: "update", Err: errors.New(r.Error)}
		}
	}
	return nil
}

// FailedKeys collects the error message of every failed result
func FailedKeys(results []UpdateResult) map[string]string {
	failed := make(map[string]string)
	for _, r := range results {
		if !r.Success {
			failed[r.Key] = r.Error
		}
	}
	return failed
}
