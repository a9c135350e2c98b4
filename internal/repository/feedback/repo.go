// Package feedback persists feedback items and the latest clustering result.
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/objones25/FeedbackFlow/internal/db"
	"github.com/objones25/FeedbackFlow/internal/domain"
	domcluster "github.com/objones25/FeedbackFlow/internal/domain/cluster"
	domitem "github.com/objones25/FeedbackFlow/internal/domain/item"
)

// store is the consumer interface for feedback persistence (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// thresholdCacheTTL bounds staleness of the cached suggested threshold.
const thresholdCacheTTL = 5 * time.Minute

// Repo implements usecase/feedback.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a feedback repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// SaveItems stores items as hashes in a single pipelined round-trip.
func (r *Repo) SaveItems(ctx context.Context, items []domitem.Item) error {
	if len(items) == 0 {
		return nil
	}

	batch := make([]db.HashSetItem, 0, len(items))
	for i := range items {
		it := &items[i]
		batch = append(batch, db.HashSetItem{
			Key:    r.itemKey(it.ID()),
			Fields: buildItemFields(it),
		})
	}

	if err := r.store.HSetMulti(ctx, batch); err != nil {
		return fmt.Errorf("save %d items: %w", len(items), err)
	}
	return nil
}

// ListItems returns all stored items, ordered by id for determinism.
func (r *Repo) ListItems(ctx context.Context) ([]domitem.Item, error) {
	keys, err := r.store.Scan(ctx, r.itemKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	// SCAN order is unspecified; downstream clustering needs a stable order.
	sort.Strings(keys)

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}

	items := make([]domitem.Item, 0, len(hashes))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue // key expired between SCAN and HGETALL
		}
		id := strings.TrimPrefix(keys[i], r.itemKey(""))
		items = append(items, parseItemFields(id, fields))
	}
	return items, nil
}

// GetItem returns a single stored item by id.
func (r *Repo) GetItem(ctx context.Context, id string) (domitem.Item, error) {
	fields, err := r.store.HGetAll(ctx, r.itemKey(id))
	if err != nil {
		return domitem.Item{}, fmt.Errorf("get item %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domitem.Item{}, domain.ErrNotFound
	}
	return parseItemFields(id, fields), nil
}

// DeleteItem removes a stored item by id.
func (r *Repo) DeleteItem(ctx context.Context, id string) error {
	exists, err := r.store.Exists(ctx, r.itemKey(id))
	if err != nil {
		return fmt.Errorf("check item %s: %w", id, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, r.itemKey(id)); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

// SaveResult stores the clustering result as the latest snapshot and records
// the run timestamp.
func (r *Repo) SaveResult(ctx context.Context, result domcluster.Result) error {
	data, err := json.Marshal(buildResultDTO(result))
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := r.store.JSONSet(ctx, r.resultKey(), "$", data); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	stamp := time.Now().UTC().Format(time.RFC3339)
	if err := r.store.Set(ctx, r.lastRunKey(), []byte(stamp)); err != nil {
		return fmt.Errorf("save run timestamp: %w", err)
	}
	return nil
}

// LastRunAt returns the timestamp of the latest persisted clustering run.
func (r *Repo) LastRunAt(ctx context.Context) (time.Time, error) {
	raw, err := r.store.Get(ctx, r.lastRunKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return time.Time{}, domain.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("get run timestamp: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, string(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse run timestamp: %w", err)
	}
	return ts, nil
}

// CachedThreshold returns the cached suggested threshold, domain.ErrNotFound
// when no fresh value is cached.
func (r *Repo) CachedThreshold(ctx context.Context) (float64, error) {
	raw, err := r.store.Get(ctx, r.thresholdKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get cached threshold: %w", err)
	}
	t, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("parse cached threshold: %w", err)
	}
	return t, nil
}

// CacheThreshold stores a suggested threshold with a bounded TTL.
func (r *Repo) CacheThreshold(ctx context.Context, t float64) error {
	val := strconv.FormatFloat(t, 'f', -1, 64)
	if err := r.store.SetWithTTL(ctx, r.thresholdKey(), []byte(val), thresholdCacheTTL); err != nil {
		return fmt.Errorf("cache threshold: %w", err)
	}
	return nil
}

// InvalidateThreshold drops the cached suggested threshold. Called when the
// item pool changes.
func (r *Repo) InvalidateThreshold(ctx context.Context) error {
	if err := r.store.Del(ctx, r.thresholdKey()); err != nil {
		return fmt.Errorf("invalidate threshold: %w", err)
	}
	return nil
}

// GetResult returns the latest stored clustering result.
func (r *Repo) GetResult(ctx context.Context) (domcluster.Result, error) {
	raw, err := r.store.JSONGet(ctx, r.resultKey(), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcluster.Result{}, domain.ErrNotFound
		}
		return domcluster.Result{}, fmt.Errorf("get result: %w", err)
	}
	return parseResultJSON(raw)
}

func (r *Repo) itemKey(id string) string {
	return r.prefix + "item:" + id
}

func (r *Repo) resultKey() string {
	return r.prefix + "clusters:latest"
}

func (r *Repo) lastRunKey() string {
	return r.prefix + "clusters:last_run"
}

func (r *Repo) thresholdKey() string {
	return r.prefix + "threshold:suggested"
}
