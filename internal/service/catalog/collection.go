// Package catalog реализует сервисы коллекций: магазины, костюмы и акции.
// Каждая операция загружает коллекцию целиком и, если это мутация, целиком её сохраняет.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/query"
)

// Repository — загрузка и сохранение коллекции целиком.
type Repository[R domain.Record] interface {
	Load(ctx context.Context) ([]R, error)
	Save(ctx context.Context, records []R) error
}

// Collection — сервис одной коллекции записей.
type Collection[R domain.Record] struct {
	schema    domain.Schema
	repo      Repository[R]
	newRecord func() R
	identity  IdentityStrategy
	publisher domain.ChangePublisher
	metrics   MetricsRecorder
	logger    *log.Entry
	now       func() time.Time

	// writeMu != nil только при включённой сериализации записи.
	writeMu *sync.Mutex
}

// NewCollection собирает сервис коллекции. defaultIdentity используется, если стратегия не задана опциями.
func NewCollection[R domain.Record](schema domain.Schema, repo Repository[R], newRecord func() R, defaultIdentity IdentityStrategy, options ...Option) *Collection[R] {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}
	return newCollection(schema, repo, newRecord, defaultIdentity, opts)
}

func newCollection[R domain.Record](schema domain.Schema, repo Repository[R], newRecord func() R, defaultIdentity IdentityStrategy, opts Options) *Collection[R] {
	c := &Collection[R]{
		schema:    schema,
		repo:      repo,
		newRecord: newRecord,
		identity:  opts.Identity,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Clock,
	}
	if c.identity == nil {
		c.identity = defaultIdentity
	}
	if c.logger == nil {
		c.logger = log.WithField("component", "catalog")
	}
	c.logger = c.logger.WithField("collection", schema.Collection)
	if c.now == nil {
		c.now = time.Now
	}
	if opts.SerializedWrites {
		c.writeMu = &sync.Mutex{}
	}
	return c
}

// Schema возвращает схему коллекции.
func (c *Collection[R]) Schema() domain.Schema { return c.schema }

// List возвращает страницу записей после области, фильтра и сортировки.
func (c *Collection[R]) List(ctx context.Context, q domain.ListQuery) (result []R, err error) {
	defer c.observe("list", time.Now(), &err)

	records, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return query.Apply(records, q, c.schema.DefaultSort)
}

// Get возвращает запись по идентификатору.
func (c *Collection[R]) Get(ctx context.Context, id string) (rec R, err error) {
	defer c.observe("get", time.Now(), &err)

	records, err := c.load(ctx)
	if err != nil {
		return rec, err
	}
	idx := c.indexOf(records, id)
	if idx < 0 {
		return rec, c.notFound(id)
	}
	return records[idx], nil
}

// Create добавляет запись. Все поля, кроме идентификатора, обязательны.
// Идентификатор берётся из входа, если он передан, иначе выдаётся стратегией.
func (c *Collection[R]) Create(ctx context.Context, in domain.Input) (rec R, err error) {
	defer c.observe("create", time.Now(), &err)

	if err := c.schema.ValidateComplete(in); err != nil {
		return rec, err
	}

	unlock := c.lockWrites()
	defer unlock()

	records, err := c.load(ctx)
	if err != nil {
		return rec, err
	}

	rec = c.newRecord()
	if err := c.assignRequired(rec, in); err != nil {
		return rec, err
	}

	identity, supplied, err := c.suppliedIdentity(in)
	if err != nil {
		return rec, err
	}
	if supplied {
		if c.indexOf(records, identity.String()) >= 0 {
			return rec, fmt.Errorf("%w: %s %s", domain.ErrDuplicateIdentity, c.schema.Singular, identity.String())
		}
	} else {
		existing := make([]domain.Value, 0, len(records))
		for _, r := range records {
			existing = append(existing, r.Identity())
		}
		if identity, err = c.identity.Next(existing); err != nil {
			return rec, fmt.Errorf("assign identity: %w", err)
		}
	}
	if err := rec.SetField(c.schema.Identity, identity); err != nil {
		return rec, err
	}

	records = append(records, rec)
	if err := c.repo.Save(ctx, records); err != nil {
		return rec, err
	}

	c.logger.WithField("id", rec.Identity().String()).Info("record created")
	c.publish(ctx, domain.ChangeCreated, rec)
	return rec, nil
}

// Replace перезаписывает все поля записи, кроме идентификатора.
// Дополнительные колонки записи сохраняются.
func (c *Collection[R]) Replace(ctx context.Context, id string, in domain.Input) (rec R, err error) {
	defer c.observe("replace", time.Now(), &err)

	if err := c.schema.ValidateComplete(in); err != nil {
		return rec, err
	}

	unlock := c.lockWrites()
	defer unlock()

	records, err := c.load(ctx)
	if err != nil {
		return rec, err
	}
	idx := c.indexOf(records, id)
	if idx < 0 {
		return rec, c.notFound(id)
	}

	current := records[idx]
	if supplied, ok, err := c.suppliedIdentity(in); err != nil {
		return rec, err
	} else if ok && !supplied.Equal(current.Identity()) {
		return rec, fmt.Errorf("%w: %s cannot be changed", domain.ErrValidationFailed, c.schema.Identity)
	}

	rec = c.newRecord()
	if err := rec.SetField(c.schema.Identity, current.Identity()); err != nil {
		return rec, err
	}
	domain.CopyExtras(rec, current)
	if err := c.assignRequired(rec, in); err != nil {
		return rec, err
	}

	records[idx] = rec
	if err := c.repo.Save(ctx, records); err != nil {
		return rec, err
	}

	c.logger.WithField("id", id).Info("record replaced")
	c.publish(ctx, domain.ChangeReplaced, rec)
	return rec, nil
}

// Patch меняет только переданные поля. Неизвестные поля и смена идентификатора отклоняются.
func (c *Collection[R]) Patch(ctx context.Context, id string, in domain.Input) (rec R, err error) {
	defer c.observe("patch", time.Now(), &err)

	unlock := c.lockWrites()
	defer unlock()

	records, err := c.load(ctx)
	if err != nil {
		return rec, err
	}
	idx := c.indexOf(records, id)
	if idx < 0 {
		return rec, c.notFound(id)
	}

	rec = records[idx]
	current := rec.Identity()
	for _, key := range in.Keys() {
		value := in[key]
		if col, ok := c.schema.Column(key); ok && col.Name == c.schema.Identity {
			coerced, err := domain.Coerce(col.Type, value)
			if err != nil || !coerced.Equal(current) {
				return rec, fmt.Errorf("%w: %s cannot be changed", domain.ErrValidationFailed, c.schema.Identity)
			}
			continue
		}
		if err := rec.SetField(key, value); err != nil {
			if errors.Is(err, domain.ErrValidationFailed) {
				return rec, err
			}
			return rec, fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
		}
	}

	if err := c.repo.Save(ctx, records); err != nil {
		return rec, err
	}

	c.logger.WithField("id", id).WithField("fields", in.Keys()).Info("record patched")
	c.publish(ctx, domain.ChangePatched, rec)
	return rec, nil
}

// Delete удаляет запись и возвращает её.
func (c *Collection[R]) Delete(ctx context.Context, id string) (rec R, err error) {
	defer c.observe("delete", time.Now(), &err)

	unlock := c.lockWrites()
	defer unlock()

	records, err := c.load(ctx)
	if err != nil {
		return rec, err
	}
	idx := c.indexOf(records, id)
	if idx < 0 {
		return rec, c.notFound(id)
	}

	rec = records[idx]
	remaining := make([]R, 0, len(records)-1)
	remaining = append(remaining, records[:idx]...)
	remaining = append(remaining, records[idx+1:]...)
	if err := c.repo.Save(ctx, remaining); err != nil {
		return rec, err
	}

	c.logger.WithField("id", id).Info("record deleted")
	c.publish(ctx, domain.ChangeDeleted, rec)
	return rec, nil
}

func (c *Collection[R]) load(ctx context.Context) ([]R, error) {
	records, err := c.repo.Load(ctx)
	if err != nil {
		c.logger.WithError(err).Error("failed to load collection")
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.ObserveCollectionSize(c.schema.Collection, len(records))
	}
	return records, nil
}

// indexOf ищет запись по текстовому идентификатору; неразборчивый идентификатор ничего не находит.
func (c *Collection[R]) indexOf(records []R, id string) int {
	target, err := domain.ParseValue(c.schema.IdentityColumn().Type, id)
	if err != nil {
		return -1
	}
	for i, rec := range records {
		if rec.Identity().Equal(target) {
			return i
		}
	}
	return -1
}

func (c *Collection[R]) notFound(id string) error {
	return fmt.Errorf("%w: %s %s", domain.ErrNotFound, c.schema.Singular, id)
}

// suppliedIdentity возвращает идентификатор из входа, если он передан и не пустой.
func (c *Collection[R]) suppliedIdentity(in domain.Input) (domain.Value, bool, error) {
	raw, ok := in.Get(c.schema.Identity)
	if !ok || !raw.Truthy() {
		return domain.Value{}, false, nil
	}
	v, err := domain.Coerce(c.schema.IdentityColumn().Type, raw)
	if err != nil {
		return domain.Value{}, false, fmt.Errorf("%w: %s: %v", domain.ErrValidationFailed, c.schema.Identity, err)
	}
	return v, true, nil
}

// assignRequired переносит обязательные поля из входа; остальные ключи игнорируются.
func (c *Collection[R]) assignRequired(rec R, in domain.Input) error {
	for _, col := range c.schema.RequiredColumns() {
		v, _ := in.Get(col.Name)
		if err := rec.SetField(col.Name, v); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collection[R]) lockWrites() func() {
	if c.writeMu == nil {
		return func() {}
	}
	c.writeMu.Lock()
	return c.writeMu.Unlock
}

func (c *Collection[R]) publish(ctx context.Context, action domain.ChangeAction, rec R) {
	if c.publisher == nil {
		return
	}
	event := domain.ChangeEvent{
		Collection: c.schema.Collection,
		Action:     action,
		RecordID:   rec.Identity().String(),
		Record:     domain.AsMap(rec),
		OccurredAt: c.now().UTC(),
	}
	err := c.publisher.PublishChange(ctx, event)
	if c.metrics != nil {
		c.metrics.ObserveChangeEvent(c.schema.Collection, err)
	}
	if err != nil {
		// Мутация уже сохранена, событие теряется.
		c.logger.WithError(err).WithFields(log.Fields{
			"id":     event.RecordID,
			"action": action,
		}).Warn("failed to publish change event")
	}
}

func (c *Collection[R]) observe(operation string, started time.Time, err *error) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveOperation(c.schema.Collection, operation, *err, time.Since(started))
}
