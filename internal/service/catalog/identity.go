package catalog

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

// IdentityStrategy выдаёт идентификатор для новой записи по уже занятым.
type IdentityStrategy interface {
	Next(existing []domain.Value) (domain.Value, error)
}

// SequentialIdentity выдаёт целые идентификаторы: max(занятые, размер коллекции) + 1.
// На плотной нумерации это совпадает с "размер + 1", но не даёт коллизий после удалений.
type SequentialIdentity struct{}

func (SequentialIdentity) Next(existing []domain.Value) (domain.Value, error) {
	highest := int64(len(existing))
	for _, v := range existing {
		if v.Type() == domain.FieldInt && v.Int() > highest {
			highest = v.Int()
		}
	}
	return domain.IntValue(highest + 1), nil
}

// ClockIdentity выдаёт текстовые идентификаторы из миллисекунд Unix.
// Если значение занято, берётся следующая свободная миллисекунда.
type ClockIdentity struct {
	Now func() time.Time
}

func (c ClockIdentity) Next(existing []domain.Value) (domain.Value, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	taken := make(map[string]bool, len(existing))
	for _, v := range existing {
		taken[v.String()] = true
	}
	candidate := now().UnixMilli()
	for taken[strconv.FormatInt(candidate, 10)] {
		candidate++
	}
	return domain.StringValue(strconv.FormatInt(candidate, 10)), nil
}

// UUIDIdentity выдаёт UUIDv7, упорядоченные по времени.
type UUIDIdentity struct{}

func (UUIDIdentity) Next([]domain.Value) (domain.Value, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return domain.Value{}, fmt.Errorf("generate uuid: %w", err)
	}
	return domain.StringValue(id.String()), nil
}

// IdentityByName возвращает стратегию для текстовых идентификаторов по имени из конфигурации.
func IdentityByName(name string) (IdentityStrategy, error) {
	switch name {
	case "", "timestamp":
		return ClockIdentity{}, nil
	case "uuid":
		return UUIDIdentity{}, nil
	default:
		return nil, fmt.Errorf("unknown identity strategy %q", name)
	}
}
