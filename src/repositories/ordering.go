package repositories

import (
	"bytes"
	"encoding/json"
	"reflect"
	"slices"
	"strings"
	"time"

	"tasksmith/src/domain/entities"
)

// OrderClause é um trecho "campo [ASC|DESC]" do orderBy.
type OrderClause struct {
	Field string
	Desc  bool
}

func (c OrderClause) String() string {
	if c.Desc {
		return c.Field + " DESC"
	}
	return c.Field + " ASC"
}

// ParseOrderBy interpreta "rating DESC, name ASC". A direção padrão é ASC e
// qualquer palavra diferente de DESC também vale ASC.
func ParseOrderBy(orderBy string) []OrderClause {
	var clauses []OrderClause

	for _, clause := range strings.Split(orderBy, ",") {
		parts := strings.Fields(clause)
		if len(parts) == 0 {
			continue
		}

		clauses = append(clauses, OrderClause{
			Field: parts[0],
			Desc:  len(parts) > 1 && strings.EqualFold(parts[1], "DESC"),
		})
	}

	return clauses
}

// SortEntities ordena em memória, porque os campos de ordenação normalmente
// vivem dentro do blob JSON e o banco não os enxerga. A ordenação é estável:
// empates completos mantêm a ordem de entrada. O slice recebido não é alterado.
func SortEntities(items []entities.Entity, clauses []OrderClause) []entities.Entity {
	if len(clauses) == 0 {
		return slices.Clone(items)
	}

	type sortable struct {
		entity entities.Entity
		fields map[string]any
	}

	views := make([]sortable, len(items))
	for i, item := range items {
		views[i] = sortable{entity: item, fields: item.Fields()}
	}

	slices.SortStableFunc(views, func(a, b sortable) int {
		for _, clause := range clauses {
			c := CompareValues(a.fields[clause.Field], b.fields[clause.Field])
			if c == 0 {
				continue
			}
			if clause.Desc {
				return -c
			}
			return c
		}
		return 0
	})

	sorted := make([]entities.Entity, len(views))
	for i, view := range views {
		sorted[i] = view.entity
	}
	return sorted
}

// ranking entre tipos diferentes; valores ausentes ficam sempre primeiro
const (
	rankNil = iota
	rankBool
	rankNumber
	rankString
	rankTime
	rankOther
)

func rankOf(value any) int {
	switch value.(type) {
	case nil:
		return rankNil
	case bool:
		return rankBool
	case float64:
		return rankNumber
	case string:
		return rankString
	case time.Time:
		return rankTime
	}
	return rankOther
}

// CompareValues compara dois valores da visão lógica com a ordem natural de
// cada tipo.
func CompareValues(a, b any) int {
	a, b = normalizeValue(a), normalizeValue(b)

	if ra, rb := rankOf(a), rankOf(b); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch av := a.(type) {
	case nil:
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		return strings.Compare(av, b.(string))
	case time.Time:
		return av.Compare(b.(time.Time))
	}

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	return bytes.Compare(ja, jb)
}

// normalizeValue leva qualquer valor Go para a forma que ele teria depois de
// passar por JSON, para que 3 e 3.0 sejam iguais.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil, bool, string, float64, time.Time:
		return v
	case *time.Time:
		if v == nil {
			return nil
		}
		return *v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return value
	}
	return decoded
}

func valuesEqual(a, b any) bool {
	a, b = normalizeValue(a), normalizeValue(b)

	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}

	return reflect.DeepEqual(a, b)
}
