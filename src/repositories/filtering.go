package repositories

import "tasksmith/src/domain/entities"

// FilterEntities mantém as entidades cujos campos são exatamente iguais a
// todas as condições. Uma condição nil casa com campo ausente ou null.
// Carrega tudo em memória: serve para volumes pequenos e médios.
func FilterEntities(items []entities.Entity, conditions map[string]any) []entities.Entity {
	result := make([]entities.Entity, 0, len(items))

	for _, item := range items {
		if matches(item.Fields(), conditions) {
			result = append(result, item)
		}
	}

	return result
}

func matches(fields map[string]any, conditions map[string]any) bool {
	for key, want := range conditions {
		got, ok := fields[key]
		if !ok {
			if want == nil {
				continue
			}
			return false
		}
		if !valuesEqual(got, want) {
			return false
		}
	}
	return true
}
