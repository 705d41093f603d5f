package entities

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"tasksmith/src/domain"
)

type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
)

// Field descreve uma propriedade do payload de um tipo de entidade.
type Field struct {
	Type        FieldType
	Format      string
	Description string
	Enum        []string
	Default     any
}

// Descriptor é a lista declarativa de campos de um tipo. A tabela não aplica
// nada disso; serve para defaults e para a validação feita pelo serviço.
type Descriptor struct {
	Name       string
	OrderBy    string
	Properties map[string]Field
	Required   []string
	// Rules roda depois das checagens genéricas, com as regras próprias do tipo.
	Rules func(data map[string]any, partial bool) []string
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var descriptors = map[string]*Descriptor{}

func register(d *Descriptor) *Descriptor {
	descriptors[d.Name] = d
	return d
}

// DescriptorFor devolve o descriptor de um tipo conhecido.
func DescriptorFor(entityType string) (*Descriptor, bool) {
	d, ok := descriptors[entityType]
	return d, ok
}

// ApplyDefaults devolve uma cópia de data com os defaults dos campos ausentes.
func (d *Descriptor) ApplyDefaults(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+len(d.Properties))
	for key, value := range data {
		out[key] = value
	}
	for name, field := range d.Properties {
		if field.Default == nil {
			continue
		}
		if _, ok := out[name]; !ok {
			out[name] = field.Default
		}
	}
	return out
}

// Validate confere campos obrigatórios (apenas quando partial é false), tipos
// primitivos, enums e formato de email. Campos fora do descriptor passam.
func (d *Descriptor) Validate(data map[string]any, partial bool) error {
	var issues []string

	if !partial {
		for _, name := range d.Required {
			if isBlank(data[name]) {
				issues = append(issues, fmt.Sprintf("%s is required", name))
			}
		}
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field, ok := d.Properties[name]
		value := data[name]
		if !ok || value == nil {
			continue
		}

		if !matchesType(value, field.Type) {
			issues = append(issues, fmt.Sprintf("%s must be of type %s", name, field.Type))
			continue
		}

		if len(field.Enum) > 0 {
			str, _ := value.(string)
			if !contains(field.Enum, str) {
				issues = append(issues, fmt.Sprintf("%s must be one of [%s]", name, strings.Join(field.Enum, ", ")))
			}
		}

		if field.Format == "email" {
			if str, _ := value.(string); !emailPattern.MatchString(str) {
				issues = append(issues, fmt.Sprintf("%s must be a valid email address", name))
			}
		}
	}

	if d.Rules != nil {
		issues = append(issues, d.Rules(data, partial)...)
	}

	if len(issues) > 0 {
		return domain.NewValidationError(d.Name, issues...)
	}

	return nil
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func matchesType(value any, fieldType FieldType) bool {
	switch fieldType {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		_, ok := toFloat(value)
		return ok
	case TypeInteger:
		f, ok := toFloat(value)
		return ok && f == math.Trunc(f)
	}
	return true
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, !math.IsNaN(v)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
