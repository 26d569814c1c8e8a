package checks

import (
	"strings"

	"github.com/grafana/regexp"
	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// NamingConvention is a rule symbol names must follow.
type NamingConvention string

const (
	SnakeCase          NamingConvention = "snake_case"
	ScreamingSnakeCase NamingConvention = "SCREAMING_SNAKE_CASE"
	PascalCase         NamingConvention = "PascalCase"
	CamelCase          NamingConvention = "camelCase"
	FlatCase           NamingConvention = "flatcase"
	UpperFlatCase      NamingConvention = "UPPERFLATCASE"
	PascalSnakeCase    NamingConvention = "PascalSnake_Case"
)

var conventionPatterns = map[NamingConvention]*regexp.Regexp{
	SnakeCase:          regexp.MustCompile(`^_*[a-z0-9]+(?:_[a-z0-9]+)*$`),
	ScreamingSnakeCase: regexp.MustCompile(`^_*[A-Z0-9]+(?:_[A-Z0-9]+)*$`),
	PascalCase:         regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`),
	CamelCase:          regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`),
	FlatCase:           regexp.MustCompile(`^[a-z0-9]+$`),
	UpperFlatCase:      regexp.MustCompile(`^[A-Z0-9]+$`),
	PascalSnakeCase:    regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*(?:_[A-Z0-9][a-zA-Z0-9]*)*$`),
}

// NamingConventions lists the supported conventions.
func NamingConventions() []NamingConvention {
	return []NamingConvention{
		SnakeCase, ScreamingSnakeCase, PascalCase, CamelCase,
		FlatCase, UpperFlatCase, PascalSnakeCase,
	}
}

// ParseNamingConvention accepts the name of a convention, ignoring case,
// dashes and underscores.
func ParseNamingConvention(s string) (NamingConvention, error) {
	normalize := func(s string) string {
		return strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(s))
	}
	c, ok := lo.Find(NamingConventions(), func(c NamingConvention) bool {
		return normalize(string(c)) == normalize(s)
	})
	if !ok {
		return "", errors.Errorf("unknown naming convention %q", s)
	}
	return c, nil
}

func (c NamingConvention) Matches(name string) bool {
	p, ok := conventionPatterns[c]
	return ok && p.MatchString(name)
}

// Suggest converts the name to the convention.
func (c NamingConvention) Suggest(name string) string {
	switch c {
	case SnakeCase:
		return strcase.ToSnake(name)
	case ScreamingSnakeCase:
		return strcase.ToScreamingSnake(name)
	case PascalCase:
		return strcase.ToCamel(name)
	case CamelCase:
		return strcase.ToLowerCamel(name)
	case FlatCase:
		return strings.ToLower(strcase.ToCamel(name))
	case UpperFlatCase:
		return strings.ToUpper(strcase.ToCamel(name))
	case PascalSnakeCase:
		words := strings.Split(strcase.ToSnake(name), "_")
		return strings.Join(lo.Map(words, func(w string, _ int) string {
			return strcase.ToCamel(w)
		}), "_")
	}
	return name
}
