package db

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"felix-hub/pkg/types"
)

// ApplyListParams применяет фильтры и сортировку из types.Filter.
// Ключи, которых нет в allowedMap, молча пропускаются.
// Строка "a,b" превращается в IN (a, b).
func ApplyListParams(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	for jsonField, val := range filter.Filter {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}

		if s, ok := val.(string); ok && strings.Contains(s, ",") {
			builder = builder.Where(sq.Eq{dbCol: strings.Split(s, ",")})
		} else {
			builder = builder.Where(sq.Eq{dbCol: val})
		}
	}

	for jsonField, dir := range filter.Sort {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}
		sqlDir := "ASC"
		if strings.ToLower(dir) == "desc" {
			sqlDir = "DESC"
		}
		builder = builder.OrderBy(fmt.Sprintf("%s %s", dbCol, sqlDir))
	}

	return builder
}

// ApplyPaging: Limit <= 0 означает "без ограничения".
func ApplyPaging(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}
	return builder
}
