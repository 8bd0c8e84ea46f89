package repository

import (
	"strings"

	"gorm.io/gorm"
)

// SearchColumn a column matched by the list search. Numeric columns are cast to text first.
type SearchColumn struct {
	Name    string
	Numeric bool
}

func Text(name string) SearchColumn {
	return SearchColumn{Name: name}
}

func Numeric(name string) SearchColumn {
	return SearchColumn{Name: name, Numeric: true}
}

// likeExpr case-insensitive substring match for the dialect
func likeExpr(dialect string, col SearchColumn) string {
	switch dialect {
	case "postgres":
		if col.Numeric {
			return "CAST(" + col.Name + " AS TEXT) ILIKE ?"
		}
		return col.Name + " ILIKE ?"
	case "mysql":
		if col.Numeric {
			return "CAST(" + col.Name + " AS CHAR) LIKE ?"
		}
		return "LOWER(" + col.Name + ") LIKE ?"
	default:
		if col.Numeric {
			return "CAST(" + col.Name + " AS TEXT) LIKE ?"
		}
		return "LOWER(" + col.Name + ") LIKE ?"
	}
}

// searchScope OR-combines the columns into one parenthesised condition
func searchScope(db *gorm.DB, term string, columns []SearchColumn) *gorm.DB {
	if len(columns) == 0 || term == "" {
		return db
	}
	pattern := "%" + strings.ToLower(term) + "%"
	exprs := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		exprs = append(exprs, likeExpr(db.Name(), col))
		args = append(args, pattern)
	}
	return db.Where("("+strings.Join(exprs, " OR ")+")", args...)
}
