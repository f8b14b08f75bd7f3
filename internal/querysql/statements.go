package querysql

import (
	"fmt"
	"strings"
)

// Insert returns "insert into table (a, b) values (:a, :b)". With no
// columns it returns "insert into table default values".
func Insert(table string, columns []string) string {
	if len(columns) == 0 {
		return fmt.Sprintf("insert into %s default values", table)
	}
	values := make([]string, len(columns))
	for i, col := range columns {
		values[i] = ":" + col
	}
	return fmt.Sprintf("insert into %s (%s) values (%s)",
		table, strings.Join(columns, ", "), strings.Join(values, ", "))
}

// Update returns "update table set a = :a, b = :b where pkey = :pkey".
// The primary key is excluded from the set list unless it is the only
// column, in which case the statement rewrites the key onto itself.
func Update(table, pkey string, columns []string) string {
	pairs := make([]string, 0, len(columns))
	for _, col := range columns {
		if col == pkey {
			continue
		}
		pairs = append(pairs, col+" = :"+col)
	}
	if len(pairs) == 0 {
		pairs = append(pairs, pkey+" = :"+pkey)
	}
	return fmt.Sprintf("update %s set %s where %s = :%s",
		table, strings.Join(pairs, ", "), pkey, pkey)
}

// Delete returns "delete from table where pkey = :pkey".
func Delete(table, pkey string) string {
	return fmt.Sprintf("delete from %s where %s = :%s", table, pkey, pkey)
}

// SelectOne returns "select * from table where <where> limit 1".
func SelectOne(table, where string) string {
	return fmt.Sprintf("select * from %s where %s limit 1", table, where)
}

// CountWhere returns "select count(*) from table where <where>".
func CountWhere(table, where string) string {
	return fmt.Sprintf("select count(*) from %s where %s", table, where)
}

// Conjoin joins predicates with " and ", skipping empty ones.
func Conjoin(predicates ...string) string {
	var parts []string
	for _, p := range predicates {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " and ")
}
