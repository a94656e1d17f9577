// Package sqlxrepos implements the domain repositories over database/sql with
// sqlx struct scanning. All queries are plain SQL; the optional trailing
// executor lets services run repository calls inside a transaction.
package sqlxrepos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/content"
)

func getExec(dflt core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return dflt
}

// queryAll runs query and scans all rows into dest (a pointer to a slice of structs).
func queryAll(ctx context.Context, exec core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	return sqlx.StructScan(rows, dest)
}

func queryCount(ctx context.Context, exec core.DBExecutor, query string, args ...interface{}) (int, error) {
	var count int
	if err := exec.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func queryExists(ctx context.Context, exec core.DBExecutor, query string, args ...interface{}) (bool, error) {
	var exists bool
	if err := exec.QueryRowContext(ctx, "SELECT EXISTS ("+query+")", args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// listQuery builds the shared paged-list SQL for a content table: optional
// owner filter, optional ILIKE search over searchCols, newest-first stable
// ordering (created_at DESC, id DESC tiebreak) and LIMIT/OFFSET paging.
type listQuery struct {
	table      string
	cols       string
	searchCols []string
}

func (q listQuery) build(filter *content.QueryFilter) (countSQL, pageSQL string, countArgs, pageArgs []interface{}) {
	var where []string
	var args []interface{}

	if filter != nil {
		if filter.ProfileID != "" {
			args = append(args, filter.ProfileID)
			where = append(where, fmt.Sprintf("profile_id = $%d", len(args)))
		}
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			n := len(args)
			ors := make([]string, 0, len(q.searchCols))
			for _, col := range q.searchCols {
				ors = append(ors, fmt.Sprintf("%s ILIKE $%d", col, n))
			}
			where = append(where, "("+strings.Join(ors, " OR ")+")")
		}
	}

	var whereSQL string
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	countSQL = fmt.Sprintf("SELECT COUNT(*) FROM %q%s", q.table, whereSQL)
	countArgs = args

	pageArgs = append(pageArgs, args...)
	pageSQL = fmt.Sprintf("SELECT %s FROM %q%s ORDER BY created_at DESC, id DESC", q.cols, q.table, whereSQL)
	if filter != nil {
		pageArgs = append(pageArgs, filter.Limit, filter.Offset())
		pageSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(pageArgs)-1, len(pageArgs))
	}
	return countSQL, pageSQL, countArgs, pageArgs
}

// runListQuery executes the count + page pair; the page query is skipped when
// the requested page lies beyond the total (empty data, correct total).
func runListQuery(ctx context.Context, exec core.DBExecutor, q listQuery, filter *content.QueryFilter, dest interface{}) (int, error) {
	countSQL, pageSQL, countArgs, pageArgs := q.build(filter)

	total, err := queryCount(ctx, exec, countSQL, countArgs...)
	if err != nil {
		return 0, errors.Wrapf(err, "counting %s", q.table)
	}
	if filter != nil && filter.Offset() >= total {
		return total, nil
	}
	if err = queryAll(ctx, exec, dest, pageSQL, pageArgs...); err != nil {
		return 0, errors.Wrapf(err, "querying %s", q.table)
	}
	return total, nil
}
