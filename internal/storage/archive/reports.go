// internal/storage/archive/reports.go
package archive

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/vantagelabs/vantage/internal/core"
)

// Reports stores rendered daily reports on a Storage backend, keyed by
// year/month folders so lexical order matches chronological order.
type Reports struct {
	store Storage
}

// NewReports wraps a storage backend for report archiving.
func NewReports(store Storage) *Reports {
	return &Reports{store: store}
}

// Path returns the archive path for a report dated day.
func Path(day time.Time) string {
	return day.Format("2006/01") + "/vantage-" + day.Format("2006-01-02") + ".html"
}

// Save archives a rendered report and returns the path it was written to.
func (r *Reports) Save(ctx context.Context, day time.Time, html []byte) (string, error) {
	p := Path(day)
	if err := r.store.Write(ctx, p, html); err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}
	return p, nil
}

// Latest returns the most recently archived report and its path.
func (r *Reports) Latest(ctx context.Context) ([]byte, string, error) {
	paths, err := r.store.List(ctx, "")
	if err != nil {
		return nil, "", core.WrapError(core.ErrArchiveFailed, err)
	}

	var reports []string
	for _, p := range paths {
		if strings.HasSuffix(p, ".html") {
			reports = append(reports, p)
		}
	}
	if len(reports) == 0 {
		return nil, "", core.ErrNoData
	}

	sort.Strings(reports)
	latest := reports[len(reports)-1]

	data, err := r.store.Read(ctx, latest)
	if err != nil {
		return nil, "", core.WrapError(core.ErrArchiveFailed, err)
	}
	return data, latest, nil
}
