// Package query answers substring searches over a loaded file index.
package query

import (
	"fmt"
	"strings"

	"filedex/internal/store"

	"github.com/RoaringBitmap/roaring"
	"github.com/rs/zerolog"
)

// Column selects which display columns take part in a search.
type Column uint8

const (
	ColumnName Column = 1 << iota
	ColumnSize
	ColumnType

	AllColumns = ColumnName | ColumnSize | ColumnType
)

var columnOrder = [...]Column{ColumnName, ColumnSize, ColumnType}

func (c Column) index() int {
	switch c {
	case ColumnName:
		return 0
	case ColumnSize:
		return 1
	}
	return 2
}

func (c Column) String() string {
	var parts []string
	if c&ColumnName != 0 {
		parts = append(parts, "name")
	}
	if c&ColumnSize != 0 {
		parts = append(parts, "size")
	}
	if c&ColumnType != 0 {
		parts = append(parts, "type")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// ParseColumns reads a comma separated list of name, size and type.
func ParseColumns(s string) (Column, error) {
	var c Column
	for _, p := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "name":
			c |= ColumnName
		case "size":
			c |= ColumnSize
		case "type", "content-type", "mime":
			c |= ColumnType
		case "all":
			c |= AllColumns
		case "":
		default:
			return 0, fmt.Errorf("unknown column %q (want name, size or type)", p)
		}
	}
	return c, nil
}

// Row is one record with its display strings.
type Row struct {
	Name        string
	Size        string
	ContentType string
	Record      store.FileRecord
}

// Session is a read-only in-memory snapshot of one artifact. It is safe for
// concurrent use.
type Session struct {
	rows  []Row
	lower [len(columnOrder)][]string
	all   *roaring.Bitmap
}

// Load reads the artifact at path once. Errors are those of store.Read.
func Load(path string) (*Session, error) {
	records, err := store.Read(path)
	if err != nil {
		return nil, err
	}
	return NewSession(records), nil
}

// NewSession builds a snapshot over records, keeping their order.
func NewSession(records []store.FileRecord) *Session {
	s := &Session{
		rows: make([]Row, len(records)),
		all:  roaring.New(),
	}
	for i := range s.lower {
		s.lower[i] = make([]string, len(records))
	}
	for i, r := range records {
		ct, ok := r.Type()
		if !ok {
			ct = NoContentType
		}
		row := Row{
			Name:        r.Name,
			Size:        FormatSize(r.SizeBytes),
			ContentType: ct,
			Record:      r,
		}
		s.rows[i] = row
		s.lower[0][i] = strings.ToLower(row.Name)
		s.lower[1][i] = strings.ToLower(row.Size)
		s.lower[2][i] = strings.ToLower(row.ContentType)
	}
	s.all.AddRange(0, uint64(len(records)))
	return s
}

// Len returns the number of rows in the snapshot.
func (s *Session) Len() int {
	return len(s.rows)
}

// Search returns the rows where the case-insensitive query is a substring of
// at least one of the selected columns, in artifact order. An empty query
// returns every row.
func (s *Session) Search(query string, cols Column) []Row {
	return s.collect(s.match(strings.ToLower(query), cols, s.all))
}

// match returns the subset of candidates matching the lower-cased query.
func (s *Session) match(query string, cols Column, candidates *roaring.Bitmap) *roaring.Bitmap {
	if query == "" {
		return candidates.Clone()
	}
	out := roaring.New()
	for _, c := range columnOrder {
		if cols&c == 0 {
			continue
		}
		values := s.lower[c.index()]
		hits := roaring.New()
		it := candidates.Iterator()
		for it.HasNext() {
			id := it.Next()
			if strings.Contains(values[id], query) {
				hits.Add(id)
			}
		}
		out.Or(hits)
	}
	return out
}

func (s *Session) collect(ids *roaring.Bitmap) []Row {
	out := make([]Row, 0, ids.GetCardinality())
	it := ids.Iterator()
	for it.HasNext() {
		out = append(out, s.rows[it.Next()])
	}
	return out
}

// Filter re-runs a search as the query is edited. When the new query
// contains the previous one only the previous matches are re-checked.
// A Filter belongs to a single caller and is not safe for concurrent use.
type Filter struct {
	session *Session
	cols    Column
	query   string
	matched *roaring.Bitmap
}

// NewFilter starts a filter over s with an empty query.
func (s *Session) NewFilter(cols Column) *Filter {
	return &Filter{session: s, cols: cols, matched: s.all.Clone()}
}

// Update applies query and returns the matching rows.
func (f *Filter) Update(query string) []Row {
	q := strings.ToLower(query)
	candidates := f.session.all
	if f.matched != nil && strings.Contains(q, f.query) {
		candidates = f.matched
	}
	f.matched = f.session.match(q, f.cols, candidates)
	f.query = q
	return f.session.collect(f.matched)
}

// SetColumns changes the participating columns and re-applies the current query.
func (f *Filter) SetColumns(cols Column) []Row {
	f.cols = cols
	f.matched = nil
	return f.Update(f.query)
}

// Columns returns the participating columns.
func (f *Filter) Columns() Column {
	return f.cols
}

// Count returns the number of rows matched by the last update.
func (f *Filter) Count() int {
	if f.matched == nil {
		return 0
	}
	return int(f.matched.GetCardinality())
}

// LookupNames returns the names in the artifact at path that contain query,
// ignoring case, in artifact order. Any failure yields an empty list; the
// cause is logged at debug level.
func LookupNames(path, query string, log zerolog.Logger) []string {
	names := []string{}
	records, err := store.Read(path)
	if err != nil {
		log.Debug().Str("index", path).Err(err).Msg("name lookup failed")
		return names
	}
	q := strings.ToLower(query)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), q) {
			names = append(names, r.Name)
		}
	}
	return names
}
