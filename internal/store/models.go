package store

// FileRecord is one indexed file. ContentType is nil when no type could be
// inferred from the file name.
type FileRecord struct {
	Name        string
	SizeBytes   uint64
	ContentType *string
}

// Type returns the content type and whether one was inferred.
func (r FileRecord) Type() (string, bool) {
	if r.ContentType == nil {
		return "", false
	}
	return *r.ContentType, true
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}
