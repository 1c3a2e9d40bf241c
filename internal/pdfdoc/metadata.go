package pdfdoc

import (
	"math"
	"strings"
)

// UnknownField is the marker rendered for document properties the PDF does
// not carry. Absent fields never render as null so the response shape stays
// stable for programmatic consumers.
const UnknownField = "unknown"

// Metadata is the normalised document property record.
type Metadata struct {
	FilePath      string  `json:"file_path"`
	FileSizeBytes int64   `json:"file_size_bytes"`
	FileSizeMB    float64 `json:"file_size_mb"`
	PageCount     int     `json:"page_count"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Subject       string  `json:"subject"`
	Creator       string  `json:"creator"`
	Producer      string  `json:"producer"`
	CreationDate  string  `json:"creation_date"`
}

// Metadata reads the document information dictionary. It never fails once
// the handle is open: missing or unreadable fields map to UnknownField.
func (d *File) Metadata() Metadata {
	m := Metadata{
		FilePath:      d.path,
		FileSizeBytes: d.size,
		FileSizeMB:    math.Round(float64(d.size)/(1024*1024)*100) / 100,
		PageCount:     d.PageCount(),
		Title:         UnknownField,
		Author:        UnknownField,
		Subject:       UnknownField,
		Creator:       UnknownField,
		Producer:      UnknownField,
		CreationDate:  UnknownField,
	}

	m.Title = d.infoField("Title")
	m.Author = d.infoField("Author")
	m.Subject = d.infoField("Subject")
	m.Creator = d.infoField("Creator")
	m.Producer = d.infoField("Producer")
	m.CreationDate = d.infoField("CreationDate")

	return m
}

// infoField reads one key from the trailer's Info dictionary. The value
// tree panics on some malformed documents, so reads are guarded.
func (d *File) infoField(key string) (value string) {
	value = UnknownField
	defer func() {
		if r := recover(); r != nil {
			value = UnknownField
		}
	}()

	info := d.reader.Trailer().Key("Info")
	if info.IsNull() {
		return UnknownField
	}

	v := info.Key(key)
	if v.IsNull() {
		return UnknownField
	}

	s := strings.TrimSpace(v.Text())
	if s == "" {
		return UnknownField
	}
	return s
}
