package query

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is one row object. Keys keep column encounter order when encoded.
type Record = orderedmap.OrderedMap[string, any]

func newRecord() *Record {
	return orderedmap.New[string, any]()
}

// Frequency is one grouped value of a column and how often it occurs.
type Frequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Metadata describes every sheet of a workbook.
type Metadata struct {
	Sheets []SheetMetadata `json:"sheets"`
}

// SheetMetadata summarizes one sheet: rows counts the header row too.
type SheetMetadata struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// --- Inputs ---

// SheetToJSONInput selects a sheet and the row holding its column names.
type SheetToJSONInput struct {
	Path      string `json:"file_path" jsonschema_description:"Absolute path to the workbook" validate:"max=4096"`
	Sheet     string `json:"sheet_name,omitempty" jsonschema_description:"Sheet name; first sheet when empty"`
	HeaderRow int    `json:"header_row,omitempty" jsonschema_description:"0-based index of the header row" validate:"gte=0,lte=1048575"`
}

// CountInput describes a keyword or pattern to count across a sheet.
type CountInput struct {
	Path     string `json:"file_path" jsonschema_description:"Absolute path to the workbook" validate:"max=4096"`
	Sheet    string `json:"sheet_name,omitempty" jsonschema_description:"Sheet name; first sheet when empty"`
	Keyword  string `json:"keyword" jsonschema_description:"Substring or regular expression to count" validate:"max=32767"`
	UseRegex bool   `json:"use_regex,omitempty" jsonschema_description:"Treat keyword as a regular expression"`
}

// FilterInput selects rows whose column equals a value, ignoring case.
type FilterInput struct {
	Path   string `json:"file_path" jsonschema_description:"Absolute path to the workbook" validate:"max=4096"`
	Sheet  string `json:"sheet_name,omitempty" jsonschema_description:"Sheet name; first sheet when empty"`
	Column string `json:"column" jsonschema_description:"Header name of the column to match"`
	Value  string `json:"value" jsonschema_description:"Value to match, case-insensitive"`
}

// ColumnInput names a single column by header.
type ColumnInput struct {
	Path   string `json:"file_path" jsonschema_description:"Absolute path to the workbook" validate:"max=4096"`
	Sheet  string `json:"sheet_name,omitempty" jsonschema_description:"Sheet name; first sheet when empty"`
	Column string `json:"column" jsonschema_description:"Header name of the column"`
}

// MetadataInput addresses a workbook.
type MetadataInput struct {
	Path string `json:"file_path" jsonschema_description:"Absolute path to the workbook" validate:"max=4096"`
}
