// pkg/notion/types.go
package notion

import "encoding/json"

// Property type identifiers as reported by the Notion API. The extraction
// logic in pkg/transform dispatches over this closed set; anything else is
// treated as unsupported.
const (
	TypeTitle          = "title"
	TypeRichText       = "rich_text"
	TypeNumber         = "number"
	TypeSelect         = "select"
	TypeMultiSelect    = "multi_select"
	TypeDate           = "date"
	TypeCheckbox       = "checkbox"
	TypeURL            = "url"
	TypeEmail          = "email"
	TypePhoneNumber    = "phone_number"
	TypeStatus         = "status"
	TypePeople         = "people"
	TypeFiles          = "files"
	TypeRelation       = "relation"
	TypeFormula        = "formula"
	TypeRollup         = "rollup"
	TypeCreatedTime    = "created_time"
	TypeLastEditedTime = "last_edited_time"
	TypeCreatedBy      = "created_by"
	TypeLastEditedBy   = "last_edited_by"
)

// RichText is a single rich text fragment of a title or rich_text property.
type RichText struct {
	PlainText string `json:"plain_text"`
	Href      string `json:"href,omitempty"`
}

// Option is a select, multi_select or status option.
type Option struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DateValue is the start/end pair of a date property.
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

// Person is a Notion user reference. The API also carries the user's email
// in some responses; it is deliberately not decoded here.
type Person struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// FileRef holds the URL of a hosted or external file.
type FileRef struct {
	URL string `json:"url"`
}

// File is an entry of a files property.
type File struct {
	Name     string   `json:"name"`
	File     *FileRef `json:"file,omitempty"`
	External *FileRef `json:"external,omitempty"`
}

// Relation is a reference to a related page.
type Relation struct {
	ID string `json:"id"`
}

// Formula is the computed result of a formula property.
type Formula struct {
	Type    string     `json:"type"`
	String  *string    `json:"string,omitempty"`
	Number  *float64   `json:"number,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
	Date    *DateValue `json:"date,omitempty"`
}

// Rollup is the aggregated result of a rollup property.
type Rollup struct {
	Type   string            `json:"type"`
	Number *float64          `json:"number,omitempty"`
	Date   *DateValue        `json:"date,omitempty"`
	Array  []json.RawMessage `json:"array,omitempty"`
}

// Property is a tagged variant over the Notion property types. Type selects
// which of the value fields is populated.
type Property struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`

	Title          []RichText `json:"title,omitempty"`
	RichText       []RichText `json:"rich_text,omitempty"`
	Number         *float64   `json:"number,omitempty"`
	Select         *Option    `json:"select,omitempty"`
	MultiSelect    []Option   `json:"multi_select,omitempty"`
	Date           *DateValue `json:"date,omitempty"`
	Checkbox       *bool      `json:"checkbox,omitempty"`
	URL            *string    `json:"url,omitempty"`
	Email          *string    `json:"email,omitempty"`
	PhoneNumber    *string    `json:"phone_number,omitempty"`
	Status         *Option    `json:"status,omitempty"`
	People         []Person   `json:"people,omitempty"`
	Files          []File     `json:"files,omitempty"`
	Relation       []Relation `json:"relation,omitempty"`
	Formula        *Formula   `json:"formula,omitempty"`
	Rollup         *Rollup    `json:"rollup,omitempty"`
	CreatedTime    string     `json:"created_time,omitempty"`
	LastEditedTime string     `json:"last_edited_time,omitempty"`
	CreatedBy      *Person    `json:"created_by,omitempty"`
	LastEditedBy   *Person    `json:"last_edited_by,omitempty"`
}

// Page is a raw database record as returned by a database query. It is
// consumed transiently during a sync and never persisted.
type Page struct {
	Object     string              `json:"object"`
	ID         string              `json:"id"`
	URL        string              `json:"url,omitempty"`
	Properties map[string]Property `json:"properties"`
}

// Database is the metadata of a Notion database.
type Database struct {
	Object     string              `json:"object"`
	ID         string              `json:"id"`
	Title      []RichText          `json:"title,omitempty"`
	URL        string              `json:"url,omitempty"`
	Properties map[string]Property `json:"properties,omitempty"`
}

// queryRequest is the body of a database query request.
type queryRequest struct {
	Filter      json.RawMessage `json:"filter,omitempty"`
	Sorts       json.RawMessage `json:"sorts,omitempty"`
	StartCursor string          `json:"start_cursor,omitempty"`
	PageSize    int             `json:"page_size"`
}

// queryResponse is one page of database query results.
type queryResponse struct {
	Object     string  `json:"object"`
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// searchRequest is the body of a workspace search request.
type searchRequest struct {
	Query  string          `json:"query,omitempty"`
	Filter json.RawMessage `json:"filter,omitempty"`
}

// SearchResult is one page of workspace search results.
type SearchResult struct {
	Object     string     `json:"object"`
	Results    []Database `json:"results"`
	HasMore    bool       `json:"has_more"`
	NextCursor *string    `json:"next_cursor"`
}
