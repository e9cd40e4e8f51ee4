package notion

import "time"

// The engine only touches a narrow slice of the Notion object model; these
// types cover exactly the property kinds the two databases use. Everything
// else in an API response is ignored on unmarshal.

type TextContent struct {
	Content string `json:"content"`
}

type RichText struct {
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type SelectOption struct {
	Name string `json:"name"`
}

type DateValue struct {
	Start string `json:"start"`
}

// PropertyValue is a union over the property kinds in use. Exactly one of the
// payload fields is set, matching Type when it came from the API.
type PropertyValue struct {
	Type     string        `json:"type,omitempty"`
	Title    []RichText    `json:"title,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
	URL      *string       `json:"url,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
	Number   *float64      `json:"number,omitempty"`
	Date     *DateValue    `json:"date,omitempty"`
}

type Properties map[string]PropertyValue

type Page struct {
	ID          string     `json:"id"`
	Archived    bool       `json:"archived"`
	CreatedTime time.Time  `json:"created_time"`
	Properties  Properties `json:"properties"`
}

// Builders for outbound property payloads.

func TitleProperty(text string) PropertyValue {
	return PropertyValue{Title: []RichText{{Text: &TextContent{Content: text}}}}
}

func URLProperty(url string) PropertyValue {
	return PropertyValue{URL: &url}
}

func SelectProperty(name string) PropertyValue {
	return PropertyValue{Select: &SelectOption{Name: name}}
}

func NumberProperty(n float64) PropertyValue {
	return PropertyValue{Number: &n}
}

func DateProperty(t time.Time) PropertyValue {
	return PropertyValue{Date: &DateValue{Start: t.Format(time.RFC3339)}}
}

// Safe accessors for inbound pages. Missing or differently-typed properties
// yield zero values; record-level defaults live in the mapper.

func (p Page) PlainTitle(property string) string {
	return plainText(p.Properties[property].Title)
}

func (p Page) PlainText(property string) string {
	return plainText(p.Properties[property].RichText)
}

func (p Page) URLValue(property string) string {
	if u := p.Properties[property].URL; u != nil {
		return *u
	}
	return ""
}

func (p Page) SelectValue(property string) string {
	if s := p.Properties[property].Select; s != nil {
		return s.Name
	}
	return ""
}

func (p Page) NumberValue(property string) float64 {
	if n := p.Properties[property].Number; n != nil {
		return *n
	}
	return 0
}

func plainText(parts []RichText) string {
	var out string
	for _, part := range parts {
		if part.PlainText != "" {
			out += part.PlainText
		} else if part.Text != nil {
			out += part.Text.Content
		}
	}
	return out
}

// Query is the subset of the database query body the engine uses.
type Query struct {
	Filter   map[string]interface{} `json:"filter,omitempty"`
	Sorts    []Sort                 `json:"sorts,omitempty"`
	PageSize int                    `json:"page_size,omitempty"`
}

type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// URLEquals filters on exact URL match, used for duplicate detection.
func URLEquals(property, url string) map[string]interface{} {
	return map[string]interface{}{
		"property": property,
		"url":      map[string]interface{}{"equals": url},
	}
}

// TitleContains filters on a keyword in the title property.
func TitleContains(property, keyword string) map[string]interface{} {
	return map[string]interface{}{
		"property": property,
		"title":    map[string]interface{}{"contains": keyword},
	}
}
