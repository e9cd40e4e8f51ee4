package mapper

import (
	"time"

	"github.com/mustafa-mbari/TeleChat/internal/entity"
	"github.com/mustafa-mbari/TeleChat/pkg/notion"
)

// Property names as they appear on the two databases.
const (
	PropTitle    = "Title"
	PropURL      = "URL"
	PropCategory = "Category"
	PropStatus   = "Status"
	PropPriority = "Priority"
	PropCreated  = "Created"
	PropNr       = "Nr"
)

// LinkFromPage extracts a link record from a raw page with safe defaults:
// a page with no title still renders as "Untitled" rather than breaking a
// list. This is the only place link pages are interpreted.
func LinkFromPage(page notion.Page) entity.LinkRecord {
	title := page.PlainTitle(PropTitle)
	if title == "" {
		title = "Untitled"
	}
	return entity.LinkRecord{
		ID:             page.ID,
		Title:          title,
		URL:            page.URLValue(PropURL),
		Category:       page.SelectValue(PropCategory),
		CreatedAt:      page.CreatedTime,
		SequenceNumber: int(page.NumberValue(PropNr)),
	}
}

// TaskFromPage extracts a task record; missing status and priority fall back
// to Pending/Medium so a hand-edited page cannot wedge the bot.
func TaskFromPage(page notion.Page) entity.TaskRecord {
	title := page.PlainTitle(PropTitle)
	if title == "" {
		title = "Untitled"
	}
	status := entity.TaskStatus(page.SelectValue(PropStatus))
	if status != entity.TaskStatusDone {
		status = entity.TaskStatusPending
	}
	return entity.TaskRecord{
		ID:             page.ID,
		Title:          title,
		Status:         status,
		Priority:       entity.ParsePriority(page.SelectValue(PropPriority)),
		CreatedAt:      page.CreatedTime,
		SequenceNumber: int(page.NumberValue(PropNr)),
	}
}

// LinkProperties builds the outbound payload for a new link page.
func LinkProperties(title, url, category string, createdAt time.Time, nr int) notion.Properties {
	props := notion.Properties{
		PropTitle:    notion.TitleProperty(title),
		PropURL:      notion.URLProperty(url),
		PropCategory: notion.SelectProperty(category),
		PropCreated:  notion.DateProperty(createdAt),
	}
	if nr > 0 {
		props[PropNr] = notion.NumberProperty(float64(nr))
	}
	return props
}

// TaskProperties builds the outbound payload for a new task page.
func TaskProperties(title string, status entity.TaskStatus, priority entity.TaskPriority, createdAt time.Time, nr int) notion.Properties {
	props := notion.Properties{
		PropTitle:    notion.TitleProperty(title),
		PropStatus:   notion.SelectProperty(string(status)),
		PropPriority: notion.SelectProperty(string(priority)),
		PropCreated:  notion.DateProperty(createdAt),
	}
	if nr > 0 {
		props[PropNr] = notion.NumberProperty(float64(nr))
	}
	return props
}
