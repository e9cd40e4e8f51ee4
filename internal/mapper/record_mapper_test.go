package mapper

import (
	"testing"
	"time"

	"github.com/mustafa-mbari/TeleChat/internal/entity"
	"github.com/mustafa-mbari/TeleChat/pkg/notion"

	"github.com/stretchr/testify/assert"
)

func TestLinkFromPageDefaults(t *testing.T) {
	// A page with nothing filled in still maps to a usable record.
	record := LinkFromPage(notion.Page{ID: "p1"})

	assert.Equal(t, "p1", record.ID)
	assert.Equal(t, "Untitled", record.Title)
	assert.Empty(t, record.URL)
	assert.Empty(t, record.Category)
	assert.Zero(t, record.SequenceNumber)
}

func TestLinkFromPage(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	page := notion.Page{
		ID:          "p1",
		CreatedTime: created,
		Properties: notion.Properties{
			PropTitle:    notion.TitleProperty("Go blog"),
			PropURL:      notion.URLProperty("https://go.dev/blog"),
			PropCategory: notion.SelectProperty("Reading"),
			PropNr:       notion.NumberProperty(4),
		},
	}

	record := LinkFromPage(page)
	assert.Equal(t, entity.LinkRecord{
		ID:             "p1",
		Title:          "Go blog",
		URL:            "https://go.dev/blog",
		Category:       "Reading",
		CreatedAt:      created,
		SequenceNumber: 4,
	}, record)
}

func TestTaskFromPageDefaults(t *testing.T) {
	record := TaskFromPage(notion.Page{ID: "t1"})

	assert.Equal(t, "Untitled", record.Title)
	assert.Equal(t, entity.TaskStatusPending, record.Status)
	assert.Equal(t, entity.PriorityMedium, record.Priority)
}

func TestTaskFromPageUnknownPriorityFallsBack(t *testing.T) {
	page := notion.Page{
		ID: "t1",
		Properties: notion.Properties{
			PropTitle:    notion.TitleProperty("Buy milk"),
			PropStatus:   notion.SelectProperty("Done"),
			PropPriority: notion.SelectProperty("Urgent"),
		},
	}

	record := TaskFromPage(page)
	assert.Equal(t, entity.TaskStatusDone, record.Status)
	assert.Equal(t, entity.PriorityMedium, record.Priority)
}

func TestTaskPropertiesOmitsZeroSequence(t *testing.T) {
	props := TaskProperties("Buy milk", entity.TaskStatusPending, entity.PriorityMedium, time.Now(), 0)
	_, hasNr := props[PropNr]
	assert.False(t, hasNr)

	props = TaskProperties("Buy milk", entity.TaskStatusPending, entity.PriorityMedium, time.Now(), 3)
	assert.Equal(t, float64(3), *props[PropNr].Number)
}
