package domain

import (
	"encoding/json"
	"time"
)

// ContentSection — именованный блок текста страницы (hero, about, contact и т.д.).
type ContentSection struct {
	Section   string
	Content   json.RawMessage
	UpdatedAt time.Time
}
