package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newBotID returns an opaque time-ordered id, bot_<unix-millis>_<random>.
func newBotID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("bot_%d_%s", now.UnixMilli(), suffix)
}

func pageBounds(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return (page - 1) * pageSize, pageSize
}
