package googleDriveApi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/drive/v3"
)

func TestExpiredFileIDs(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

	files := []*drive.File{
		{Id: "old", Name: "rebalance_plan_1.xlsx", CreatedTime: "2024-05-31T12:00:00Z"},
		{Id: "fresh", Name: "rebalance_plan_2.xlsx", CreatedTime: "2024-06-02T11:00:00Z"},
		{Id: "foreign", Name: "holiday.jpg", CreatedTime: "2020-01-01T00:00:00Z"},
		{Id: "broken", Name: "rebalance_plan_3.xlsx", CreatedTime: "yesterday"},
		nil,
	}

	assert.Equal(t, []string{"old"}, ExpiredFileIDs(files, "rebalance_plan_", now, 24*time.Hour))
	assert.Equal(t, []string{"old", "fresh"}, ExpiredFileIDs(files, "rebalance_plan_", now, 0))
	assert.Empty(t, ExpiredFileIDs(nil, "rebalance_plan_", now, time.Hour))
}
