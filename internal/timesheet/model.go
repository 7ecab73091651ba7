package timesheet

import (
	"github.com/uptrace/bun"
)

type Timesheet struct {
	bun.BaseModel `bun:"table:timesheets"`

	ID        int64 `bun:"id,pk,autoincrement" json:"id"`
	ProjectID int64 `bun:"project_id,notnull" json:"projectId" validate:"gte=0"`
	// CreatedAt is the day the work was done; nil when unknown.
	CreatedAt *Date `bun:"created_at,type:date" json:"createdAt"`
	Minutes   int   `bun:"minutes,notnull" json:"minutes" validate:"gte=0"`
}
