package embedded

import (
	"time"

	"entity-schema/entity"
)

type Audit struct {
	CreatedAt time.Time
	Revision  uint32
}

type Event struct {
	*entity.Entity
	*Audit

	Name string
}

type Link struct {
	*Link

	Target string
}
