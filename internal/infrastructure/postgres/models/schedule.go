package models

type ScheduleModel struct {
	ID       string `gorm:"primaryKey;type:uuid"`
	OfficeID string `gorm:"type:uuid;index;not null"`
	Day      int
	OpensAt  int
	ClosesAt int
}

func (ScheduleModel) TableName() string {
	return "schedules"
}
