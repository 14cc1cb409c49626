package models

import "time"

type Group struct {
	ID         uint      `gorm:"primaryKey"`
	Name       string    `gorm:"not null"`
	OwnerID    uint      `gorm:"not null"`
	InviteCode string    `gorm:"uniqueIndex;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

type GroupMember struct {
	ID       uint      `gorm:"primaryKey"`
	GroupID  uint      `gorm:"not null;uniqueIndex:uidx_group_user"`
	UserID   uint      `gorm:"not null;uniqueIndex:uidx_group_user"`
	JoinedAt time.Time `gorm:"not null"`
}
