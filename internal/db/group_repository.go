package db

import (
	"time"

	"dayrate/internal/models"
	"gorm.io/gorm"
)

type GroupRepository struct {
	database *gorm.DB
}

func NewGroupRepository(database *gorm.DB) *GroupRepository {
	return &GroupRepository{database: database}
}

// GroupSummary is one row of a user's group list.
type GroupSummary struct {
	ID          uint      `gorm:"column:id"`
	Name        string    `gorm:"column:name"`
	InviteCode  string    `gorm:"column:invite_code"`
	OwnerID     uint      `gorm:"column:owner_id"`
	MemberCount int64     `gorm:"column:member_count"`
	JoinedAt    time.Time `gorm:"column:joined_at"`
}

// MemberRow is one group member joined with the owning user's display name.
type MemberRow struct {
	UserID   uint      `gorm:"column:user_id"`
	Name     string    `gorm:"column:name"`
	JoinedAt time.Time `gorm:"column:joined_at"`
}

// CreateWithOwner inserts the group and the owner's membership atomically.
func (repo *GroupRepository) CreateWithOwner(group *models.Group) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		member := models.GroupMember{
			GroupID:  group.ID,
			UserID:   group.OwnerID,
			JoinedAt: group.CreatedAt,
		}
		return tx.Create(&member).Error
	})
}

func (repo *GroupRepository) FindByID(groupID uint) (models.Group, bool, error) {
	group := models.Group{}
	result := repo.database.Limit(1).Find(&group, groupID)
	if result.Error != nil {
		return models.Group{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Group{}, false, nil
	}
	return group, true, nil
}

func (repo *GroupRepository) FindByInviteCode(inviteCode string) (models.Group, bool, error) {
	group := models.Group{}
	result := repo.database.Where("invite_code = ?", inviteCode).Limit(1).Find(&group)
	if result.Error != nil {
		return models.Group{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Group{}, false, nil
	}
	return group, true, nil
}

func (repo *GroupRepository) InviteCodeExists(inviteCode string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Group{}).
		Where("invite_code = ?", inviteCode).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// CreateMember inserts the membership row. The uidx_group_user unique index
// rejects a second join for the same (group, user) as gorm.ErrDuplicatedKey.
func (repo *GroupRepository) CreateMember(member *models.GroupMember) error {
	return repo.database.Create(member).Error
}

func (repo *GroupRepository) IsMember(groupID uint, userID uint) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// ListForUser returns the groups the user belongs to, most recently joined
// first, each with its current member count.
func (repo *GroupRepository) ListForUser(userID uint) ([]GroupSummary, error) {
	summaries := make([]GroupSummary, 0)
	if err := repo.database.Table("group_members").
		Select(`groups.id, groups.name, groups.invite_code, groups.owner_id, group_members.joined_at,
			(SELECT COUNT(*) FROM group_members counted WHERE counted.group_id = groups.id) AS member_count`).
		Joins("JOIN groups ON groups.id = group_members.group_id").
		Where("group_members.user_id = ?", userID).
		Order("group_members.joined_at DESC, group_members.id DESC").
		Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

func (repo *GroupRepository) MembersOf(groupID uint) ([]MemberRow, error) {
	members := make([]MemberRow, 0)
	if err := repo.database.Table("group_members").
		Select("group_members.user_id, users.name, group_members.joined_at").
		Joins("JOIN users ON users.id = group_members.user_id").
		Where("group_members.group_id = ?", groupID).
		Order("group_members.joined_at ASC, group_members.id ASC").
		Scan(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
