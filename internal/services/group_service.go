package services

import (
	"errors"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"dayrate/internal/db"
	"dayrate/internal/models"
	"dayrate/internal/security"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrEmptyGroupName   = errors.New("group name is required")
	ErrGroupNotFound    = errors.New("group not found")
	ErrAlreadyMember    = errors.New("already a member")
	ErrNotAMember       = errors.New("not a member of this group")
	ErrInviteAllocation = errors.New("could not allocate a unique invite code")
)

const (
	inviteCodeLength = 8
	// No 0/O/1/I/L so codes survive being read aloud or retyped.
	inviteCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	inviteCodeAttempts = 5
	MaxGroupNameLength = 100
)

type GroupStore interface {
	CreateWithOwner(group *models.Group) error
	FindByID(groupID uint) (models.Group, bool, error)
	FindByInviteCode(inviteCode string) (models.Group, bool, error)
	InviteCodeExists(inviteCode string) (bool, error)
	CreateMember(member *models.GroupMember) error
	IsMember(groupID uint, userID uint) (bool, error)
	ListForUser(userID uint) ([]db.GroupSummary, error)
	MembersOf(groupID uint) ([]db.MemberRow, error)
}

type GroupRatingReader interface {
	FindForUsersOnDate(userIDs []uint, date time.Time) ([]models.DailyRating, error)
	AggregateByUser(userIDs []uint) ([]db.UserRatingAggregate, error)
}

// MemberStats is one member's row in the group detail view. Nil means the
// member has no rating for that column, not a zero.
type MemberStats struct {
	UserID      uint
	Name        string
	JoinedAt    time.Time
	TodayRating *float64
	OverallAvg  *float64
}

type GroupDetail struct {
	Group           models.Group
	TodayGroupAvg   *float64
	OverallGroupAvg *float64
	Members         []MemberStats
}

type GroupService struct {
	groups    GroupStore
	ratings   GroupRatingReader
	sanitizer *bluemonday.Policy
}

func NewGroupService(groups GroupStore, ratings GroupRatingReader) *GroupService {
	return &GroupService{
		groups:    groups,
		ratings:   ratings,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// CreateGroup creates the group and enrolls the owner in one transaction.
// Two concurrent creations can draw the same invite code and both pass the
// advisory uniqueness check; the loser's insert hits the unique invite_code
// index and gets a fresh code on the next attempt.
func (service *GroupService) CreateGroup(ownerID uint, name string, now time.Time) (models.Group, error) {
	cleanName := service.normalizeGroupName(name)
	if cleanName == "" {
		return models.Group{}, ErrEmptyGroupName
	}

	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		inviteCode, err := service.allocateInviteCode()
		if err != nil {
			return models.Group{}, err
		}

		group := models.Group{
			Name:       cleanName,
			OwnerID:    ownerID,
			InviteCode: inviteCode,
			CreatedAt:  now,
		}
		err = service.groups.CreateWithOwner(&group)
		if err == nil {
			return group, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Group{}, err
		}
	}
	return models.Group{}, ErrInviteAllocation
}

// JoinGroup enrolls the user in the group behind the invite code. The
// membership pre-check gives the common case a clean error; the unique
// (group_id, user_id) index settles concurrent joins.
func (service *GroupService) JoinGroup(inviteCode string, userID uint, now time.Time) (models.Group, error) {
	group, found, err := service.groups.FindByInviteCode(strings.TrimSpace(inviteCode))
	if err != nil {
		return models.Group{}, err
	}
	if !found {
		return models.Group{}, ErrGroupNotFound
	}

	already, err := service.groups.IsMember(group.ID, userID)
	if err != nil {
		return models.Group{}, err
	}
	if already {
		return models.Group{}, ErrAlreadyMember
	}

	member := models.GroupMember{GroupID: group.ID, UserID: userID, JoinedAt: now}
	if err := service.groups.CreateMember(&member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Group{}, ErrAlreadyMember
		}
		return models.Group{}, err
	}
	return group, nil
}

func (service *GroupService) ListGroups(userID uint) ([]db.GroupSummary, error) {
	return service.groups.ListForUser(userID)
}

func (service *GroupService) Members(groupID uint) ([]db.MemberRow, error) {
	return service.groups.MembersOf(groupID)
}

// GroupDetail assembles the per-group view. Membership is checked before
// existence so a non-member learns nothing about which group ids exist. The
// two cross-member reads are bulk queries, never one query per member.
func (service *GroupService) GroupDetail(groupID uint, requesterID uint, now time.Time) (GroupDetail, error) {
	isMember, err := service.groups.IsMember(groupID, requesterID)
	if err != nil {
		return GroupDetail{}, err
	}
	if !isMember {
		return GroupDetail{}, ErrNotAMember
	}

	group, found, err := service.groups.FindByID(groupID)
	if err != nil {
		return GroupDetail{}, err
	}
	if !found {
		return GroupDetail{}, ErrGroupNotFound
	}

	members, err := service.groups.MembersOf(groupID)
	if err != nil {
		return GroupDetail{}, err
	}

	memberIDs := make([]uint, 0, len(members))
	for _, member := range members {
		memberIDs = append(memberIDs, member.UserID)
	}
	today := UTCDate(now)

	var todayRatings []models.DailyRating
	var overallAggregates []db.UserRatingAggregate
	workers := new(errgroup.Group)
	workers.Go(func() error {
		var fetchErr error
		todayRatings, fetchErr = service.ratings.FindForUsersOnDate(memberIDs, today)
		return fetchErr
	})
	workers.Go(func() error {
		var fetchErr error
		overallAggregates, fetchErr = service.ratings.AggregateByUser(memberIDs)
		return fetchErr
	})
	if err := workers.Wait(); err != nil {
		return GroupDetail{}, err
	}

	todayTenthsByUser := make(map[uint]int, len(todayRatings))
	for _, rating := range todayRatings {
		todayTenthsByUser[rating.UserID] = rating.RatingTenths
	}
	overallTenthsByUser := make(map[uint]float64, len(overallAggregates))
	for _, aggregate := range overallAggregates {
		overallTenthsByUser[aggregate.UserID] = aggregate.AvgTenths
	}

	memberStats := make([]MemberStats, 0, len(members))
	for _, member := range members {
		stats := MemberStats{
			UserID:   member.UserID,
			Name:     member.Name,
			JoinedAt: member.JoinedAt,
		}
		if tenths, rated := todayTenthsByUser[member.UserID]; rated {
			todayRating := float64(tenths) / 10
			stats.TodayRating = &todayRating
		}
		if avgTenths, hasRatings := overallTenthsByUser[member.UserID]; hasRatings {
			overallAvg := RoundTenthsAvg(avgTenths)
			stats.OverallAvg = &overallAvg
		}
		memberStats = append(memberStats, stats)
	}

	return GroupDetail{
		Group:           group,
		TodayGroupAvg:   groupTodayAverage(todayRatings),
		OverallGroupAvg: groupOverallAverage(overallAggregates),
		Members:         memberStats,
	}, nil
}

// groupTodayAverage averages the ratings that exist today; members who have
// not rated are left out of both numerator and denominator.
func groupTodayAverage(todayRatings []models.DailyRating) *float64 {
	if len(todayRatings) == 0 {
		return nil
	}
	sumTenths := 0
	for _, rating := range todayRatings {
		sumTenths += rating.RatingTenths
	}
	avg := RoundTenthsAvg(float64(sumTenths) / float64(len(todayRatings)))
	return &avg
}

// groupOverallAverage averages the unrounded per-member averages of the
// members who have any ratings, then rounds once.
func groupOverallAverage(aggregates []db.UserRatingAggregate) *float64 {
	if len(aggregates) == 0 {
		return nil
	}
	sumTenths := 0.0
	for _, aggregate := range aggregates {
		sumTenths += aggregate.AvgTenths
	}
	avg := RoundTenthsAvg(sumTenths / float64(len(aggregates)))
	return &avg
}

func (service *GroupService) normalizeGroupName(name string) string {
	// The sanitizer entity-escapes what it keeps; names are stored as plain
	// text, so undo that ("Tom & Jerry" stays "Tom & Jerry").
	sanitized := html.UnescapeString(service.sanitizer.Sanitize(name))
	sanitized = strings.TrimSpace(sanitized)
	if utf8.RuneCountInString(sanitized) > MaxGroupNameLength {
		runes := []rune(sanitized)
		sanitized = strings.TrimSpace(string(runes[:MaxGroupNameLength]))
	}
	return sanitized
}

func (service *GroupService) allocateInviteCode() (string, error) {
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := security.RandomString(inviteCodeLength, inviteCodeAlphabet)
		if err != nil {
			return "", err
		}
		taken, err := service.groups.InviteCodeExists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrInviteAllocation
}
