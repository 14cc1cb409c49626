package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"dayrate/internal/services"
)

type createGroupPayload struct {
	Name string `json:"name"`
}

type joinGroupPayload struct {
	InviteCode string `json:"inviteCode"`
}

func (handler *Handler) CreateGroup(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := createGroupPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	group, err := handler.groupService.CreateGroup(user.ID, payload.Name, time.Now().UTC())
	if err != nil {
		if errors.Is(err, services.ErrEmptyGroupName) {
			return apiError(c, fiber.StatusBadRequest, "group name is required")
		}
		return handler.storageError(c, "create group", err)
	}

	members, err := handler.groupService.Members(group.ID)
	if err != nil {
		return handler.storageError(c, "load group members", err)
	}

	memberList := make([]fiber.Map, 0, len(members))
	for _, member := range members {
		memberList = append(memberList, fiber.Map{
			"userId":   member.UserID,
			"name":     member.Name,
			"joinedAt": member.JoinedAt,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         group.ID,
		"name":       group.Name,
		"inviteCode": group.InviteCode,
		"ownerId":    group.OwnerID,
		"createdAt":  group.CreatedAt,
		"members":    memberList,
	})
}

func (handler *Handler) JoinGroup(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := joinGroupPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if strings.TrimSpace(payload.InviteCode) == "" {
		return apiError(c, fiber.StatusBadRequest, "inviteCode is required")
	}

	handler.ensureDependencies()
	group, err := handler.groupService.JoinGroup(payload.InviteCode, user.ID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGroupNotFound):
			return apiError(c, fiber.StatusNotFound, "group not found")
		case errors.Is(err, services.ErrAlreadyMember):
			return apiError(c, fiber.StatusConflict, "already a member")
		default:
			return handler.storageError(c, "join group", err)
		}
	}

	return c.JSON(fiber.Map{
		"message":   "joined",
		"groupId":   group.ID,
		"groupName": group.Name,
	})
}

func (handler *Handler) ListGroups(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	summaries, err := handler.groupService.ListGroups(user.ID)
	if err != nil {
		return handler.storageError(c, "list groups", err)
	}

	response := make([]fiber.Map, 0, len(summaries))
	for _, summary := range summaries {
		response = append(response, fiber.Map{
			"id":          summary.ID,
			"name":        summary.Name,
			"inviteCode":  summary.InviteCode,
			"ownerId":     summary.OwnerID,
			"memberCount": summary.MemberCount,
			"joinedAt":    summary.JoinedAt,
		})
	}
	return c.JSON(response)
}

func (handler *Handler) GroupDetail(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid group id")
	}

	handler.ensureDependencies()
	detail, err := handler.groupService.GroupDetail(uint(groupID), user.ID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAMember):
			return apiError(c, fiber.StatusForbidden, "not a member of this group")
		case errors.Is(err, services.ErrGroupNotFound):
			return apiError(c, fiber.StatusNotFound, "group not found")
		default:
			return handler.storageError(c, "load group detail", err)
		}
	}

	members := make([]fiber.Map, 0, len(detail.Members))
	for _, member := range detail.Members {
		members = append(members, fiber.Map{
			"userId":      member.UserID,
			"name":        member.Name,
			"joinedAt":    member.JoinedAt,
			"todayRating": member.TodayRating,
			"overallAvg":  member.OverallAvg,
		})
	}

	return c.JSON(fiber.Map{
		"id":              detail.Group.ID,
		"name":            detail.Group.Name,
		"inviteCode":      detail.Group.InviteCode,
		"ownerId":         detail.Group.OwnerID,
		"todayGroupAvg":   detail.TodayGroupAvg,
		"overallGroupAvg": detail.OverallGroupAvg,
		"members":         members,
	})
}
