package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wanderlog/backend/internal/middleware"
	"github.com/wanderlog/backend/internal/models"
	"github.com/wanderlog/backend/internal/storage"
	"github.com/wanderlog/backend/pkg/logger"
	"github.com/wanderlog/backend/pkg/utils"
	"gorm.io/gorm"
)

type UsersHandler struct {
	DB    *gorm.DB
	Store *storage.DiskStore
}

func NewUsersHandler(db *gorm.DB, store *storage.DiskStore) *UsersHandler {
	return &UsersHandler{DB: db, Store: store}
}

func (h *UsersHandler) List(c *fiber.Ctx) error {
	var users []models.User
	if err := h.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing users")
	}
	return utils.Success(c, fiber.StatusOK, users)
}

func (h *UsersHandler) Get(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching user")
	}

	return utils.Success(c, fiber.StatusOK, user)
}

type socialLinksPatch struct {
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
	LinkedIn  string `json:"linkedin"`
}

type updateProfileRequest struct {
	Name      string            `json:"name"`
	Bio       string            `json:"bio"`
	Location  string            `json:"location"`
	Website   string            `json:"website"`
	Interests []string          `json:"interests"`
	Social    *socialLinksPatch `json:"socialLinks"`
}

// Update patches the caller's own profile. A field is applied only when it is
// supplied with a non-empty value; an empty string leaves the stored value
// untouched. Clients rely on this, so it is kept even though it means a field
// can never be cleared.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	if currentUser.ID != userID && currentUser.Role != models.UserRoleAdmin {
		return utils.Error(c, fiber.StatusForbidden, "cannot update another user's profile")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching user")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Location != "" {
		user.Location = req.Location
	}
	if req.Website != "" {
		user.Website = req.Website
	}
	if req.Interests != nil {
		user.Interests = req.Interests
	}
	if req.Social != nil {
		if req.Social.Twitter != "" {
			user.SocialLinks.Twitter = req.Social.Twitter
		}
		if req.Social.Instagram != "" {
			user.SocialLinks.Instagram = req.Social.Instagram
		}
		if req.Social.Facebook != "" {
			user.SocialLinks.Facebook = req.Social.Facebook
		}
		if req.Social.LinkedIn != "" {
			user.SocialLinks.LinkedIn = req.Social.LinkedIn
		}
	}

	if err := h.DB.Save(&user).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating user")
	}

	logger.InfoWithUser(currentUser.ID.String(), "profile_updated", map[string]interface{}{
		"target_id": userID.String(),
	})

	return utils.Success(c, fiber.StatusOK, user)
}

type updateRoleRequest struct {
	Role models.UserRole `json:"role"`
}

func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching user")
	}

	// An absent role is a no-op ack, matching the historical behavior.
	if req.Role != "" {
		if !models.ValidRole(req.Role) {
			return utils.Error(c, fiber.StatusBadRequest, "invalid role")
		}
		user.Role = req.Role
		if err := h.DB.Save(&user).Error; err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed updating role")
		}

		logger.Info("user_role_updated", map[string]interface{}{
			"user_id": user.ID.String(),
			"role":    string(user.Role),
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "user role updated"})
}

func (h *UsersHandler) UploadProfileImage(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileHeader, err := c.FormFile("profileImage")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "profile image file is required")
	}

	userIDRaw := strings.TrimSpace(c.FormValue("userId"))
	if userIDRaw == "" {
		return utils.Error(c, fiber.StatusBadRequest, "userId is required")
	}
	userID, err := parseUUID(userIDRaw)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid userId")
	}

	if currentUser.ID != userID && currentUser.Role != models.UserRoleAdmin {
		return utils.Error(c, fiber.StatusForbidden, "cannot change another user's profile image")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching user")
	}

	imagePath, err := h.Store.Save(fileHeader, "profiles")
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed storing profile image")
	}

	// The previous image is left in place; the sweeper reclaims it once it
	// ages out.
	user.ProfileImage = imagePath
	if err := h.DB.Save(&user).Error; err != nil {
		if removeErr := h.Store.Remove(imagePath); removeErr != nil {
			logger.Error("profile_image_cleanup_failed", removeErr, map[string]interface{}{
				"path": imagePath,
			})
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating user")
	}
	h.Store.Commit(imagePath)

	logger.InfoWithUser(currentUser.ID.String(), "profile_image_uploaded", map[string]interface{}{
		"target_id": userID.String(),
		"path":      imagePath,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"profileImage": imagePath})
}
