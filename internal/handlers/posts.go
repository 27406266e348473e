package handlers

import (
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wanderlog/backend/internal/models"
	"github.com/wanderlog/backend/internal/storage"
	"github.com/wanderlog/backend/pkg/logger"
	"github.com/wanderlog/backend/pkg/utils"
	"gorm.io/gorm"
)

type PostsHandler struct {
	DB    *gorm.DB
	Store *storage.DiskStore
}

func NewPostsHandler(db *gorm.DB, store *storage.DiskStore) *PostsHandler {
	return &PostsHandler{DB: db, Store: store}
}

// Create accepts a multipart blog submission. The image is written to disk
// before the record is inserted; if the insert fails the file is removed
// again so a failed submission leaves nothing behind.
func (h *PostsHandler) Create(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("description"))
	authorRaw := strings.TrimSpace(c.FormValue("author"))

	fileHeader, fileErr := c.FormFile("image")

	if name == "" || title == "" || description == "" || authorRaw == "" || fileErr != nil {
		return utils.Error(c, fiber.StatusBadRequest, "all fields are required")
	}

	authorID, err := parseUUID(authorRaw)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid author id")
	}

	var author models.User
	if err := h.DB.First(&author, "id = ?", authorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "author not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching author")
	}

	// Multipart writers commonly tag file parts application/octet-stream;
	// prefer the extension in that case.
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(fileHeader.Filename)); byExt != "" {
			contentType = byExt
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	imagePath, err := h.Store.Save(fileHeader, "")
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed storing image")
	}

	post := models.Post{
		Name:        name,
		Title:       title,
		Description: description,
		ImagePath:   imagePath,
		ImageType:   contentType,
		AuthorID:    authorID,
		Status:      models.PostStatusPending,
	}

	if err := h.DB.Create(&post).Error; err != nil {
		if removeErr := h.Store.Remove(imagePath); removeErr != nil {
			logger.Error("post_image_cleanup_failed", removeErr, map[string]interface{}{
				"path": imagePath,
			})
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating post")
	}
	h.Store.Commit(imagePath)

	logger.Info("post_submitted", map[string]interface{}{
		"post_id":   post.ID.String(),
		"author_id": authorID.String(),
		"title":     title,
	})

	return utils.Success(c, fiber.StatusCreated, post)
}

func (h *PostsHandler) ListApproved(c *fiber.Ctx) error {
	var posts []models.Post
	if err := h.DB.Where("status = ?", models.PostStatusApproved).Order("created_at DESC").Find(&posts).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing posts")
	}
	return utils.Success(c, fiber.StatusOK, posts)
}

func (h *PostsHandler) ListPending(c *fiber.Ctx) error {
	var posts []models.Post
	if err := h.DB.Where("status = ?", models.PostStatusPending).Order("created_at ASC").Find(&posts).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing pending posts")
	}
	return utils.Success(c, fiber.StatusOK, posts)
}

func (h *PostsHandler) Approve(c *fiber.Ctx) error {
	return h.setStatus(c, models.PostStatusApproved)
}

func (h *PostsHandler) Reject(c *fiber.Ctx) error {
	return h.setStatus(c, models.PostStatusRejected)
}

// setStatus overwrites the moderation status unconditionally; re-moderating
// an already moderated post is allowed.
func (h *PostsHandler) setStatus(c *fiber.Ctx, status models.PostStatus) error {
	postID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid post id")
	}

	result := h.DB.Model(&models.Post{}).Where("id = ?", postID).Update("status", status)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating post")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "post not found")
	}

	var post models.Post
	if err := h.DB.First(&post, "id = ?", postID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching updated post")
	}

	logger.Info("post_moderated", map[string]interface{}{
		"post_id": post.ID.String(),
		"status":  string(status),
	})

	return utils.Success(c, fiber.StatusOK, post)
}

func (h *PostsHandler) Image(c *fiber.Ctx) error {
	postID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid post id")
	}

	var post models.Post
	if err := h.DB.First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "post not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching post")
	}

	diskPath, err := h.Store.Resolve(post.ImagePath)
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, "image not found")
	}

	file, err := os.Open(diskPath)
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, "image not found")
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return utils.Error(c, fiber.StatusInternalServerError, "failed reading image")
	}

	c.Set(fiber.HeaderContentType, post.ImageType)
	return c.SendStream(file, int(info.Size()))
}
