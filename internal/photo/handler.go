package photo

import (
	"bytes"
	"errors"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MaxUploadSize = 5 << 20

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// POST /api/photos (multipart, field "file")
// The returned name is what clients store with PUT .../:id/photo.
func UploadHandler(store Store, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file field is required")
		}
		if fh.Size > MaxUploadSize {
			return fiber.NewError(fiber.StatusRequestEntityTooLarge, "photo must be at most 5 MB")
		}

		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file could not be read")
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file could not be read")
		}
		mt := mimetype.Detect(data)
		if !allowedTypes[mt.String()] {
			return fiber.NewError(fiber.StatusUnsupportedMediaType, "only JPEG, PNG or WebP photos are accepted")
		}

		name := uuid.NewString() + mt.Extension()
		if err := store.Put(c.UserContext(), name, bytes.NewReader(data), mt.String()); err != nil {
			log.Error("photo upload failed", zap.String("photo", name), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "photo could not be stored")
		}

		log.Info("photo uploaded", zap.String("photo", name), zap.Int("bytes", len(data)))
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"photo": name})
	}
}

// GET /api/photos/:name
func ServeHandler(store Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, contentType, err := store.Open(c.UserContext(), c.Params("name"))
		switch {
		case errors.Is(err, ErrInvalidName), errors.Is(err, ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, "photo not found")
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, "photo could not be read")
		}
		if contentType != "" {
			c.Set(fiber.HeaderContentType, contentType)
		}
		c.Set(fiber.HeaderCacheControl, "private, max-age=86400")
		return c.SendStream(rc)
	}
}
